package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcbyberg/moto-scraper-v1/internal/agent"
	"github.com/jcbyberg/moto-scraper-v1/internal/config"
	"github.com/jcbyberg/moto-scraper-v1/internal/crawler"
	"github.com/jcbyberg/moto-scraper-v1/internal/fetcher"
	"github.com/jcbyberg/moto-scraper-v1/internal/storage"
)

var (
	cfgFile      string
	verbose      bool
	manufacturer string
	outputDir    string
	imagesDir    string
	rateLimit    string
	stateFile    string
	maxDepth     int
	maxPages     int
	headless     bool
	mongoURI     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "motocrawl",
		Short: "Motocrawl - manufacturer website crawler",
		Long: `Motocrawl crawls a single motorcycle manufacturer's website and
produces one merged, metric-unit record per model.

Features:
  • Multi-strategy page discovery (sitemap, menus, search, link following)
  • Headless-browser extraction of specs, features, and marketing copy
  • Unit normalization to metric with alias-based field mapping
  • Priority merge of spec, gallery, and feature pages per model
  • Content-addressed image download with duplicate elimination
  • Resumable crawls via an on-disk state file`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [base-url]",
		Short: "Crawl a manufacturer website",
		Long:  "Crawl the given manufacturer website, extracting and merging one record per model.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}

	cmd.Flags().StringVarP(&manufacturer, "manufacturer", "m", "", "manufacturer name (required)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory for markdown and metadata")
	cmd.Flags().StringVar(&imagesDir, "images-dir", "", "directory for downloaded images")
	cmd.Flags().StringVar(&rateLimit, "rate-limit", "", "minimum delay between navigations (floor 3s)")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "crawl state file for resume")
	cmd.Flags().IntVarP(&maxDepth, "max-depth", "d", -1, "link-following depth (-1 = config default)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after visiting this many pages (0 = unlimited)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "enable MongoDB sink at this URI")
	cmd.MarkFlagRequired("manufacturer")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cfg.Crawl.BaseURL = args[0]
	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("starting crawl",
		"base_url", cfg.Crawl.BaseURL,
		"manufacturer", cfg.Crawl.Manufacturer,
		"rate_limit", cfg.Crawl.RateLimit,
		"output", cfg.Output.Dir,
	)

	httpClient, err := fetcher.NewClient(fetcher.Options{
		Timeout:     cfg.Fetcher.Timeout,
		MaxBodySize: cfg.Fetcher.MaxBodySize,
		UserAgent:   cfg.Fetcher.UserAgent,
	}, logger)
	if err != nil {
		return fmt.Errorf("create http client: %w", err)
	}
	defer httpClient.Close()

	browser, err := agent.NewRodBrowser(agent.RodOptions{
		Headless:    cfg.Browser.Headless,
		NavTimeout:  cfg.Browser.NavTimeout,
		UserDataDir: cfg.Browser.UserDataDir,
		WindowSize:  cfg.Browser.WindowSize,
		ProxyURL:    cfg.Browser.ProxyURL,
	}, logger)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	stores, err := buildStores(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, store := range stores {
			if err := store.Close(); err != nil {
				logger.Warn("sink close failed", "sink", store.Name(), "error", err)
			}
		}
	}()

	c, err := crawler.New(cfg, browser, httpClient, stores, logger)
	if err != nil {
		return fmt.Errorf("create crawler: %w", err)
	}

	// SIGINT saves state best-effort, then cancels the crawl.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, saving state and shutting down...", "signal", sig)
		if err := c.SaveState(); err != nil {
			logger.Warn("state save on shutdown failed", "error", err)
		}
		cancel()
	}()

	start := time.Now()
	err = c.Run(ctx)
	stats := c.Stats().Snapshot()

	fmt.Printf("\nCrawl finished in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("   Pages:    %v visited, %v in scope, %v failed\n",
		stats["pages_visited"], stats["pages_in_scope"], stats["pages_failed"])
	fmt.Printf("   Records:  %v written\n", stats["records_written"])
	fmt.Printf("   Output:   %s\n", cfg.Output.Dir)

	if err != nil && crawler.IsFatal(err) {
		return fmt.Errorf("site inaccessible: %w", err)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("crawl ended with error", "error", err)
	}
	return nil
}

// buildStores assembles the optional record sinks.
func buildStores(cfg *config.Config, logger *slog.Logger) ([]storage.RecordStore, error) {
	var stores []storage.RecordStore

	if cfg.Output.CatalogFile != "" {
		catalog, err := storage.NewJSONLStore(cfg.Output.CatalogFile, logger)
		if err != nil {
			return nil, fmt.Errorf("create catalog: %w", err)
		}
		stores = append(stores, catalog)
	}

	if cfg.Storage.MongoEnabled {
		mongoStore, err := storage.NewMongoStore(cfg.Storage.MongoURI, cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection, logger)
		if err != nil {
			// The database is an optional sink. Keep crawling without it.
			logger.Warn("mongodb sink unavailable", "error", err)
		} else {
			stores = append(stores, mongoStore)
		}
	}

	return stores, nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Motocrawl %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Crawl:\n")
			fmt.Printf("  Base URL:          %s\n", cfg.Crawl.BaseURL)
			fmt.Printf("  Manufacturer:      %s\n", cfg.Crawl.Manufacturer)
			fmt.Printf("  Rate Limit:        %s\n", cfg.Crawl.RateLimit)
			fmt.Printf("  Max Depth:         %d\n", cfg.Crawl.MaxDepth)
			fmt.Printf("  State File:        %s\n", cfg.Crawl.StateFile)
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Headless:          %v\n", cfg.Browser.Headless)
			fmt.Printf("  Nav Timeout:       %s\n", cfg.Browser.NavTimeout)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Timeout:           %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nOutput:\n")
			fmt.Printf("  Directory:         %s\n", cfg.Output.Dir)
			fmt.Printf("  Images Directory:  %s\n", cfg.Output.ImagesDir)
			fmt.Printf("  Catalog File:      %s\n", cfg.Output.CatalogFile)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  MongoDB Enabled:   %v\n", cfg.Storage.MongoEnabled)
			fmt.Printf("  Database:          %s\n", cfg.Storage.MongoDatabase)
			return nil
		},
	}
	return cmd
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if manufacturer != "" {
		cfg.Crawl.Manufacturer = manufacturer
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if imagesDir != "" {
		cfg.Output.ImagesDir = imagesDir
	}
	if rateLimit != "" {
		if d, err := time.ParseDuration(rateLimit); err == nil {
			cfg.Crawl.RateLimit = d
		}
	}
	if stateFile != "" {
		cfg.Crawl.StateFile = stateFile
	}
	if maxDepth >= 0 {
		cfg.Crawl.MaxDepth = maxDepth
	}
	if maxPages > 0 {
		cfg.Crawl.MaxPages = maxPages
	}
	cfg.Browser.Headless = headless
	if mongoURI != "" {
		cfg.Storage.MongoEnabled = true
		cfg.Storage.MongoURI = mongoURI
	}
}
