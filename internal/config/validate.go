package config

import (
	"fmt"
	"net/url"
	"time"
)

// MinRateLimit is the hard floor on the inter-navigation delay.
const MinRateLimit = 3 * time.Second

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Crawl.BaseURL == "" {
		return fmt.Errorf("crawl.base_url is required")
	}
	if err := ValidateURL(cfg.Crawl.BaseURL); err != nil {
		return fmt.Errorf("crawl.base_url: %w", err)
	}
	if cfg.Crawl.Manufacturer == "" {
		return fmt.Errorf("crawl.manufacturer is required")
	}
	if cfg.Crawl.RateLimit < MinRateLimit {
		return fmt.Errorf("crawl.rate_limit must be >= %s, got %s", MinRateLimit, cfg.Crawl.RateLimit)
	}
	if cfg.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0, got %d", cfg.Crawl.MaxDepth)
	}
	if cfg.Crawl.SisterSampleSize < 0 {
		return fmt.Errorf("crawl.sister_sample_size must be >= 0, got %d", cfg.Crawl.SisterSampleSize)
	}
	if cfg.Crawl.MaxPages < 0 {
		return fmt.Errorf("crawl.max_pages must be >= 0, got %d", cfg.Crawl.MaxPages)
	}

	if cfg.Browser.NavTimeout <= 0 {
		return fmt.Errorf("browser.nav_timeout must be > 0")
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if cfg.Output.ImagesDir == "" {
		return fmt.Errorf("output.images_dir is required")
	}

	if cfg.Storage.MongoEnabled {
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required when mongo is enabled")
		}
		if cfg.Storage.MongoDatabase == "" || cfg.Storage.MongoCollection == "" {
			return fmt.Errorf("storage.mongo_database and storage.mongo_collection are required when mongo is enabled")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a crawl target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
