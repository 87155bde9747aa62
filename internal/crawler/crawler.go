// Package crawler orchestrates the full pipeline: discovery feeds
// classification, extraction, normalization, merging, image download,
// and output writing, all paced by one shared throttle.
package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jcbyberg/moto-scraper-v1/internal/agent"
	"github.com/jcbyberg/moto-scraper-v1/internal/classifier"
	"github.com/jcbyberg/moto-scraper-v1/internal/config"
	"github.com/jcbyberg/moto-scraper-v1/internal/discovery"
	"github.com/jcbyberg/moto-scraper-v1/internal/fetcher"
	"github.com/jcbyberg/moto-scraper-v1/internal/media"
	"github.com/jcbyberg/moto-scraper-v1/internal/merger"
	"github.com/jcbyberg/moto-scraper-v1/internal/normalizer"
	"github.com/jcbyberg/moto-scraper-v1/internal/storage"
	"github.com/jcbyberg/moto-scraper-v1/internal/types"
	"github.com/jcbyberg/moto-scraper-v1/internal/writers"
)

// maxImagesPerRecord bounds the downloads attempted per merged record.
const maxImagesPerRecord = 10

// Stats tracks run counters. All fields are updated atomically.
type Stats struct {
	PagesDiscovered atomic.Int64
	PagesVisited    atomic.Int64
	PagesInScope    atomic.Int64
	PagesFailed     atomic.Int64
	RecordsWritten  atomic.Int64
	WriteFailures   atomic.Int64
}

// Snapshot returns a point-in-time copy for logging.
func (s *Stats) Snapshot() map[string]int64 {
	return map[string]int64{
		"pages_discovered": s.PagesDiscovered.Load(),
		"pages_visited":    s.PagesVisited.Load(),
		"pages_in_scope":   s.PagesInScope.Load(),
		"pages_failed":     s.PagesFailed.Load(),
		"records_written":  s.RecordsWritten.Load(),
		"write_failures":   s.WriteFailures.Load(),
	}
}

// Crawler wires the pipeline together for one target site.
type Crawler struct {
	cfg        *config.Config
	browser    agent.Browser
	engine     *discovery.Engine
	state      *discovery.CrawlState
	throttle   *discovery.Throttle
	classifier *classifier.Classifier
	normalizer *normalizer.Normalizer
	merger     *merger.Merger
	downloader *media.Downloader
	markdown   *writers.MarkdownWriter
	metadata   *writers.MetadataWriter
	stores     []storage.RecordStore
	stats      Stats
	logger     *slog.Logger
}

// New builds a crawler from configuration. State is resumed from the
// configured state file when it matches the target base URL.
func New(cfg *config.Config, browser agent.Browser, httpClient *fetcher.Client, stores []storage.RecordStore, logger *slog.Logger) (*Crawler, error) {
	state := discovery.LoadState(cfg.Crawl.StateFile, cfg.Crawl.BaseURL, logger)
	throttle := discovery.NewThrottle(cfg.Crawl.RateLimit)

	engine, err := discovery.NewEngine(cfg.Crawl.BaseURL, browser, httpClient, state, throttle, discovery.Config{
		MaxDepth:         cfg.Crawl.MaxDepth,
		SisterSampleSize: cfg.Crawl.SisterSampleSize,
		StateFile:        cfg.Crawl.StateFile,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Crawler{
		cfg:        cfg,
		browser:    browser,
		engine:     engine,
		state:      state,
		throttle:   throttle,
		classifier: classifier.New(cfg.Crawl.Manufacturer, logger),
		normalizer: normalizer.New(logger),
		merger:     merger.New(logger),
		downloader: media.NewDownloader(cfg.Output.ImagesDir, cfg.Output.MaxImageSizeMB, httpClient, logger),
		markdown:   writers.NewMarkdownWriter(cfg.Output.Dir, logger),
		metadata:   writers.NewMetadataWriter(cfg.Output.Dir, logger),
		stores:     stores,
		logger:     logger.With("component", "crawler"),
	}, nil
}

// Stats exposes the run counters.
func (c *Crawler) Stats() *Stats { return &c.stats }

// SaveState writes the crawl state to disk. Safe to call at any time,
// including from a signal handler.
func (c *Crawler) SaveState() error {
	return discovery.SaveState(c.state, c.cfg.Crawl.StateFile, c.logger)
}

// pageResult is one in-scope page after extraction and normalization.
type pageResult struct {
	page   types.PageRecord
	record *types.CanonicalRecord
}

// Run executes the full crawl. Individual page and write failures are
// logged and skipped; the only terminal error is a site that no
// strategy could reach at all.
func (c *Crawler) Run(ctx context.Context) error {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := c.processPages(ctx, cancel)

	if err := c.engine.Err(); err != nil {
		return err
	}
	if ctx.Err() != nil && len(results) == 0 {
		return ctx.Err()
	}

	c.mergeAndWrite(ctx, results)

	if err := c.SaveState(); err != nil {
		c.logger.Warn("final state save failed", "error", err)
	}

	snapshot := c.stats.Snapshot()
	images := c.downloader.Stats()
	c.logger.Info("crawl finished",
		"duration", time.Since(start).Round(time.Second),
		"pages_visited", snapshot["pages_visited"],
		"pages_in_scope", snapshot["pages_in_scope"],
		"records_written", snapshot["records_written"],
		"images_downloaded", images["downloaded"],
		"images_deduplicated", images["duplicates"],
	)
	return nil
}

// processPages consumes the discovery stream and produces one
// normalized record per in-scope page.
func (c *Crawler) processPages(ctx context.Context, cancel context.CancelFunc) []pageResult {
	var results []pageResult
	sinceSave := 0

	for pageURL := range c.engine.DiscoverAll(ctx) {
		c.stats.PagesDiscovered.Add(1)

		if c.cfg.Crawl.MaxPages > 0 && int(c.stats.PagesVisited.Load()) >= c.cfg.Crawl.MaxPages {
			c.logger.Info("page limit reached, stopping discovery", "limit", c.cfg.Crawl.MaxPages)
			cancel()
			break
		}

		result, ok := c.processPage(ctx, pageURL)
		c.engine.Ack(ctx)
		if !ok {
			continue
		}
		if result != nil {
			results = append(results, *result)
		}

		sinceSave++
		if c.cfg.Crawl.StateSaveEvery > 0 && sinceSave >= c.cfg.Crawl.StateSaveEvery {
			sinceSave = 0
			if err := c.SaveState(); err != nil {
				c.logger.Warn("periodic state save failed", "error", err)
			}
		}
	}
	return results
}

// processPage visits one URL. The bool result is false when the page
// could not be loaded; a nil pageResult with true means the page was
// visited but produced no record.
func (c *Crawler) processPage(ctx context.Context, pageURL string) (*pageResult, bool) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, false
	}

	if _, err := c.browser.Navigate(ctx, pageURL); err != nil {
		c.stats.PagesFailed.Add(1)
		c.logger.Warn("page load failed", "url", pageURL, "error", err)
		return nil, false
	}
	c.stats.PagesVisited.Add(1)

	content, err := c.browser.PageContent(ctx)
	if err != nil {
		c.stats.PagesFailed.Add(1)
		c.state.MarkVisited(pageURL)
		return nil, true
	}

	page := c.classifier.Classify(pageURL, content)
	if !c.classifier.IsInScopePage(pageURL, content) {
		c.state.MarkVisited(pageURL)
		c.logger.Debug("page out of scope", "url", pageURL)
		return nil, true
	}
	c.stats.PagesInScope.Add(1)

	raw, err := c.browser.ExtractRawFields(ctx, page.PageType)
	if err != nil {
		c.stats.PagesFailed.Add(1)
		c.state.MarkVisited(pageURL)
		c.logger.Warn("extraction failed", "url", pageURL, "error", err)
		return nil, true
	}

	c.state.MarkVisited(pageURL)

	if page.Identity == nil {
		c.logger.Debug("no identity, page kept for grouping only", "url", pageURL)
		return &pageResult{page: page}, true
	}

	record := c.normalizer.Normalize(raw, *page.Identity, pageURL)
	c.logger.Info("page processed",
		"url", pageURL,
		"type", page.PageType,
		"model", page.Identity.Model,
	)
	return &pageResult{page: page, record: record}, true
}

// mergeAndWrite groups pages by entity, merges each group, downloads
// images, and writes every output.
func (c *Crawler) mergeAndWrite(ctx context.Context, results []pageResult) {
	pages := make([]types.PageRecord, 0, len(results))
	recordsByURL := make(map[string]*types.CanonicalRecord, len(results))
	for _, r := range results {
		pages = append(pages, r.page)
		if r.record != nil {
			recordsByURL[r.page.URL] = r.record
		}
	}

	groups := c.classifier.GroupRelatedPages(pages)
	c.logger.Info("grouping complete", "pages", len(pages), "entities", len(groups))

	for key, group := range groups {
		var pageData []merger.PageData
		var pageTypes []string
		for _, p := range group {
			record, ok := recordsByURL[p.URL]
			if !ok {
				continue
			}
			pageData = append(pageData, merger.PageData{Record: record, PageType: p.PageType})
			pageTypes = append(pageTypes, string(p.PageType))
		}
		if len(pageData) == 0 {
			continue
		}

		merged, err := c.merger.MergeGroup(pageData)
		if err != nil {
			c.logger.Warn("merge failed", "entity", key, "error", err)
			continue
		}

		c.writeRecord(ctx, merged, pageTypes)
	}
}

// writeRecord downloads images for one merged record and writes the
// markdown, metadata, and configured sinks. Failures count but never
// abort.
func (c *Crawler) writeRecord(ctx context.Context, record *types.CanonicalRecord, pageTypes []string) {
	identity := &types.Identity{
		Manufacturer: record.Manufacturer,
		Model:        record.Model,
		Year:         record.Year,
		Variant:      record.Variant,
	}

	images := record.Images
	if len(images) > maxImagesPerRecord {
		images = images[:maxImagesPerRecord]
	}
	record.Images = c.downloader.DownloadForModel(ctx, identity, images)

	if _, err := c.markdown.Write(record); err != nil {
		c.stats.WriteFailures.Add(1)
		c.logger.Error("markdown write failed", "model", record.Model, "error", err)
		return
	}
	if _, err := c.metadata.Write(record, pageTypes); err != nil {
		c.stats.WriteFailures.Add(1)
		c.logger.Error("metadata write failed", "model", record.Model, "error", err)
	}

	for _, store := range c.stores {
		if err := store.Store(ctx, record); err != nil {
			c.logger.Error("record sink failed", "sink", store.Name(), "model", record.Model, "error", err)
		}
	}

	c.stats.RecordsWritten.Add(1)
}

// IsFatal reports whether a crawl error should produce a non-zero
// exit. Partial failures never do.
func IsFatal(err error) bool {
	return errors.Is(err, types.ErrSiteInaccessible)
}
