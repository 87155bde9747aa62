package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the crawl pipeline.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CrawlConfig controls discovery and pacing.
type CrawlConfig struct {
	BaseURL          string        `mapstructure:"base_url"           yaml:"base_url"`
	Manufacturer     string        `mapstructure:"manufacturer"       yaml:"manufacturer"`
	RateLimit        time.Duration `mapstructure:"rate_limit"         yaml:"rate_limit"`
	MaxDepth         int           `mapstructure:"max_depth"          yaml:"max_depth"`
	SisterSampleSize int           `mapstructure:"sister_sample_size" yaml:"sister_sample_size"`
	StateFile        string        `mapstructure:"state_file"         yaml:"state_file"`
	StateSaveEvery   int           `mapstructure:"state_save_every"   yaml:"state_save_every"`
	MaxPages         int           `mapstructure:"max_pages"          yaml:"max_pages"`
}

// BrowserConfig controls the headless browser.
type BrowserConfig struct {
	Headless    bool          `mapstructure:"headless"     yaml:"headless"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"  yaml:"nav_timeout"`
	UserDataDir string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	WindowSize  string        `mapstructure:"window_size"  yaml:"window_size"`
	ProxyURL    string        `mapstructure:"proxy_url"    yaml:"proxy_url"`
}

// FetcherConfig controls the plain HTTP client used for sitemaps,
// probes, and image downloads.
type FetcherConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"       yaml:"timeout"`
	MaxBodySize int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
	UserAgent   string        `mapstructure:"user_agent"    yaml:"user_agent"`
}

// OutputConfig controls the on-disk output tree.
type OutputConfig struct {
	Dir            string `mapstructure:"dir"              yaml:"dir"`
	ImagesDir      string `mapstructure:"images_dir"       yaml:"images_dir"`
	MaxImageSizeMB int64  `mapstructure:"max_image_size_mb" yaml:"max_image_size_mb"`
	CatalogFile    string `mapstructure:"catalog_file"     yaml:"catalog_file"`
}

// StorageConfig controls the optional MongoDB sink.
type StorageConfig struct {
	MongoEnabled    bool   `mapstructure:"mongo_enabled"    yaml:"mongo_enabled"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultConfig returns a Config with sensible defaults. The rate
// limit floor of three seconds keeps the crawl polite regardless of
// overrides below it.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			RateLimit:        3 * time.Second,
			MaxDepth:         2,
			SisterSampleSize: 25,
			StateFile:        "crawl_state.json",
			StateSaveEvery:   10,
		},
		Browser: BrowserConfig{
			Headless:   true,
			NavTimeout: 30 * time.Second,
			WindowSize: "1920,1080",
		},
		Fetcher: FetcherConfig{
			Timeout:     30 * time.Second,
			MaxBodySize: 10 * 1024 * 1024, // 10MB
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Output: OutputConfig{
			Dir:            "./output",
			ImagesDir:      "./output/images",
			MaxImageSizeMB: 10,
			CatalogFile:    "./output/catalog.jsonl",
		},
		Storage: StorageConfig{
			MongoEnabled:    false,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "motocrawl",
			MongoCollection: "bikes",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
