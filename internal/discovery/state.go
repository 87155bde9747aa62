package discovery

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// CrawlState is the resumable frontier: which URLs have been
// discovered, which already visited, and which are still pending.
// All URLs are stored normalized. Invariant: visited is a subset of
// discovered. Safe for concurrent use: the discovery producer and the
// processing loop share one instance.
type CrawlState struct {
	mu         sync.RWMutex
	saveMu     sync.Mutex
	baseURL    string
	visited    map[string]struct{}
	discovered map[string]struct{}
	pending    []string
}

// stateFile is the on-disk JSON shape.
type stateFile struct {
	VisitedURLs    []string  `json:"visited_urls"`
	DiscoveredURLs []string  `json:"discovered_urls"`
	PendingURLs    []string  `json:"pending_urls"`
	Timestamp      time.Time `json:"timestamp"`
	BaseURL        string    `json:"base_url"`
}

// NewCrawlState creates an empty state for a base URL.
func NewCrawlState(baseURL string) *CrawlState {
	return &CrawlState{
		baseURL:    baseURL,
		visited:    make(map[string]struct{}),
		discovered: make(map[string]struct{}),
	}
}

// BaseURL returns the base URL this state belongs to.
func (s *CrawlState) BaseURL() string { return s.baseURL }

// IsVisited reports whether a URL has already been visited.
func (s *CrawlState) IsVisited(rawURL string) bool {
	normalized := types.NormalizeURL(rawURL)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.visited[normalized]
	return ok
}

// IsDiscovered reports whether a URL is already in the discovered set.
func (s *CrawlState) IsDiscovered(rawURL string) bool {
	normalized := types.NormalizeURL(rawURL)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.discovered[normalized]
	return ok
}

// AddDiscovered records a URL as discovered. Returns true if it was new.
func (s *CrawlState) AddDiscovered(rawURL string) bool {
	normalized := types.NormalizeURL(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discovered[normalized]; ok {
		return false
	}
	s.discovered[normalized] = struct{}{}
	return true
}

// MarkVisited records a URL as visited (and, to keep the subset
// invariant, as discovered).
func (s *CrawlState) MarkVisited(rawURL string) {
	normalized := types.NormalizeURL(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discovered[normalized] = struct{}{}
	s.visited[normalized] = struct{}{}
}

// VisitedCount returns the number of visited URLs.
func (s *CrawlState) VisitedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visited)
}

// DiscoveredCount returns the number of discovered URLs.
func (s *CrawlState) DiscoveredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.discovered)
}

// DiscoveredURLs returns a snapshot of the discovered set.
func (s *CrawlState) DiscoveredURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return setToSlice(s.discovered)
}

// VisitedURLs returns a snapshot of the visited set.
func (s *CrawlState) VisitedURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return setToSlice(s.visited)
}

// PushPending enqueues a URL for later processing.
//
// The pending queue is carried for state-file compatibility: the file
// format persists pending_urls, but the pipeline streams URLs straight
// from discovery and no production caller enqueues here.
func (s *CrawlState) PushPending(rawURL string) {
	normalized := types.NormalizeURL(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, normalized)
}

// PopPending dequeues the next pending URL, FIFO.
func (s *CrawlState) PopPending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return "", false
	}
	u := s.pending[0]
	s.pending = s.pending[1:]
	return u, true
}

// snapshot copies the state into its on-disk shape under the read lock.
func (s *CrawlState) snapshot() stateFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stateFile{
		VisitedURLs:    setToSlice(s.visited),
		DiscoveredURLs: setToSlice(s.discovered),
		PendingURLs:    append([]string(nil), s.pending...),
		Timestamp:      time.Now(),
		BaseURL:        s.baseURL,
	}
}

// SaveState writes the crawl state atomically (temp file + rename).
// Saves are serialized per state so two callers never share the same
// temp file.
func SaveState(s *CrawlState, path string, logger *slog.Logger) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &types.StateError{Path: path, Err: fmt.Errorf("create state dir: %w", err)}
		}
	}

	data := s.snapshot()

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return &types.StateError{Path: path, Err: fmt.Errorf("create state file: %w", err)}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		return &types.StateError{Path: path, Err: fmt.Errorf("encode state: %w", err)}
	}
	f.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		return &types.StateError{Path: path, Err: fmt.Errorf("rename state file: %w", err)}
	}

	logger.Info("crawl state saved", "visited", len(data.VisitedURLs), "pending", len(data.PendingURLs))
	return nil
}

// LoadState reads a previously saved state. Missing, corrupt, or
// mismatched-base-URL files are never fatal: a fresh state is returned
// and the problem logged as a warning.
func LoadState(path, baseURL string, logger *slog.Logger) *CrawlState {
	fresh := NewCrawlState(baseURL)

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not open state file", "path", path, "error", err)
		}
		return fresh
	}
	defer f.Close()

	var data stateFile
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		logger.Warn("corrupt state file, starting fresh", "path", path, "error", err)
		return fresh
	}

	if data.BaseURL != baseURL {
		logger.Warn("state file is for different base URL, ignoring",
			"state_base_url", data.BaseURL, "base_url", baseURL)
		return fresh
	}

	s := NewCrawlState(baseURL)
	for _, u := range data.DiscoveredURLs {
		s.discovered[types.NormalizeURL(u)] = struct{}{}
	}
	for _, u := range data.VisitedURLs {
		s.MarkVisited(u)
	}
	for _, u := range data.PendingURLs {
		s.pending = append(s.pending, types.NormalizeURL(u))
	}

	logger.Info("crawl state loaded",
		"visited", len(s.visited), "discovered", len(s.discovered), "pending", len(s.pending))
	return s
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
