package discovery

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStateVisitedImpliesDiscovered(t *testing.T) {
	s := NewCrawlState("https://www.ducati.com")
	s.MarkVisited("https://www.ducati.com/bikes/monster")

	if !s.IsVisited("https://www.ducati.com/bikes/monster") {
		t.Error("expected URL to be visited")
	}
	if !s.IsDiscovered("https://www.ducati.com/bikes/monster") {
		t.Error("visited URL must also be discovered")
	}
}

func TestStateNormalizesURLs(t *testing.T) {
	s := NewCrawlState("https://www.ducati.com")
	s.MarkVisited("https://www.ducati.com/Bikes/Monster/")

	if !s.IsVisited("https://www.ducati.com/bikes/monster") {
		t.Error("case and trailing-slash variants should hit the same entry")
	}
}

func TestStateAddDiscovered(t *testing.T) {
	s := NewCrawlState("https://www.ducati.com")

	if !s.AddDiscovered("https://www.ducati.com/bikes/monster") {
		t.Error("first add should report new")
	}
	if s.AddDiscovered("https://www.ducati.com/bikes/monster/") {
		t.Error("second add of a normalized duplicate should report known")
	}
}

func TestStatePendingFIFO(t *testing.T) {
	s := NewCrawlState("https://www.ducati.com")
	s.PushPending("https://www.ducati.com/a")
	s.PushPending("https://www.ducati.com/b")

	u, ok := s.PopPending()
	if !ok || u != "https://www.ducati.com/a" {
		t.Errorf("expected first pushed URL, got %q (ok=%v)", u, ok)
	}
	u, _ = s.PopPending()
	if u != "https://www.ducati.com/b" {
		t.Errorf("expected second pushed URL, got %q", u)
	}
	if _, ok := s.PopPending(); ok {
		t.Error("expected empty queue")
	}
}

// Discovery and page processing mutate one CrawlState from different
// goroutines; the maps must tolerate that.
func TestStateConcurrentMutation(t *testing.T) {
	s := NewCrawlState("https://www.ducati.com")

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				u := fmt.Sprintf("https://www.ducati.com/bikes/model-%d-%d", g, i)
				s.AddDiscovered(u)
				s.MarkVisited(u)
				s.IsVisited(u)
				s.DiscoveredURLs()
			}
		}(g)
	}
	wg.Wait()

	if got := s.VisitedCount(); got != 800 {
		t.Errorf("expected 800 visited URLs, got %d", got)
	}
	if s.DiscoveredCount() != 800 {
		t.Errorf("expected 800 discovered URLs, got %d", s.DiscoveredCount())
	}
}

// --- Persistence Tests ---

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	logger := testLogger()

	s := NewCrawlState("https://www.ducati.com")
	s.MarkVisited("https://www.ducati.com/bikes/monster")
	s.AddDiscovered("https://www.ducati.com/bikes/panigale-v4")
	s.PushPending("https://www.ducati.com/bikes/panigale-v4")

	if err := SaveState(s, path, logger); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := LoadState(path, "https://www.ducati.com", logger)
	if !loaded.IsVisited("https://www.ducati.com/bikes/monster") {
		t.Error("visited URL lost in round trip")
	}
	if !loaded.IsDiscovered("https://www.ducati.com/bikes/panigale-v4") {
		t.Error("discovered URL lost in round trip")
	}
	if u, ok := loaded.PopPending(); !ok || u != "https://www.ducati.com/bikes/panigale-v4" {
		t.Errorf("pending URL lost in round trip, got %q (ok=%v)", u, ok)
	}
}

func TestLoadStateMissingFile(t *testing.T) {
	loaded := LoadState(filepath.Join(t.TempDir(), "nope.json"), "https://www.ducati.com", testLogger())
	if loaded == nil {
		t.Fatal("expected fresh state")
	}
	if loaded.VisitedCount() != 0 || loaded.DiscoveredCount() != 0 {
		t.Error("fresh state should be empty")
	}
}

func TestLoadStateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := LoadState(path, "https://www.ducati.com", testLogger())
	if loaded.VisitedCount() != 0 {
		t.Error("corrupt file should yield a fresh state")
	}
}

func TestLoadStateBaseURLMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	logger := testLogger()

	s := NewCrawlState("https://www.ducati.com")
	s.MarkVisited("https://www.ducati.com/bikes/monster")
	if err := SaveState(s, path, logger); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := LoadState(path, "https://www.honda.com", logger)
	if loaded.VisitedCount() != 0 {
		t.Error("state for a different site must be discarded")
	}
	if loaded.BaseURL() != "https://www.honda.com" {
		t.Errorf("fresh state should carry the new base URL, got %q", loaded.BaseURL())
	}
}
