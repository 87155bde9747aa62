package media

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jcbyberg/moto-scraper-v1/internal/fetcher"
	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hero.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes-hero"))
	})
	mux.HandleFunc("/hero-copy.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes-hero")) // identical bytes, different URL
	})
	mux.HandleFunc("/side.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes-side"))
	})
	mux.HandleFunc("/gone.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestDownloader(t *testing.T) (*Downloader, string) {
	t.Helper()
	dir := t.TempDir()
	client, err := fetcher.NewClient(fetcher.Options{}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return NewDownloader(dir, 1, client, testLogger()), dir
}

func TestDownloadForModelDeduplicatesByContent(t *testing.T) {
	srv := testServer(t)
	d, dir := newTestDownloader(t)

	identity := &types.Identity{Manufacturer: "Ducati", Model: "Monster", Year: 2024}
	images := []types.ImageRef{
		{URL: srv.URL + "/hero.jpg", Type: "hero"},
		{URL: srv.URL + "/hero-copy.jpg", Type: "gallery"},
		{URL: srv.URL + "/side.png", Type: "gallery"},
	}

	kept := d.DownloadForModel(context.Background(), identity, images)

	if len(kept) != 2 {
		t.Fatalf("expected 2 unique images, got %d", len(kept))
	}
	for _, img := range kept {
		if img.ContentHash == "" {
			t.Errorf("image %s missing content hash", img.URL)
		}
		if _, err := os.Stat(img.LocalPath); err != nil {
			t.Errorf("image file missing: %v", err)
		}
	}
	if kept[0].ContentHash == kept[1].ContentHash {
		t.Error("distinct images should have distinct hashes")
	}

	// Layout: <dir>/Ducati/Monster/2024/ducati_monster_2024_NNN.ext
	wantDir := filepath.Join(dir, "Ducati", "Monster", "2024")
	if !strings.HasPrefix(kept[0].LocalPath, wantDir) {
		t.Errorf("unexpected path %q, want under %q", kept[0].LocalPath, wantDir)
	}
	if filepath.Base(kept[0].LocalPath) != "ducati_monster_2024_001.jpg" {
		t.Errorf("unexpected file name %q", filepath.Base(kept[0].LocalPath))
	}
	if filepath.Ext(kept[1].LocalPath) != ".png" {
		t.Errorf("png extension not preserved: %q", kept[1].LocalPath)
	}

	stats := d.Stats()
	if stats["downloaded"] != 2 || stats["duplicates"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestDownloadForModelSkipsFailures(t *testing.T) {
	srv := testServer(t)
	d, _ := newTestDownloader(t)

	identity := &types.Identity{Manufacturer: "Ducati", Model: "Monster", Year: 2024}
	images := []types.ImageRef{
		{URL: srv.URL + "/gone.jpg"},
		{URL: srv.URL + "/hero.jpg"},
	}

	kept := d.DownloadForModel(context.Background(), identity, images)
	if len(kept) != 1 {
		t.Fatalf("expected the failed download to be dropped, got %d images", len(kept))
	}
	if kept[0].URL != srv.URL+"/hero.jpg" {
		t.Errorf("wrong image kept: %s", kept[0].URL)
	}
}

func TestDownloadForModelNilIdentity(t *testing.T) {
	d, _ := newTestDownloader(t)
	if got := d.DownloadForModel(context.Background(), nil, nil); got != nil {
		t.Errorf("expected nil for nil identity, got %v", got)
	}
}
