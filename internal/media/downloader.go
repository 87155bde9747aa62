// Package media downloads product images into a per-model directory
// tree, deduplicating identical bytes within a run via sha256.
package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jcbyberg/moto-scraper-v1/internal/fetcher"
	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// DownloadResult tracks a stored image.
type DownloadResult struct {
	URL       string        `json:"url"`
	LocalPath string        `json:"local_path"`
	Size      int64         `json:"size"`
	Hash      string        `json:"hash"`
	Duplicate bool          `json:"duplicate"`
	Duration  time.Duration `json:"duration"`
}

// Downloader fetches images and lays them out under
// <imagesDir>/<Manufacturer>/<Model>/<Year>/. Hash state is scoped to
// the Downloader instance, so a fresh run re-evaluates everything.
type Downloader struct {
	imagesDir  string
	client     *fetcher.Client
	maxSize    int64
	downloaded atomic.Int64
	skipped    atomic.Int64
	logger     *slog.Logger

	mu     sync.Mutex
	hashes map[string]string // sha256 -> local path of first copy
}

// NewDownloader creates an image downloader. maxSizeMB of 0 disables
// the size cap.
func NewDownloader(imagesDir string, maxSizeMB int64, client *fetcher.Client, logger *slog.Logger) *Downloader {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	os.MkdirAll(imagesDir, 0o755)
	return &Downloader{
		imagesDir: imagesDir,
		client:    client,
		maxSize:   maxSizeMB * 1024 * 1024,
		logger:    logger.With("component", "media_downloader"),
		hashes:    make(map[string]string),
	}
}

// DownloadForModel fetches every image reference for one model and
// returns the references with LocalPath and ContentHash filled in.
// Failed downloads are logged and dropped, never retried.
func (d *Downloader) DownloadForModel(ctx context.Context, identity *types.Identity, images []types.ImageRef) []types.ImageRef {
	if identity == nil {
		return nil
	}

	dir := filepath.Join(d.imagesDir,
		sanitizeSegment(identity.Manufacturer),
		sanitizeSegment(identity.Model),
		fmt.Sprintf("%d", identity.Year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.logger.Warn("cannot create image directory", "dir", dir, "error", err)
		return nil
	}

	prefix := fmt.Sprintf("%s_%s_%d",
		strings.ToLower(sanitizeSegment(identity.Manufacturer)),
		strings.ToLower(sanitizeSegment(identity.Model)),
		identity.Year)

	var kept []types.ImageRef
	for i, img := range images {
		name := fmt.Sprintf("%s_%03d%s", prefix, i+1, extensionFor(img.URL))
		result, err := d.download(ctx, img.URL, filepath.Join(dir, name))
		if err != nil {
			d.logger.Warn("image download failed", "url", img.URL, "error", err)
			continue
		}
		if result.Duplicate {
			d.logger.Debug("duplicate image skipped", "url", img.URL, "existing", result.LocalPath)
			continue
		}
		img.LocalPath = result.LocalPath
		img.ContentHash = result.Hash
		kept = append(kept, img)
	}
	return kept
}

// download fetches one URL to localPath. If the bytes hash to an image
// already stored this run, the file is removed and the result marked
// Duplicate with the path of the first copy.
func (d *Downloader) download(ctx context.Context, rawURL, localPath string) (*DownloadResult, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.DownloadError{URL: rawURL, Err: err}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &types.DownloadError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.DownloadError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if d.maxSize > 0 && resp.ContentLength > d.maxSize {
		return nil, &types.DownloadError{URL: rawURL, Err: fmt.Errorf("too large: %d bytes", resp.ContentLength)}
	}

	f, err := os.Create(localPath)
	if err != nil {
		return nil, &types.DownloadError{URL: rawURL, Err: err}
	}
	defer f.Close()

	hasher := sha256.New()
	writer := io.MultiWriter(f, hasher)

	reader := io.Reader(resp.Body)
	if d.maxSize > 0 {
		reader = io.LimitReader(resp.Body, d.maxSize)
	}

	size, err := io.Copy(writer, reader)
	if err != nil {
		os.Remove(localPath)
		return nil, &types.DownloadError{URL: rawURL, Err: err}
	}

	hash := hex.EncodeToString(hasher.Sum(nil))

	d.mu.Lock()
	existing, dup := d.hashes[hash]
	if !dup {
		d.hashes[hash] = localPath
	}
	d.mu.Unlock()

	if dup {
		os.Remove(localPath)
		d.skipped.Add(1)
		return &DownloadResult{URL: rawURL, LocalPath: existing, Hash: hash, Duplicate: true}, nil
	}

	d.downloaded.Add(1)
	result := &DownloadResult{
		URL:       rawURL,
		LocalPath: localPath,
		Size:      size,
		Hash:      hash,
		Duration:  time.Since(start),
	}

	d.logger.Debug("image downloaded",
		"url", rawURL,
		"size", size,
		"hash", hash[:16],
		"duration", result.Duration,
	)
	return result, nil
}

// Stats reports run counters.
func (d *Downloader) Stats() map[string]int64 {
	return map[string]int64{
		"downloaded": d.downloaded.Load(),
		"duplicates": d.skipped.Load(),
	}
}

var unsafeSegment = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeSegment makes a value safe for use as a directory or file
// name component.
func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = unsafeSegment.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// extensionFor picks a file extension from the URL path, defaulting to
// .jpg.
func extensionFor(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	switch strings.ToLower(path.Ext(parsed.Path)) {
	case ".png":
		return ".png"
	case ".webp":
		return ".webp"
	case ".gif":
		return ".gif"
	case ".jpeg", ".jpg":
		return ".jpg"
	default:
		return ".jpg"
	}
}
