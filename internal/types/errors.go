package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrSiteInaccessible is fatal: every discovery strategy failed to
	// reach a single page.
	ErrSiteInaccessible = errors.New("site inaccessible: all discovery strategies failed")

	ErrAccessDenied = errors.New("access denied")
	ErrNoIdentity   = errors.New("no model identity resolvable")
	ErrEmptyGroup   = errors.New("no records to merge")
)

// NavigationError wraps failures while navigating to a page (timeout,
// 403, DNS failure). Aborts the current page or strategy only.
type NavigationError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NavigationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("navigation error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("navigation error for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError wraps failures while extracting a field from a page.
// Contained per field: the field is simply absent from the extraction.
type ExtractionError struct {
	URL   string
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error for %s (field=%q): %v", e.URL, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DownloadError wraps failures while fetching an image. The image is
// skipped without retry; the entity record is unaffected.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("download error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("download error for %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// StateError wraps crawl-state file problems. Never fatal: the state is
// discarded and the run proceeds with an empty frontier.
type StateError struct {
	Path string
	Err  error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error (%s): %v", e.Path, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }
