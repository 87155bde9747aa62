// Package agent abstracts headless-browser navigation and raw field
// extraction. The crawl pipeline only ever talks to the Browser
// interface; everything selector- and site-specific lives in the
// implementation, so targeting a different site means swapping only
// the agent.
package agent

import (
	"context"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// NavigationResult describes the outcome of a page navigation.
type NavigationResult struct {
	Status int
	Title  string
}

// Browser is the capability surface the pipeline requires from a
// browser automation backend.
type Browser interface {
	// Navigate loads a URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) (*NavigationResult, error)

	// AcceptCookieConsent dismisses a cookie banner if one is present.
	// Returns true if a banner was found and accepted.
	AcceptCookieConsent(ctx context.Context) bool

	// RevealNavigationMenu opens the site's hierarchical navigation,
	// expanding each category once, and returns every link it exposes.
	RevealNavigationMenu(ctx context.Context) ([]types.Link, error)

	// Search submits a term to the site search and returns result links.
	Search(ctx context.Context, term string) ([]types.Link, error)

	// ExtractRawFields pulls the raw product data from the current
	// page. Per-field failures leave the field absent, never error.
	ExtractRawFields(ctx context.Context, pageType types.PageType) (*types.RawExtraction, error)

	// ExpandCollapsibleSections opens accordions and show-more blocks
	// on the current page so hidden content becomes extractable.
	ExpandCollapsibleSections(ctx context.Context)

	// PaginateCarousel advances carousels and "load more" triggers,
	// returning any link targets they reveal.
	PaginateCarousel(ctx context.Context) []types.Link

	// GetOutboundLinks returns every anchor on the current page,
	// resolved to absolute URLs.
	GetOutboundLinks(ctx context.Context) ([]types.Link, error)

	// PageContent returns the current DOM as HTML.
	PageContent(ctx context.Context) (string, error)

	// CurrentURL returns the page's final URL after redirects.
	CurrentURL() string

	// Close releases the underlying browser.
	Close() error
}
