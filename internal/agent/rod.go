package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// cookieSelectors are consent-banner accept buttons, most specific
// first. OneTrust is the banner the target sites actually run.
var cookieSelectors = []string{
	"#onetrust-accept-btn-handler",
	"button[id*='accept']",
	"button[class*='accept']",
	"[aria-label*='accept' i]",
}

// menuToggleSelectors open the site's main navigation.
var menuToggleSelectors = []string{
	".hamburger[data-js-navtoggle]",
	"[data-js-navtoggle]",
	".hamburger",
	"button[aria-label*='menu' i]",
	"button[aria-label*='navigation' i]",
}

// categorySelectors are expandable navigation category headers.
var categorySelectors = []string{
	".title[data-js-navlv2-trigger]",
	"div.title",
	"nav [aria-expanded='false']",
}

// searchSelectors locate the site search input.
var searchSelectors = []string{
	"input[type='search']",
	"input[name='q']",
	"input[placeholder*='search' i]",
}

// carouselSelectors advance carousels and reveal lazy content.
var carouselSelectors = []string{
	"button[class*='load-more']",
	"button[aria-label*='next' i]",
	".swiper-button-next",
	"[data-js-carousel-next]",
}

// RodBrowser implements Browser on a stealth-patched headless Chromium.
type RodBrowser struct {
	browser  *rod.Browser
	page     *rod.Page
	navTimeo time.Duration
	logger   *slog.Logger

	expandedCategories map[string]bool
}

// RodOptions configures the Rod-backed browser.
type RodOptions struct {
	Headless    bool
	NavTimeout  time.Duration
	UserDataDir string
	WindowSize  string
	ProxyURL    string
}

// NewRodBrowser launches Chromium and opens one stealth page. The
// pipeline is strictly single-navigation, so one page is all we need.
func NewRodBrowser(opts RodOptions, logger *slog.Logger) (*RodBrowser, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-blink-features", "AutomationControlled")

	if opts.UserDataDir != "" {
		l = l.UserDataDir(opts.UserDataDir)
	}
	if opts.WindowSize != "" {
		l = l.Set("window-size", opts.WindowSize)
	}
	if opts.ProxyURL != "" {
		l = l.Proxy(opts.ProxyURL)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("stealth page: %w", err)
	}

	timeout := opts.NavTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	b := &RodBrowser{
		browser:            browser,
		page:               page,
		navTimeo:           timeout,
		logger:             logger.With("component", "browser_agent"),
		expandedCategories: make(map[string]bool),
	}

	b.logger.Info("browser agent ready", "headless", opts.Headless)
	return b, nil
}

// Navigate loads a URL, waits for stability, and checks for an
// access-denied interstitial.
func (b *RodBrowser) Navigate(ctx context.Context, url string) (*NavigationResult, error) {
	page := b.page.Context(ctx)

	if err := page.Timeout(b.navTimeo).Navigate(url); err != nil {
		return nil, &types.NavigationError{URL: url, Err: err}
	}

	if err := page.Timeout(b.navTimeo).WaitStable(300 * time.Millisecond); err != nil {
		b.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
	}

	// Nudge lazy loading.
	_, _ = page.Eval("() => window.scrollTo(0, 100)")

	info, err := page.Info()
	title := ""
	if err == nil && info != nil {
		title = info.Title
	}

	if strings.Contains(title, "Access Denied") {
		return nil, &types.NavigationError{URL: url, StatusCode: 403, Err: types.ErrAccessDenied}
	}
	if html, err := page.HTML(); err == nil &&
		strings.Contains(strings.ToLower(html), "access denied") &&
		len(html) < 8192 {
		return nil, &types.NavigationError{URL: url, StatusCode: 403, Err: types.ErrAccessDenied}
	}

	b.logger.Debug("navigated", "url", url, "title", title)
	return &NavigationResult{Status: 200, Title: title}, nil
}

// AcceptCookieConsent clicks the first visible consent button.
func (b *RodBrowser) AcceptCookieConsent(ctx context.Context) bool {
	page := b.page.Context(ctx)
	for _, sel := range cookieSelectors {
		el, err := page.Timeout(2 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		b.logger.Debug("cookie consent accepted", "selector", sel)
		time.Sleep(500 * time.Millisecond)
		return true
	}
	return false
}

// RevealNavigationMenu opens the hamburger menu, expands every
// category once, and collects the links exposed. Expansion is
// idempotent: a category already expanded in this session is skipped.
func (b *RodBrowser) RevealNavigationMenu(ctx context.Context) ([]types.Link, error) {
	page := b.page.Context(ctx)

	opened := false
	for _, sel := range menuToggleSelectors {
		el, err := page.Timeout(2 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		opened = true
		time.Sleep(1500 * time.Millisecond)
		break
	}
	if !opened {
		return nil, &types.ExtractionError{URL: b.CurrentURL(), Field: "navigation_menu", Err: fmt.Errorf("menu toggle not found")}
	}

	for _, sel := range categorySelectors {
		els, err := page.Timeout(2 * time.Second).Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			key := strings.TrimSpace(text)
			if key == "" || b.expandedCategories[key] {
				continue
			}
			if visible, _ := el.Visible(); !visible {
				continue
			}
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				continue
			}
			b.expandedCategories[key] = true
			time.Sleep(500 * time.Millisecond)
		}
	}

	return b.GetOutboundLinks(ctx)
}

// Search types a term into the site search and returns result links.
func (b *RodBrowser) Search(ctx context.Context, term string) ([]types.Link, error) {
	page := b.page.Context(ctx)

	var searchInput *rod.Element
	for _, sel := range searchSelectors {
		el, err := page.Timeout(2 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if visible, _ := el.Visible(); visible {
			searchInput = el
			break
		}
	}
	if searchInput == nil {
		return nil, &types.ExtractionError{URL: b.CurrentURL(), Field: "search", Err: fmt.Errorf("search input not found")}
	}

	if err := searchInput.SelectAllText(); err == nil {
		_ = searchInput.Input("")
	}
	if err := searchInput.Input(term); err != nil {
		return nil, &types.ExtractionError{URL: b.CurrentURL(), Field: "search", Err: err}
	}
	if err := searchInput.Type(input.Enter); err != nil {
		_ = page.Keyboard.Press(input.Enter)
	}

	if err := page.Timeout(10 * time.Second).WaitStable(300 * time.Millisecond); err != nil {
		b.logger.Debug("search results stability timeout", "term", term)
	}

	return b.GetOutboundLinks(ctx)
}

// ExpandCollapsibleSections opens accordions so hidden spec rows and
// copy become part of the DOM text.
func (b *RodBrowser) ExpandCollapsibleSections(ctx context.Context) {
	page := b.page.Context(ctx)
	selectors := []string{
		"[aria-expanded='false']",
		"button[class*='accordion']",
		"details:not([open]) summary",
	}
	for _, sel := range selectors {
		els, err := page.Timeout(2 * time.Second).Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if visible, _ := el.Visible(); !visible {
				continue
			}
			_ = el.Click(proto.InputMouseButtonLeft, 1)
			time.Sleep(200 * time.Millisecond)
		}
	}
}

// PaginateCarousel advances carousels and load-more triggers a bounded
// number of times, returning any links newly revealed.
func (b *RodBrowser) PaginateCarousel(ctx context.Context) []types.Link {
	page := b.page.Context(ctx)

	before, _ := b.GetOutboundLinks(ctx)
	seen := make(map[string]struct{}, len(before))
	for _, l := range before {
		seen[l.URL] = struct{}{}
	}

	for _, sel := range carouselSelectors {
		for i := 0; i < 5; i++ {
			el, err := page.Timeout(2 * time.Second).Element(sel)
			if err != nil {
				break
			}
			if visible, _ := el.Visible(); !visible {
				break
			}
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				break
			}
			time.Sleep(500 * time.Millisecond)
		}
	}

	after, _ := b.GetOutboundLinks(ctx)
	var revealed []types.Link
	for _, l := range after {
		if _, ok := seen[l.URL]; !ok {
			revealed = append(revealed, l)
		}
	}
	return revealed
}

// GetOutboundLinks parses the current DOM and returns all anchors
// resolved to absolute URLs.
func (b *RodBrowser) GetOutboundLinks(ctx context.Context) ([]types.Link, error) {
	html, err := b.page.Context(ctx).HTML()
	if err != nil {
		return nil, &types.ExtractionError{URL: b.CurrentURL(), Field: "links", Err: err}
	}
	return extractLinks(html, b.CurrentURL())
}

// PageContent returns the current DOM as HTML.
func (b *RodBrowser) PageContent(ctx context.Context) (string, error) {
	html, err := b.page.Context(ctx).HTML()
	if err != nil {
		return "", &types.ExtractionError{URL: b.CurrentURL(), Field: "html", Err: err}
	}
	return html, nil
}

// ExtractRawFields parses the current DOM snapshot for product data.
func (b *RodBrowser) ExtractRawFields(ctx context.Context, pageType types.PageType) (*types.RawExtraction, error) {
	b.ExpandCollapsibleSections(ctx)

	html, err := b.page.Context(ctx).HTML()
	if err != nil {
		return nil, &types.ExtractionError{URL: b.CurrentURL(), Field: "html", Err: err}
	}
	return extractFields(html, b.CurrentURL(), pageType, b.logger), nil
}

// CurrentURL returns the page's URL after redirects.
func (b *RodBrowser) CurrentURL() string {
	info, err := b.page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// Close shuts down the browser.
func (b *RodBrowser) Close() error {
	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}
