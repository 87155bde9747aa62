// Package discovery finds every relevant page of the target site by
// running complementary, independently-unreliable strategies: sitemap,
// navigation-menu walk, search, bounded link-following, sister-link
// expansion, and a locale/path gap-fill probe. Results stream out as a
// deduplicated sequence of normalized URLs.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/jcbyberg/moto-scraper-v1/internal/agent"
	"github.com/jcbyberg/moto-scraper-v1/internal/fetcher"
	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// searchTerms are the generic domain terms issued against site search.
var searchTerms = []string{"bike", "motorcycle", "model"}

// localePrefixes and probePaths form the gap-fill cross product.
var localePrefixes = []string{"ca/en", "ww/en", "us/en", "uk/en", "de/de", "it/it", "fr/fr"}

var probePaths = []string{"/bikes", "/heritage", "/heritage/bikes", "/models", "/motorcycles", "/home"}

// homePathCandidates are tried in order for the initial navigation;
// locale-qualified entries often bypass geo redirects that trip bot
// detection.
var homePathCandidates = []string{"/ca/en/home", "/us/en/home", "/ww/en/home", ""}

// productPathKeywords mark URLs worth enqueuing during link-following.
var productPathKeywords = []string{"/bikes", "/bike/", "/motorcycles", "/models", "/model/", "/heritage"}

// contextualKeywords additionally admit sibling-page tabs during
// sister-link expansion.
var contextualKeywords = []string{"/specs", "/gallery", "/features", "/technical"}

// skipPathKeywords disqualify tool and utility pages.
var skipPathKeywords = []string{"/compare", "/configurator", "/dealer", "/list", "/browse"}

// Config tunes the discovery engine.
type Config struct {
	MaxDepth         int // bounded BFS depth, default 2
	SisterSampleSize int // product pages to revisit for sister links
	StateFile        string
}

// Engine discovers pages. One navigation is in flight at any time; all
// strategies share the same throttle and the same state.
type Engine struct {
	baseURL    string
	baseDomain string
	browser    agent.Browser
	httpClient *fetcher.Client
	state      *CrawlState
	throttle   *Throttle
	cfg        Config
	logger     *slog.Logger

	// resumed is the visited set as loaded from a previous run.
	// Strategies never navigate to a URL in it.
	resumed map[string]struct{}

	// ack gates the producer: after every emitted URL it blocks until
	// the consumer calls Ack, so only one side navigates at a time.
	ack chan struct{}

	errMu sync.Mutex
	err   error
}

// NewEngine creates a discovery engine over a shared crawl state. The
// throttle is shared with the processing loop so there is a single
// pace for the whole run.
func NewEngine(baseURL string, browser agent.Browser, httpClient *fetcher.Client, state *CrawlState, throttle *Throttle, cfg Config, logger *slog.Logger) (*Engine, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 2
	}
	if cfg.SisterSampleSize <= 0 {
		cfg.SisterSampleSize = 25
	}

	resumed := make(map[string]struct{})
	for _, v := range state.VisitedURLs() {
		resumed[v] = struct{}{}
	}

	return &Engine{
		baseURL:    strings.TrimRight(baseURL, "/"),
		baseDomain: u.Hostname(),
		browser:    browser,
		httpClient: httpClient,
		state:      state,
		throttle:   throttle,
		cfg:        cfg,
		logger:     logger.With("component", "discovery"),
		resumed:    resumed,
		ack:        make(chan struct{}),
	}, nil
}

// visitedBefore reports whether a URL was already visited when the run
// started, i.e. it came in from a reloaded state file.
func (e *Engine) visitedBefore(rawURL string) bool {
	_, ok := e.resumed[types.NormalizeURL(rawURL)]
	return ok
}

// Ack releases the producer after the consumer has finished with the
// previously received URL. Call it exactly once per URL taken from the
// DiscoverAll channel.
func (e *Engine) Ack(ctx context.Context) {
	select {
	case e.ack <- struct{}{}:
	case <-ctx.Done():
	}
}

// State exposes the shared crawl state.
func (e *Engine) State() *CrawlState { return e.state }

// Err returns the terminal error, if any, once the DiscoverAll channel
// has closed. ErrSiteInaccessible means no strategy reached any page.
func (e *Engine) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

func (e *Engine) setErr(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	e.err = err
}

// DiscoverAll runs every strategy in order and streams newly
// discovered URLs. After each send the producer blocks until the
// consumer calls Ack, so exactly one navigation is in flight at any
// time even though producer and consumer run on different goroutines.
// The channel closes when all strategies have finished or the context
// is cancelled.
func (e *Engine) DiscoverAll(ctx context.Context) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		emitted := make(map[string]struct{})
		emit := func(rawURL string) bool {
			normalized := types.NormalizeURL(rawURL)
			e.state.AddDiscovered(normalized)
			if e.state.IsVisited(normalized) {
				return true
			}
			if _, ok := emitted[normalized]; ok {
				return true
			}
			emitted[normalized] = struct{}{}
			if ctx.Err() != nil {
				return false
			}
			select {
			case out <- normalized:
			case <-ctx.Done():
				return false
			}
			select {
			case <-e.ack:
				return true
			case <-ctx.Done():
				return false
			}
		}

		accessible := 0

		// Initial navigation: find a home URL that is not blocked and
		// clear the cookie banner.
		if e.initialNavigate(ctx) {
			accessible++
		}

		// Strategy 1: sitemap. Plain HTTP, works even when the
		// browser entry point is blocked.
		urls, reachable := e.fetchSitemapURLs(ctx)
		accessible += reachable
		for _, u := range urls {
			if !emit(u) {
				return
			}
		}

		// Strategy 2: navigation-menu walk.
		if n, ok := e.discoverViaMenu(ctx, emit); !ok {
			return
		} else {
			accessible += n
		}

		// Strategy 3: search.
		if n, ok := e.discoverViaSearch(ctx, emit); !ok {
			return
		} else {
			accessible += n
		}

		// Strategy 4: bounded BFS from seed pages.
		if n, ok := e.discoverViaLinkFollowing(ctx, emit); !ok {
			return
		} else {
			accessible += n
		}

		// Strategy 5: sister-link expansion from discovered product pages.
		if n, ok := e.discoverSisterLinks(ctx, emit); !ok {
			return
		} else {
			accessible += n
		}

		// Strategy 6: gap-fill probe over locale x path candidates.
		if n, ok := e.discoverViaGapFill(ctx, emit); !ok {
			return
		} else {
			accessible += n
		}

		if accessible == 0 {
			e.setErr(types.ErrSiteInaccessible)
			e.logger.Error("no strategy reached a single page")
		}

		if e.cfg.StateFile != "" {
			if err := SaveState(e.state, e.cfg.StateFile, e.logger); err != nil {
				e.logger.Warn("could not save state after discovery", "error", err)
			}
		}
	}()

	return out
}

// initialNavigate tries locale-qualified home URLs in order until one
// loads without an access-denied interstitial.
func (e *Engine) initialNavigate(ctx context.Context) bool {
	for _, path := range homePathCandidates {
		candidate := e.baseURL + path
		if e.visitedBefore(candidate) {
			continue
		}
		if err := e.throttle.Wait(ctx); err != nil {
			return false
		}

		result, err := e.browser.Navigate(ctx, candidate)
		if err != nil {
			if errors.Is(err, types.ErrAccessDenied) {
				e.logger.Warn("access denied, trying next entry point", "url", candidate)
			} else {
				e.logger.Debug("entry point failed", "url", candidate, "error", err)
			}
			continue
		}

		e.browser.AcceptCookieConsent(ctx)
		e.logger.Info("entry point loaded", "url", candidate, "title", result.Title)
		return true
	}
	e.logger.Warn("all entry points blocked or unreachable")
	return false
}

// discoverViaMenu walks the hierarchical navigation menu.
func (e *Engine) discoverViaMenu(ctx context.Context, emit func(string) bool) (int, bool) {
	if err := e.throttle.Wait(ctx); err != nil {
		return 0, false
	}

	links, err := e.browser.RevealNavigationMenu(ctx)
	if err != nil {
		e.logger.Warn("menu walk skipped", "error", err)
		return 0, true
	}

	found := 0
	for _, link := range links {
		if !e.isProductLink(link.URL) {
			continue
		}
		found++
		if !emit(link.URL) {
			return found, false
		}
	}
	e.logger.Info("menu walk complete", "links", found)
	return found, true
}

// discoverViaSearch issues each generic term against site search.
func (e *Engine) discoverViaSearch(ctx context.Context, emit func(string) bool) (int, bool) {
	found := 0
	for _, term := range searchTerms {
		if err := e.throttle.Wait(ctx); err != nil {
			return found, false
		}

		links, err := e.browser.Search(ctx, term)
		if err != nil {
			e.logger.Debug("search skipped", "term", term, "error", err)
			continue
		}
		for _, link := range links {
			if !e.isProductLink(link.URL) {
				continue
			}
			found++
			if !emit(link.URL) {
				return found, false
			}
		}
	}
	e.logger.Info("search discovery complete", "links", found)
	return found, true
}

// discoverViaLinkFollowing runs a bounded BFS from the home and
// heritage listing seeds, enqueuing only product-path links. The
// per-pass visited guard protects against cycles in the site graph.
func (e *Engine) discoverViaLinkFollowing(ctx context.Context, emit func(string) bool) (int, bool) {
	type queued struct {
		url   string
		depth int
	}

	seeds := []string{e.baseURL, e.baseURL + "/bikes", e.baseURL + "/heritage"}
	visitedInPass := make(map[string]struct{})
	queue := make([]queued, 0, len(seeds))
	for _, s := range seeds {
		queue = append(queue, queued{url: types.NormalizeURL(s), depth: 0})
	}

	found := 0
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if _, seen := visitedInPass[item.url]; seen {
			continue
		}
		visitedInPass[item.url] = struct{}{}

		if item.depth > e.cfg.MaxDepth {
			continue
		}
		if e.visitedBefore(item.url) {
			continue
		}

		if err := e.throttle.Wait(ctx); err != nil {
			return found, false
		}
		if _, err := e.browser.Navigate(ctx, item.url); err != nil {
			e.logger.Debug("link following navigation failed", "url", item.url, "error", err)
			continue
		}

		links, err := e.browser.GetOutboundLinks(ctx)
		if err != nil {
			continue
		}
		for _, link := range links {
			if !e.isProductLink(link.URL) {
				continue
			}
			normalized := types.NormalizeURL(link.URL)
			found++
			if !emit(normalized) {
				return found, false
			}
			if _, seen := visitedInPass[normalized]; !seen && item.depth+1 <= e.cfg.MaxDepth {
				queue = append(queue, queued{url: normalized, depth: item.depth + 1})
			}
		}
	}
	e.logger.Info("link following complete", "links", found)
	return found, true
}

// discoverSisterLinks revisits a sample of discovered product pages and
// collects contextual links: tabs, variant selectors, related models,
// and anything a carousel or load-more reveals.
func (e *Engine) discoverSisterLinks(ctx context.Context, emit func(string) bool) (int, bool) {
	var sample []string
	for _, u := range e.state.DiscoveredURLs() {
		if !e.isProductLink(u) || e.visitedBefore(u) {
			continue
		}
		sample = append(sample, u)
		if len(sample) >= e.cfg.SisterSampleSize {
			break
		}
	}

	found := 0
	for _, pageURL := range sample {
		if err := e.throttle.Wait(ctx); err != nil {
			return found, false
		}
		if _, err := e.browser.Navigate(ctx, pageURL); err != nil {
			e.logger.Debug("sister link navigation failed", "url", pageURL, "error", err)
			continue
		}

		links, err := e.browser.GetOutboundLinks(ctx)
		if err != nil {
			continue
		}
		links = append(links, e.browser.PaginateCarousel(ctx)...)

		for _, link := range links {
			if !e.isProductLink(link.URL) && !e.isContextualLink(link.URL) {
				continue
			}
			normalized := types.NormalizeURL(link.URL)
			if normalized == types.NormalizeURL(pageURL) {
				continue
			}
			found++
			if !emit(normalized) {
				return found, false
			}
		}
	}
	e.logger.Info("sister link expansion complete", "pages", len(sample), "links", found)
	return found, true
}

// discoverViaGapFill probes locale x path candidates never reached by
// the other strategies. Successful probes are added and their outbound
// links scanned once.
func (e *Engine) discoverViaGapFill(ctx context.Context, emit func(string) bool) (int, bool) {
	candidates := e.gapFillCandidates()

	found := 0
	for _, candidate := range candidates {
		if err := e.throttle.Wait(ctx); err != nil {
			return found, false
		}

		status, ok := e.httpClient.Probe(ctx, candidate)
		if !ok {
			e.logger.Debug("gap-fill probe failed", "url", candidate, "status", status)
			continue
		}

		found++
		if !emit(candidate) {
			return found, false
		}

		// One outbound-link scan of the newly found page.
		if err := e.throttle.Wait(ctx); err != nil {
			return found, false
		}
		if _, err := e.browser.Navigate(ctx, candidate); err != nil {
			continue
		}
		links, err := e.browser.GetOutboundLinks(ctx)
		if err != nil {
			continue
		}
		for _, link := range links {
			if !e.isProductLink(link.URL) {
				continue
			}
			found++
			if !emit(link.URL) {
				return found, false
			}
		}
	}
	e.logger.Info("gap-fill complete", "candidates", len(candidates), "found", found)
	return found, true
}

// gapFillCandidates builds the locale x path cross product, excluding
// URLs already discovered.
func (e *Engine) gapFillCandidates() []string {
	var candidates []string
	for _, locale := range localePrefixes {
		for _, path := range probePaths {
			candidate := fmt.Sprintf("%s/%s%s", e.baseURL, locale, path)
			if e.state.IsDiscovered(candidate) {
				continue
			}
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// isProductLink reports whether a URL is in-domain and points at a
// product path.
func (e *Engine) isProductLink(rawURL string) bool {
	if !types.IsInternalURL(rawURL, e.baseDomain) {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, skip := range skipPathKeywords {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	for _, kw := range productPathKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isContextualLink admits sibling-page tab URLs (specs, gallery, ...).
func (e *Engine) isContextualLink(rawURL string) bool {
	if !types.IsInternalURL(rawURL, e.baseDomain) {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, kw := range contextualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
