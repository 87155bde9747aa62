package discovery

import (
	"context"
	"regexp"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

var locRe = regexp.MustCompile(`<loc>\s*([^<\s]+)\s*</loc>`)

// sitemapPaths are the conventional sitemap locations to try.
var sitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml"}

// fetchSitemapURLs fetches the conventional sitemap locations and
// returns every same-domain <loc> entry, normalized, plus the number
// of sitemaps actually fetched. Unreachable sitemaps contribute
// nothing.
func (e *Engine) fetchSitemapURLs(ctx context.Context) ([]string, int) {
	var urls []string
	fetched := 0
	for _, path := range sitemapPaths {
		sitemapURL := e.baseURL + path

		body, status, err := e.httpClient.Get(ctx, sitemapURL)
		if err != nil || status != 200 {
			e.logger.Debug("sitemap not available", "url", sitemapURL, "status", status, "error", err)
			continue
		}
		fetched++

		matches := locRe.FindAllStringSubmatch(string(body), -1)
		for _, m := range matches {
			u := m[1]
			if !types.IsInternalURL(u, e.baseDomain) {
				continue
			}
			urls = append(urls, types.NormalizeURL(u))
		}
		e.logger.Info("sitemap parsed", "url", sitemapURL, "entries", len(matches))
	}
	return urls, fetched
}
