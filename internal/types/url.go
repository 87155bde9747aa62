package types

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a URL for deduplication:
// - lowercases the whole URL
// - removes the fragment
// - removes the trailing slash
// - keeps the query string
//
// Two URLs differing only by case, trailing slash, or fragment
// normalize to the same string. Idempotent.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}

	path := strings.TrimRight(u.Path, "/")

	normalized := u.Scheme + "://" + u.Host + path
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	return strings.ToLower(normalized)
}

// IsInternalURL reports whether rawURL belongs to the site identified by
// baseDomain. Subdomain variation is tolerated: www.example.com and
// shop.example.com both match example.com (last two domain labels).
func IsInternalURL(rawURL, baseDomain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	// Relative URLs are internal by definition.
	if u.Host == "" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	base := strings.ToLower(baseDomain)
	if host == base {
		return true
	}

	parts := strings.Split(base, ".")
	if len(parts) >= 2 {
		root := strings.Join(parts[len(parts)-2:], ".")
		return host == root || strings.HasSuffix(host, "."+root)
	}
	return false
}

// ResolveURL resolves a possibly-relative href against a base URL.
// Returns "" if either side is unparseable.
func ResolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}
