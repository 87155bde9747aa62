package classifier

import (
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// productURLPatterns mark URLs that point at product pages.
var productURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/bikes?/`),
	regexp.MustCompile(`/motorcycles?/`),
	regexp.MustCompile(`/models?/`),
	regexp.MustCompile(`/heritage/`),
	regexp.MustCompile(`/insights`),
	regexp.MustCompile(`/stories`),
}

// exclusions disqualify listing and comparison pages even when the URL
// matches a product pattern.
var exclusions = []string{"/compare", "/list", "/all", "/browse"}

// specKeywords are content markers for specification pages. Three or
// more hits classify a page as in-scope regardless of its URL.
var specKeywords = []string{
	"displacement", "horsepower", "torque", "wheelbase",
	"fuel capacity", "seat height", "dry weight", "wet weight",
	"engine type", "bore", "stroke", "compression",
}

// pageTypeIndicators is an ordered table: first matching type wins.
var pageTypeIndicators = []struct {
	pageType   types.PageType
	indicators []string
}{
	{types.PageSpecs, []string{"specification", "spec", "technical", "tech-data"}},
	{types.PageGallery, []string{"gallery", "photos", "images"}},
	{types.PageFeatures, []string{"features", "equipment", "technology"}},
	{types.PageInsights, []string{"insights", "insight"}},
	{types.PageStories, []string{"stories", "story", "travel"}},
	{types.PageMain, []string{"overview", "details", "home"}},
}

// modelRootKeywords are path segments whose successor is the model slug.
var modelRootKeywords = map[string]bool{
	"bikes": true, "motorcycles": true, "models": true, "heritage": true,
}

var (
	yearPathRe    = regexp.MustCompile(`/(\d{4})(?:/|$)`)
	numericSlugRe = regexp.MustCompile(`^\d{4}$`)

	yearContentRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{4})\s+model`),
		regexp.MustCompile(`(?i)model\s+year[:\s]+(\d{4})`),
		regexp.MustCompile(`(?i)MY\s*(\d{4})`),
	}

	variantURLRe     = regexp.MustCompile(`/(s|r|sp|rs|rr|abs|se|limited|edition)(?:/|$)`)
	variantContentRe = regexp.MustCompile(`\b(S|R|SP|RS|RR|ABS|SE|Limited Edition)\b`)
)

// Classifier decides page scope, type, and preliminary entity identity.
type Classifier struct {
	manufacturer string
	logger       *slog.Logger
}

// New creates a Classifier for one manufacturer.
func New(manufacturer string, logger *slog.Logger) *Classifier {
	return &Classifier{
		manufacturer: manufacturer,
		logger:       logger.With("component", "classifier"),
	}
}

// IsInScopePage reports whether the page describes a product. URL
// pattern match wins unless an exclusion applies; otherwise the page
// content must contain at least three specification keywords.
func (c *Classifier) IsInScopePage(pageURL, content string) bool {
	urlLower := strings.ToLower(pageURL)
	for _, pattern := range productURLPatterns {
		if pattern.MatchString(urlLower) {
			for _, exclude := range exclusions {
				if strings.Contains(urlLower, exclude) {
					return false
				}
			}
			return true
		}
	}

	if content == "" {
		return false
	}
	contentLower := strings.ToLower(content)
	hits := 0
	for _, kw := range specKeywords {
		if strings.Contains(contentLower, kw) {
			hits++
			if hits >= 3 {
				return true
			}
		}
	}
	return false
}

// ClassifyPageType assigns a page type from URL and content indicators.
// Defaults to main.
func (c *Classifier) ClassifyPageType(pageURL, content string) types.PageType {
	urlLower := strings.ToLower(pageURL)
	contentLower := strings.ToLower(content)

	for _, entry := range pageTypeIndicators {
		for _, indicator := range entry.indicators {
			if strings.Contains(urlLower, indicator) || strings.Contains(contentLower, indicator) {
				return entry.pageType
			}
		}
	}
	return types.PageMain
}

// ExtractIdentity derives the preliminary (model, year, variant)
// identity from URL and content. Returns nil when no model name is
// resolvable; such pages are never grouped.
func (c *Classifier) ExtractIdentity(pageURL, content string) *types.Identity {
	model := modelFromURL(pageURL)
	if model == "" {
		return nil
	}

	year := yearFromURL(pageURL)
	if year == 0 {
		year = yearFromContent(content)
	}

	return &types.Identity{
		Manufacturer: c.manufacturer,
		Model:        model,
		Year:         year,
		Variant:      extractVariant(pageURL, content),
	}
}

// Classify produces the full PageRecord for one URL.
func (c *Classifier) Classify(pageURL, content string) types.PageRecord {
	return types.PageRecord{
		URL:      pageURL,
		PageType: c.ClassifyPageType(pageURL, content),
		Identity: c.ExtractIdentity(pageURL, content),
	}
}

// GroupRelatedPages folds classified pages into entity groups keyed by
// (manufacturer, model, year, variant). Pages without identity are
// discarded. Discovery order is preserved within each group.
func (c *Classifier) GroupRelatedPages(pages []types.PageRecord) map[types.EntityKey][]types.PageRecord {
	grouped := make(map[types.EntityKey][]types.PageRecord)
	for _, page := range pages {
		if page.Identity == nil {
			continue
		}
		key := page.Identity.Key()
		grouped[key] = append(grouped[key], page)
	}
	c.logger.Info("grouped pages", "pages", len(pages), "groups", len(grouped))
	return grouped
}

// modelFromURL finds the path segment following a root keyword and
// title-cases it. Purely numeric segments are not model names.
func modelFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if !modelRootKeywords[strings.ToLower(part)] {
			continue
		}
		if i+1 >= len(parts) {
			continue
		}
		slug := parts[i+1]
		if slug == "" || numericSlugRe.MatchString(slug) {
			continue
		}
		name := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
		return titleCase(name)
	}
	return ""
}

func yearFromURL(pageURL string) int {
	m := yearPathRe.FindStringSubmatch(pageURL)
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	if year >= 1900 && year <= 2030 {
		return year
	}
	return 0
}

func yearFromContent(content string) int {
	if content == "" {
		return 0
	}
	for _, re := range yearContentRes {
		if m := re.FindStringSubmatch(content); m != nil {
			year, _ := strconv.Atoi(m[1])
			if year >= 1900 && year <= 2030 {
				return year
			}
		}
	}
	return 0
}

// extractVariant looks for a known variant suffix code in the URL, then
// the content.
func extractVariant(pageURL, content string) string {
	if m := variantURLRe.FindStringSubmatch(strings.ToLower(pageURL)); m != nil {
		return strings.ToUpper(m[1])
	}
	if content != "" {
		if m := variantContentRe.FindStringSubmatch(content); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
