package agent

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// extractLinks pulls every anchor from an HTML snapshot, resolved
// against the page URL. Javascript, mailto, and anchor-only hrefs are
// skipped.
func extractLinks(html, pageURL string) ([]types.Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &types.ExtractionError{URL: pageURL, Field: "links", Err: err}
	}

	var links []types.Link
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		resolved := types.ResolveURL(pageURL, href)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, types.Link{
			URL:  resolved,
			Text: strings.TrimSpace(sel.Text()),
		})
	})
	return links, nil
}

// extractFields parses an HTML snapshot into a RawExtraction. Every
// sub-extraction is independent; a failure leaves its field absent.
func extractFields(html, pageURL string, pageType types.PageType, logger *slog.Logger) *types.RawExtraction {
	raw := &types.RawExtraction{Specs: make(map[string]string)}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("unparseable page html", "url", pageURL, "error", err)
		return raw
	}

	extractSpecTables(html, raw, logger)
	extractSpecLists(doc, raw)
	extractFeatures(doc, raw)
	extractDescription(doc, raw)
	extractColors(doc, raw)
	extractImages(doc, pageURL, raw)
	extractContentSections(doc, pageType, raw)

	logger.Debug("raw fields extracted",
		"url", pageURL,
		"specs", len(raw.Specs),
		"features", len(raw.Features),
		"images", len(raw.Images),
	)
	return raw
}

// extractSpecTables reads two-column spec tables via XPath: label cell
// followed by value cell.
func extractSpecTables(html string, raw *types.RawExtraction, logger *slog.Logger) {
	doc, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		logger.Debug("xpath parse failed", "error", err)
		return
	}

	rows, err := htmlquery.QueryAll(doc, "//table//tr")
	if err != nil {
		return
	}
	for _, row := range rows {
		cells, err := htmlquery.QueryAll(row, "./th|./td")
		if err != nil || len(cells) < 2 {
			continue
		}
		key := strings.TrimSpace(htmlquery.InnerText(cells[0]))
		value := strings.TrimSpace(htmlquery.InnerText(cells[1]))
		if key == "" || value == "" {
			continue
		}
		if _, exists := raw.Specs[key]; !exists {
			raw.Specs[key] = value
		}
	}
}

// extractSpecLists reads definition lists and label/value div pairs.
func extractSpecLists(doc *goquery.Document, raw *types.RawExtraction) {
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		terms := dl.Find("dt")
		defs := dl.Find("dd")
		if terms.Length() != defs.Length() {
			return
		}
		terms.Each(func(i int, dt *goquery.Selection) {
			key := strings.TrimSpace(dt.Text())
			value := strings.TrimSpace(defs.Eq(i).Text())
			if key == "" || value == "" {
				return
			}
			if _, exists := raw.Specs[key]; !exists {
				raw.Specs[key] = value
			}
		})
	})

	doc.Find("[class*='spec-item'], [class*='tech-spec']").Each(func(_ int, item *goquery.Selection) {
		key := strings.TrimSpace(item.Find("[class*='label'], [class*='name'], [class*='title']").First().Text())
		value := strings.TrimSpace(item.Find("[class*='value'], [class*='data']").First().Text())
		if key == "" || value == "" {
			return
		}
		if _, exists := raw.Specs[key]; !exists {
			raw.Specs[key] = value
		}
	})
}

func extractFeatures(doc *goquery.Document, raw *types.RawExtraction) {
	seen := make(map[string]struct{})
	doc.Find("[class*='feature'] li, [class*='equipment'] li, [class*='highlight'] li").Each(func(_ int, li *goquery.Selection) {
		text := strings.TrimSpace(li.Text())
		if text == "" || len(text) > 300 {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		raw.Features = append(raw.Features, text)
	})
}

func extractDescription(doc *goquery.Document, raw *types.RawExtraction) {
	if meta, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		raw.Description = strings.TrimSpace(meta)
	}
	if raw.Description == "" {
		var paragraphs []string
		doc.Find("main p, article p, [class*='intro'] p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			text := strings.TrimSpace(p.Text())
			if len(text) > 60 {
				paragraphs = append(paragraphs, text)
			}
			return len(paragraphs) < 3
		})
		raw.Description = strings.Join(paragraphs, "\n\n")
	}
}

func extractColors(doc *goquery.Document, raw *types.RawExtraction) {
	seen := make(map[string]struct{})
	doc.Find("[class*='color'] [class*='name'], [class*='colour'] [class*='name'], [class*='swatch']").Each(func(_ int, el *goquery.Selection) {
		name := strings.TrimSpace(el.Text())
		if name == "" {
			if alt, ok := el.Attr("title"); ok {
				name = strings.TrimSpace(alt)
			}
		}
		if name == "" || len(name) > 60 {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		raw.Colors = append(raw.Colors, name)
	})
}

func extractImages(doc *goquery.Document, pageURL string, raw *types.RawExtraction) {
	seen := make(map[string]struct{})
	doc.Find("img[src], img[data-src]").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		resolved := types.ResolveURL(pageURL, src)
		if resolved == "" {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}

		alt, _ := img.Attr("alt")
		raw.Images = append(raw.Images, types.RawImage{
			URL:  resolved,
			Alt:  strings.TrimSpace(alt),
			Type: classifyImage(img),
		})
	})
}

// classifyImage guesses the image's role from its DOM context.
func classifyImage(img *goquery.Selection) string {
	for _, ancestor := range []string{"[class*='hero']", "header", "[class*='banner']"} {
		if img.Closest(ancestor).Length() > 0 {
			return "hero"
		}
	}
	if img.Closest("[class*='gallery'], [class*='carousel'], [class*='swiper']").Length() > 0 {
		return "gallery"
	}
	return "detail"
}

func extractContentSections(doc *goquery.Document, pageType types.PageType, raw *types.RawExtraction) {
	cs := &raw.ContentSections

	cs.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	cs.Header = firstText(doc, "[class*='hero'] h2, [class*='hero'] [class*='subtitle'], header [class*='tagline']")
	cs.Top = firstText(doc, "[class*='intro'], [class*='lead'], [class*='top-section']")
	cs.Tooltips = joinTexts(doc, "[class*='tooltip'] [class*='text'], [data-tooltip]", "\n")
	cs.Disclaimer = firstText(doc, "[class*='disclaimer'], [class*='legal'] p, footer [class*='note']")

	if pageType == types.PageStories || pageType == types.PageInsights {
		cs.StoryTitle = cs.Title
		cs.StoryIntro = firstText(doc, "article [class*='intro'], article > p:first-of-type")
		cs.Story = joinTexts(doc, "article p", "\n\n")
	} else {
		cs.Text = joinTexts(doc, "[class*='content-section'] p, [class*='editorial'] p", "\n\n")
	}

	cs.Tabs = joinTexts(doc, "[role='tabpanel'] p, [class*='tab-content'] p", "\n\n")
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func joinTexts(doc *goquery.Document, selector, sep string) string {
	var parts []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, sep)
}
