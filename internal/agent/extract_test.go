package agent

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const pageURL = "https://www.ducati.com/ww/en/bikes/monster"

func TestExtractLinks(t *testing.T) {
	html := `<html><body>
		<a href="/ww/en/bikes/panigale-v4">Panigale V4</a>
		<a href="https://www.ducati.com/ww/en/bikes/monster/specs">Specs</a>
		<a href="/ww/en/bikes/panigale-v4">duplicate</a>
		<a href="#gallery">anchor</a>
		<a href="javascript:void(0)">js</a>
		<a href="mailto:info@ducati.com">mail</a>
	</body></html>`

	links, err := extractLinks(html, pageURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d: %v", len(links), links)
	}
	if links[0].URL != "https://www.ducati.com/ww/en/bikes/panigale-v4" {
		t.Errorf("relative href not resolved: %q", links[0].URL)
	}
	if links[0].Text != "Panigale V4" {
		t.Errorf("link text = %q", links[0].Text)
	}
}

func TestExtractFieldsSpecTable(t *testing.T) {
	html := `<html><body><table>
		<tr><th>Displacement</th><td>937 cc</td></tr>
		<tr><th>Max Power</th><td>111 hp @ 9,250 rpm</td></tr>
		<tr><td>only one cell</td></tr>
	</table></body></html>`

	raw := extractFields(html, pageURL, types.PageMain, testLogger())

	if raw.Specs["Displacement"] != "937 cc" {
		t.Errorf("Displacement = %q", raw.Specs["Displacement"])
	}
	if raw.Specs["Max Power"] != "111 hp @ 9,250 rpm" {
		t.Errorf("Max Power = %q", raw.Specs["Max Power"])
	}
	if len(raw.Specs) != 2 {
		t.Errorf("expected 2 specs, got %d: %v", len(raw.Specs), raw.Specs)
	}
}

func TestExtractFieldsDefinitionList(t *testing.T) {
	html := `<html><body><dl>
		<dt>Seat Height</dt><dd>820 mm</dd>
		<dt>Dry Weight</dt><dd>166 kg</dd>
	</dl></body></html>`

	raw := extractFields(html, pageURL, types.PageSpecs, testLogger())

	if raw.Specs["Seat Height"] != "820 mm" || raw.Specs["Dry Weight"] != "166 kg" {
		t.Errorf("definition list not extracted: %v", raw.Specs)
	}
}

func TestExtractFieldsFeaturesAndDescription(t *testing.T) {
	html := `<html><head>
		<meta name="description" content="The Monster is the essence of the Ducati sport naked.">
	</head><body>
		<div class="feature-list"><ul>
			<li>Cornering ABS</li>
			<li>Ducati Traction Control</li>
			<li>Cornering ABS</li>
		</ul></div>
	</body></html>`

	raw := extractFields(html, pageURL, types.PageFeatures, testLogger())

	if len(raw.Features) != 2 {
		t.Errorf("expected 2 deduplicated features, got %v", raw.Features)
	}
	if raw.Description != "The Monster is the essence of the Ducati sport naked." {
		t.Errorf("description = %q", raw.Description)
	}
}

func TestExtractFieldsImages(t *testing.T) {
	html := `<html><body>
		<div class="hero-banner"><img src="/images/hero.jpg" alt="Front view"></div>
		<div class="gallery"><img data-src="/images/side.jpg" alt=""></div>
		<img src="data:image/png;base64,AAA" alt="inline">
	</body></html>`

	raw := extractFields(html, pageURL, types.PageGallery, testLogger())

	if len(raw.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(raw.Images))
	}
	if raw.Images[0].Type != "hero" {
		t.Errorf("hero image classified as %q", raw.Images[0].Type)
	}
	if raw.Images[0].URL != "https://www.ducati.com/images/hero.jpg" {
		t.Errorf("image URL not resolved: %q", raw.Images[0].URL)
	}
	if raw.Images[1].Type != "gallery" {
		t.Errorf("gallery image classified as %q", raw.Images[1].Type)
	}
}

func TestExtractFieldsContentSections(t *testing.T) {
	html := `<html><body>
		<h1>Monster</h1>
		<div class="disclaimer">Specifications may vary.</div>
	</body></html>`

	raw := extractFields(html, pageURL, types.PageMain, testLogger())

	if raw.ContentSections.Title != "Monster" {
		t.Errorf("title = %q", raw.ContentSections.Title)
	}
	if raw.ContentSections.Disclaimer != "Specifications may vary." {
		t.Errorf("disclaimer = %q", raw.ContentSections.Disclaimer)
	}
}

func TestExtractFieldsEmptyPage(t *testing.T) {
	raw := extractFields("<html><body></body></html>", pageURL, types.PageMain, testLogger())
	if len(raw.Specs) != 0 || len(raw.Features) != 0 || len(raw.Images) != 0 {
		t.Errorf("empty page should extract nothing: %+v", raw)
	}
}
