package classifier

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

func testClassifier() *Classifier {
	return New("Ducati", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- Scope Tests ---

func TestIsInScopePage(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		name    string
		url     string
		content string
		want    bool
	}{
		{"bikes path", "https://www.ducati.com/ww/en/bikes/monster", "", true},
		{"heritage path", "https://www.ducati.com/ww/en/heritage/916", "", true},
		{"compare excluded", "https://www.ducati.com/ww/en/bikes/compare", "", false},
		{"dealer page", "https://www.ducati.com/ww/en/dealers", "", false},
		{"spec content rescues url", "https://www.ducati.com/ww/en/x1",
			"Displacement 937 cc, torque 93 Nm, wheelbase 1474 mm", true},
		{"too few keywords", "https://www.ducati.com/ww/en/x1", "great torque", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsInScopePage(tt.url, tt.content); got != tt.want {
				t.Errorf("IsInScopePage(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// --- Page Type Tests ---

func TestClassifyPageType(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		url  string
		want types.PageType
	}{
		{"https://www.ducati.com/bikes/monster/specifications", types.PageSpecs},
		{"https://www.ducati.com/bikes/monster/gallery", types.PageGallery},
		{"https://www.ducati.com/bikes/monster/features", types.PageFeatures},
		{"https://www.ducati.com/bikes/monster/insights", types.PageInsights},
		{"https://www.ducati.com/bikes/monster/stories/desert-ride", types.PageStories},
		{"https://www.ducati.com/bikes/monster", types.PageMain},
	}

	for _, tt := range tests {
		if got := c.ClassifyPageType(tt.url, ""); got != tt.want {
			t.Errorf("ClassifyPageType(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

// --- Identity Tests ---

func TestExtractIdentityFromURL(t *testing.T) {
	c := testClassifier()

	id := c.ExtractIdentity("https://www.ducati.com/ww/en/bikes/panigale-v4/2024", "")
	if id == nil {
		t.Fatal("expected identity")
	}
	if id.Manufacturer != "Ducati" {
		t.Errorf("manufacturer = %q", id.Manufacturer)
	}
	if id.Model != "Panigale V4" {
		t.Errorf("model = %q, want Panigale V4", id.Model)
	}
	if id.Year != 2024 {
		t.Errorf("year = %d, want 2024", id.Year)
	}
}

func TestExtractIdentityYearFromContent(t *testing.T) {
	c := testClassifier()

	id := c.ExtractIdentity("https://www.ducati.com/ww/en/bikes/monster", "The 2025 model lineup")
	if id == nil {
		t.Fatal("expected identity")
	}
	if id.Year != 2025 {
		t.Errorf("year = %d, want 2025", id.Year)
	}
}

func TestExtractIdentityNoModel(t *testing.T) {
	c := testClassifier()

	if id := c.ExtractIdentity("https://www.ducati.com/ww/en/company/about", ""); id != nil {
		t.Errorf("expected nil identity, got %+v", id)
	}
}

func TestExtractIdentitySkipsNumericSlug(t *testing.T) {
	c := testClassifier()

	// /bikes/2024/... has a year where the model slug would be.
	if id := c.ExtractIdentity("https://www.ducati.com/ww/en/bikes/2024", ""); id != nil {
		t.Errorf("numeric slug should not become a model, got %+v", id)
	}
}

// --- Grouping Tests ---

func TestGroupRelatedPages(t *testing.T) {
	c := testClassifier()

	monster := &types.Identity{Manufacturer: "Ducati", Model: "Monster", Year: 2024}
	panigale := &types.Identity{Manufacturer: "Ducati", Model: "Panigale V4", Year: 2024}

	pages := []types.PageRecord{
		{URL: "https://d/bikes/monster", PageType: types.PageMain, Identity: monster},
		{URL: "https://d/company/about", PageType: types.PageOther, Identity: nil},
		{URL: "https://d/bikes/monster/specs", PageType: types.PageSpecs, Identity: monster},
		{URL: "https://d/bikes/panigale-v4", PageType: types.PageMain, Identity: panigale},
	}

	groups := c.GroupRelatedPages(pages)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	monsterGroup := groups[monster.Key()]
	if len(monsterGroup) != 2 {
		t.Fatalf("expected 2 monster pages, got %d", len(monsterGroup))
	}
	if monsterGroup[0].PageType != types.PageMain || monsterGroup[1].PageType != types.PageSpecs {
		t.Error("discovery order not preserved within group")
	}
	for _, group := range groups {
		for _, page := range group {
			if page.Identity == nil {
				t.Error("nil-identity page leaked into a group")
			}
		}
	}
}
