package merger

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func record(model string) *types.CanonicalRecord {
	return &types.CanonicalRecord{
		Manufacturer: "Ducati",
		Model:        model,
		Year:         2024,
		SourceURLs:   []string{"https://example.com/" + model},
	}
}

func TestMergeGroupEmpty(t *testing.T) {
	m := New(testLogger())
	if _, err := m.MergeGroup(nil); !errors.Is(err, types.ErrEmptyGroup) {
		t.Errorf("expected ErrEmptyGroup, got %v", err)
	}
}

func TestMergeGroupSingleRecordUnchanged(t *testing.T) {
	m := New(testLogger())
	rec := record("monster")
	rec.Specifications.Engine.DisplacementCC = f(937)

	merged, err := m.MergeGroup([]PageData{{Record: rec, PageType: types.PageMain}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged != rec {
		t.Error("single-record group should return the record itself")
	}
}

func TestMergeGroupSpecsPageWins(t *testing.T) {
	m := New(testLogger())

	main := record("monster")
	main.Specifications.Engine.DisplacementCC = f(900) // rounded marketing figure
	main.Description = "short"

	specs := record("monster")
	specs.Specifications.Engine.DisplacementCC = f(937)
	specs.Specifications.Engine.MaxPowerKW = f(82.4)
	specs.Description = "a much longer description of the bike"

	merged, err := m.MergeGroup([]PageData{
		{Record: main, PageType: types.PageMain},
		{Record: specs, PageType: types.PageSpecs},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *merged.Specifications.Engine.DisplacementCC != 937 {
		t.Errorf("specs page value should win, got %v", *merged.Specifications.Engine.DisplacementCC)
	}
	if *merged.Specifications.Engine.MaxPowerKW != 82.4 {
		t.Errorf("power from specs page missing, got %v", merged.Specifications.Engine.MaxPowerKW)
	}
	if merged.Description != "a much longer description of the bike" {
		t.Errorf("longer description should win, got %q", merged.Description)
	}
}

func TestMergeGroupFillOnlyNeverOverwrites(t *testing.T) {
	m := New(testLogger())

	specs := record("monster")
	specs.Specifications.Dimensions.SeatHeightMM = f(820)
	specs.Specifications.Chassis.FrontBrake = s("Dual 320mm discs")

	gallery := record("monster")
	gallery.Specifications.Dimensions.SeatHeightMM = f(810) // conflicting
	gallery.Specifications.Dimensions.WetWeightKG = f(188)  // filling

	merged, err := m.MergeGroup([]PageData{
		{Record: specs, PageType: types.PageSpecs},
		{Record: gallery, PageType: types.PageGallery},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *merged.Specifications.Dimensions.SeatHeightMM != 820 {
		t.Errorf("set field was overwritten: got %v", *merged.Specifications.Dimensions.SeatHeightMM)
	}
	if merged.Specifications.Dimensions.WetWeightKG == nil || *merged.Specifications.Dimensions.WetWeightKG != 188 {
		t.Errorf("null field was not filled: got %v", merged.Specifications.Dimensions.WetWeightKG)
	}
	if *merged.Specifications.Chassis.FrontBrake != "Dual 320mm discs" {
		t.Errorf("string field lost: got %v", merged.Specifications.Chassis.FrontBrake)
	}
}

func TestMergeGroupInputsUntouched(t *testing.T) {
	m := New(testLogger())

	specs := record("monster")
	specs.Specifications.Engine.DisplacementCC = f(937)
	gallery := record("monster")
	gallery.Specifications.Engine.MaxTorqueNM = f(93)

	if _, err := m.MergeGroup([]PageData{
		{Record: specs, PageType: types.PageSpecs},
		{Record: gallery, PageType: types.PageGallery},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if specs.Specifications.Engine.MaxTorqueNM != nil {
		t.Error("merge mutated an input record")
	}
}

func TestMergeGroupCombinesCollections(t *testing.T) {
	m := New(testLogger())

	a := record("monster")
	a.Features = []string{"ABS Cornering", "Traction Control"}
	a.Colors = []string{"Ducati Red"}
	a.Images = []types.ImageRef{{URL: "https://example.com/1.jpg"}}

	b := record("monster")
	b.Features = []string{"Traction Control", "Quick Shift"}
	b.Colors = []string{"Ducati Red", "Iceberg White"}
	b.Images = []types.ImageRef{
		{URL: "https://example.com/1.jpg"}, // duplicate
		{URL: "https://example.com/2.jpg"},
	}

	merged, err := m.MergeGroup([]PageData{
		{Record: a, PageType: types.PageSpecs},
		{Record: b, PageType: types.PageGallery},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(merged.Features) != 3 {
		t.Errorf("expected 3 deduplicated features, got %v", merged.Features)
	}
	if merged.Features[0] != "ABS Cornering" {
		t.Errorf("feature order not preserved: %v", merged.Features)
	}
	if len(merged.Colors) != 2 {
		t.Errorf("expected 2 colors, got %v", merged.Colors)
	}
	if len(merged.Images) != 2 {
		t.Errorf("expected images deduplicated by URL, got %d", len(merged.Images))
	}
	if len(merged.SourceURLs) != 1 {
		// Both inputs share the same model URL in this fixture.
		t.Errorf("expected source URLs deduplicated, got %v", merged.SourceURLs)
	}
}

func TestCombineFeatures(t *testing.T) {
	got := CombineFeatures([]string{"A", "B", ""}, []string{"B", "C"})
	if len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("unexpected combination: %v", got)
	}
}
