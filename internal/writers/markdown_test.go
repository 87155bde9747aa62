package writers

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func sampleRecord() *types.CanonicalRecord {
	rec := &types.CanonicalRecord{
		Manufacturer: "Ducati",
		Model:        "Monster",
		Year:         2024,
		Description:  "The essence of the sport naked.",
		Features:     []string{"Cornering ABS", "Traction Control"},
		Colors:       []string{"Ducati Red"},
		SourceURLs:   []string{"https://www.ducati.com/bikes/monster"},
		ExtractedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	rec.Specifications.Engine.DisplacementCC = f(937)
	rec.Specifications.Engine.MaxPowerKW = f(82.4)
	rec.Specifications.Chassis.FrontBrake = s("Dual 320mm discs")
	return rec
}

func TestMarkdownWritePathDeterministic(t *testing.T) {
	dir := t.TempDir()
	w := NewMarkdownWriter(dir, testLogger())

	path, err := w.Write(sampleRecord())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	want := filepath.Join(dir, "Ducati", "Monster", "Ducati_Monster_2024.md")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	// A second write must land on the same file.
	path2, err := w.Write(sampleRecord())
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	if path2 != path {
		t.Errorf("rewrite produced a different path: %q", path2)
	}
}

func TestMarkdownContent(t *testing.T) {
	dir := t.TempDir()
	w := NewMarkdownWriter(dir, testLogger())

	path, err := w.Write(sampleRecord())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"# Ducati Monster (2024)",
		"## Overview",
		"The essence of the sport naked.",
		"### Engine",
		"- **Displacement**: 937 cc",
		"- **Max Power**: 82.4 kW",
		"### Chassis",
		"- **Front Brake**: Dual 320mm discs",
		"- Cornering ABS",
		"## Source",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	if strings.Contains(content, "### Transmission") {
		t.Error("empty spec group should be omitted")
	}
}

func TestMarkdownSanitizesNames(t *testing.T) {
	dir := t.TempDir()
	w := NewMarkdownWriter(dir, testLogger())

	rec := sampleRecord()
	rec.Model = "Monster SP/RS"

	path, err := w.Write(rec)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if strings.ContainsAny(filepath.Base(path), "/\\:") {
		t.Errorf("unsafe characters in file name: %q", filepath.Base(path))
	}
}

func TestMetadataWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewMetadataWriter(dir, testLogger())

	path, err := w.Write(sampleRecord(), []string{"main", "specs"})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	want := filepath.Join(dir, "Ducati", "Monster", "Ducati_Monster_2024_meta.json")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{`"extractor_version"`, `"page_types"`, `"specs"`, `"manufacturer": "Ducati"`} {
		if !strings.Contains(content, want) {
			t.Errorf("metadata missing %q", want)
		}
	}
}
