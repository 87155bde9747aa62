// Package writers renders merged records to per-model markdown files
// and metadata sidecars under <outputDir>/<Manufacturer>/<Model>/.
package writers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

const (
	maxFeatures   = 20
	maxImages     = 10
	maxSourceURLs = 3
)

// MarkdownWriter writes one markdown document per record. Writes are
// create-or-overwrite so a re-run converges to the same tree.
type MarkdownWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewMarkdownWriter creates a writer rooted at outputDir.
func NewMarkdownWriter(outputDir string, logger *slog.Logger) *MarkdownWriter {
	os.MkdirAll(outputDir, 0o755)
	return &MarkdownWriter{
		outputDir: outputDir,
		logger:    logger.With("component", "markdown_writer"),
	}
}

// Write renders the record to
// <outputDir>/<Manufacturer>/<Model>/<Manufacturer>_<Model>_<Year>.md
// and returns the file path.
func (w *MarkdownWriter) Write(record *types.CanonicalRecord) (string, error) {
	dir := filepath.Join(w.outputDir, sanitizeName(record.Manufacturer), sanitizeName(record.Model))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := sanitizeName(fmt.Sprintf("%s_%s_%d", record.Manufacturer, record.Model, record.Year))
	path := filepath.Join(dir, name+".md")

	content := w.render(record, dir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	w.logger.Info("markdown written", "path", path)
	return path, nil
}

func (w *MarkdownWriter) render(record *types.CanonicalRecord, mdDir string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s (%d)\n\n", record.Manufacturer, record.Model, record.Year)
	if record.Variant != "" {
		fmt.Fprintf(&b, "Variant: %s\n\n", record.Variant)
	}

	if record.Description != "" {
		b.WriteString("## Overview\n\n")
		b.WriteString(record.Description)
		b.WriteString("\n\n")
	}

	if record.ContentSections != nil && !record.ContentSections.IsZero() {
		writeContentSections(&b, record.ContentSections)
	}

	writeSpecifications(&b, &record.Specifications)

	if len(record.Features) > 0 {
		b.WriteString("## Features\n\n")
		for i, feature := range record.Features {
			if i >= maxFeatures {
				break
			}
			fmt.Fprintf(&b, "- %s\n", feature)
		}
		b.WriteString("\n")
	}

	if len(record.Colors) > 0 {
		fmt.Fprintf(&b, "## Colors\n\n%s\n\n", strings.Join(record.Colors, ", "))
	}

	if record.Price != nil {
		fmt.Fprintf(&b, "## Price\n\n%.2f %s", record.Price.Amount, record.Price.Currency)
		if record.Price.Market != "" {
			fmt.Fprintf(&b, " (%s)", record.Price.Market)
		}
		b.WriteString("\n\n")
	}

	var localImages []string
	for _, img := range record.Images {
		if img.LocalPath != "" {
			localImages = append(localImages, img.LocalPath)
		}
	}
	if len(localImages) > 0 {
		b.WriteString("## Images\n\n")
		for i, imgPath := range localImages {
			if i >= maxImages {
				break
			}
			rel, err := filepath.Rel(mdDir, imgPath)
			if err != nil {
				rel = imgPath
			}
			fmt.Fprintf(&b, "![Image](%s)\n", filepath.ToSlash(rel))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Source\n\n")
	urls := record.SourceURLs
	if len(urls) > maxSourceURLs {
		urls = urls[:maxSourceURLs]
	}
	fmt.Fprintf(&b, "- **URLs**: %s\n", strings.Join(urls, ", "))
	fmt.Fprintf(&b, "- **Extracted**: %s\n", record.ExtractedAt.Format("2006-01-02T15:04:05Z07:00"))

	return b.String()
}

func writeContentSections(b *strings.Builder, cs *types.ContentSections) {
	b.WriteString("## Content Sections\n\n")
	writeSection(b, "Header", cs.Header)
	writeSection(b, "Title", cs.Title)
	writeSection(b, "Top", cs.Top)
	writeSection(b, "Text", cs.Text)
	writeSection(b, "Content", cs.Content)
	writeSection(b, "Description", cs.Description)
	writeSection(b, "Tooltips", cs.Tooltips)
	writeSection(b, "Insights Tabs", cs.Tabs)
	if cs.Story != "" {
		b.WriteString("### Story Content\n\n")
		if cs.StoryTitle != "" {
			fmt.Fprintf(b, "**%s**\n\n", cs.StoryTitle)
		}
		if cs.StoryIntro != "" {
			fmt.Fprintf(b, "%s\n\n", cs.StoryIntro)
		}
		fmt.Fprintf(b, "%s\n\n", cs.Story)
	}
	writeSection(b, "Disclaimer", cs.Disclaimer)
}

func writeSection(b *strings.Builder, title, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(b, "### %s\n\n%s\n\n", title, content)
}

func writeSpecifications(b *strings.Builder, specs *types.Specifications) {
	var groups []string

	if group := renderGroup("Engine", [][2]string{
		{"Type", str(specs.Engine.Type)},
		{"Displacement", num(specs.Engine.DisplacementCC, "cc")},
		{"Bore", num(specs.Engine.BoreMM, "mm")},
		{"Stroke", num(specs.Engine.StrokeMM, "mm")},
		{"Compression Ratio", num(specs.Engine.CompressionRatio, "")},
		{"Max Power", num(specs.Engine.MaxPowerKW, "kW")},
		{"Max Power RPM", num(specs.Engine.MaxPowerRPM, "rpm")},
		{"Max Torque", num(specs.Engine.MaxTorqueNM, "Nm")},
		{"Max Torque RPM", num(specs.Engine.MaxTorqueRPM, "rpm")},
		{"Fuel System", str(specs.Engine.FuelSystem)},
		{"Ignition", str(specs.Engine.Ignition)},
		{"Starter", str(specs.Engine.Starter)},
		{"Lubrication", str(specs.Engine.Lubrication)},
	}); group != "" {
		groups = append(groups, group)
	}

	if group := renderGroup("Transmission", [][2]string{
		{"Type", str(specs.Transmission.Type)},
		{"Clutch", str(specs.Transmission.Clutch)},
		{"Final Drive", str(specs.Transmission.FinalDrive)},
	}); group != "" {
		groups = append(groups, group)
	}

	if group := renderGroup("Chassis", [][2]string{
		{"Frame Type", str(specs.Chassis.FrameType)},
		{"Front Suspension", str(specs.Chassis.FrontSuspension)},
		{"Rear Suspension", str(specs.Chassis.RearSuspension)},
		{"Front Brake", str(specs.Chassis.FrontBrake)},
		{"Rear Brake", str(specs.Chassis.RearBrake)},
		{"Front Tire", str(specs.Chassis.FrontTire)},
		{"Rear Tire", str(specs.Chassis.RearTire)},
	}); group != "" {
		groups = append(groups, group)
	}

	if group := renderGroup("Dimensions", [][2]string{
		{"Length", num(specs.Dimensions.LengthMM, "mm")},
		{"Width", num(specs.Dimensions.WidthMM, "mm")},
		{"Height", num(specs.Dimensions.HeightMM, "mm")},
		{"Wheelbase", num(specs.Dimensions.WheelbaseMM, "mm")},
		{"Ground Clearance", num(specs.Dimensions.GroundClearanceMM, "mm")},
		{"Seat Height", num(specs.Dimensions.SeatHeightMM, "mm")},
		{"Dry Weight", num(specs.Dimensions.DryWeightKG, "kg")},
		{"Wet Weight", num(specs.Dimensions.WetWeightKG, "kg")},
		{"Fuel Capacity", num(specs.Dimensions.FuelCapacityL, "L")},
	}); group != "" {
		groups = append(groups, group)
	}

	if group := renderGroup("Performance", [][2]string{
		{"Top Speed", num(specs.Performance.TopSpeedKMH, "km/h")},
		{"0-100 km/h", num(specs.Performance.Accel0To100Sec, "s")},
		{"Fuel Consumption", num(specs.Performance.FuelConsumptionL100KM, "L/100km")},
	}); group != "" {
		groups = append(groups, group)
	}

	if group := renderGroup("Electrical", [][2]string{
		{"Battery Voltage", num(specs.Electrical.BatteryVoltage, "V")},
		{"Alternator", str(specs.Electrical.Alternator)},
		{"Headlight", str(specs.Electrical.Headlight)},
		{"Tail Light", str(specs.Electrical.TailLight)},
	}); group != "" {
		groups = append(groups, group)
	}

	if len(groups) == 0 {
		return
	}
	b.WriteString("## Specifications\n\n")
	for _, group := range groups {
		b.WriteString(group)
	}
}

// renderGroup returns the markdown for one spec group, or "" when no
// field is set.
func renderGroup(title string, fields [][2]string) string {
	var b strings.Builder
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", f[0], f[1])
	}
	if b.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("### %s\n\n%s\n", title, b.String())
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func num(v *float64, unit string) string {
	if v == nil {
		return ""
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *v), "0"), ".")
	if unit == "" {
		return s
	}
	return s + " " + unit
}

var unsafeName = regexp.MustCompile(`[^\w\s-]`)

// sanitizeName strips characters unsafe for file names and collapses
// whitespace to underscores.
func sanitizeName(text string) string {
	text = unsafeName.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, " ", "_")
	if text == "" {
		return "unknown"
	}
	return text
}
