package merger

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// pageTypePriority orders page types by authority. Higher wins.
var pageTypePriority = map[types.PageType]int{
	types.PageSpecs:    3,
	types.PageMain:     2,
	types.PageFeatures: 1,
	types.PageGallery:  0,
	types.PageOther:    0,
}

// PageData pairs a per-page canonical record with the page type it
// came from.
type PageData struct {
	Record   *types.CanonicalRecord
	PageType types.PageType
}

// Merger folds the per-page records of one entity group into a single
// canonical record using page-type priority.
type Merger struct {
	logger *slog.Logger
}

// New creates a Merger.
func New(logger *slog.Logger) *Merger {
	return &Merger{logger: logger.With("component", "merger")}
}

// MergeGroup merges all pages of one entity. A single-record group is
// returned unchanged. Spec fields merge fill-only: a set field is
// never overwritten, so every field ends up with the value from the
// highest-priority record that set it. Among equal-priority records
// the later-processed one wins a still-unset field.
func (m *Merger) MergeGroup(pages []PageData) (*types.CanonicalRecord, error) {
	if len(pages) == 0 {
		return nil, types.ErrEmptyGroup
	}
	if len(pages) == 1 {
		return pages[0].Record, nil
	}

	m.logger.Debug("merging records", "pages", len(pages))

	sorted := append([]PageData(nil), pages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return pageTypePriority[sorted[i].PageType] > pageTypePriority[sorted[j].PageType]
	})

	merged := sorted[0].Record.Clone()

	for _, page := range sorted[1:] {
		rec := page.Record
		s := &merged.Specifications
		o := &rec.Specifications

		fillEngine(&s.Engine, &o.Engine)
		fillTransmission(&s.Transmission, &o.Transmission)
		fillChassis(&s.Chassis, &o.Chassis)
		fillDimensions(&s.Dimensions, &o.Dimensions)
		fillPerformance(&s.Performance, &o.Performance)
		fillElectrical(&s.Electrical, &o.Electrical)

		merged.Features = CombineFeatures(merged.Features, rec.Features)

		if len(rec.Description) > len(merged.Description) {
			merged.Description = rec.Description
		}

		merged.Colors = unionStrings(merged.Colors, rec.Colors)
		merged.Images = append(merged.Images, rec.Images...)
		merged.SourceURLs = unionStrings(merged.SourceURLs, rec.SourceURLs)

		if merged.Price == nil && rec.Price != nil {
			p := *rec.Price
			merged.Price = &p
		}
		if merged.Year == 0 && rec.Year != 0 {
			merged.Year = rec.Year
		}
		if merged.Variant == "" && rec.Variant != "" {
			merged.Variant = rec.Variant
		}
	}

	merged.Images = dedupeImages(merged.Images)

	m.logger.Debug("merge complete",
		"source_urls", len(merged.SourceURLs),
		"images", len(merged.Images),
	)
	return merged, nil
}

// CombineFeatures concatenates feature lists, dropping exact duplicates
// while preserving first-seen order.
func CombineFeatures(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, f := range list {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// fill-only merges: copy src into dst only where dst is unset.

func fillFloat(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillString(dst **string, src *string) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillEngine(dst, src *types.EngineSpecs) {
	fillString(&dst.Type, src.Type)
	fillFloat(&dst.DisplacementCC, src.DisplacementCC)
	fillFloat(&dst.BoreMM, src.BoreMM)
	fillFloat(&dst.StrokeMM, src.StrokeMM)
	fillFloat(&dst.CompressionRatio, src.CompressionRatio)
	fillFloat(&dst.MaxPowerKW, src.MaxPowerKW)
	fillFloat(&dst.MaxPowerRPM, src.MaxPowerRPM)
	fillFloat(&dst.MaxTorqueNM, src.MaxTorqueNM)
	fillFloat(&dst.MaxTorqueRPM, src.MaxTorqueRPM)
	fillString(&dst.FuelSystem, src.FuelSystem)
	fillString(&dst.Ignition, src.Ignition)
	fillString(&dst.Starter, src.Starter)
	fillString(&dst.Lubrication, src.Lubrication)
}

func fillTransmission(dst, src *types.TransmissionSpecs) {
	fillString(&dst.Type, src.Type)
	fillString(&dst.Clutch, src.Clutch)
	fillString(&dst.FinalDrive, src.FinalDrive)
}

func fillChassis(dst, src *types.ChassisSpecs) {
	fillString(&dst.FrameType, src.FrameType)
	fillString(&dst.FrontSuspension, src.FrontSuspension)
	fillString(&dst.RearSuspension, src.RearSuspension)
	fillString(&dst.FrontBrake, src.FrontBrake)
	fillString(&dst.RearBrake, src.RearBrake)
	fillString(&dst.FrontTire, src.FrontTire)
	fillString(&dst.RearTire, src.RearTire)
}

func fillDimensions(dst, src *types.DimensionSpecs) {
	fillFloat(&dst.LengthMM, src.LengthMM)
	fillFloat(&dst.WidthMM, src.WidthMM)
	fillFloat(&dst.HeightMM, src.HeightMM)
	fillFloat(&dst.WheelbaseMM, src.WheelbaseMM)
	fillFloat(&dst.GroundClearanceMM, src.GroundClearanceMM)
	fillFloat(&dst.SeatHeightMM, src.SeatHeightMM)
	fillFloat(&dst.DryWeightKG, src.DryWeightKG)
	fillFloat(&dst.WetWeightKG, src.WetWeightKG)
	fillFloat(&dst.FuelCapacityL, src.FuelCapacityL)
}

func fillPerformance(dst, src *types.PerformanceSpecs) {
	fillFloat(&dst.TopSpeedKMH, src.TopSpeedKMH)
	fillFloat(&dst.Accel0To100Sec, src.Accel0To100Sec)
	fillFloat(&dst.FuelConsumptionL100KM, src.FuelConsumptionL100KM)
}

func fillElectrical(dst, src *types.ElectricalSpecs) {
	fillFloat(&dst.BatteryVoltage, src.BatteryVoltage)
	fillString(&dst.Alternator, src.Alternator)
	fillString(&dst.Headlight, src.Headlight)
	fillString(&dst.TailLight, src.TailLight)
}

// unionStrings appends items from b not already in a, preserving order.
func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	out := a
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// dedupeImages keeps the first occurrence of each image URL.
func dedupeImages(images []types.ImageRef) []types.ImageRef {
	seen := make(map[string]struct{}, len(images))
	out := images[:0]
	for _, img := range images {
		if _, ok := seen[img.URL]; ok {
			continue
		}
		seen[img.URL] = struct{}{}
		out = append(out, img)
	}
	return out
}
