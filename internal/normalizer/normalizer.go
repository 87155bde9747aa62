package normalizer

import (
	"log/slog"
	"strings"
	"time"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// fieldAlias maps a lower-cased raw spec key onto a canonical field.
// Order matters: substring fallback matching scans this list top-down.
type fieldAlias struct {
	alias string
	field string
}

// aliases maps raw page vocabulary to canonical field names, qualified
// by spec group so the same word cannot land in two groups.
var aliases = []fieldAlias{
	// Engine
	{"engine size", "engine.displacement_cc"},
	{"displacement", "engine.displacement_cc"},
	{"capacity", "engine.displacement_cc"},
	{"bore", "engine.bore_mm"},
	{"stroke", "engine.stroke_mm"},
	{"compression", "engine.compression_ratio"},
	{"compression ratio", "engine.compression_ratio"},
	{"power", "engine.max_power_kw"},
	{"max power", "engine.max_power_kw"},
	{"maximum power", "engine.max_power_kw"},
	{"horsepower", "engine.max_power_kw"},
	{"torque", "engine.max_torque_nm"},
	{"max torque", "engine.max_torque_nm"},
	{"maximum torque", "engine.max_torque_nm"},
	{"fuel system", "engine.fuel_system"},
	{"ignition", "engine.ignition"},
	{"starter", "engine.starter"},
	{"lubrication", "engine.lubrication"},
	{"engine type", "engine.type"},

	// Transmission
	{"transmission", "transmission.type"},
	{"gearbox", "transmission.type"},
	{"clutch", "transmission.clutch"},
	{"final drive", "transmission.final_drive"},

	// Chassis
	{"frame", "chassis.frame_type"},
	{"frame type", "chassis.frame_type"},
	{"front suspension", "chassis.front_suspension"},
	{"rear suspension", "chassis.rear_suspension"},
	{"front brake", "chassis.front_brake"},
	{"rear brake", "chassis.rear_brake"},
	{"front tire", "chassis.front_tire"},
	{"front tyre", "chassis.front_tire"},
	{"rear tire", "chassis.rear_tire"},
	{"rear tyre", "chassis.rear_tire"},

	// Dimensions
	{"length", "dimensions.length_mm"},
	{"width", "dimensions.width_mm"},
	{"height", "dimensions.height_mm"},
	{"wheelbase", "dimensions.wheelbase_mm"},
	{"ground clearance", "dimensions.ground_clearance_mm"},
	{"seat height", "dimensions.seat_height_mm"},
	{"dry weight", "dimensions.dry_weight_kg"},
	{"wet weight", "dimensions.wet_weight_kg"},
	{"fuel capacity", "dimensions.fuel_capacity_liters"},
	{"tank capacity", "dimensions.fuel_capacity_liters"},

	// Performance
	{"top speed", "performance.top_speed_kmh"},
	{"max speed", "performance.top_speed_kmh"},
	{"maximum speed", "performance.top_speed_kmh"},
	{"0-100", "performance.acceleration_0_100_kmh_sec"},
	{"0-100 km/h", "performance.acceleration_0_100_kmh_sec"},
	{"fuel consumption", "performance.fuel_consumption_liters_per_100km"},

	// Electrical
	{"battery", "electrical.battery_voltage"},
	{"alternator", "electrical.alternator"},
	{"headlight", "electrical.headlight"},
	{"tail light", "electrical.tail_light"},
}

var aliasExact = func() map[string]string {
	m := make(map[string]string, len(aliases))
	for _, a := range aliases {
		if _, ok := m[a.alias]; !ok {
			m[a.alias] = a.field
		}
	}
	return m
}()

// targetUnits names the metric unit each numeric field converts into.
// Fields absent here take the parsed value as-is.
var targetUnits = map[string]string{
	"engine.displacement_cc":                         "cc",
	"engine.bore_mm":                                 "mm",
	"engine.stroke_mm":                               "mm",
	"engine.max_power_kw":                            "kW",
	"engine.max_torque_nm":                           "Nm",
	"dimensions.length_mm":                           "mm",
	"dimensions.width_mm":                            "mm",
	"dimensions.height_mm":                           "mm",
	"dimensions.wheelbase_mm":                        "mm",
	"dimensions.ground_clearance_mm":                 "mm",
	"dimensions.seat_height_mm":                      "mm",
	"dimensions.dry_weight_kg":                       "kg",
	"dimensions.wet_weight_kg":                       "kg",
	"dimensions.fuel_capacity_liters":                "L",
	"performance.top_speed_kmh":                      "km/h",
	"performance.fuel_consumption_liters_per_100km":  "L/100km",
}

// Normalizer maps raw per-page extractions onto the canonical schema.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger.With("component", "normalizer")}
}

// Normalize builds a CanonicalRecord from a raw extraction. Unmapped
// spec fields are dropped; numeric fields that fail to parse are
// dropped as well rather than stored as text.
func (n *Normalizer) Normalize(raw *types.RawExtraction, identity types.Identity, sourceURL string) *types.CanonicalRecord {
	rec := &types.CanonicalRecord{
		Manufacturer: identity.Manufacturer,
		Model:        identity.Model,
		Year:         identity.Year,
		Variant:      identity.Variant,
		Features:     append([]string(nil), raw.Features...),
		Colors:       append([]string(nil), raw.Colors...),
		Price:        raw.Price,
		SourceURLs:   []string{sourceURL},
		ExtractedAt:  time.Now(),
	}
	if rec.Variant == "" {
		rec.Variant = raw.Variant
	}

	for key, value := range raw.Specs {
		field := mapField(strings.ToLower(strings.TrimSpace(key)))
		if field == "" {
			n.logger.Debug("no mapping for spec field", "field", key)
			continue
		}
		n.assign(rec, field, value)
	}

	for _, img := range raw.Images {
		imgType := img.Type
		if imgType == "" {
			imgType = "gallery"
		}
		rec.Images = append(rec.Images, types.ImageRef{
			URL:     img.URL,
			Type:    imgType,
			AltText: img.Alt,
		})
	}

	rec.Description = MergeContentSections(raw.Description, raw.ContentSections)
	if !raw.ContentSections.IsZero() {
		cs := raw.ContentSections
		rec.ContentSections = &cs
	}

	return rec
}

// mapField resolves a raw key to a canonical field: exact alias first,
// then substring containment in either direction, first listed wins.
func mapField(key string) string {
	if field, ok := aliasExact[key]; ok {
		return field
	}
	for _, a := range aliases {
		if strings.Contains(key, a.alias) || strings.Contains(a.alias, key) {
			return a.field
		}
	}
	return ""
}

// assign parses, converts, and stores one raw value into its canonical
// field. Descriptive fields keep the trimmed raw string.
func (n *Normalizer) assign(rec *types.CanonicalRecord, field, rawValue string) {
	s := &rec.Specifications
	trimmed := strings.TrimSpace(rawValue)
	if trimmed == "" {
		return
	}

	switch field {
	// Descriptive fields: keep the raw string.
	case "engine.type":
		s.Engine.Type = &trimmed
	case "engine.fuel_system":
		s.Engine.FuelSystem = &trimmed
	case "engine.ignition":
		s.Engine.Ignition = &trimmed
	case "engine.starter":
		s.Engine.Starter = &trimmed
	case "engine.lubrication":
		s.Engine.Lubrication = &trimmed
	case "transmission.type":
		s.Transmission.Type = &trimmed
	case "transmission.clutch":
		s.Transmission.Clutch = &trimmed
	case "transmission.final_drive":
		s.Transmission.FinalDrive = &trimmed
	case "chassis.frame_type":
		s.Chassis.FrameType = &trimmed
	case "chassis.front_suspension":
		s.Chassis.FrontSuspension = &trimmed
	case "chassis.rear_suspension":
		s.Chassis.RearSuspension = &trimmed
	case "chassis.front_brake":
		s.Chassis.FrontBrake = &trimmed
	case "chassis.rear_brake":
		s.Chassis.RearBrake = &trimmed
	case "chassis.front_tire":
		s.Chassis.FrontTire = &trimmed
	case "chassis.rear_tire":
		s.Chassis.RearTire = &trimmed
	case "electrical.alternator":
		s.Electrical.Alternator = &trimmed
	case "electrical.headlight":
		s.Electrical.Headlight = &trimmed
	case "electrical.tail_light":
		s.Electrical.TailLight = &trimmed
	default:
		// Numeric fields: parse and convert to metric.
		value, unit, ok := ParseSpecValue(trimmed)
		if !ok {
			n.logger.Debug("unparseable numeric spec value", "field", field, "value", trimmed)
			return
		}
		if target, hasTarget := targetUnits[field]; hasTarget && unit != "" {
			if converted, ok := ConvertToMetric(value, unit, target); ok {
				value = converted
			}
		}
		setNumeric(s, field, value)
	}
}

func setNumeric(s *types.Specifications, field string, value float64) {
	v := value
	switch field {
	case "engine.displacement_cc":
		s.Engine.DisplacementCC = &v
	case "engine.bore_mm":
		s.Engine.BoreMM = &v
	case "engine.stroke_mm":
		s.Engine.StrokeMM = &v
	case "engine.compression_ratio":
		s.Engine.CompressionRatio = &v
	case "engine.max_power_kw":
		s.Engine.MaxPowerKW = &v
	case "engine.max_torque_nm":
		s.Engine.MaxTorqueNM = &v
	case "dimensions.length_mm":
		s.Dimensions.LengthMM = &v
	case "dimensions.width_mm":
		s.Dimensions.WidthMM = &v
	case "dimensions.height_mm":
		s.Dimensions.HeightMM = &v
	case "dimensions.wheelbase_mm":
		s.Dimensions.WheelbaseMM = &v
	case "dimensions.ground_clearance_mm":
		s.Dimensions.GroundClearanceMM = &v
	case "dimensions.seat_height_mm":
		s.Dimensions.SeatHeightMM = &v
	case "dimensions.dry_weight_kg":
		s.Dimensions.DryWeightKG = &v
	case "dimensions.wet_weight_kg":
		s.Dimensions.WetWeightKG = &v
	case "dimensions.fuel_capacity_liters":
		s.Dimensions.FuelCapacityL = &v
	case "performance.top_speed_kmh":
		s.Performance.TopSpeedKMH = &v
	case "performance.acceleration_0_100_kmh_sec":
		s.Performance.Accel0To100Sec = &v
	case "performance.fuel_consumption_liters_per_100km":
		s.Performance.FuelConsumptionL100KM = &v
	case "electrical.battery_voltage":
		s.Electrical.BatteryVoltage = &v
	}
}

// MergeContentSections folds the page's marketing copy blocks into one
// description string. Section order is fixed; tooltips and disclaimer
// get explanatory prefixes.
func MergeContentSections(description string, cs types.ContentSections) string {
	var parts []string
	if description != "" {
		parts = append(parts, description)
	}

	add := func(text string) {
		if text != "" {
			parts = append(parts, text)
		}
	}
	add(cs.Header)
	add(cs.Title)
	add(cs.Top)
	add(cs.Text)
	add(cs.Content)
	add(cs.Description)
	add(cs.Tabs)
	if cs.StoryTitle != "" || cs.StoryIntro != "" || cs.Story != "" {
		story := strings.TrimSpace(strings.Join(nonEmpty(cs.StoryTitle, cs.StoryIntro, cs.Story), "\n"))
		add(story)
	}
	if cs.Tooltips != "" {
		parts = append(parts, "Additional Information:\n"+cs.Tooltips)
	}
	if cs.Disclaimer != "" {
		parts = append(parts, "Note: "+cs.Disclaimer)
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
