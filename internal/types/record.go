package types

import "time"

// RawExtraction is the Browsing Agent's loosely-shaped per-page output,
// consumed immediately by the normalizer. Field keys in Specs are
// whatever the page used; values are raw display strings.
type RawExtraction struct {
	Specs           map[string]string
	Features        []string
	Description     string
	Colors          []string
	Price           *PriceInfo
	Images          []RawImage
	ContentSections ContentSections
	Variant         string
}

// RawImage is an image reference as found on the page.
type RawImage struct {
	URL  string
	Alt  string
	Type string // hero, gallery, detail, ...
}

// ContentSections holds the marketing copy blocks of a product page.
// Named fields keep the description concatenation order explicit.
type ContentSections struct {
	Header      string `json:"header,omitempty"`
	Title       string `json:"title,omitempty"`
	Top         string `json:"top,omitempty"`
	Text        string `json:"text,omitempty"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
	Tooltips    string `json:"tooltips,omitempty"`
	Disclaimer  string `json:"disclaimer,omitempty"`
	Tabs        string `json:"tabs,omitempty"`
	Story       string `json:"story,omitempty"`
	StoryTitle  string `json:"story_title,omitempty"`
	StoryIntro  string `json:"story_intro,omitempty"`
}

// IsZero reports whether no section has content.
func (cs ContentSections) IsZero() bool {
	return cs == ContentSections{}
}

// PriceInfo is an optional price block.
type PriceInfo struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Market   string  `json:"market,omitempty"`
}

// ImageRef is an image belonging to a CanonicalRecord.
type ImageRef struct {
	URL         string `json:"url"`
	Type        string `json:"type"`
	AltText     string `json:"alt_text,omitempty"`
	LocalPath   string `json:"local_path,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
}

// EngineSpecs holds engine specifications. Numeric fields are metric.
type EngineSpecs struct {
	Type             *string  `json:"type,omitempty" bson:"type,omitempty"`
	DisplacementCC   *float64 `json:"displacement_cc,omitempty" bson:"displacement_cc,omitempty"`
	BoreMM           *float64 `json:"bore_mm,omitempty" bson:"bore_mm,omitempty"`
	StrokeMM         *float64 `json:"stroke_mm,omitempty" bson:"stroke_mm,omitempty"`
	CompressionRatio *float64 `json:"compression_ratio,omitempty" bson:"compression_ratio,omitempty"`
	MaxPowerKW       *float64 `json:"max_power_kw,omitempty" bson:"max_power_kw,omitempty"`
	MaxPowerRPM      *float64 `json:"max_power_rpm,omitempty" bson:"max_power_rpm,omitempty"`
	MaxTorqueNM      *float64 `json:"max_torque_nm,omitempty" bson:"max_torque_nm,omitempty"`
	MaxTorqueRPM     *float64 `json:"max_torque_rpm,omitempty" bson:"max_torque_rpm,omitempty"`
	FuelSystem       *string  `json:"fuel_system,omitempty" bson:"fuel_system,omitempty"`
	Ignition         *string  `json:"ignition,omitempty" bson:"ignition,omitempty"`
	Starter          *string  `json:"starter,omitempty" bson:"starter,omitempty"`
	Lubrication      *string  `json:"lubrication,omitempty" bson:"lubrication,omitempty"`
}

// TransmissionSpecs holds gearbox and drive specifications.
type TransmissionSpecs struct {
	Type       *string `json:"type,omitempty" bson:"type,omitempty"`
	Clutch     *string `json:"clutch,omitempty" bson:"clutch,omitempty"`
	FinalDrive *string `json:"final_drive,omitempty" bson:"final_drive,omitempty"`
}

// ChassisSpecs holds frame, suspension, brake, and tire specifications.
type ChassisSpecs struct {
	FrameType       *string `json:"frame_type,omitempty" bson:"frame_type,omitempty"`
	FrontSuspension *string `json:"front_suspension,omitempty" bson:"front_suspension,omitempty"`
	RearSuspension  *string `json:"rear_suspension,omitempty" bson:"rear_suspension,omitempty"`
	FrontBrake      *string `json:"front_brake,omitempty" bson:"front_brake,omitempty"`
	RearBrake       *string `json:"rear_brake,omitempty" bson:"rear_brake,omitempty"`
	FrontTire       *string `json:"front_tire,omitempty" bson:"front_tire,omitempty"`
	RearTire        *string `json:"rear_tire,omitempty" bson:"rear_tire,omitempty"`
}

// DimensionSpecs holds physical dimensions, all metric.
type DimensionSpecs struct {
	LengthMM          *float64 `json:"length_mm,omitempty" bson:"length_mm,omitempty"`
	WidthMM           *float64 `json:"width_mm,omitempty" bson:"width_mm,omitempty"`
	HeightMM          *float64 `json:"height_mm,omitempty" bson:"height_mm,omitempty"`
	WheelbaseMM       *float64 `json:"wheelbase_mm,omitempty" bson:"wheelbase_mm,omitempty"`
	GroundClearanceMM *float64 `json:"ground_clearance_mm,omitempty" bson:"ground_clearance_mm,omitempty"`
	SeatHeightMM      *float64 `json:"seat_height_mm,omitempty" bson:"seat_height_mm,omitempty"`
	DryWeightKG       *float64 `json:"dry_weight_kg,omitempty" bson:"dry_weight_kg,omitempty"`
	WetWeightKG       *float64 `json:"wet_weight_kg,omitempty" bson:"wet_weight_kg,omitempty"`
	FuelCapacityL     *float64 `json:"fuel_capacity_liters,omitempty" bson:"fuel_capacity_liters,omitempty"`
}

// PerformanceSpecs holds performance figures, all metric.
type PerformanceSpecs struct {
	TopSpeedKMH           *float64 `json:"top_speed_kmh,omitempty" bson:"top_speed_kmh,omitempty"`
	Accel0To100Sec        *float64 `json:"acceleration_0_100_kmh_sec,omitempty" bson:"acceleration_0_100_kmh_sec,omitempty"`
	FuelConsumptionL100KM *float64 `json:"fuel_consumption_liters_per_100km,omitempty" bson:"fuel_consumption_liters_per_100km,omitempty"`
}

// ElectricalSpecs holds electrical system specifications.
type ElectricalSpecs struct {
	BatteryVoltage *float64 `json:"battery_voltage,omitempty" bson:"battery_voltage,omitempty"`
	Alternator     *string  `json:"alternator,omitempty" bson:"alternator,omitempty"`
	Headlight      *string  `json:"headlight,omitempty" bson:"headlight,omitempty"`
	TailLight      *string  `json:"tail_light,omitempty" bson:"tail_light,omitempty"`
}

// Specifications groups the six canonical spec blocks.
type Specifications struct {
	Engine       EngineSpecs       `json:"engine" bson:"engine"`
	Transmission TransmissionSpecs `json:"transmission" bson:"transmission"`
	Chassis      ChassisSpecs      `json:"chassis" bson:"chassis"`
	Dimensions   DimensionSpecs    `json:"dimensions" bson:"dimensions"`
	Performance  PerformanceSpecs  `json:"performance" bson:"performance"`
	Electrical   ElectricalSpecs   `json:"electrical" bson:"electrical"`
}

// CanonicalRecord is the unified, metric-unit record for one product.
// One exists per page until merged; exactly one survives per entity
// group after merge. Immutable once written to output.
type CanonicalRecord struct {
	Manufacturer    string           `json:"manufacturer" bson:"manufacturer"`
	Model           string           `json:"model" bson:"model"`
	Year            int              `json:"year,omitempty" bson:"year,omitempty"`
	Variant         string           `json:"variant,omitempty" bson:"variant,omitempty"`
	Specifications  Specifications   `json:"specifications" bson:"specifications"`
	Features        []string         `json:"features,omitempty" bson:"features,omitempty"`
	Description     string           `json:"description,omitempty" bson:"description,omitempty"`
	ContentSections *ContentSections `json:"content_sections,omitempty" bson:"content_sections,omitempty"`
	Colors          []string         `json:"colors,omitempty" bson:"colors,omitempty"`
	Price           *PriceInfo       `json:"price,omitempty" bson:"price,omitempty"`
	Images          []ImageRef       `json:"images,omitempty" bson:"images,omitempty"`
	SourceURLs      []string         `json:"source_urls" bson:"source_urls"`
	ExtractedAt     time.Time        `json:"extraction_timestamp" bson:"extraction_timestamp"`
}

// Clone returns a deep copy of the record.
func (r *CanonicalRecord) Clone() *CanonicalRecord {
	clone := *r

	clone.Specifications.Engine = *cloneEngine(&r.Specifications.Engine)
	clone.Specifications.Transmission = *cloneTransmission(&r.Specifications.Transmission)
	clone.Specifications.Chassis = *cloneChassis(&r.Specifications.Chassis)
	clone.Specifications.Dimensions = *cloneDimensions(&r.Specifications.Dimensions)
	clone.Specifications.Performance = *clonePerformance(&r.Specifications.Performance)
	clone.Specifications.Electrical = *cloneElectrical(&r.Specifications.Electrical)

	clone.Features = append([]string(nil), r.Features...)
	clone.Colors = append([]string(nil), r.Colors...)
	clone.Images = append([]ImageRef(nil), r.Images...)
	clone.SourceURLs = append([]string(nil), r.SourceURLs...)

	if r.Price != nil {
		p := *r.Price
		clone.Price = &p
	}
	if r.ContentSections != nil {
		cs := *r.ContentSections
		clone.ContentSections = &cs
	}
	return &clone
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneEngine(e *EngineSpecs) *EngineSpecs {
	return &EngineSpecs{
		Type:             cloneString(e.Type),
		DisplacementCC:   cloneFloat(e.DisplacementCC),
		BoreMM:           cloneFloat(e.BoreMM),
		StrokeMM:         cloneFloat(e.StrokeMM),
		CompressionRatio: cloneFloat(e.CompressionRatio),
		MaxPowerKW:       cloneFloat(e.MaxPowerKW),
		MaxPowerRPM:      cloneFloat(e.MaxPowerRPM),
		MaxTorqueNM:      cloneFloat(e.MaxTorqueNM),
		MaxTorqueRPM:     cloneFloat(e.MaxTorqueRPM),
		FuelSystem:       cloneString(e.FuelSystem),
		Ignition:         cloneString(e.Ignition),
		Starter:          cloneString(e.Starter),
		Lubrication:      cloneString(e.Lubrication),
	}
}

func cloneTransmission(t *TransmissionSpecs) *TransmissionSpecs {
	return &TransmissionSpecs{
		Type:       cloneString(t.Type),
		Clutch:     cloneString(t.Clutch),
		FinalDrive: cloneString(t.FinalDrive),
	}
}

func cloneChassis(c *ChassisSpecs) *ChassisSpecs {
	return &ChassisSpecs{
		FrameType:       cloneString(c.FrameType),
		FrontSuspension: cloneString(c.FrontSuspension),
		RearSuspension:  cloneString(c.RearSuspension),
		FrontBrake:      cloneString(c.FrontBrake),
		RearBrake:       cloneString(c.RearBrake),
		FrontTire:       cloneString(c.FrontTire),
		RearTire:        cloneString(c.RearTire),
	}
}

func cloneDimensions(d *DimensionSpecs) *DimensionSpecs {
	return &DimensionSpecs{
		LengthMM:          cloneFloat(d.LengthMM),
		WidthMM:           cloneFloat(d.WidthMM),
		HeightMM:          cloneFloat(d.HeightMM),
		WheelbaseMM:       cloneFloat(d.WheelbaseMM),
		GroundClearanceMM: cloneFloat(d.GroundClearanceMM),
		SeatHeightMM:      cloneFloat(d.SeatHeightMM),
		DryWeightKG:       cloneFloat(d.DryWeightKG),
		WetWeightKG:       cloneFloat(d.WetWeightKG),
		FuelCapacityL:     cloneFloat(d.FuelCapacityL),
	}
}

func clonePerformance(p *PerformanceSpecs) *PerformanceSpecs {
	return &PerformanceSpecs{
		TopSpeedKMH:           cloneFloat(p.TopSpeedKMH),
		Accel0To100Sec:        cloneFloat(p.Accel0To100Sec),
		FuelConsumptionL100KM: cloneFloat(p.FuelConsumptionL100KM),
	}
}

func cloneElectrical(e *ElectricalSpecs) *ElectricalSpecs {
	return &ElectricalSpecs{
		BatteryVoltage: cloneFloat(e.BatteryVoltage),
		Alternator:     cloneString(e.Alternator),
		Headlight:      cloneString(e.Headlight),
		TailLight:      cloneString(e.TailLight),
	}
}
