package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Conversion constants.
const (
	hpToKW         = 0.7457
	lbftToNm       = 1.3558
	inchToMM       = 25.4
	footToMM       = 304.8
	lbsToKG        = 0.453592
	mphToKMH       = 1.60934
	gallonToLiter  = 3.78541
	mpgToL100KMNum = 235.214
)

// specValueRe matches "<number>[ - <number>] <unit>", e.g. "100 hp",
// "73.8 lb-ft", "150-200 kg".
var specValueRe = regexp.MustCompile(`([\d.]+)(?:\s*[-–]\s*([\d.]+))?\s*([a-zA-Z][a-zA-Z./\-]*)`)

var bareNumberRe = regexp.MustCompile(`[\d.]+`)

// ParseSpecValue extracts a numeric value and unit token from a raw
// display string. Approximation markers are stripped, ranges collapse
// to their midpoint. Returns (0, "", false) when no number is present.
//
//	"100 hp @ 9000 rpm" -> (100, "hp", true)
//	"150-200 kg"        -> (175, "kg", true)
//	"~450 lbs"          -> (450, "lbs", true)
//	"1158"              -> (1158, "", true)
//	"Desmodromic"       -> (0, "", false)
func ParseSpecValue(text string) (float64, string, bool) {
	text = strings.ReplaceAll(text, "~", "")
	text = strings.ReplaceAll(text, "approximately", "")
	text = strings.ReplaceAll(text, "approx.", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, "", false
	}

	if m := specValueRe.FindStringSubmatch(text); m != nil {
		v1, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			value := v1
			if m[2] != "" {
				if v2, err := strconv.ParseFloat(m[2], 64); err == nil {
					value = (v1 + v2) / 2
				}
			}
			return value, strings.TrimSpace(m[3]), true
		}
	}

	if m := bareNumberRe.FindString(text); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v, "", true
		}
	}

	return 0, "", false
}

// ConvertToMetric converts value from a source unit to a metric target
// unit. Returns false when no conversion rule applies. Outputs round to
// two decimals, millimeter conversions to one.
func ConvertToMetric(value float64, unit, targetUnit string) (float64, bool) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	targetUnit = strings.ToLower(strings.TrimSpace(targetUnit))

	switch {
	case in(unit, "hp", "horsepower", "bhp") && in(targetUnit, "kw", "kilowatt", "kilowatts"):
		return round2(value * hpToKW), true
	case in(unit, "lb-ft", "lbft", "lb.ft", "ft-lb", "ft.lb") && in(targetUnit, "nm", "n-m", "newton-meter"):
		return round2(value * lbftToNm), true
	case in(unit, "in", "inch", "inches", `"`) && in(targetUnit, "mm", "millimeter", "millimeters"):
		return round1(value * inchToMM), true
	case in(unit, "ft", "foot", "feet", "'") && in(targetUnit, "mm", "millimeter", "millimeters"):
		return round1(value * footToMM), true
	case in(unit, "lb", "lbs", "pound", "pounds") && in(targetUnit, "kg", "kilogram", "kilograms"):
		return round2(value * lbsToKG), true
	case in(unit, "mph", "mi/h") && in(targetUnit, "km/h", "kmh", "kph"):
		return round2(value * mphToKMH), true
	case in(unit, "gal", "gallon", "gallons") && in(targetUnit, "l", "liter", "liters", "litre", "litres"):
		return round2(value * gallonToLiter), true
	case in(unit, "mpg", "mi/gal") && in(targetUnit, "l/100km", "l/100 km"):
		if value <= 0 {
			return 0, true
		}
		return round2(mpgToL100KMNum / value), true
	}

	// Already metric, nothing to do.
	if unit == targetUnit {
		return value, true
	}

	return 0, false
}

func in(s string, set ...string) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
