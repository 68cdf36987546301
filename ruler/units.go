// Package ruler converts between screen pixels and physical units, lays out
// ruler tick marks and measures distances for the two-click ruler tool.
package ruler

import (
	"fmt"
	"math"
	"strings"
)

// ReferenceDPI is the pixel density the conversion table is anchored at.
const ReferenceDPI = 96.0

// Unit is a measurement unit.
type Unit string

// Supported units.
const (
	Pixels      Unit = "px"
	Millimeters Unit = "mm"
	Centimeters Unit = "cm"
	Inches      Unit = "in"
	Points      Unit = "pt"
)

// Units lists every supported unit.
var Units = []Unit{Pixels, Millimeters, Centimeters, Inches, Points}

// ParseUnit parses a unit name, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Units {
		if u == known {
			return u, nil
		}
	}
	return "", fmt.Errorf("ruler: unknown unit %q", s)
}

// Valid reports whether u is a supported unit.
func (u Unit) Valid() bool {
	_, err := ParseUnit(string(u))
	return err == nil
}

// PxPerUnit returns how many pixels make one unit at ReferenceDPI.
func PxPerUnit(u Unit) float64 {
	return PxPerUnitAt(u, ReferenceDPI)
}

// PxPerUnitAt returns how many pixels make one unit at the given density.
// Unknown units and non-positive densities fall back to pixels.
func PxPerUnitAt(u Unit, dpi float64) float64 {
	if dpi <= 0 {
		dpi = ReferenceDPI
	}
	switch u {
	case Millimeters:
		return dpi / 25.4
	case Centimeters:
		return dpi / 2.54
	case Inches:
		return dpi
	case Points:
		return dpi / 72
	default:
		return 1
	}
}

// ConvertPixelsToUnit converts px to u, rounded to precision decimals.
func ConvertPixelsToUnit(px float64, u Unit, precision int) float64 {
	return round(px/PxPerUnit(u), precision)
}

// ConvertUnitToPixels converts a value in u to pixels at ReferenceDPI.
func ConvertUnitToPixels(v float64, u Unit) float64 {
	return v * PxPerUnit(u)
}

// Format renders a value with its unit suffix, e.g. "12.5 mm".
func Format(v float64, u Unit, precision int) string {
	return fmt.Sprintf("%s %s", formatNumber(round(v, precision), precision), u)
}

func round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

func formatNumber(v float64, precision int) string {
	s := fmt.Sprintf("%.*f", max(precision, 0), v)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
