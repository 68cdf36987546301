package ruler

import "github.com/gogpu/labelkit/geom"

// Measurement is the read-only result of the two-click ruler tool.
type Measurement struct {
	Start  geom.Point `json:"start"`
	End    geom.Point `json:"end"`
	Pixels float64    `json:"pixels"`
	Value  float64    `json:"value"`
	Unit   Unit       `json:"unit"`
	// Label is the text drawn next to the dashed measuring line.
	Label string `json:"label"`
	// LabelAt is where the floating label is anchored (segment midpoint).
	LabelAt geom.Point `json:"labelAt"`
	// Angle is the direction of the segment in degrees.
	Angle float64 `json:"angle"`
}

// MeasureDistance measures the straight distance between p1 and p2 and
// converts it to u with the given precision. It never mutates anything.
func MeasureDistance(p1, p2 geom.Point, u Unit, precision int) Measurement {
	px := geom.Distance(p1, p2)
	v := ConvertPixelsToUnit(px, u, precision)
	return Measurement{
		Start:   p1,
		End:     p2,
		Pixels:  px,
		Value:   v,
		Unit:    u,
		Label:   Format(v, u, precision),
		LabelAt: p1.Lerp(p2, 0.5),
		Angle:   geom.AngleDegrees(p1, p2),
	}
}
