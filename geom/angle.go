package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Distance returns the Euclidean distance between p1 and p2.
func Distance(p1, p2 Point) float64 {
	return p1.Distance(p2)
}

// AngleDegrees returns the direction from p1 to p2 in degrees, in [0, 360).
// The angle is measured from the positive X axis toward the positive Y axis,
// which is clockwise on a Y-down screen.
func AngleDegrees(p1, p2 Point) float64 {
	return NormalizeDegrees(RadToDeg(math.Atan2(p2.Y-p1.Y, p2.X-p1.X)))
}

// RotatePoint rotates point around center by angle degrees, using the same
// direction convention as AngleDegrees.
func RotatePoint(point, center Point, angle float64) Point {
	return fromVec(r2.Rotate(point.vec(), DegToRad(angle), center.vec()))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -0 and values that round to 360 after the addition above
	if deg >= 360 || deg == 0 {
		return 0
	}
	return deg
}
