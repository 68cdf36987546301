package geom

import (
	"math"
	"strconv"
)

// Matrix maps a label element's local coordinates into its parent frame
// (the scene, or the group holding it):
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
//
// Backends push one Matrix per element before painting its local box.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity leaves element coordinates unchanged.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate moves an element by (x, y) scene pixels.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale stretches an element by its scaleX and scaleY factors.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Rotate creates a rotation by angle degrees (clockwise on a Y-down screen).
func Rotate(angle float64) Matrix {
	rad := DegToRad(angle)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// ObjectTransform returns the transform that maps an element's local box
// (origin at its top-left, size width×height) into its parent frame.
// The element is scaled, then rotated about the center of its scaled box,
// then moved so that the unrotated top-left sits at (left, top).
func ObjectTransform(left, top, width, height, scaleX, scaleY, angle float64) Matrix {
	cx := left + width*scaleX/2
	cy := top + height*scaleY/2
	return Translate(cx, cy).
		Multiply(Rotate(angle)).
		Multiply(Translate(-width*scaleX/2, -height*scaleY/2)).
		Multiply(Scale(scaleX, scaleY))
}

// Multiply chains two element transforms. The result maps a point through
// other and then through m, so the viewport transform goes on the left of
// an element's.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint maps a point from element-local space into the frame m
// targets, e.g. a corner of an object's box into scene pixels.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Invert maps parent-frame points back into an element's local box. An
// element scaled to zero width or height has no inverse; Identity is
// returned then.
func (m Matrix) Invert() Matrix {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}
}

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// SVG formats m as an SVG transform attribute value.
func (m Matrix) SVG() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return "matrix(" + f(m.A) + " " + f(m.D) + " " + f(m.B) + " " + f(m.E) + " " + f(m.C) + " " + f(m.F) + ")"
}
