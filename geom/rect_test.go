package geom

import (
	"math"
	"testing"
)

func TestBoundsScaled(t *testing.T) {
	got := Bounds(10, 20, 100, 50, 2, 0.5)
	want := Rect{X: 10, Y: 20, Width: 200, Height: 25}
	if got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
}

func TestRotatedBounds(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}

	tests := []struct {
		name  string
		angle float64
		want  Rect
	}{
		{"unrotated", 0, r},
		{"full turn", 360, r},
		{"quarter turn swaps extents about center", 90, Rect{X: 25, Y: -25, Width: 50, Height: 100}},
		{"half turn", 180, r},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotatedBounds(r, tt.angle)
			if !rectNear(got, tt.want, 1e-9) {
				t.Errorf("RotatedBounds(%v) = %+v, want %+v", tt.angle, got, tt.want)
			}
		})
	}

	diag := RotatedBounds(Rect{Width: 10, Height: 10}, 45)
	side := 10 * math.Sqrt2
	if math.Abs(diag.Width-side) > 1e-9 || math.Abs(diag.Height-side) > 1e-9 {
		t.Errorf("RotatedBounds(45) size = %vx%v, want %v", diag.Width, diag.Height, side)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(10, 10), true},
		{Pt(30, 20), true},
		{Pt(20, 15), true},
		{Pt(9.99, 15), false},
		{Pt(20, 20.01), false},
	}
	for _, tt := range tests {
		if got := PointInRect(tt.p, r); got != tt.want {
			t.Errorf("PointInRect(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 20, Y: -5, Width: 5, Height: 5}
	want := Rect{X: 0, Y: -5, Width: 25, Height: 15}
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty.Union(b) = %+v, want %+v", got, b)
	}
}

func TestObjectTransform(t *testing.T) {
	m := ObjectTransform(10, 20, 40, 20, 1, 1, 0)
	if got := m.TransformPoint(Pt(0, 0)); !got.Near(Pt(10, 20), eps) {
		t.Errorf("origin maps to %v, want (10, 20)", got)
	}

	m = ObjectTransform(0, 0, 40, 20, 1, 1, 180)
	if got := m.TransformPoint(Pt(0, 0)); !got.Near(Pt(40, 20), eps) {
		t.Errorf("rotated origin maps to %v, want (40, 20)", got)
	}
	if got := m.Invert().TransformPoint(Pt(40, 20)); !got.Near(Pt(0, 0), eps) {
		t.Errorf("Invert() maps back to %v", got)
	}
}

func TestObjectTransformChain(t *testing.T) {
	obj := ObjectTransform(10, 10, 20, 10, 2, 1, 90)
	view := Translate(5, 5).Multiply(Scale(2, 2))

	local := Pt(20, 10)
	want := view.TransformPoint(obj.TransformPoint(local))
	if got := view.Multiply(obj).TransformPoint(local); !got.Near(want, eps) {
		t.Errorf("chained transform maps to %v, want %v", got, want)
	}
	if got := view.Multiply(obj).Invert().TransformPoint(want); !got.Near(local, eps) {
		t.Errorf("Invert() maps back to %v, want %v", got, local)
	}

	flat := ObjectTransform(0, 0, 20, 10, 0, 1, 0)
	if got := flat.Invert(); !got.IsIdentity() {
		t.Errorf("Invert() of zero-width element = %+v, want identity", got)
	}
}

func rectNear(a, b Rect, e float64) bool {
	return math.Abs(a.X-b.X) <= e && math.Abs(a.Y-b.Y) <= e &&
		math.Abs(a.Width-b.Width) <= e && math.Abs(a.Height-b.Height) <= e
}
