package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the smallest rect containing all points.
// It returns the zero Rect for an empty slice.
func RectFromPoints(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Left returns the X coordinate of the left edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Top returns the Y coordinate of the top edge.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsEmpty reports whether the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return r.box().Contains(p.vec())
}

// Union returns the smallest rect containing both r and other.
// Empty rects are ignored.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return fromBox(r.box().Union(other.box()))
}

// Inset shrinks the rect by d on every side. Negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Corners returns the four corners clockwise from the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

func (r Rect) box() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: r.X, Y: r.Y},
		Max: r2.Vec{X: r.X + r.Width, Y: r.Y + r.Height},
	}
}

func fromBox(b r2.Box) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Max.X - b.Min.X, Height: b.Max.Y - b.Min.Y}
}

// Bounds returns the axis-aligned box of an element placed at (left, top)
// with an intrinsic size scaled by (scaleX, scaleY). Rotation is ignored.
func Bounds(left, top, width, height, scaleX, scaleY float64) Rect {
	return Rect{X: left, Y: top, Width: width * scaleX, Height: height * scaleY}
}

// RotatedBounds returns the axis-aligned box enclosing r after rotating it
// by angle degrees about its center.
func RotatedBounds(r Rect, angle float64) Rect {
	if NormalizeDegrees(angle) == 0 {
		return r
	}
	c := r.Center()
	corners := r.Corners()
	pts := make([]Point, 0, len(corners))
	for _, p := range corners {
		pts = append(pts, RotatePoint(p, c, angle))
	}
	return RectFromPoints(pts...)
}

// PointInRect reports whether p lies inside r, edges included.
func PointInRect(p Point, r Rect) bool {
	return r.Contains(p)
}
