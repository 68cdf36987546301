package geom

// Viewport describes how canvas space is presented on screen.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}

// DefaultViewport returns an unzoomed, unpanned viewport.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// Pan returns the pan offset as a point.
func (v Viewport) Pan() Point {
	return Point{X: v.PanX, Y: v.PanY}
}

// Matrix returns the canvas-to-screen transform.
func (v Viewport) Matrix() Matrix {
	return Translate(v.PanX, v.PanY).Multiply(Scale(v.Zoom, v.Zoom))
}

// CanvasToScreen maps a canvas-space point to screen pixels.
func CanvasToScreen(p Point, v Viewport) Point {
	return Point{X: p.X*v.Zoom + v.PanX, Y: p.Y*v.Zoom + v.PanY}
}

// ScreenToCanvas maps a screen point back to canvas space.
// It is the exact inverse of CanvasToScreen; no rounding is applied.
// A zero zoom yields the pan-relative point unchanged.
func ScreenToCanvas(p Point, v Viewport) Point {
	if v.Zoom == 0 {
		return Point{X: p.X - v.PanX, Y: p.Y - v.PanY}
	}
	return Point{X: (p.X - v.PanX) / v.Zoom, Y: (p.Y - v.PanY) / v.Zoom}
}
