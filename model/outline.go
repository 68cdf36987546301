package model

import (
	"math"

	"github.com/gogpu/labelkit/geom"
)

// starInnerRatio is the inner/outer radius ratio of star outlines.
const starInnerRatio = 0.5

// Outline returns the local-frame vertices of polygonal elements, in the
// unscaled Width×Height box. Other element types return nil.
func (o *Object) Outline() []geom.Point {
	w, h := o.Width, o.Height
	switch o.Type {
	case TypePolygon, TypeFreehand, TypeLine:
		return o.Points
	case TypeTriangle:
		return []geom.Point{{X: w / 2, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	case TypeDiamond:
		return []geom.Point{{X: w / 2, Y: 0}, {X: w, Y: h / 2}, {X: w / 2, Y: h}, {X: 0, Y: h / 2}}
	case TypeStar:
		return starOutline(w, h, 5)
	case TypeArrow:
		// shaft takes 60% of the width and a third of the height
		shaft := w * 0.6
		return []geom.Point{
			{X: 0, Y: h / 3}, {X: shaft, Y: h / 3}, {X: shaft, Y: 0},
			{X: w, Y: h / 2},
			{X: shaft, Y: h}, {X: shaft, Y: 2 * h / 3}, {X: 0, Y: 2 * h / 3},
		}
	}
	return nil
}

func starOutline(w, h float64, spikes int) []geom.Point {
	cx, cy := w/2, h/2
	pts := make([]geom.Point, 0, 2*spikes)
	for i := range 2 * spikes {
		r := 1.0
		if i%2 == 1 {
			r = starInnerRatio
		}
		// first spike points straight up
		a := -math.Pi/2 + float64(i)*math.Pi/float64(spikes)
		pts = append(pts, geom.Point{X: cx + r*cx*math.Cos(a), Y: cy + r*cy*math.Sin(a)})
	}
	return pts
}
