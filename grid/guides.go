package grid

import (
	"math"

	"github.com/gogpu/labelkit/geom"
)

// Orientation of a guide line.
type Orientation string

// Guide orientations.
const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// GuideKind says which features aligned.
type GuideKind string

// Guide kinds.
const (
	GuideEdge   GuideKind = "edge"
	GuideCenter GuideKind = "center"
)

// Guide is a visual alignment hint produced while snapping.
type Guide struct {
	Orientation Orientation `json:"orientation"`
	Kind        GuideKind   `json:"kind"`
	// Position is the X of a vertical guide or the Y of a horizontal one.
	Position float64    `json:"position"`
	From     geom.Point `json:"from"`
	To       geom.Point `json:"to"`
}

// GuideOptions selects which features take part in smart-guide snapping.
type GuideOptions struct {
	Tolerance float64
	Edges     bool
	Centers   bool
}

type axisCandidate struct {
	delta float64
	dist  float64
	guide Guide
	ok    bool
}

func (a *axisCandidate) consider(delta, tolerance float64, g Guide) {
	d := math.Abs(delta)
	if d > tolerance {
		return
	}
	if !a.ok || d < a.dist {
		*a = axisCandidate{delta: delta, dist: d, guide: g, ok: true}
	}
}

// SnapRectToObjects aligns a moving rect with neighbour rects: edges to
// edges (including abutting) and centers to centers, each axis
// independently, choosing the closest match within tolerance. It returns
// the adjusted rect and the guides to display.
func SnapRectToObjects(moving geom.Rect, anchors []geom.Rect, opts GuideOptions) (geom.Rect, []Guide) {
	var bx, by axisCandidate
	mc := moving.Center()

	for _, a := range anchors {
		ac := a.Center()
		if opts.Edges {
			for _, pair := range [][2]float64{
				{moving.Left(), a.Left()}, {moving.Right(), a.Right()},
				{moving.Left(), a.Right()}, {moving.Right(), a.Left()},
			} {
				bx.consider(pair[0]-pair[1], opts.Tolerance, verticalGuide(pair[1], moving, a, GuideEdge))
			}
			for _, pair := range [][2]float64{
				{moving.Top(), a.Top()}, {moving.Bottom(), a.Bottom()},
				{moving.Top(), a.Bottom()}, {moving.Bottom(), a.Top()},
			} {
				by.consider(pair[0]-pair[1], opts.Tolerance, horizontalGuide(pair[1], moving, a, GuideEdge))
			}
		}
		if opts.Centers {
			bx.consider(mc.X-ac.X, opts.Tolerance, verticalGuide(ac.X, moving, a, GuideCenter))
			by.consider(mc.Y-ac.Y, opts.Tolerance, horizontalGuide(ac.Y, moving, a, GuideCenter))
		}
	}

	snapped := moving
	var guides []Guide
	if bx.ok {
		snapped.X -= bx.delta
		guides = append(guides, bx.guide)
	}
	if by.ok {
		snapped.Y -= by.delta
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func verticalGuide(x float64, a, b geom.Rect, kind GuideKind) Guide {
	return Guide{
		Orientation: Vertical,
		Kind:        kind,
		Position:    x,
		From:        geom.Pt(x, math.Min(a.Top(), b.Top())),
		To:          geom.Pt(x, math.Max(a.Bottom(), b.Bottom())),
	}
}

func horizontalGuide(y float64, a, b geom.Rect, kind GuideKind) Guide {
	return Guide{
		Orientation: Horizontal,
		Kind:        kind,
		Position:    y,
		From:        geom.Pt(math.Min(a.Left(), b.Left()), y),
		To:          geom.Pt(math.Max(a.Right(), b.Right()), y),
	}
}
