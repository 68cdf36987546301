package grid

import (
	"math"

	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
)

// SnapValue rounds v to the nearest multiple of step. A non-positive step
// leaves v unchanged.
func SnapValue(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// SnapPoint rounds both coordinates of p to the nearest grid intersection.
// It always applies and backs explicit "snap now" commands.
func SnapPoint(p geom.Point, gridSize float64) geom.Point {
	return geom.Point{X: SnapValue(p.X, gridSize), Y: SnapValue(p.Y, gridSize)}
}

// snapWithin returns the nearest grid value to v and whether it lies within
// tolerance.
func snapWithin(v, step, tolerance float64) (float64, bool) {
	if step <= 0 {
		return v, false
	}
	s := SnapValue(v, step)
	return s, math.Abs(v-s) <= tolerance
}

// SnapObject pulls the object's left and top onto the grid when each is
// already within c.SnapTolerance of a grid line; otherwise the object
// stays where it was dropped. Axes are independent and movement locks are
// honoured. It reports whether the object moved.
func SnapObject(o *model.Object, c Config) bool {
	if !c.SnapToGrid {
		return false
	}
	step := c.Step()
	moved := false
	if !o.Constraints.LockMovementX {
		if x, ok := snapWithin(o.Left, step, c.SnapTolerance); ok && x != o.Left {
			o.Left = x
			moved = true
		}
	}
	if !o.Constraints.LockMovementY {
		if y, ok := snapWithin(o.Top, step, c.SnapTolerance); ok && y != o.Top {
			o.Top = y
			moved = true
		}
	}
	if moved {
		o.Touch()
	}
	return moved
}

// ForceSnapObject moves the object's left and top onto the nearest grid
// intersection regardless of distance. Movement locks are honoured.
func ForceSnapObject(o *model.Object, gridSize float64) bool {
	p := SnapPoint(geom.Pt(o.Left, o.Top), gridSize)
	moved := false
	if !o.Constraints.LockMovementX && p.X != o.Left {
		o.Left = p.X
		moved = true
	}
	if !o.Constraints.LockMovementY && p.Y != o.Top {
		o.Top = p.Y
		moved = true
	}
	if moved {
		o.Touch()
	}
	return moved
}

// SnapToObjectEdges clamps p.X to a candidate's left or right edge, and
// p.Y to its top or bottom edge, when within tolerance. Axes are snapped
// independently. When several candidates match on an axis the last one in
// the slice wins; within one candidate the nearer edge wins.
func SnapToObjectEdges(p geom.Point, candidates []geom.Rect, tolerance float64) geom.Point {
	out := p
	for _, r := range candidates {
		if x, ok := nearestEdge(p.X, r.Left(), r.Right(), tolerance); ok {
			out.X = x
		}
		if y, ok := nearestEdge(p.Y, r.Top(), r.Bottom(), tolerance); ok {
			out.Y = y
		}
	}
	return out
}

func nearestEdge(v, lo, hi, tolerance float64) (float64, bool) {
	dl, dh := math.Abs(v-lo), math.Abs(v-hi)
	switch {
	case dl <= tolerance && dl <= dh:
		return lo, true
	case dh <= tolerance:
		return hi, true
	}
	return v, false
}
