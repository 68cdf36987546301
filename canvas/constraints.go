package canvas

import (
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
)

// clampSize keeps the scaled size within the object's min/max constraints.
// It reports whether anything changed.
func clampSize(o *model.Object) bool {
	c := o.Constraints
	changed := false
	clamp := func(scale *float64, size, lo, hi float64) {
		if size <= 0 {
			return
		}
		s := *scale
		if lo > 0 && size*s < lo {
			s = lo / size
		}
		if hi > 0 && size*s > hi {
			s = hi / size
		}
		if s != *scale {
			*scale = s
			changed = true
		}
	}
	clamp(&o.ScaleX, o.Width, c.MinWidth, c.MaxWidth)
	clamp(&o.ScaleY, o.Height, c.MinHeight, c.MaxHeight)
	return changed
}

// fitInside returns the translation that brings r inside bounds. When r is
// larger than bounds on an axis, its top-left edge is aligned instead.
func fitInside(r, bounds geom.Rect) (dx, dy float64) {
	switch {
	case r.Width > bounds.Width || r.Left() < bounds.Left():
		dx = bounds.Left() - r.Left()
	case r.Right() > bounds.Right():
		dx = bounds.Right() - r.Right()
	}
	switch {
	case r.Height > bounds.Height || r.Top() < bounds.Top():
		dy = bounds.Top() - r.Top()
	case r.Bottom() > bounds.Bottom():
		dy = bounds.Bottom() - r.Bottom()
	}
	return dx, dy
}

// checkBounds clamps objects that must stay in the canvas and warns about
// any object that extends past it.
func (m *Manager) checkBounds(o *model.Object) {
	canvas := m.scene.Bounds()
	dx, dy := fitInside(o.RotatedBounds(), canvas)
	if dx == 0 && dy == 0 {
		return
	}
	if o.Constraints.StayInCanvas {
		o.Left += dx
		o.Top += dy
		m.warn(WarnClamped, o.ID, "object clamped to canvas bounds")
		return
	}
	m.warn(WarnOutOfBounds, o.ID, "object extends outside canvas bounds")
}

// enforce applies every geometric constraint to o.
func (m *Manager) enforce(o *model.Object) {
	if clampSize(o) {
		m.warn(WarnClamped, o.ID, "object size clamped to constraints")
	}
	m.checkBounds(o)
}
