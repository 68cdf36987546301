package canvas

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/gogpu/labelkit/model"
)

// Edge is an alignment target.
type Edge string

// Alignment edges.
const (
	AlignLeft   Edge = "left"
	AlignCenter Edge = "center"
	AlignRight  Edge = "right"
	AlignTop    Edge = "top"
	AlignMiddle Edge = "middle"
	AlignBottom Edge = "bottom"
)

// ParseEdge validates an alignment edge name.
func ParseEdge(s string) (Edge, error) {
	switch e := Edge(s); e {
	case AlignLeft, AlignCenter, AlignRight, AlignTop, AlignMiddle, AlignBottom:
		return e, nil
	}
	return "", fmt.Errorf("canvas: unknown alignment edge %q", s)
}

// Axis is a distribution direction.
type Axis string

// Distribution axes.
const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// AlignSelected aligns the selection; see AlignObjects.
func (m *Manager) AlignSelected(edge Edge) int {
	return m.AlignObjects(m.Selection().IDs, edge)
}

// AlignObjects moves each listed object so that its edge or center matches
// the same edge or center of the canvas. Objects are aligned to the canvas,
// not to each other or to the selection's bounds. The visual (rotated)
// bounds are what get aligned. Fewer than two objects is a no-op; locked
// objects are skipped with a warning. It returns the number moved.
func (m *Manager) AlignObjects(ids []string, edge Edge) int {
	m.mu.Lock()
	defer m.unlock()
	objs := m.lookup(ids)
	if len(objs) < 2 {
		return 0
	}
	canvas := m.scene.Bounds()
	n := 0
	for _, o := range objs {
		if o.Locked {
			m.warn(WarnLocked, o.ID, "locked object cannot be aligned")
			continue
		}
		b := o.RotatedBounds()
		var dx, dy float64
		switch edge {
		case AlignLeft:
			dx = canvas.Left() - b.Left()
		case AlignCenter:
			dx = canvas.Center().X - b.Center().X
		case AlignRight:
			dx = canvas.Right() - b.Right()
		case AlignTop:
			dy = canvas.Top() - b.Top()
		case AlignMiddle:
			dy = canvas.Center().Y - b.Center().Y
		case AlignBottom:
			dy = canvas.Bottom() - b.Bottom()
		default:
			return n
		}
		if translate(o, dx, dy) {
			m.enforce(o)
			n++
		}
	}
	if n > 0 {
		m.markDirty()
	}
	return n
}

// DistributeSelected distributes the selection; see DistributeObjects.
func (m *Manager) DistributeSelected(axis Axis) int {
	return m.DistributeObjects(m.Selection().IDs, axis)
}

// DistributeObjects orders the listed objects by their leading edge along
// axis, keeps the first and last in place and spaces the leading edges of
// the others at equal intervals between them. Fewer than three objects is
// a no-op. Locked objects keep their place in the ordering but are not
// moved. It returns the number moved.
func (m *Manager) DistributeObjects(ids []string, axis Axis) int {
	m.mu.Lock()
	defer m.unlock()
	objs := m.lookup(ids)
	if len(objs) < 3 {
		return 0
	}
	lead := func(o *model.Object) float64 {
		b := o.RotatedBounds()
		if axis == Vertical {
			return b.Top()
		}
		return b.Left()
	}
	slices.SortStableFunc(objs, func(a, b *model.Object) int {
		switch la, lb := lead(a), lead(b); {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})

	pos := floats.Span(make([]float64, len(objs)), lead(objs[0]), lead(objs[len(objs)-1]))
	n := 0
	for i := 1; i < len(objs)-1; i++ {
		o := objs[i]
		if o.Locked {
			m.warn(WarnLocked, o.ID, "locked object cannot be distributed")
			continue
		}
		d := pos[i] - lead(o)
		var moved bool
		if axis == Vertical {
			moved = translate(o, 0, d)
		} else {
			moved = translate(o, d, 0)
		}
		if moved {
			m.enforce(o)
			n++
		}
	}
	if n > 0 {
		m.markDirty()
	}
	return n
}

// lookup returns the distinct top-level objects named by ids, in the order
// given. Unknown IDs are dropped.
func (m *Manager) lookup(ids []string) []*model.Object {
	var out []*model.Object
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if o := m.scene.Find(id); o != nil {
			out = append(out, o)
		}
	}
	return out
}
