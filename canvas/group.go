package canvas

import (
	"slices"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
)

// GroupSelected wraps the selected objects in a new group placed at the
// paint position of the front-most member, and selects the group. Members
// keep their relative paint order. Fewer than two selected objects, or any
// locked member, makes it a no-op. It returns the group ID.
func (m *Manager) GroupSelected() string {
	m.mu.Lock()
	defer m.unlock()
	members := m.selected()
	if len(members) < 2 {
		return ""
	}
	for _, o := range members {
		if o.Locked {
			m.warn(WarnLocked, o.ID, "locked object cannot be grouped")
			return ""
		}
	}

	front := m.scene.Index(members[len(members)-1].ID)
	at := front - (len(members) - 1)
	m.scene.Objects = slices.DeleteFunc(m.scene.Objects, func(o *model.Object) bool {
		return m.sel.has(o.ID)
	})
	g := model.NewGroup(members)
	m.scene.Objects = slices.Insert(m.scene.Objects, at, g)
	m.sel.set([]string{g.ID})
	m.markDirty()
	labelkit.Logger().Debug("canvas: grouped", "group", g.ID, "members", len(members))
	return g.ID
}

// UngroupSelected dissolves the active group: its children return to the
// top level at the group's paint position, in their original order, with
// fresh IDs and with the group's transform folded into their own geometry.
// The children become the selection. It is a no-op unless the active
// object is a group. It returns the new child IDs.
func (m *Manager) UngroupSelected() []string {
	m.mu.Lock()
	defer m.unlock()
	i := m.scene.Index(m.sel.active)
	if i < 0 || !m.scene.Objects[i].IsGroup() {
		return nil
	}
	g := m.scene.Objects[i]
	if g.Locked {
		m.warn(WarnLocked, g.ID, "locked group cannot be ungrouped")
		return nil
	}

	children := make([]*model.Object, 0, len(g.Children))
	ids := make([]string, 0, len(g.Children))
	for _, c := range g.Children {
		d := c.Duplicate()
		d.CreatedAt = c.CreatedAt
		toParent(d, g)
		children = append(children, d)
		ids = append(ids, d.ID)
	}
	m.scene.Objects = slices.Replace(m.scene.Objects, i, i+1, children...)
	m.sel.set(slices.Clone(ids))
	m.markDirty()
	return ids
}

// toParent re-expresses child c, given in group g's local frame, in g's
// parent frame.
func toParent(c, g *model.Object) {
	sx, sy := c.ScaleX*g.ScaleX, c.ScaleY*g.ScaleY
	w, h := c.Width*c.ScaleX, c.Height*c.ScaleY
	center := g.Transform().TransformPoint(geom.Pt(c.Left+w/2, c.Top+h/2))
	c.ScaleX, c.ScaleY = sx, sy
	c.Angle = geom.NormalizeDegrees(c.Angle + g.Angle)
	c.Left = center.X - c.Width*sx/2
	c.Top = center.Y - c.Height*sy/2
	c.Touch()
}
