package canvas

import (
	"slices"

	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
)

// SelectionType describes how many objects are selected.
type SelectionType string

// Selection types.
const (
	SelectionNone     SelectionType = "none"
	SelectionSingle   SelectionType = "single"
	SelectionMultiple SelectionType = "multiple"
)

// Capabilities are the manipulations allowed on the whole selection: each
// flag is the AND of the flag over every selected object.
type Capabilities struct {
	CanMove   bool `json:"canMove"`
	CanResize bool `json:"canResize"`
	CanRotate bool `json:"canRotate"`
	CanDelete bool `json:"canDelete"`
}

// Selection is a read-only view of the current selection.
type Selection struct {
	IDs          []string      `json:"selectedObjectIds"`
	ActiveID     string        `json:"activeObjectId,omitempty"`
	Type         SelectionType `json:"selectionType"`
	Capabilities Capabilities  `json:"capabilities"`
}

// selection holds selected IDs in selection order.
type selection struct {
	ids    []string
	active string
}

func (s *selection) has(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *selection) set(ids []string) {
	s.ids = ids
	s.active = ""
	if len(ids) > 0 {
		s.active = ids[len(ids)-1]
	}
}

// prune drops IDs that are no longer top-level objects of scene.
func (s *selection) prune(scene *model.Scene) {
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return !scene.HasID(id) })
	if !slices.Contains(s.ids, s.active) {
		s.active = ""
		if len(s.ids) > 0 {
			s.active = s.ids[len(s.ids)-1]
		}
	}
}

// selected returns the selected objects in paint order.
func (m *Manager) selected() []*model.Object {
	var out []*model.Object
	for _, o := range m.scene.Objects {
		if m.sel.has(o.ID) {
			out = append(out, o)
		}
	}
	return out
}

// SelectObject makes id the sole, active selection. Unknown or locked
// objects leave the selection unchanged.
func (m *Manager) SelectObject(id string) bool {
	m.mu.Lock()
	defer m.unlock()
	o := m.scene.Find(id)
	if o == nil {
		return false
	}
	if !o.Selectable {
		m.warn(WarnLocked, id, "object is not selectable")
		return false
	}
	m.sel.set([]string{id})
	return true
}

// SelectObjects replaces the selection with every known, selectable ID
// in ids. The last one becomes active. It returns the number selected.
func (m *Manager) SelectObjects(ids []string) int {
	m.mu.Lock()
	defer m.unlock()
	var keep []string
	for _, id := range ids {
		o := m.scene.Find(id)
		if o == nil || slices.Contains(keep, id) {
			continue
		}
		if !o.Selectable {
			m.warn(WarnLocked, id, "object is not selectable")
			continue
		}
		keep = append(keep, id)
	}
	m.sel.set(keep)
	return len(keep)
}

// SelectAll selects every selectable, visible object.
func (m *Manager) SelectAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, o := range m.scene.Objects {
		if o.Selectable && o.Visible {
			ids = append(ids, o.ID)
		}
	}
	m.sel.set(ids)
	return len(ids)
}

// ClearSelection deselects everything.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel = selection{}
}

// Selection returns the current selection and its capability flags.
func (m *Manager) Selection() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectionView()
}

func (m *Manager) selectionView() Selection {
	v := Selection{
		IDs:      slices.Clone(m.sel.ids),
		ActiveID: m.sel.active,
		Type:     SelectionNone,
	}
	switch len(v.IDs) {
	case 0:
		return v
	case 1:
		v.Type = SelectionSingle
	default:
		v.Type = SelectionMultiple
	}
	v.Capabilities = Capabilities{CanMove: true, CanResize: true, CanRotate: true, CanDelete: true}
	for _, id := range v.IDs {
		o := m.scene.Find(id)
		if o == nil {
			continue
		}
		v.Capabilities.CanMove = v.Capabilities.CanMove && o.CanMove()
		v.Capabilities.CanResize = v.Capabilities.CanResize && o.CanResize()
		v.Capabilities.CanRotate = v.Capabilities.CanRotate && o.CanRotate()
		v.Capabilities.CanDelete = v.Capabilities.CanDelete && o.CanDelete()
	}
	return v
}

// ObjectsAt returns the IDs of visible top-level objects whose unrotated
// bounds contain the canvas point p, front-most first.
func (m *Manager) ObjectsAt(p geom.Point) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for i := len(m.scene.Objects) - 1; i >= 0; i-- {
		o := m.scene.Objects[i]
		if o.Visible && o.ContainsPoint(p) {
			ids = append(ids, o.ID)
		}
	}
	return ids
}
