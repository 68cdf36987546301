package canvas

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/grid"
	"github.com/gogpu/labelkit/model"
)

// ErrDuplicateID is returned when an added object's ID is already in use.
var ErrDuplicateID = errors.New("canvas: duplicate object id")

// AddObject validates o and appends it on top of the scene. Invalid
// objects never enter the scene.
func (m *Manager) AddObject(o *model.Object) error {
	if err := o.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.unlock()
	if m.scene.HasID(o.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
	}
	m.insert(o)
	return nil
}

// insert appends o, enforcing constraints.
func (m *Manager) insert(o *model.Object) {
	m.enforce(o)
	m.scene.Objects = append(m.scene.Objects, o)
	m.markDirty()
	labelkit.Logger().Debug("canvas: object added", "object", o.ID, "type", string(o.Type))
}

// RemoveObject deletes the top-level object id. Locked objects are kept.
func (m *Manager) RemoveObject(id string) bool {
	m.mu.Lock()
	defer m.unlock()
	i := m.scene.Index(id)
	if i < 0 {
		return false
	}
	if !m.scene.Objects[i].CanDelete() {
		m.warn(WarnLocked, id, "locked object cannot be deleted")
		return false
	}
	m.scene.Objects = slices.Delete(m.scene.Objects, i, i+1)
	m.sel.prune(m.scene)
	m.markDirty()
	return true
}

// UpdateObject applies fn to the top-level object id. If the result fails
// validation the change is rolled back and the validation error returned.
// Locked objects and unknown IDs are left alone.
func (m *Manager) UpdateObject(id string, fn func(o *model.Object)) error {
	m.mu.Lock()
	defer m.unlock()
	i := m.scene.Index(id)
	if i < 0 {
		return nil
	}
	orig := m.scene.Objects[i]
	if orig.Locked {
		m.warn(WarnLocked, id, "locked object cannot be modified")
		return nil
	}
	o := orig.Clone()
	fn(o)
	o.ID = orig.ID
	if err := o.Validate(); err != nil {
		return err
	}
	o.Touch()
	m.enforce(o)
	m.scene.Objects[i] = o
	m.markDirty()
	return nil
}

// DeleteSelected removes every selected object that may be deleted and
// returns how many were removed.
func (m *Manager) DeleteSelected() int {
	m.mu.Lock()
	defer m.unlock()
	if len(m.sel.ids) == 0 {
		return 0
	}
	n := 0
	m.scene.Objects = slices.DeleteFunc(m.scene.Objects, func(o *model.Object) bool {
		if !m.sel.has(o.ID) {
			return false
		}
		if !o.CanDelete() {
			m.warn(WarnLocked, o.ID, "locked object cannot be deleted")
			return false
		}
		n++
		return true
	})
	m.sel.prune(m.scene)
	if n > 0 {
		m.markDirty()
	}
	return n
}

// DuplicateSelected copies every selected object with fresh IDs, offset by
// the duplicate offset on both axes, appends the copies on top and selects
// them. It returns the new IDs.
func (m *Manager) DuplicateSelected() []string {
	m.mu.Lock()
	defer m.unlock()
	src := m.selected()
	if len(src) == 0 {
		return nil
	}
	ids := make([]string, 0, len(src))
	for _, o := range src {
		d := o.Duplicate()
		d.Left += m.opts.duplicateOffset
		d.Top += m.opts.duplicateOffset
		m.enforce(d)
		m.scene.Objects = append(m.scene.Objects, d)
		ids = append(ids, d.ID)
	}
	m.sel.set(slices.Clone(ids))
	m.markDirty()
	return ids
}

// MoveSelected nudges the selection by (dx, dy) canvas units, honouring
// movement locks.
func (m *Manager) MoveSelected(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	m.mu.Lock()
	defer m.unlock()
	moved := false
	for _, o := range m.selected() {
		if o.Locked {
			m.warn(WarnLocked, o.ID, "locked object cannot be moved")
			continue
		}
		if translate(o, dx, dy) {
			m.enforce(o)
			moved = true
		}
	}
	if moved {
		m.markDirty()
	}
}

// translate moves o by (dx, dy) on the axes it may move along.
func translate(o *model.Object, dx, dy float64) bool {
	moved := false
	if dx != 0 && !o.Constraints.LockMovementX {
		o.Left += dx
		moved = true
	}
	if dy != 0 && !o.Constraints.LockMovementY {
		o.Top += dy
		moved = true
	}
	if moved {
		o.Touch()
	}
	return moved
}

// SnapSelectedToGrid moves each selected object's top-left onto the
// nearest grid intersection regardless of distance.
func (m *Manager) SnapSelectedToGrid() {
	m.mu.Lock()
	defer m.unlock()
	size := m.gridConfig().Step()
	moved := false
	for _, o := range m.selected() {
		if o.Locked {
			m.warn(WarnLocked, o.ID, "locked object cannot be moved")
			continue
		}
		if grid.ForceSnapObject(o, size) {
			m.enforce(o)
			moved = true
		}
	}
	if moved {
		m.markDirty()
	}
}

// LockObject locks or unlocks id: movement, scaling and rotation locks are
// set together and the object becomes unselectable while locked.
func (m *Manager) LockObject(id string, locked bool) {
	m.mu.Lock()
	defer m.unlock()
	o := m.scene.Find(id)
	if o == nil || o.Locked == locked {
		return
	}
	o.SetLocked(locked)
	m.markDirty()
}

// SetObjectVisibility shows or hides id without changing selectability.
func (m *Manager) SetObjectVisibility(id string, visible bool) {
	m.mu.Lock()
	defer m.unlock()
	o := m.scene.Find(id)
	if o == nil || o.Visible == visible {
		return
	}
	o.Visible = visible
	o.Touch()
	m.markDirty()
}

// SetLayer sets the layer-panel ordering hint of id. Paint order is not
// affected.
func (m *Manager) SetLayer(id string, layer int) {
	m.mu.Lock()
	defer m.unlock()
	o := m.scene.Find(id)
	if o == nil || o.Layer == layer {
		return
	}
	o.Layer = layer
	o.Touch()
	m.markDirty()
}

// SetBackground sets the canvas background color and image. A color the
// renderers do not understand is rejected with a warning.
func (m *Manager) SetBackground(color, image string) {
	m.mu.Lock()
	defer m.unlock()
	if !model.IsColor(color) {
		m.warn(WarnInvalid, "", "background %q is not a color", color)
		return
	}
	if m.scene.BackgroundColor == color && m.scene.BackgroundImage == image {
		return
	}
	m.scene.BackgroundColor = color
	m.scene.BackgroundImage = image
	m.markDirty()
}

// ResizeScene changes the canvas size. Objects are not moved; objects that
// must stay inside the canvas are clamped.
func (m *Manager) ResizeScene(width, height float64) error {
	if !finite(width) || !finite(height) || width <= 0 || height <= 0 {
		return &model.ValidationError{Field: "width/height", Reason: "must be positive and finite"}
	}
	m.mu.Lock()
	defer m.unlock()
	if m.scene.Width == width && m.scene.Height == height {
		return nil
	}
	m.scene.Width, m.scene.Height = width, height
	for _, o := range m.scene.Objects {
		if o.Constraints.StayInCanvas {
			m.checkBounds(o)
		}
	}
	m.markDirty()
	return nil
}
