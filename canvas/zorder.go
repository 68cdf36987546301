package canvas

import "slices"

// BringToFront moves id to the end of the paint order.
func (m *Manager) BringToFront(id string) bool {
	return m.reorder(id, func(_, n int) int { return n - 1 })
}

// SendToBack moves id to the start of the paint order.
func (m *Manager) SendToBack(id string) bool {
	return m.reorder(id, func(int, int) int { return 0 })
}

// BringForward moves id one step toward the front.
func (m *Manager) BringForward(id string) bool {
	return m.reorder(id, func(i, n int) int { return min(i+1, n-1) })
}

// SendBackward moves id one step toward the back.
func (m *Manager) SendBackward(id string) bool {
	return m.reorder(id, func(i, _ int) int { return max(i-1, 0) })
}

// reorder moves id to the index chosen by target. Moves that would leave
// the object where it is, including at the sequence boundaries, are
// no-ops. It reports whether the order changed.
func (m *Manager) reorder(id string, target func(i, n int) int) bool {
	m.mu.Lock()
	defer m.unlock()
	i := m.scene.Index(id)
	if i < 0 {
		return false
	}
	j := target(i, len(m.scene.Objects))
	if j == i {
		return false
	}
	o := m.scene.Objects[i]
	m.scene.Objects = slices.Insert(slices.Delete(m.scene.Objects, i, i+1), j, o)
	m.markDirty()
	return true
}

// Order returns the top-level object IDs in paint order, back to front.
func (m *Manager) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.scene.Objects))
	for k, o := range m.scene.Objects {
		ids[k] = o.ID
	}
	return ids
}
