// Package canvas is the scene manager: a mutable controller over one Scene
// plus its ephemeral selection, viewport and pointer interaction.
//
// Every operation is safe for concurrent use. Mutations that cannot apply
// (empty selection, unknown ID, boundary position) are no-ops rather than
// errors. Locked targets and canvas-bounds violations produce Warnings,
// never errors. Any effective mutation marks the manager dirty.
package canvas

import (
	"fmt"
	"sync"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/grid"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/ruler"
)

// Manager owns one scene for an editing session.
type Manager struct {
	mu sync.Mutex

	scene *model.Scene
	sel   selection
	vp    geom.Viewport
	// viewW and viewH are the on-screen viewport size in pixels.
	viewW, viewH float64

	act   *interaction
	dirty bool

	opts    options
	queued  []Warning
	pending []Warning
}

// New returns a manager over scene. A nil scene starts an empty 400×300
// pixel canvas.
func New(scene *model.Scene, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if scene == nil {
		scene = model.NewScene(400, 300, ruler.Pixels)
	}
	return &Manager{
		scene: scene,
		vp:    geom.DefaultViewport(),
		opts:  o,
	}
}

// unlock releases the manager and then delivers warnings raised while it
// was held.
func (m *Manager) unlock() {
	ws := m.pending
	m.pending = nil
	m.mu.Unlock()
	if m.opts.onWarning == nil {
		return
	}
	for _, w := range ws {
		m.opts.onWarning(w)
	}
}

func (m *Manager) warn(kind WarningKind, id, format string, args ...any) {
	w := Warning{Kind: kind, ObjectID: id, Message: fmt.Sprintf(format, args...)}
	labelkit.Logger().Warn("canvas: "+w.Message, "kind", string(kind), "object", id)
	m.pending = append(m.pending, w)
	if len(m.queued) >= maxQueuedWarnings {
		m.queued = m.queued[1:]
	}
	m.queued = append(m.queued, w)
}

func (m *Manager) markDirty() {
	m.dirty = true
	m.scene.Touch()
}

// Warnings returns and clears the warnings raised since the last call.
func (m *Manager) Warnings() []Warning {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.queued
	m.queued = nil
	return ws
}

// Scene returns a deep copy of the current scene.
func (m *Manager) Scene() *model.Scene {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scene.Clone()
}

// Snapshot returns a deep copy of the scene for export. The copy is taken
// under the manager's lock, so no mutation is half-applied in it.
func (m *Manager) Snapshot() *model.Scene {
	return m.Scene()
}

// Object returns a copy of the top-level object id, or nil.
func (m *Manager) Object(id string) *model.Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scene.Find(id).Clone()
}

// IsDirty reports whether the scene changed since it was loaded or last
// marked clean.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// MarkClean clears the dirty flag, typically after a successful save.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = false
}

// GetSceneJSON encodes the current scene in the wire format.
func (m *Manager) GetSceneJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return codec.Marshal(m.scene)
}

// LoadFromJSON replaces the scene with the one encoded in data. On error
// the current scene is left untouched. A successful load clears the
// selection, ends any interaction and leaves the manager clean.
func (m *Manager) LoadFromJSON(data []byte) error {
	s, err := codec.Unmarshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.unlock()
	m.replace(s)
	m.dirty = false
	labelkit.Logger().Info("canvas: scene loaded", "scene", s.ID, "objects", len(s.Objects))
	return nil
}

// replace swaps in a new scene and resets the ephemeral state.
func (m *Manager) replace(s *model.Scene) {
	m.scene = s
	m.sel = selection{}
	m.act = nil
}

// gridConfig returns the snapping configuration with the scene's own grid
// settings applied.
func (m *Manager) gridConfig() grid.Config {
	c := m.opts.grid
	if m.scene.GridSize > 0 {
		c.Size = m.scene.GridSize
	}
	c.SnapToGrid = c.SnapToGrid && m.scene.SnapToGrid
	return c
}

// SetGrid replaces the grid configuration used for snapping and copies its
// size and snap flag into the scene.
func (m *Manager) SetGrid(c grid.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.unlock()
	m.opts.grid = c
	if m.scene.GridSize != c.Size || m.scene.SnapToGrid != c.SnapToGrid || m.scene.ShowGrid != c.Enabled {
		m.scene.GridSize = c.Size
		m.scene.SnapToGrid = c.SnapToGrid
		m.scene.ShowGrid = c.Enabled
		m.markDirty()
	}
	return nil
}

// Grid returns the effective grid configuration.
func (m *Manager) Grid() grid.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.gridConfig()
	c.Enabled = c.Enabled && m.scene.ShowGrid
	return c
}

// GridGeometry returns the grid tile to paint at the current zoom.
func (m *Manager) GridGeometry() grid.Tile {
	c := m.Grid()
	return grid.ComputeGeometry(c, m.Viewport().Zoom)
}
