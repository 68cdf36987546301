package canvas

import (
	"errors"
	"math"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/grid"
	"github.com/gogpu/labelkit/model"
)

// State is the phase of a pointer interaction.
type State string

// Interaction states. Committing is only observable from inside the commit
// of EndInteraction; callers see idle before and after.
const (
	StateIdle       State = "idle"
	StateDragging   State = "dragging"
	StateCommitting State = "committing"
)

// Mode is what a pointer interaction does.
type Mode string

// Interaction modes.
const (
	ModeMove   Mode = "move"
	ModeScale  Mode = "scale"
	ModeRotate Mode = "rotate"
	ModePan    Mode = "pan"
)

// Interaction errors.
var (
	ErrInteractionActive = errors.New("canvas: interaction already in progress")
	ErrNoInteraction     = errors.New("canvas: no interaction in progress")
	ErrNothingSelected   = errors.New("canvas: nothing selected")
	ErrNotAllowed        = errors.New("canvas: selection does not allow this interaction")
	ErrInvalidPoint      = errors.New("canvas: pointer position is not finite")
)

// interaction is a drag in progress. Positions are screen pixels.
type interaction struct {
	mode  Mode
	state State
	start geom.Point
	last  geom.Point
	// origin holds the pre-drag geometry of each affected object.
	origin map[string]*model.Object
	pan    geom.Viewport
	// guides are the smart guides shown for the current move.
	guides []grid.Guide
}

// InteractionState returns the current phase and mode.
func (m *Manager) InteractionState() (State, Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.act == nil {
		return StateIdle, ""
	}
	return m.act.state, m.act.mode
}

// Guides returns the smart guides computed for the current move.
func (m *Manager) Guides() []grid.Guide {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.act == nil {
		return nil
	}
	return m.act.guides
}

// BeginInteraction starts a drag at the screen point p. Move, scale and
// rotate act on the selection (scale and rotate on the active object only);
// pan needs no selection.
func (m *Manager) BeginInteraction(mode Mode, p geom.Point) error {
	if !finitePoint(p) {
		return ErrInvalidPoint
	}
	m.mu.Lock()
	defer m.unlock()
	if m.act != nil {
		return ErrInteractionActive
	}
	act := &interaction{mode: mode, state: StateDragging, start: p, last: p, pan: m.vp}
	if mode != ModePan {
		targets := m.selected()
		if mode != ModeMove {
			targets = nil
			if o := m.scene.Find(m.sel.active); o != nil {
				targets = append(targets, o)
			}
		}
		if len(targets) == 0 {
			return ErrNothingSelected
		}
		act.origin = make(map[string]*model.Object, len(targets))
		for _, o := range targets {
			if !allows(o, mode) {
				m.warn(WarnLocked, o.ID, "object does not allow %s", mode)
				continue
			}
			act.origin[o.ID] = o.Clone()
		}
		if len(act.origin) == 0 {
			return ErrNotAllowed
		}
	}
	m.act = act
	labelkit.Logger().Debug("canvas: interaction started", "mode", string(mode))
	return nil
}

func allows(o *model.Object, mode Mode) bool {
	switch mode {
	case ModeMove:
		return o.CanMove()
	case ModeScale:
		return o.CanResize()
	case ModeRotate:
		return o.CanRotate()
	}
	return false
}

// UpdateInteraction applies the drag up to the screen point p. Objects are
// recomputed from their pre-drag geometry, constraints are clamped and
// edge snapping is previewed; grid snapping waits for the commit.
func (m *Manager) UpdateInteraction(p geom.Point) error {
	if !finitePoint(p) {
		return ErrInvalidPoint
	}
	m.mu.Lock()
	defer m.unlock()
	if m.act == nil || m.act.state != StateDragging {
		return ErrNoInteraction
	}
	m.act.last = p
	m.apply(false)
	return nil
}

// EndInteraction commits the drag at its last position: constraints are
// enforced, grid snapping is applied to moved objects, and the scene is
// marked dirty if anything changed. The manager is idle afterwards.
func (m *Manager) EndInteraction() error {
	m.mu.Lock()
	defer m.unlock()
	if m.act == nil {
		return ErrNoInteraction
	}
	m.act.state = StateCommitting
	changed := m.apply(true)
	m.act = nil
	if changed {
		m.markDirty()
	}
	return nil
}

// apply recomputes every affected object from its origin. It reports
// whether anything differs from the pre-drag state.
func (m *Manager) apply(commit bool) bool {
	act := m.act
	if act.mode == ModePan {
		m.vp.PanX = act.pan.PanX + act.last.X - act.start.X
		m.vp.PanY = act.pan.PanY + act.last.Y - act.start.Y
		return false
	}

	zoom := m.vp.Zoom
	if zoom == 0 {
		zoom = 1
	}
	delta := act.last.Sub(act.start).Div(zoom)
	start := geom.ScreenToCanvas(act.start, m.vp)
	last := geom.ScreenToCanvas(act.last, m.vp)

	changed := false
	for _, o := range m.scene.Objects {
		orig, ok := act.origin[o.ID]
		if !ok {
			continue
		}
		o.Left, o.Top = orig.Left, orig.Top
		o.ScaleX, o.ScaleY = orig.ScaleX, orig.ScaleY
		o.Angle = orig.Angle

		switch act.mode {
		case ModeMove:
			translate(o, delta.X, delta.Y)
			m.snapMove(o, commit)
		case ModeScale:
			scaleAbout(o, orig, start, last)
		case ModeRotate:
			rotateAbout(o, orig, start, last)
		}
		m.clampStay(o)

		if commit {
			m.enforce(o)
		}
		if o.Left != orig.Left || o.Top != orig.Top || o.ScaleX != orig.ScaleX ||
			o.ScaleY != orig.ScaleY || o.Angle != orig.Angle {
			o.Touch()
			changed = true
		} else {
			o.ModifiedAt = orig.ModifiedAt
		}
	}
	return changed
}

// snapMove previews edge snapping against the other objects and, on
// commit, applies tolerance-gated grid snapping.
func (m *Manager) snapMove(o *model.Object, commit bool) {
	cfg := m.gridConfig()
	m.act.guides = nil
	if o.Constraints.SnapToObjects {
		var anchors []geom.Rect
		for _, other := range m.scene.Objects {
			if _, moving := m.act.origin[other.ID]; !moving && other.Visible {
				anchors = append(anchors, other.RotatedBounds())
			}
		}
		if len(anchors) > 0 {
			b := o.RotatedBounds()
			snapped, guides := grid.SnapRectToObjects(b, anchors, grid.GuideOptions{
				Tolerance: cfg.SnapTolerance, Edges: true, Centers: true,
			})
			if len(guides) > 0 {
				translate(o, snapped.X-b.X, snapped.Y-b.Y)
				m.act.guides = append(m.act.guides, guides...)
			}
		}
	}
	if commit && o.Constraints.SnapToGrid && len(m.act.guides) == 0 {
		if grid.SnapObject(o, cfg) {
			labelkit.Logger().Debug("canvas: snapped to grid", "object", o.ID, "left", o.Left, "top", o.Top)
		}
	}
}

// clampStay keeps objects that must stay in the canvas inside it while
// dragging, without raising warnings.
func (m *Manager) clampStay(o *model.Object) {
	if !o.Constraints.StayInCanvas {
		return
	}
	dx, dy := fitInside(o.RotatedBounds(), m.scene.Bounds())
	o.Left += dx
	o.Top += dy
}

// scaleAbout scales o by the ratio of the pointer's distance from the
// object's center, honouring per-axis scale locks, the aspect lock and the
// size limits. The object's center stays fixed.
func scaleAbout(o, orig *model.Object, start, last geom.Point) {
	c := orig.Bounds().Center()
	d0 := start.Distance(c)
	if d0 == 0 {
		return
	}
	f := last.Distance(c) / d0
	if f == 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return
	}
	sx, sy := orig.ScaleX*f, orig.ScaleY*f
	if o.Constraints.LockScalingX {
		sx = orig.ScaleX
		if o.Constraints.MaintainAspectRatio {
			sy = orig.ScaleY
		}
	}
	if o.Constraints.LockScalingY {
		sy = orig.ScaleY
		if o.Constraints.MaintainAspectRatio {
			sx = orig.ScaleX
		}
	}
	o.ScaleX, o.ScaleY = sx, sy
	clampSize(o)
	o.Left = c.X - o.Width*sx/2
	o.Top = c.Y - o.Height*sy/2
}

// rotateAbout turns o by the angle the pointer swept around the object's
// center.
func rotateAbout(o, orig *model.Object, start, last geom.Point) {
	c := orig.Bounds().Center()
	if start == c || last == c {
		return
	}
	sweep := geom.AngleDegrees(c, last) - geom.AngleDegrees(c, start)
	o.Angle = geom.NormalizeDegrees(orig.Angle + sweep)
}
