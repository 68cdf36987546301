package canvas

import (
	"math"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/geom"
)

// Viewport returns the current zoom and pan.
func (m *Manager) Viewport() geom.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vp
}

// SetViewportSize records the on-screen size of the drawing area, used by
// FitToViewport and CenterView.
func (m *Manager) SetViewportSize(width, height float64) {
	if !finite(width) || !finite(height) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewW, m.viewH = width, height
}

// ZoomLimits returns the allowed zoom range.
func (m *Manager) ZoomLimits() (minZoom, maxZoom float64) {
	return m.opts.minZoom, m.opts.maxZoom
}

func (m *Manager) clampZoom(z float64) float64 {
	return min(max(z, m.opts.minZoom), m.opts.maxZoom)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePoint(p geom.Point) bool {
	return finite(p.X) && finite(p.Y)
}

// SetZoom sets the zoom factor, clamped to the zoom limits. With a nil
// anchor the pan is unchanged; otherwise the pan is adjusted so that the
// screen point anchor keeps showing the same canvas point. It returns the
// zoom actually applied. Non-finite or non-positive zooms are ignored.
func (m *Manager) SetZoom(zoom float64, anchor *geom.Point) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !finite(zoom) || zoom <= 0 {
		return m.vp.Zoom
	}
	m.vp = zoomAt(m.vp, m.clampZoom(zoom), anchor)
	labelkit.Logger().Debug("canvas: zoom", "zoom", m.vp.Zoom)
	return m.vp.Zoom
}

// zoomAt applies zoom z to v, keeping the screen point anchor fixed. A
// non-finite anchor is treated as none.
func zoomAt(v geom.Viewport, z float64, anchor *geom.Point) geom.Viewport {
	if anchor != nil && finitePoint(*anchor) && v.Zoom != 0 {
		k := 1 - z/v.Zoom
		v.PanX += (anchor.X - v.PanX) * k
		v.PanY += (anchor.Y - v.PanY) * k
	}
	v.Zoom = z
	return v
}

// ZoomBy multiplies the zoom by factor around anchor. Non-finite or
// non-positive factors are ignored.
func (m *Manager) ZoomBy(factor float64, anchor *geom.Point) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !finite(factor) || factor <= 0 {
		return m.vp.Zoom
	}
	m.vp = zoomAt(m.vp, m.clampZoom(m.vp.Zoom*factor), anchor)
	return m.vp.Zoom
}

// PanBy shifts the view by (dx, dy) screen pixels.
func (m *Manager) PanBy(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vp.PanX += dx
	m.vp.PanY += dy
}

// ResetView restores zoom 1 and no pan.
func (m *Manager) ResetView() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vp = geom.DefaultViewport()
}

// FitToViewport zooms and pans so that the bounds of all visible objects
// fill the viewport less the fit margin, centered. With no content the
// canvas itself is fitted. It is a no-op until SetViewportSize is called.
func (m *Manager) FitToViewport() geom.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.viewW <= 0 || m.viewH <= 0 {
		return m.vp
	}
	box, ok := m.scene.ContentBounds()
	if !ok || box.Width <= 0 || box.Height <= 0 {
		box = m.scene.Bounds()
	}
	avail := 1 - m.opts.fitMargin
	z := m.clampZoom(min(m.viewW*avail/box.Width, m.viewH*avail/box.Height))
	c := box.Center()
	m.vp = geom.Viewport{
		Zoom: z,
		PanX: m.viewW/2 - c.X*z,
		PanY: m.viewH/2 - c.Y*z,
	}
	return m.vp
}

// CenterView pans so that the canvas center is at the viewport center,
// keeping the zoom.
func (m *Manager) CenterView() geom.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.scene.Bounds().Center()
	m.vp.PanX = m.viewW/2 - c.X*m.vp.Zoom
	m.vp.PanY = m.viewH/2 - c.Y*m.vp.Zoom
	return m.vp
}

// CanvasToScreen maps a canvas point through the current viewport.
func (m *Manager) CanvasToScreen(p geom.Point) geom.Point {
	return geom.CanvasToScreen(p, m.Viewport())
}

// ScreenToCanvas maps a screen point back into canvas space.
func (m *Manager) ScreenToCanvas(p geom.Point) geom.Point {
	return geom.ScreenToCanvas(p, m.Viewport())
}
