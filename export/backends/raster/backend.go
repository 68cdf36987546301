// Package raster renders scenes to PNG and JPEG through gg.Context.
//
// Importing the package registers the "png" and "jpeg" export formats:
//
//	import _ "github.com/gogpu/labelkit/export/backends/raster"
//
//	err := export.Export(ctx, w, scene, "png", export.Options{Multiplier: 2})
package raster

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/colornames"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/textlayout"
)

func init() {
	export.Register(export.FormatPNG, func() export.Encoder { return &Encoder{jpeg: false} })
	export.Register(export.FormatJPEG, func() export.Encoder { return &Encoder{jpeg: true} })
	labelkit.RegisterLoggerSink(gg.SetLogger)
}

// Encoder writes a scene as PNG or JPEG.
type Encoder struct {
	jpeg bool
}

// ContentType returns the MIME type of the output.
func (e *Encoder) ContentType() string {
	if e.jpeg {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode renders s and writes the encoded image to w.
func (e *Encoder) Encode(ctx context.Context, w io.Writer, s *model.Scene, opts export.Options) error {
	k := opts.Scale(s)
	if err := opts.CheckPixels(s.Width*k, s.Height*k); err != nil {
		return err
	}
	b := NewBackend()
	if e.jpeg && (opts.Transparent || s.BackgroundColor == "") {
		// JPEG has no alpha; paint white behind transparent content.
		s = withBackground(s, "#ffffff")
		opts.Transparent = false
	}
	defer b.Close()
	if err := export.Render(ctx, s, b, opts); err != nil {
		return err
	}
	if e.jpeg {
		return b.ctx.EncodeJPEG(w, opts.JPEGQuality())
	}
	return b.ctx.EncodePNG(w)
}

func withBackground(s *model.Scene, color string) *model.Scene {
	c := *s
	c.BackgroundColor = color
	return &c
}

// Backend is an export.Painter drawing into a gg.Context.
type Backend struct {
	ctx *gg.Context
}

var _ export.Painter = (*Backend)(nil)

// NewBackend creates a raster backend. Begin must be called before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Begin allocates the pixel buffer, rounding the size up to whole pixels,
// and paints the background.
func (b *Backend) Begin(width, height float64, background string) error {
	b.ctx = gg.NewContext(max(int(math.Ceil(width)), 1), max(int(math.Ceil(height)), 1))
	if c, ok := parseColor(background, 1); ok {
		b.ctx.ClearWithColor(c)
	}
	return nil
}

// End finishes rendering.
func (b *Backend) End() error {
	return nil
}

// Close releases the context.
func (b *Backend) Close() error {
	if b.ctx == nil {
		return nil
	}
	return b.ctx.Close()
}

// Rendered returns the rendered image.
func (b *Backend) Rendered() image.Image {
	return b.ctx.Image()
}

// Save pushes the graphics state.
func (b *Backend) Save() {
	b.ctx.Push()
}

// Restore pops the graphics state.
func (b *Backend) Restore() {
	b.ctx.Pop()
}

// Transform concatenates m onto the current transform.
func (b *Backend) Transform(m geom.Matrix) {
	b.ctx.Transform(gg.Matrix{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F})
}

// Rect draws a w×h rectangle at the local origin.
func (b *Backend) Rect(w, h, radius float64, st export.Style) {
	b.paint(st, func() {
		if radius > 0 {
			b.ctx.DrawRoundedRectangle(0, 0, w, h, radius)
			return
		}
		b.ctx.DrawRectangle(0, 0, w, h)
	})
}

// Ellipse draws an ellipse centered at (cx, cy).
func (b *Backend) Ellipse(cx, cy, rx, ry float64, st export.Style) {
	b.paint(st, func() {
		b.ctx.DrawEllipse(cx, cy, rx, ry)
	})
}

// Polygon draws a polyline, closing it when closed is set.
func (b *Backend) Polygon(pts []geom.Point, closed bool, st export.Style) {
	if len(pts) == 0 {
		return
	}
	b.paint(st, func() {
		b.ctx.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			b.ctx.LineTo(p.X, p.Y)
		}
		if closed {
			b.ctx.ClosePath()
		}
	})
}

// Path draws parsed SVG path segments.
func (b *Backend) Path(segs []geom.PathSegment, st export.Style) {
	b.paint(st, func() {
		for _, s := range segs {
			switch s.Op {
			case geom.OpMoveTo:
				b.ctx.MoveTo(s.Pts[0].X, s.Pts[0].Y)
			case geom.OpLineTo:
				b.ctx.LineTo(s.Pts[0].X, s.Pts[0].Y)
			case geom.OpQuadTo:
				b.ctx.QuadraticTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y)
			case geom.OpCubicTo:
				b.ctx.CubicTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y, s.Pts[2].X, s.Pts[2].Y)
			case geom.OpClose:
				b.ctx.ClosePath()
			}
		}
	})
}

// paint builds the path with build, then fills and strokes it per st.
func (b *Backend) paint(st export.Style, build func()) {
	fill, hasFill := parseColor(st.Fill, st.Opacity)
	stroke, hasStroke := parseColor(st.Stroke, st.Opacity)
	hasFill = hasFill && st.HasFill()
	hasStroke = hasStroke && st.HasStroke()
	if !hasFill && !hasStroke {
		return
	}
	b.ctx.ClearPath()
	build()
	if hasFill {
		b.ctx.SetRGBA(fill.R, fill.G, fill.B, fill.A)
		if hasStroke {
			_ = b.ctx.FillPreserve()
		} else {
			_ = b.ctx.Fill()
		}
	}
	if hasStroke {
		b.ctx.SetRGBA(stroke.R, stroke.G, stroke.B, stroke.A)
		b.ctx.SetLineWidth(st.StrokeWidth)
		if len(st.Dash) > 0 {
			b.ctx.SetDash(st.Dash...)
		}
		_ = b.ctx.Stroke()
		if len(st.Dash) > 0 {
			b.ctx.SetDash()
		}
	}
	b.ctx.ClearPath()
}

// Image draws img stretched to w×h at the local origin.
func (b *Backend) Image(img image.Image, w, h, opacity float64) {
	if img == nil || w <= 0 || h <= 0 {
		return
	}
	b.ctx.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		DstWidth:  w,
		DstHeight: h,
		Opacity:   opacity,
	})
}

// Text draws t with each line's baseline placed inside its line box. The
// context's transform applies to the glyphs, so rotated and scaled text is
// drawn in place.
func (b *Backend) Text(t export.TextBlock) {
	col, ok := parseColor(t.Color, t.Opacity)
	if !ok || len(t.Lines) == 0 || t.Style.Size <= 0 {
		return
	}
	src, err := fontSource(t.Style)
	if err != nil {
		return
	}
	face := src.Face(t.Style.Size)
	b.ctx.SetFont(face)
	b.ctx.SetRGBA(col.R, col.G, col.B, col.A)

	lh := t.LineHeight()
	ascent := face.Metrics().Ascent
	for i, line := range t.Lines {
		if line == "" {
			continue
		}
		y := float64(i)*lh + (lh-t.Style.Size)/2 + ascent
		b.ctx.DrawString(line, t.LineX(i), y)
	}
}

var (
	facesMu sync.Mutex
	faces   = map[string]*text.FontSource{}
)

// fontSource returns the cached font source for a text style.
func fontSource(st textlayout.Style) (*text.FontSource, error) {
	key := fmt.Sprintf("%s|%t|%t", strings.ToLower(st.Family), st.Bold, st.Italic)
	facesMu.Lock()
	defer facesMu.Unlock()
	if src, ok := faces[key]; ok {
		return src, nil
	}
	src, err := text.NewFontSource(textlayout.FontData(st.Family, st.Bold, st.Italic))
	if err != nil {
		return nil, err
	}
	faces[key] = src
	return src, nil
}

// parseColor resolves a hex or named CSS color and applies opacity.
func parseColor(s string, opacity float64) (gg.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "transparent":
		return gg.RGBA{}, false
	}
	var c gg.RGBA
	if strings.HasPrefix(s, "#") {
		c = gg.Hex(s)
	} else if named, ok := colornames.Map[s]; ok {
		c = gg.RGBA{R: float64(named.R) / 255, G: float64(named.G) / 255, B: float64(named.B) / 255, A: 1}
	} else {
		return gg.RGBA{}, false
	}
	c.A *= opacity
	return c, true
}
