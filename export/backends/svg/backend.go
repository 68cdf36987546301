// Package svg renders scenes as SVG documents through ajstarks/svgo.
//
// Importing the package registers the "svg" export format. Output keeps
// shapes as vector paths, text as <text> elements and embeds images as PNG
// data URLs.
package svg

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	svgo "github.com/ajstarks/svgo"

	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/textlayout"
)

func init() {
	export.Register(export.FormatSVG, func() export.Encoder { return Encoder{} })
}

// Encoder writes a scene as an SVG document.
type Encoder struct{}

// ContentType returns the SVG MIME type.
func (Encoder) ContentType() string {
	return "image/svg+xml"
}

// Encode renders s to w.
func (Encoder) Encode(ctx context.Context, w io.Writer, s *model.Scene, opts export.Options) error {
	b := NewBackend(w)
	if err := export.Render(ctx, s, b, opts); err != nil {
		return err
	}
	return b.Err()
}

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// Backend is an export.Painter emitting SVG elements.
type Backend struct {
	out    *errWriter
	canvas *svgo.SVG
	// groups counts the <g> elements opened since each Save. The bottom
	// entry belongs to the document itself.
	groups []int
}

var _ export.Painter = (*Backend)(nil)

// NewBackend creates a backend writing to w.
func NewBackend(w io.Writer) *Backend {
	out := &errWriter{w: w}
	return &Backend{out: out, canvas: svgo.New(out), groups: []int{0}}
}

// Err returns the first write error, if any.
func (b *Backend) Err() error {
	return b.out.err
}

// Begin writes the document header and background.
func (b *Backend) Begin(width, height float64, background string) error {
	w, h := max(int(math.Ceil(width)), 1), max(int(math.Ceil(height)), 1)
	b.canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %s %s"`, num(width), num(height)))
	if fill := paintValue(background); fill != "none" {
		b.canvas.Rect(0, 0, w, h, "fill:"+fill)
	}
	return b.out.err
}

// End closes any open groups and the document.
func (b *Backend) End() error {
	for len(b.groups) > 1 {
		b.Restore()
	}
	b.closeGroups(0)
	b.canvas.End()
	return b.out.err
}

// Save starts a new group scope.
func (b *Backend) Save() {
	b.groups = append(b.groups, 0)
}

// Restore closes the groups opened since the matching Save.
func (b *Backend) Restore() {
	if len(b.groups) == 1 {
		return
	}
	b.closeGroups(len(b.groups) - 1)
	b.groups = b.groups[:len(b.groups)-1]
}

func (b *Backend) closeGroups(i int) {
	for ; b.groups[i] > 0; b.groups[i]-- {
		b.canvas.Gend()
	}
}

// Transform opens a transformed group in the current scope.
func (b *Backend) Transform(m geom.Matrix) {
	if m.IsIdentity() {
		return
	}
	b.canvas.Gtransform(m.SVG())
	b.groups[len(b.groups)-1]++
}

// Rect draws a w×h rectangle at the local origin.
func (b *Backend) Rect(w, h, radius float64, st export.Style) {
	if radius <= 0 {
		b.canvas.Path(fmt.Sprintf("M0 0H%sV%sH0Z", num(w), num(h)), style(st))
		return
	}
	r := min(radius, w/2, h/2)
	var d strings.Builder
	fmt.Fprintf(&d, "M%s 0H%s", num(r), num(w-r))
	fmt.Fprintf(&d, "A%s %s 0 0 1 %s %s", num(r), num(r), num(w), num(r))
	fmt.Fprintf(&d, "V%s", num(h-r))
	fmt.Fprintf(&d, "A%s %s 0 0 1 %s %s", num(r), num(r), num(w-r), num(h))
	fmt.Fprintf(&d, "H%s", num(r))
	fmt.Fprintf(&d, "A%s %s 0 0 1 0 %s", num(r), num(r), num(h-r))
	fmt.Fprintf(&d, "V%s", num(r))
	fmt.Fprintf(&d, "A%s %s 0 0 1 %s 0Z", num(r), num(r), num(r))
	b.canvas.Path(d.String(), style(st))
}

// Ellipse draws an ellipse centered at (cx, cy) as two arcs.
func (b *Backend) Ellipse(cx, cy, rx, ry float64, st export.Style) {
	d := fmt.Sprintf("M%s %sA%s %s 0 1 0 %s %sA%s %s 0 1 0 %s %sZ",
		num(cx-rx), num(cy),
		num(rx), num(ry), num(cx+rx), num(cy),
		num(rx), num(ry), num(cx-rx), num(cy))
	b.canvas.Path(d, style(st))
}

// Polygon draws a polyline, closing it when closed is set.
func (b *Backend) Polygon(pts []geom.Point, closed bool, st export.Style) {
	if len(pts) == 0 {
		return
	}
	var d strings.Builder
	for i, p := range pts {
		op := "L"
		if i == 0 {
			op = "M"
		}
		fmt.Fprintf(&d, "%s%s %s", op, num(p.X), num(p.Y))
	}
	if closed {
		d.WriteString("Z")
	}
	b.canvas.Path(d.String(), style(st))
}

// Path draws parsed path segments.
func (b *Backend) Path(segs []geom.PathSegment, st export.Style) {
	if len(segs) == 0 {
		return
	}
	var d strings.Builder
	for _, s := range segs {
		switch s.Op {
		case geom.OpMoveTo:
			fmt.Fprintf(&d, "M%s", pts(s.Pts[:1]))
		case geom.OpLineTo:
			fmt.Fprintf(&d, "L%s", pts(s.Pts[:1]))
		case geom.OpQuadTo:
			fmt.Fprintf(&d, "Q%s", pts(s.Pts[:2]))
		case geom.OpCubicTo:
			fmt.Fprintf(&d, "C%s", pts(s.Pts[:3]))
		case geom.OpClose:
			d.WriteString("Z")
		}
	}
	b.canvas.Path(d.String(), style(st))
}

// Text writes one <text> element per line, each in a group translated to
// its baseline.
func (b *Backend) Text(t export.TextBlock) {
	fill := paintValue(t.Color)
	if fill == "none" || len(t.Lines) == 0 || t.Style.Size <= 0 {
		return
	}
	css := textStyle(t, fill)
	lh := t.LineHeight()
	ascent := textlayout.Default().Ascent(t.Style)
	for i, line := range t.Lines {
		if line == "" {
			continue
		}
		y := float64(i)*lh + (lh-t.Style.Size)/2 + ascent
		b.canvas.Gtransform("translate(" + num(t.LineX(i)) + " " + num(y) + ")")
		b.canvas.Text(0, 0, line, css)
		b.canvas.Gend()
	}
}

// Image embeds img as a PNG data URL stretched to w×h.
func (b *Backend) Image(img image.Image, w, h, opacity float64) {
	if img == nil || w <= 0 || h <= 0 {
		return
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		if b.out.err == nil {
			b.out.err = fmt.Errorf("svg: encode image: %w", err)
		}
		return
	}
	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	iw, ih := bounds.Dx(), bounds.Dy()
	b.canvas.Gtransform("scale(" + num(w/float64(iw)) + " " + num(h/float64(ih)) + ")")
	b.canvas.Image(0, 0, iw, ih, href, `preserveAspectRatio="none"`, "opacity:"+num(opacity))
	b.canvas.Gend()
}

// num formats v with at most three decimals.
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pts(ps []geom.Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = num(p.X) + " " + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// paintValue maps an empty, transparent or unrecognized color to "none".
// Only values model.IsColor accepts reach the style attribute.
func paintValue(c string) string {
	c = strings.TrimSpace(c)
	switch strings.ToLower(c) {
	case "", "none", "transparent":
		return "none"
	}
	if !model.IsColor(c) {
		return "none"
	}
	return c
}

// familyValue keeps the characters of a font family list that are safe
// inside a quoted CSS value.
func familyValue(f string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == ' ', r == ',', r == '-', r == '_', r == '.':
			return r
		}
		return -1
	}, f)
}

func style(st export.Style) string {
	var sb strings.Builder
	fill := "none"
	if st.HasFill() {
		fill = paintValue(st.Fill)
	}
	sb.WriteString("fill:" + fill)
	if st.HasStroke() {
		sb.WriteString(";stroke:" + paintValue(st.Stroke))
		sb.WriteString(";stroke-width:" + num(st.StrokeWidth))
		if len(st.Dash) > 0 {
			dash := make([]string, len(st.Dash))
			for i, d := range st.Dash {
				dash[i] = num(d)
			}
			sb.WriteString(";stroke-dasharray:" + strings.Join(dash, ","))
		}
	}
	if st.Opacity < 1 {
		sb.WriteString(";opacity:" + num(st.Opacity))
	}
	return sb.String()
}

func textStyle(t export.TextBlock, fill string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "font-family:'%s';font-size:%spx;fill:%s;white-space:pre", familyValue(t.Style.Family), num(t.Style.Size), fill)
	if t.Style.Bold {
		sb.WriteString(";font-weight:bold")
	}
	if t.Style.Italic {
		sb.WriteString(";font-style:italic")
	}
	if t.Style.CharSpacing != 0 {
		sb.WriteString(";letter-spacing:" + num(t.Style.CharSpacing/1000*t.Style.Size) + "px")
	}
	if t.Opacity < 1 {
		sb.WriteString(";opacity:" + num(t.Opacity))
	}
	return sb.String()
}
