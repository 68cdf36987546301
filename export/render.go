package export

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/textlayout"
)

// Style is the paint applied to one shape.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Dash        []float64
	Opacity     float64
}

// HasFill reports whether the shape is filled.
func (s Style) HasFill() bool {
	return s.Fill != "" && s.Fill != "transparent" && s.Fill != "none"
}

// HasStroke reports whether the shape is outlined.
func (s Style) HasStroke() bool {
	return s.StrokeWidth > 0 && s.Stroke != "" && s.Stroke != "transparent" && s.Stroke != "none"
}

// TextBlock is laid-out text in an element's local frame.
type TextBlock struct {
	Lines []string
	Style textlayout.Style
	// Color is the fill color of the glyphs.
	Color   string
	Opacity float64
	// Align is left, center, right or justify (drawn as left).
	Align string
	// Width is the box width lines are aligned within.
	Width float64
	// Advances holds the measured width of each line.
	Advances []float64
}

// LineHeight returns the distance between baselines.
func (t TextBlock) LineHeight() float64 {
	lh := t.Style.LineHeight
	if lh <= 0 {
		lh = model.DefaultLineHeight
	}
	return t.Style.Size * lh
}

// LineX returns the x offset of line i for the block alignment.
func (t TextBlock) LineX(i int) float64 {
	switch t.Align {
	case "center":
		return (t.Width - t.Advances[i]) / 2
	case "right":
		return t.Width - t.Advances[i]
	}
	return 0
}

// Painter is the drawing surface encoders render through. Coordinates are
// in the current local frame; Transform concatenates onto it and
// Save/Restore bracket changes.
type Painter interface {
	Begin(width, height float64, background string) error
	Save()
	Restore()
	Transform(m geom.Matrix)
	Rect(w, h, radius float64, st Style)
	Ellipse(cx, cy, rx, ry float64, st Style)
	Polygon(pts []geom.Point, closed bool, st Style)
	Path(segs []geom.PathSegment, st Style)
	Text(t TextBlock)
	Image(img image.Image, w, h, opacity float64)
	End() error
}

// Render paints s onto p at the scale given by opts.
func Render(ctx context.Context, s *model.Scene, p Painter, opts Options) error {
	k := opts.Scale(s)
	bg := s.BackgroundColor
	if opts.Transparent {
		bg = ""
	}
	if err := p.Begin(s.Width*k, s.Height*k, bg); err != nil {
		return err
	}
	p.Transform(geom.Scale(k, k))

	images := opts.Images
	if images == nil {
		images = DefaultImages()
	}
	r := renderer{ctx: ctx, p: p, images: images}

	if s.BackgroundImage != "" && !opts.Transparent {
		img, err := images.Image(ctx, s.BackgroundImage)
		if err != nil {
			return fmt.Errorf("background image: %w", err)
		}
		p.Image(img, s.Width, s.Height, 1)
	}
	for _, o := range s.Objects {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.object(o, 1); err != nil {
			return fmt.Errorf("object %s: %w", o.ID, err)
		}
	}
	return p.End()
}

type renderer struct {
	ctx    context.Context
	p      Painter
	images ImageSource
}

func styleOf(o *model.Object, opacity float64) Style {
	return Style{
		Fill:        o.Fill,
		Stroke:      o.Stroke,
		StrokeWidth: o.StrokeWidth,
		Dash:        o.StrokeDashArray,
		Opacity:     o.Opacity * opacity,
	}
}

// object paints o in its parent's frame. opacity is the accumulated group
// opacity.
func (r renderer) object(o *model.Object, opacity float64) error {
	if !o.Visible {
		return nil
	}
	p := r.p
	p.Save()
	defer p.Restore()
	p.Transform(o.Transform())

	st := styleOf(o, opacity)
	switch o.Type {
	case model.TypeRectangle:
		p.Rect(o.Width, o.Height, o.BorderRadius, st)
	case model.TypeCircle, model.TypeEllipse:
		p.Ellipse(o.Width/2, o.Height/2, o.Width/2, o.Height/2, st)
	case model.TypeLine:
		st.Fill = ""
		p.Polygon(o.Outline(), false, st)
	case model.TypePolygon, model.TypeTriangle, model.TypeDiamond, model.TypeStar, model.TypeArrow:
		p.Polygon(o.Outline(), true, st)
	case model.TypePath, model.TypeFreehand:
		if o.PathData == "" {
			st.Fill = ""
			p.Polygon(o.Outline(), false, st)
			return nil
		}
		segs, err := geom.ParsePathData(o.PathData)
		if err != nil {
			return err
		}
		if o.Type == model.TypeFreehand {
			st.Fill = ""
		}
		p.Path(segs, st)
	case model.TypeText, model.TypeUUID:
		p.Text(textBlock(o, st.Opacity))
	case model.TypeImage:
		return r.image(o.Image.Src, o, st.Opacity)
	case model.TypeQRCode:
		return r.generated(qrSource(o), o, st.Opacity)
	case model.TypeBarcode:
		return r.generated(barcodeSource(o), o, st.Opacity)
	case model.TypeGroup:
		for _, c := range o.Children {
			if err := r.object(c, opacity*o.Opacity); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r renderer) image(src string, o *model.Object, opacity float64) error {
	if src == "" {
		return nil
	}
	img, err := r.images.Image(r.ctx, src)
	if err != nil {
		return err
	}
	if o.Image != nil && o.Image.CropArea != nil {
		img = crop(img, *o.Image.CropArea)
	}
	r.p.Image(img, o.Width, o.Height, opacity)
	return nil
}

// generated paints a QR code or barcode. A value its symbology cannot
// encode leaves the element blank instead of failing the whole export.
func (r renderer) generated(src string, o *model.Object, opacity float64) error {
	err := r.image(src, o, opacity)
	if err == nil || r.ctx.Err() != nil {
		return err
	}
	labelkit.Logger().Warn("export: skipping element", "object", o.ID, "type", o.Type, "err", err)
	return nil
}

// crop returns the crop area of img when img supports sub-images.
func crop(img image.Image, c model.CropArea) image.Image {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	si, ok := img.(subImager)
	if !ok || c.Width <= 0 || c.Height <= 0 {
		return img
	}
	b := img.Bounds()
	rect := image.Rect(int(c.X), int(c.Y), int(c.X+c.Width), int(c.Y+c.Height)).Add(b.Min).Intersect(b)
	if rect.Empty() {
		return img
	}
	return si.SubImage(rect)
}

func textBlock(o *model.Object, opacity float64) TextBlock {
	t := o.Text
	st := t.Style()
	lines := t.Lines()
	adv := make([]float64, len(lines))
	for i, l := range lines {
		adv[i] = textlayout.Default().Advance(l, st)
	}
	return TextBlock{
		Lines:    lines,
		Style:    st,
		Color:    o.Fill,
		Opacity:  opacity,
		Align:    t.TextAlign,
		Width:    o.Width,
		Advances: adv,
	}
}

// Image source schemes understood by ImageSource implementations for
// generated content that has not been cached in the object yet.
const (
	QRScheme      = "qrcode:"
	BarcodeScheme = "barcode:"
)

// qrSource returns the cached data URL of a QR element, or a
// qrcode:<level>:<fg>:<bg>:<value> URI describing it. Elements with
// nothing to encode have no source.
func qrSource(o *model.Object) string {
	q := o.QRCode
	if q.Src != "" || q.Value == "" {
		return q.Src
	}
	labelkit.Logger().Debug("export: generating qr code", "object", o.ID)
	return QRScheme + strings.Join([]string{string(q.Level), q.Foreground, q.Background, q.Value}, ":")
}

// barcodeSource returns the cached data URL of a barcode element, or a
// barcode:<type>:<value> URI.
func barcodeSource(o *model.Object) string {
	b := o.Barcode
	if b.Src != "" || b.Value == "" {
		return b.Src
	}
	labelkit.Logger().Debug("export: generating barcode", "object", o.ID)
	return BarcodeScheme + string(b.Type) + ":" + b.Value
}
