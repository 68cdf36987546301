package model

import (
	"github.com/gogpu/labelkit/geom"
)

// Shape defaults.
const (
	DefaultFill        = "#ffffff"
	DefaultStroke      = "#000000"
	DefaultStrokeWidth = 1
	DefaultShapeSize   = 100
	DefaultQRSize      = 100
	DefaultUUIDLength  = 36
)

// base returns an object of type t with the shared defaults applied.
func base(t ElementType, left, top float64) *Object {
	ts := now()
	return &Object{
		ID:          NewID(),
		Type:        t,
		Left:        left,
		Top:         top,
		ScaleX:      1,
		ScaleY:      1,
		Fill:        DefaultFill,
		Stroke:      DefaultStroke,
		StrokeWidth: DefaultStrokeWidth,
		Opacity:     1,
		Visible:     true,
		Selectable:  true,
		Constraints: Constraints{SnapToGrid: true, SnapToObjects: true},
		CreatedAt:   ts,
		ModifiedAt:  ts,
	}
}

func defaultText(s string) *TextProps {
	return &TextProps{
		Text:       s,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		FontWeight: "normal",
		FontStyle:  "normal",
		TextAlign:  "left",
		LineHeight: DefaultLineHeight,
		TextCase:   CaseNone,
	}
}

// NewText creates a 20px Arial black text element sized to its content.
func NewText(s string, left, top float64) *Object {
	o := base(TypeText, left, top)
	o.Fill = DefaultTextColor
	o.Stroke = ""
	o.StrokeWidth = 0
	o.Text = defaultText(s)
	FitText(o)
	return o
}

// NewUUID creates a text element showing a generated identifier.
// The value comes from a UUID generator collaborator.
func NewUUID(value string, left, top float64) *Object {
	o := NewText(value, left, top)
	o.Type = TypeUUID
	o.Text.FontFamily = "Courier New"
	o.Text.UUIDLength = len(value)
	FitText(o)
	return o
}

// NewRectangle creates a rectangle.
func NewRectangle(left, top, width, height float64) *Object {
	o := base(TypeRectangle, left, top)
	o.Width, o.Height = width, height
	return o
}

// NewCircle creates a circle whose box is 2*radius square.
func NewCircle(left, top, radius float64) *Object {
	o := base(TypeCircle, left, top)
	o.Width, o.Height = 2*radius, 2*radius
	o.Constraints.MaintainAspectRatio = true
	return o
}

// NewEllipse creates an ellipse with the given radii.
func NewEllipse(left, top, rx, ry float64) *Object {
	o := base(TypeEllipse, left, top)
	o.Width, o.Height = 2*rx, 2*ry
	return o
}

// NewLine creates a line between two canvas points. The object's box is
// the segment's bounding box and Points are relative to it.
func NewLine(x1, y1, x2, y2 float64) *Object {
	b := geom.RectFromPoints(geom.Pt(x1, y1), geom.Pt(x2, y2))
	o := base(TypeLine, b.X, b.Y)
	o.Fill = ""
	o.StrokeWidth = 2
	o.Width, o.Height = b.Width, b.Height
	o.Points = []geom.Point{{X: x1 - b.X, Y: y1 - b.Y}, {X: x2 - b.X, Y: y2 - b.Y}}
	return o
}

// NewPolygon creates a polygon from canvas-space vertices.
func NewPolygon(pts []geom.Point) *Object {
	b := geom.RectFromPoints(pts...)
	o := base(TypePolygon, b.X, b.Y)
	o.Width, o.Height = b.Width, b.Height
	o.Points = make([]geom.Point, len(pts))
	for i, p := range pts {
		o.Points[i] = p.Sub(geom.Pt(b.X, b.Y))
	}
	return o
}

// NewShape creates a triangle, diamond, star or arrow filling the box.
func NewShape(t ElementType, left, top, width, height float64) *Object {
	o := base(t, left, top)
	o.Width, o.Height = width, height
	return o
}

// NewPath creates a path element placed at (left, top). The path data is
// in the element's local frame and the box spans from the local origin to
// the path's far extent. Unparsable data leaves a zero box, which Validate
// rejects.
func NewPath(d string, left, top float64) *Object {
	o := base(TypePath, left, top)
	o.Fill = ""
	o.PathData = d
	if segs, err := geom.ParsePathData(d); err == nil {
		b := geom.PathBounds(segs)
		o.Width, o.Height = b.Right(), b.Bottom()
	}
	return o
}

// NewFreehand creates a freehand stroke through canvas-space points.
func NewFreehand(pts []geom.Point) *Object {
	o := NewPolygon(pts)
	o.Type = TypeFreehand
	o.Fill = ""
	o.StrokeWidth = 2
	return o
}

// NewImage creates an image element.
func NewImage(src string, left, top, width, height float64) *Object {
	o := base(TypeImage, left, top)
	o.Fill = ""
	o.Stroke = ""
	o.StrokeWidth = 0
	o.Width, o.Height = width, height
	o.Image = &ImageProps{Src: src, OriginalSrc: src}
	return o
}

// NewQRCode creates a square QR code element. The image itself is produced
// by a QR generator collaborator and stored in QRCode.Src.
func NewQRCode(value string, level QRLevel, left, top, size float64) *Object {
	if !level.Valid() {
		level = QRLevelM
	}
	o := base(TypeQRCode, left, top)
	o.Fill = ""
	o.Stroke = ""
	o.StrokeWidth = 0
	o.Width, o.Height = size, size
	o.Constraints.MaintainAspectRatio = true
	o.QRCode = &QRCodeProps{Value: value, Level: level, Foreground: "#000000", Background: "#ffffff"}
	return o
}

// NewBarcode creates a barcode element.
func NewBarcode(value string, t BarcodeType, left, top, width, height float64) *Object {
	o := base(TypeBarcode, left, top)
	o.Fill = ""
	o.Stroke = ""
	o.StrokeWidth = 0
	o.Width, o.Height = width, height
	o.Barcode = &BarcodeProps{Value: value, Type: t, DisplayValue: true}
	return o
}

// NewGroup wraps children in a group. The group's box is the union of the
// children's rotated bounds; children are re-expressed relative to it.
// The children are adopted, not copied.
func NewGroup(children []*Object) *Object {
	var b geom.Rect
	for i, ch := range children {
		if i == 0 {
			b = ch.RotatedBounds()
			continue
		}
		b = b.Union(ch.RotatedBounds())
	}
	o := base(TypeGroup, b.X, b.Y)
	o.Fill = ""
	o.Stroke = ""
	o.StrokeWidth = 0
	o.Width, o.Height = b.Width, b.Height
	for _, ch := range children {
		ch.Left -= b.X
		ch.Top -= b.Y
	}
	o.Children = children
	return o
}

// New creates an element of type t with default geometry at (left, top).
// Groups are formed from existing objects with NewGroup, so New returns nil
// for TypeGroup and for unknown types.
func New(t ElementType, left, top float64) *Object {
	const s = DefaultShapeSize
	switch t {
	case TypeText:
		return NewText("Text", left, top)
	case TypeUUID:
		return NewUUID(NewID(), left, top)
	case TypeRectangle:
		return NewRectangle(left, top, s, s)
	case TypeCircle:
		return NewCircle(left, top, s/2)
	case TypeEllipse:
		return NewEllipse(left, top, s/2, s/4)
	case TypeLine:
		return NewLine(left, top, left+s, top)
	case TypePolygon:
		return NewPolygon([]geom.Point{
			{X: left + s/2, Y: top}, {X: left + s, Y: top + s*0.4},
			{X: left + s*0.8, Y: top + s}, {X: left + s*0.2, Y: top + s},
			{X: left, Y: top + s*0.4},
		})
	case TypeImage:
		return NewImage("", left, top, s, s)
	case TypeQRCode:
		return NewQRCode("", QRLevelM, left, top, DefaultQRSize)
	case TypeBarcode:
		return NewBarcode("", BarcodeCode128, left, top, 2*s, s/2)
	case TypePath:
		return NewPath("M 0 0 L 100 100", left, top)
	case TypeFreehand:
		return NewFreehand([]geom.Point{{X: left, Y: top}, {X: left + s, Y: top + s}})
	case TypeArrow, TypeTriangle, TypeDiamond, TypeStar:
		return NewShape(t, left, top, s, s)
	}
	return nil
}
