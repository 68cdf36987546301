package model

import (
	"maps"
	"slices"
	"time"

	"github.com/gogpu/labelkit/geom"
)

// Shadow is a drop shadow.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Constraints restricts how an object may be manipulated.
// Zero min/max values mean "no limit".
type Constraints struct {
	MinWidth            float64 `json:"minWidth,omitempty"`
	MinHeight           float64 `json:"minHeight,omitempty"`
	MaxWidth            float64 `json:"maxWidth,omitempty"`
	MaxHeight           float64 `json:"maxHeight,omitempty"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio,omitempty"`
	LockMovementX       bool    `json:"lockMovementX,omitempty"`
	LockMovementY       bool    `json:"lockMovementY,omitempty"`
	LockScalingX        bool    `json:"lockScalingX,omitempty"`
	LockScalingY        bool    `json:"lockScalingY,omitempty"`
	LockRotation        bool    `json:"lockRotation,omitempty"`
	StayInCanvas        bool    `json:"stayInCanvas,omitempty"`
	SnapToGrid          bool    `json:"snapToGrid,omitempty"`
	SnapToObjects       bool    `json:"snapToObjects,omitempty"`
}

// CropArea is the visible region of a source image, in source pixels.
type CropArea struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageProps is the payload of image elements.
type ImageProps struct {
	// Src is what the renderer loads: a URL, file path or data URL.
	Src         string    `json:"src"`
	OriginalSrc string    `json:"originalSrc,omitempty"`
	AltText     string    `json:"altText,omitempty"`
	CropArea    *CropArea `json:"cropArea,omitempty"`
}

// QRLevel is a QR error-correction level.
type QRLevel string

// QR error-correction levels.
const (
	QRLevelL QRLevel = "L"
	QRLevelM QRLevel = "M"
	QRLevelQ QRLevel = "Q"
	QRLevelH QRLevel = "H"
)

// Valid reports whether l is a known level.
func (l QRLevel) Valid() bool {
	switch l {
	case QRLevelL, QRLevelM, QRLevelQ, QRLevelH:
		return true
	}
	return false
}

// QRCodeProps is the payload of qrCode elements.
type QRCodeProps struct {
	Value string  `json:"qrCodeValue"`
	Level QRLevel `json:"qrCodeLevel"`
	// Src caches the generated image as a data URL.
	Src        string `json:"src,omitempty"`
	Foreground string `json:"foreground,omitempty"`
	Background string `json:"background,omitempty"`
}

// BarcodeType is a linear barcode symbology.
type BarcodeType string

// Barcode symbologies.
const (
	BarcodeCode128    BarcodeType = "CODE128"
	BarcodeCode39     BarcodeType = "CODE39"
	BarcodeEAN13      BarcodeType = "EAN13"
	BarcodeEAN8       BarcodeType = "EAN8"
	BarcodeUPC        BarcodeType = "UPC"
	BarcodeITF14      BarcodeType = "ITF14"
	BarcodeMSI        BarcodeType = "MSI"
	BarcodePharmacode BarcodeType = "Pharmacode"
	BarcodeCodabar    BarcodeType = "Codabar"
)

// Valid reports whether b is a known symbology.
func (b BarcodeType) Valid() bool {
	switch b {
	case BarcodeCode128, BarcodeCode39, BarcodeEAN13, BarcodeEAN8, BarcodeUPC,
		BarcodeITF14, BarcodeMSI, BarcodePharmacode, BarcodeCodabar:
		return true
	}
	return false
}

// BarcodeProps is the payload of barcode elements.
type BarcodeProps struct {
	Value        string      `json:"barcodeValue"`
	Type         BarcodeType `json:"barcodeType"`
	DisplayValue bool        `json:"displayValue,omitempty"`
	// Src caches the generated image as a data URL.
	Src string `json:"src,omitempty"`
}

// Object is one visual element of a scene.
//
// Geometry is in canvas units relative to the parent frame: the scene for
// top-level objects, the group's top-left corner for group children.
type Object struct {
	ID   string
	Type ElementType
	Name string

	Left   float64
	Top    float64
	Width  float64
	Height float64
	ScaleX float64
	ScaleY float64
	// Angle is the rotation in degrees about the center of the scaled box.
	Angle float64

	Fill            string
	Stroke          string
	StrokeWidth     float64
	StrokeDashArray []float64
	Opacity         float64
	Visible         bool
	BorderRadius    float64
	Shadow          *Shadow

	Locked      bool
	Selectable  bool
	Layer       int
	Constraints Constraints

	Text    *TextProps
	Image   *ImageProps
	QRCode  *QRCodeProps
	Barcode *BarcodeProps

	// Points holds local-frame vertices for line, polygon and freehand
	// elements. A line has exactly two.
	Points []geom.Point
	// PathData is SVG path syntax for path and freehand elements.
	PathData string
	// Children are owned exclusively by a group.
	Children []*Object

	// Extra carries renderer properties the engine does not interpret.
	Extra map[string]any

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Touch stamps ModifiedAt with the current time.
func (o *Object) Touch() {
	o.ModifiedAt = now()
}

// Bounds returns the axis-aligned box in the parent frame, accounting for
// scale but not rotation.
func (o *Object) Bounds() geom.Rect {
	return geom.Bounds(o.Left, o.Top, o.Width, o.Height, o.ScaleX, o.ScaleY)
}

// RotatedBounds returns the box enclosing the object after its rotation.
func (o *Object) RotatedBounds() geom.Rect {
	return geom.RotatedBounds(o.Bounds(), o.Angle)
}

// ContainsPoint reports whether p falls inside the unrotated bounds.
func (o *Object) ContainsPoint(p geom.Point) bool {
	return o.Bounds().Contains(p)
}

// Transform maps the object's local frame into its parent frame.
func (o *Object) Transform() geom.Matrix {
	return geom.ObjectTransform(o.Left, o.Top, o.Width, o.Height, o.ScaleX, o.ScaleY, o.Angle)
}

// CanMove reports whether the object may be dragged on at least one axis.
func (o *Object) CanMove() bool {
	return !o.Locked && !(o.Constraints.LockMovementX && o.Constraints.LockMovementY)
}

// CanResize reports whether the object may be scaled on at least one axis.
func (o *Object) CanResize() bool {
	return !o.Locked && !(o.Constraints.LockScalingX && o.Constraints.LockScalingY)
}

// CanRotate reports whether the object may be rotated.
func (o *Object) CanRotate() bool {
	return !o.Locked && !o.Constraints.LockRotation
}

// CanDelete reports whether the object may be removed.
func (o *Object) CanDelete() bool {
	return !o.Locked
}

// SetLocked sets the lock flag together with every movement, scaling and
// rotation lock, and makes the object unselectable while locked.
func (o *Object) SetLocked(locked bool) {
	o.Locked = locked
	o.Selectable = !locked
	o.Constraints.LockMovementX = locked
	o.Constraints.LockMovementY = locked
	o.Constraints.LockScalingX = locked
	o.Constraints.LockScalingY = locked
	o.Constraints.LockRotation = locked
	o.Touch()
}

// IsGroup reports whether o is a group.
func (o *Object) IsGroup() bool {
	return o.Type == TypeGroup
}

// Clone returns a deep copy of o that keeps every ID.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	c.StrokeDashArray = slices.Clone(o.StrokeDashArray)
	c.Points = slices.Clone(o.Points)
	c.Extra = cloneMap(o.Extra)
	if o.Shadow != nil {
		s := *o.Shadow
		c.Shadow = &s
	}
	if o.Text != nil {
		t := *o.Text
		c.Text = &t
	}
	if o.Image != nil {
		img := *o.Image
		if o.Image.CropArea != nil {
			ca := *o.Image.CropArea
			img.CropArea = &ca
		}
		c.Image = &img
	}
	if o.QRCode != nil {
		q := *o.QRCode
		c.QRCode = &q
	}
	if o.Barcode != nil {
		b := *o.Barcode
		c.Barcode = &b
	}
	if o.Children != nil {
		c.Children = make([]*Object, len(o.Children))
		for i, ch := range o.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Duplicate returns a deep copy of o where o and every descendant get a
// fresh ID and creation stamp.
func (o *Object) Duplicate() *Object {
	c := o.Clone()
	c.Walk(func(ob *Object) {
		ob.ID = NewID()
		ob.CreatedAt = now()
		ob.ModifiedAt = ob.CreatedAt
	})
	return c
}

// Walk calls fn for o and then every descendant, depth first.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, ch := range o.Children {
		ch.Walk(fn)
	}
}

// cloneMap deep-copies the JSON-shaped values that appear in Extra and
// scene metadata.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := maps.Clone(m)
	for k, v := range c {
		c[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}
