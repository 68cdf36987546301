package codec

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
)

// ObjectRecord is the wire form of one scene object.
type ObjectRecord struct {
	ID string `json:"id"`
	// Type is the renderer object type, kept for consumers that only know
	// the renderer vocabulary. ElementType is authoritative on read.
	Type        string         `json:"type"`
	ElementType string         `json:"elementType"`
	CustomProps CustomProps    `json:"customProps"`
	FabricProps map[string]any `json:"fabricProps"`
	Version     string         `json:"version"`
	Created     time.Time      `json:"created"`
	Modified    time.Time      `json:"modified"`
}

// CustomProps holds the modelled object fields. On the wire the payload of
// the element type (text, image, qrCode or barcode properties) is flattened
// into the same JSON object as the common fields.
type CustomProps struct {
	Common
	Text    *model.TextProps    `json:"-"`
	Image   *model.ImageProps   `json:"-"`
	QRCode  *model.QRCodeProps  `json:"-"`
	Barcode *model.BarcodeProps `json:"-"`

	raw json.RawMessage
}

// Common is the part of CustomProps shared by every element type.
type Common struct {
	Name            string            `json:"name,omitempty"`
	Left            float64           `json:"left"`
	Top             float64           `json:"top"`
	Width           float64           `json:"width"`
	Height          float64           `json:"height"`
	ScaleX          float64           `json:"scaleX"`
	ScaleY          float64           `json:"scaleY"`
	Angle           float64           `json:"angle"`
	Fill            string            `json:"fill"`
	Stroke          string            `json:"stroke"`
	StrokeWidth     float64           `json:"strokeWidth"`
	StrokeDashArray []float64         `json:"strokeDashArray,omitempty"`
	Opacity         float64           `json:"opacity"`
	Visible         bool              `json:"visible"`
	BorderRadius    float64           `json:"borderRadius,omitempty"`
	Shadow          *model.Shadow     `json:"shadow,omitempty"`
	Locked          bool              `json:"locked"`
	Selectable      bool              `json:"selectable"`
	Layer           int               `json:"layer"`
	Constraints     model.Constraints `json:"constraints"`
	Points          []geom.Point      `json:"points,omitempty"`
	PathData        string            `json:"path,omitempty"`
	Objects         []ObjectRecord    `json:"objects,omitempty"`
}

func (p CustomProps) payload() any {
	switch {
	case p.Text != nil:
		return p.Text
	case p.Image != nil:
		return p.Image
	case p.QRCode != nil:
		return p.QRCode
	case p.Barcode != nil:
		return p.Barcode
	}
	return nil
}

// MarshalJSON writes the common fields followed by the payload fields.
func (p CustomProps) MarshalJSON() ([]byte, error) {
	common, err := json.Marshal(p.Common)
	if err != nil {
		return nil, err
	}
	pl := p.payload()
	if pl == nil {
		return common, nil
	}
	extra, err := json.Marshal(pl)
	if err != nil {
		return nil, err
	}
	return mergeObjects(common, extra), nil
}

// UnmarshalJSON reads the common fields and retains the bytes so that
// Deserialize can decode the payload once the element type is known.
func (p *CustomProps) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.Common); err != nil {
		return err
	}
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// mergeObjects joins two encoded JSON objects into one.
func mergeObjects(a, b []byte) []byte {
	a = bytes.TrimSpace(a)
	b = bytes.TrimSpace(b)
	if len(b) <= 2 {
		return a
	}
	if len(a) <= 2 {
		return b
	}
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a[:len(a)-1]...)
	out = append(out, ',')
	out = append(out, b[1:]...)
	return out
}

// Serialize converts an object, and for groups its children, to a record.
// The record shares no memory with o.
func Serialize(o *model.Object) ObjectRecord {
	return serialize(o.Clone())
}

// serialize builds the record of an object the caller owns.
func serialize(o *model.Object) ObjectRecord {
	rec := ObjectRecord{
		ID:          o.ID,
		Type:        o.Type.FabricType(),
		ElementType: string(o.Type),
		FabricProps: o.Extra,
		Version:     FormatVersion,
		Created:     o.CreatedAt,
		Modified:    o.ModifiedAt,
		CustomProps: CustomProps{
			Common: Common{
				Name:            o.Name,
				Left:            o.Left,
				Top:             o.Top,
				Width:           o.Width,
				Height:          o.Height,
				ScaleX:          o.ScaleX,
				ScaleY:          o.ScaleY,
				Angle:           o.Angle,
				Fill:            o.Fill,
				Stroke:          o.Stroke,
				StrokeWidth:     o.StrokeWidth,
				StrokeDashArray: o.StrokeDashArray,
				Opacity:         o.Opacity,
				Visible:         o.Visible,
				BorderRadius:    o.BorderRadius,
				Shadow:          o.Shadow,
				Locked:          o.Locked,
				Selectable:      o.Selectable,
				Layer:           o.Layer,
				Constraints:     o.Constraints,
				Points:          o.Points,
				PathData:        o.PathData,
			},
			Text:    o.Text,
			Image:   o.Image,
			QRCode:  o.QRCode,
			Barcode: o.Barcode,
		},
	}
	for _, c := range o.Children {
		rec.CustomProps.Objects = append(rec.CustomProps.Objects, serialize(c))
	}
	return rec
}

// Deserialize rebuilds an object from its record, dispatching on
// ElementType to decode the type payload.
//
// Unknown element types and unsupported versions fail with a
// *DeserializationError; objects that decode but break model invariants
// fail with a *model.ValidationError. The object shares no memory with rec.
func Deserialize(rec ObjectRecord) (*model.Object, error) {
	o, err := decodeObject(rec)
	if err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// decodeObject converts rec, recursing into group children, without
// validating.
func decodeObject(rec ObjectRecord) (*model.Object, error) {
	t, err := model.ParseElementType(rec.ElementType)
	if err != nil {
		return nil, &DeserializationError{ObjectID: rec.ID, ElementType: rec.ElementType, Err: ErrUnknownElementType}
	}
	if rec.Version != "" {
		if err := CheckVersion(rec.Version); err != nil {
			return nil, &DeserializationError{ObjectID: rec.ID, Version: rec.Version, Err: ErrUnsupportedVersion}
		}
	}

	c := rec.CustomProps.Common
	o := &model.Object{
		ID:              rec.ID,
		Type:            t,
		Name:            c.Name,
		Left:            c.Left,
		Top:             c.Top,
		Width:           c.Width,
		Height:          c.Height,
		ScaleX:          c.ScaleX,
		ScaleY:          c.ScaleY,
		Angle:           c.Angle,
		Fill:            c.Fill,
		Stroke:          c.Stroke,
		StrokeWidth:     c.StrokeWidth,
		StrokeDashArray: c.StrokeDashArray,
		Opacity:         c.Opacity,
		Visible:         c.Visible,
		BorderRadius:    c.BorderRadius,
		Shadow:          c.Shadow,
		Locked:          c.Locked,
		Selectable:      c.Selectable,
		Layer:           c.Layer,
		Constraints:     c.Constraints,
		Points:          c.Points,
		PathData:        c.PathData,
		Extra:           rec.FabricProps,
		CreatedAt:       rec.Created,
		ModifiedAt:      rec.Modified,
	}

	if err := decodePayload(o, rec.CustomProps); err != nil {
		return nil, malformed(rec.ID, "type payload", err)
	}

	if t == model.TypeGroup {
		for _, cr := range c.Objects {
			child, err := decodeObject(cr)
			if err != nil {
				return nil, err
			}
			o.Children = append(o.Children, child)
		}
	}
	return o, nil
}

// decodePayload sets the payload pointer for o.Type. Records read from JSON
// decode it from the retained customProps bytes; records built in memory
// carry it in the typed fields.
func decodePayload(o *model.Object, p CustomProps) error {
	var dst any
	switch o.Type {
	case model.TypeText, model.TypeUUID:
		o.Text = p.Text
		if p.raw != nil {
			o.Text = new(model.TextProps)
			dst = o.Text
		}
	case model.TypeImage:
		o.Image = p.Image
		if p.raw != nil {
			o.Image = new(model.ImageProps)
			dst = o.Image
		}
	case model.TypeQRCode:
		o.QRCode = p.QRCode
		if p.raw != nil {
			o.QRCode = new(model.QRCodeProps)
			dst = o.QRCode
		}
	case model.TypeBarcode:
		o.Barcode = p.Barcode
		if p.raw != nil {
			o.Barcode = new(model.BarcodeProps)
			dst = o.Barcode
		}
	}
	if dst == nil {
		return nil
	}
	return json.Unmarshal(p.raw, dst)
}

// MarshalObject encodes one object as JSON.
func MarshalObject(o *model.Object) ([]byte, error) {
	return json.Marshal(Serialize(o))
}

// UnmarshalObject decodes and validates one object record.
func UnmarshalObject(data []byte) (*model.Object, error) {
	var rec ObjectRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, malformed("", "object record", err)
	}
	return Deserialize(rec)
}
