package model

import (
	"fmt"

	"github.com/gogpu/labelkit/geom"
)

// ValidationError reports an object that breaks a basic invariant.
// It blocks the object from entering a scene.
type ValidationError struct {
	ObjectID string
	Type     ElementType
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.ObjectID == "" {
		return fmt.Sprintf("model: invalid %s: %s %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("model: invalid %s %s: %s %s", e.Type, e.ObjectID, e.Field, e.Reason)
}

func invalid(o *Object, field, reason string) error {
	return &ValidationError{ObjectID: o.ID, Type: o.Type, Field: field, Reason: reason}
}

// Validate checks o and, for groups, every descendant.
func (o *Object) Validate() error {
	if o == nil {
		return &ValidationError{Field: "object", Reason: "is nil"}
	}
	if o.ID == "" {
		return invalid(o, "id", "is empty")
	}
	info, ok := elements[o.Type]
	if !ok {
		return invalid(o, "elementType", "is unknown")
	}
	if !allFinite(o.Left, o.Top, o.Width, o.Height, o.ScaleX, o.ScaleY, o.Angle, o.Opacity, o.StrokeWidth, o.BorderRadius) {
		return invalid(o, "geometry", "must be finite")
	}
	if !allFinite(o.StrokeDashArray...) {
		return invalid(o, "strokeDashArray", "must be finite")
	}
	for _, p := range o.Points {
		if !allFinite(p.X, p.Y) {
			return invalid(o, "points", "must be finite")
		}
	}
	if !IsColor(o.Fill) {
		return invalid(o, "fill", fmt.Sprintf("%q is not a color", o.Fill))
	}
	if !IsColor(o.Stroke) {
		return invalid(o, "stroke", fmt.Sprintf("%q is not a color", o.Stroke))
	}
	if o.Shadow != nil {
		if !IsColor(o.Shadow.Color) {
			return invalid(o, "shadow color", fmt.Sprintf("%q is not a color", o.Shadow.Color))
		}
		if !allFinite(o.Shadow.Blur, o.Shadow.OffsetX, o.Shadow.OffsetY) {
			return invalid(o, "shadow", "must be finite")
		}
	}
	if info.sized && (o.Width <= 0 || o.Height <= 0) {
		return invalid(o, "width/height", "must be positive")
	}
	if o.Width < 0 || o.Height < 0 {
		return invalid(o, "width/height", "must not be negative")
	}
	if o.ScaleX == 0 || o.ScaleY == 0 {
		return invalid(o, "scaleX/scaleY", "must be non-zero")
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return invalid(o, "opacity", "must be within [0, 1]")
	}
	return o.validatePayload()
}

func (o *Object) validatePayload() error {
	switch o.Type {
	case TypeText, TypeUUID:
		if o.Text == nil {
			return invalid(o, "text", "is required")
		}
		if !finite(o.Text.FontSize) || o.Text.FontSize <= 0 {
			return invalid(o, "fontSize", "must be positive")
		}
		if !allFinite(o.Text.LineHeight, o.Text.CharSpacing) {
			return invalid(o, "lineHeight/charSpacing", "must be finite")
		}
		if !IsFontFamily(o.Text.FontFamily) {
			return invalid(o, "fontFamily", fmt.Sprintf("%q is not a font family", o.Text.FontFamily))
		}
	case TypeImage:
		if o.Image == nil || (o.Image.Src == "" && o.Image.OriginalSrc == "") {
			return invalid(o, "src", "is required")
		}
	case TypeQRCode:
		if o.QRCode == nil || o.QRCode.Value == "" {
			return invalid(o, "qrCodeValue", "is required")
		}
		if !o.QRCode.Level.Valid() {
			return invalid(o, "qrCodeLevel", fmt.Sprintf("%q is not one of L, M, Q, H", o.QRCode.Level))
		}
		if !IsColor(o.QRCode.Foreground) || !IsColor(o.QRCode.Background) {
			return invalid(o, "qrCode colors", "must be colors")
		}
	case TypeBarcode:
		if o.Barcode == nil || o.Barcode.Value == "" {
			return invalid(o, "barcodeValue", "is required")
		}
		if !o.Barcode.Type.Valid() {
			return invalid(o, "barcodeType", fmt.Sprintf("%q is unknown", o.Barcode.Type))
		}
	case TypeLine:
		if len(o.Points) != 2 {
			return invalid(o, "points", "must hold exactly two points")
		}
	case TypePolygon:
		if len(o.Points) < 3 {
			return invalid(o, "points", "must hold at least three points")
		}
	case TypeFreehand:
		if len(o.Points) < 2 && o.PathData == "" {
			return invalid(o, "points", "must hold at least two points")
		}
	case TypePath:
		if _, err := geom.ParsePathData(o.PathData); err != nil {
			return invalid(o, "path", err.Error())
		}
	case TypeGroup:
		if len(o.Children) == 0 {
			return invalid(o, "children", "must not be empty")
		}
		seen := make(map[string]bool, len(o.Children))
		for _, ch := range o.Children {
			if err := ch.Validate(); err != nil {
				return err
			}
			if seen[ch.ID] {
				return invalid(o, "children", fmt.Sprintf("duplicate id %s", ch.ID))
			}
			seen[ch.ID] = true
		}
	}
	return nil
}
