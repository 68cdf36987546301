// Package model defines the in-memory representation of a label: the Scene
// and the SceneObjects it paints, plus constructors with type-appropriate
// defaults and the validation rules every object must satisfy before it may
// enter a scene.
//
// An Object is a tagged union discriminated by its ElementType. Payload
// pointers (Text, Image, QRCode, Barcode) are set only for the types that
// use them; Children is set only for groups. Renderer-specific properties
// the engine does not interpret travel in Extra.
package model

import "fmt"

// ElementType discriminates the kind of visual element.
type ElementType string

// Element types.
const (
	TypeText      ElementType = "text"
	TypeRectangle ElementType = "rectangle"
	TypeCircle    ElementType = "circle"
	TypeEllipse   ElementType = "ellipse"
	TypeLine      ElementType = "line"
	TypePolygon   ElementType = "polygon"
	TypeImage     ElementType = "image"
	TypeQRCode    ElementType = "qrCode"
	TypeBarcode   ElementType = "barcode"
	TypeUUID      ElementType = "uuid"
	TypeGroup     ElementType = "group"
	TypePath      ElementType = "path"
	TypeFreehand  ElementType = "freehand"
	TypeArrow     ElementType = "arrow"
	TypeTriangle  ElementType = "triangle"
	TypeDiamond   ElementType = "diamond"
	TypeStar      ElementType = "star"
)

// elementInfo holds per-type metadata.
type elementInfo struct {
	// fabric is the renderer object type the element maps to.
	fabric string
	// sized types need a positive width and height.
	sized bool
}

var elements = map[ElementType]elementInfo{
	TypeText:      {fabric: "textbox"},
	TypeRectangle: {fabric: "rect", sized: true},
	TypeCircle:    {fabric: "circle", sized: true},
	TypeEllipse:   {fabric: "ellipse", sized: true},
	TypeLine:      {fabric: "line"},
	TypePolygon:   {fabric: "polygon", sized: true},
	TypeImage:     {fabric: "image", sized: true},
	TypeQRCode:    {fabric: "image", sized: true},
	TypeBarcode:   {fabric: "image", sized: true},
	TypeUUID:      {fabric: "textbox"},
	TypeGroup:     {fabric: "group"},
	TypePath:      {fabric: "path"},
	TypeFreehand:  {fabric: "path"},
	TypeArrow:     {fabric: "polygon", sized: true},
	TypeTriangle:  {fabric: "triangle", sized: true},
	TypeDiamond:   {fabric: "polygon", sized: true},
	TypeStar:      {fabric: "polygon", sized: true},
}

// ElementTypes lists every element type in declaration order.
var ElementTypes = []ElementType{
	TypeText, TypeRectangle, TypeCircle, TypeEllipse, TypeLine, TypePolygon,
	TypeImage, TypeQRCode, TypeBarcode, TypeUUID, TypeGroup, TypePath,
	TypeFreehand, TypeArrow, TypeTriangle, TypeDiamond, TypeStar,
}

// ParseElementType validates s as an element type.
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(s)
	if !t.Valid() {
		return "", fmt.Errorf("model: unknown element type %q", s)
	}
	return t, nil
}

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	_, ok := elements[t]
	return ok
}

// FabricType returns the renderer object type name t is drawn as.
func (t ElementType) FabricType() string {
	return elements[t].fabric
}

// IsTextual reports whether t carries a Text payload.
func (t ElementType) IsTextual() bool {
	return t == TypeText || t == TypeUUID
}

// IsPolygonal reports whether t is drawn from an outline of points.
func (t ElementType) IsPolygonal() bool {
	switch t {
	case TypePolygon, TypeTriangle, TypeDiamond, TypeStar, TypeArrow:
		return true
	}
	return false
}
