package model

import (
	"fmt"
	"time"

	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/ruler"
)

// Scene defaults.
const (
	DefaultDPI        = 96
	DefaultGridSize   = 20
	DefaultBackground = "#ffffff"
)

// FormatVersion is the scene wire format version new scenes are written as.
const FormatVersion = "1.0.0"

// Scene is one label's canvas: its dimensions, settings and the ordered
// objects it paints. Objects later in the slice paint on top.
type Scene struct {
	ID        string
	ProjectID string
	LabelID   string

	// Width and Height are in canvas units.
	Width  float64
	Height float64
	// Units is the physical unit the label is designed in.
	Units ruler.Unit
	DPI   float64

	BackgroundColor string
	BackgroundImage string

	GridSize   float64
	SnapToGrid bool
	ShowGrid   bool

	Objects  []*Object
	Metadata map[string]any

	Created  time.Time
	Modified time.Time
	// Version is the wire format version the scene was read from or will
	// be written as.
	Version string
}

// NewScene creates an empty scene of the given canvas size.
func NewScene(width, height float64, units ruler.Unit) *Scene {
	ts := now()
	return &Scene{
		ID:              NewID(),
		Width:           width,
		Height:          height,
		Units:           units,
		DPI:             DefaultDPI,
		BackgroundColor: DefaultBackground,
		GridSize:        DefaultGridSize,
		SnapToGrid:      true,
		ShowGrid:        true,
		Metadata:        map[string]any{},
		Created:         ts,
		Modified:        ts,
		Version:         FormatVersion,
	}
}

// Bounds returns the canvas rectangle.
func (s *Scene) Bounds() geom.Rect {
	return geom.Rect{Width: s.Width, Height: s.Height}
}

// Touch stamps the scene's Modified time.
func (s *Scene) Touch() {
	s.Modified = now()
}

// Index returns the paint position of the top-level object id, or -1.
func (s *Scene) Index(id string) int {
	for i, o := range s.Objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the top-level object id, or nil.
func (s *Scene) Find(id string) *Object {
	if i := s.Index(id); i >= 0 {
		return s.Objects[i]
	}
	return nil
}

// ContentBounds returns the union of every visible object's rotated
// bounds and whether there was any content.
func (s *Scene) ContentBounds() (geom.Rect, bool) {
	var (
		b     geom.Rect
		found bool
	)
	for _, o := range s.Objects {
		if !o.Visible {
			continue
		}
		r := o.RotatedBounds()
		if !found {
			b, found = r, true
			continue
		}
		b = b.Union(r)
	}
	return b, found
}

// Clone returns a deep copy of s.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Metadata = cloneMap(s.Metadata)
	if s.Objects != nil {
		c.Objects = make([]*Object, len(s.Objects))
		for i, o := range s.Objects {
			c.Objects[i] = o.Clone()
		}
	}
	return &c
}

// Validate checks scene dimensions, every object, and that IDs are unique
// across the scene including group children.
func (s *Scene) Validate() error {
	if !finite(s.Width) || !finite(s.Height) || s.Width <= 0 || s.Height <= 0 {
		return &ValidationError{Field: "scene width/height", Reason: "must be positive and finite"}
	}
	if !finite(s.DPI) || s.DPI < 0 {
		return &ValidationError{Field: "scene dpi", Reason: "must be finite and not negative"}
	}
	if err := ValidateColor("scene backgroundColor", s.BackgroundColor); err != nil {
		return err
	}
	seen := make(map[string]bool, len(s.Objects))
	for _, o := range s.Objects {
		if err := o.Validate(); err != nil {
			return err
		}
		var dup *Object
		o.Walk(func(ob *Object) {
			if dup == nil && seen[ob.ID] {
				dup = ob
			}
			seen[ob.ID] = true
		})
		if dup != nil {
			return &ValidationError{ObjectID: dup.ID, Type: dup.Type, Field: "id", Reason: fmt.Sprintf("duplicates another object in scene %s", s.ID)}
		}
	}
	return nil
}

// HasID reports whether id is used by any top-level object.
func (s *Scene) HasID(id string) bool {
	return s.Index(id) >= 0
}
