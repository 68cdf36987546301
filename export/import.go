package export

import (
	"fmt"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
)

// ImportOptions control how imported content lands in a scene.
type ImportOptions struct {
	// Merge appends the imported objects to the existing scene instead of
	// replacing it.
	Merge bool
	// PreserveObjectIDs keeps imported IDs on merge when they do not clash
	// with an existing object. Clashing objects always get fresh IDs.
	PreserveObjectIDs bool
	// CenterContent moves the imported objects so their bounds are centered
	// on the canvas.
	CenterContent bool
	// FitToCanvas scales the imported objects down, keeping their aspect
	// ratio, so their bounds fit inside the canvas. Content that already
	// fits is not enlarged.
	FitToCanvas bool
	// Scale multiplies the imported objects' size and position. Zero
	// means 1.
	Scale float64
}

// Import decodes data and combines it with current according to opts,
// returning the resulting scene. current is never modified. Any decoding
// or validation failure fails the whole import.
//
// Without Merge the decoded scene is returned as-is apart from placement
// options. With Merge, a copy of current receives the imported objects on
// top; scene-level settings of current are kept.
func Import(current *model.Scene, data []byte, opts ImportOptions) (*model.Scene, error) {
	in, err := codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	objs := in.Objects

	if opts.Scale > 0 && opts.Scale != 1 {
		for _, o := range objs {
			scaleObject(o, opts.Scale)
		}
	}

	out := in
	if opts.Merge && current != nil {
		out = current.Clone()
		for _, o := range objs {
			if !opts.PreserveObjectIDs || clashes(out, o) {
				id := o.ID
				o.Walk(func(ob *model.Object) { ob.ID = model.NewID() })
				labelkit.Logger().Debug("export: import assigned new id", "old", id, "new", o.ID)
			}
			out.Objects = append(out.Objects, o)
		}
		out.Touch()
	}

	place(out, objs, opts)
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("export: import: %w", err)
	}
	labelkit.Logger().Info("export: scene imported", "objects", len(objs), "merge", opts.Merge)
	return out, nil
}

// clashes reports whether o or any descendant uses an ID already present
// anywhere in s.
func clashes(s *model.Scene, o *model.Object) bool {
	used := make(map[string]bool)
	for _, so := range s.Objects {
		so.Walk(func(ob *model.Object) { used[ob.ID] = true })
	}
	clash := false
	o.Walk(func(ob *model.Object) {
		if used[ob.ID] {
			clash = true
		}
	})
	return clash
}

func scaleObject(o *model.Object, k float64) {
	o.Left *= k
	o.Top *= k
	o.ScaleX *= k
	o.ScaleY *= k
}

// place applies FitToCanvas and CenterContent to objs within s.
func place(s *model.Scene, objs []*model.Object, opts ImportOptions) {
	if len(objs) == 0 || (!opts.FitToCanvas && !opts.CenterContent) {
		return
	}
	box := bounds(objs)
	if opts.FitToCanvas && box.Width > 0 && box.Height > 0 {
		k := min(s.Width/box.Width, s.Height/box.Height)
		if k < 1 {
			for _, o := range objs {
				o.Left = box.X + (o.Left-box.X)*k
				o.Top = box.Y + (o.Top-box.Y)*k
				o.ScaleX *= k
				o.ScaleY *= k
			}
			box = bounds(objs)
		}
	}
	if opts.CenterContent {
		c := s.Bounds().Center()
		bc := box.Center()
		for _, o := range objs {
			o.Left += c.X - bc.X
			o.Top += c.Y - bc.Y
		}
	}
}

func bounds(objs []*model.Object) geom.Rect {
	b := objs[0].RotatedBounds()
	for _, o := range objs[1:] {
		b = b.Union(o.RotatedBounds())
	}
	return b
}
