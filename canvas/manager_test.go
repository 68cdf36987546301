package canvas

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/ruler"
)

// newManager returns a manager over a 400×300 scene holding objs, with
// all warnings collected into the returned slice.
func newManager(t *testing.T, objs ...*model.Object) (*Manager, *[]Warning) {
	t.Helper()
	s := model.NewScene(400, 300, ruler.Pixels)
	s.Objects = objs
	var (
		mu  sync.Mutex
		got []Warning
	)
	m := New(s, WithWarningHandler(func(w Warning) {
		mu.Lock()
		got = append(got, w)
		mu.Unlock()
	}))
	return m, &got
}

func rect(left, top, w, h float64) *model.Object {
	o := model.NewRectangle(left, top, w, h)
	o.StrokeWidth = 0
	return o
}

func TestNewDefaults(t *testing.T) {
	m := New(nil)
	s := m.Scene()
	assert.Equal(t, 400.0, s.Width)
	assert.Equal(t, 300.0, s.Height)
	assert.False(t, m.IsDirty())
	assert.Equal(t, geom.DefaultViewport(), m.Viewport())
	assert.Equal(t, SelectionNone, m.Selection().Type)
}

func TestAddObject(t *testing.T) {
	m, _ := newManager(t)
	r := rect(10, 10, 20, 20)
	require.NoError(t, m.AddObject(r))
	assert.True(t, m.IsDirty())
	assert.ErrorIs(t, m.AddObject(r), ErrDuplicateID)

	bad := rect(0, 0, 10, 10)
	bad.Width = 0
	var verr *model.ValidationError
	require.ErrorAs(t, m.AddObject(bad), &verr)
	assert.Equal(t, []string{r.ID}, m.Order())
}

func TestUpdateObjectRollsBack(t *testing.T) {
	r := rect(10, 10, 20, 20)
	m, _ := newManager(t, r)

	require.NoError(t, m.UpdateObject(r.ID, func(o *model.Object) { o.Fill = "#00ff00" }))
	assert.Equal(t, "#00ff00", m.Object(r.ID).Fill)

	err := m.UpdateObject(r.ID, func(o *model.Object) { o.Opacity = 2 })
	require.Error(t, err)
	assert.Equal(t, 1.0, m.Object(r.ID).Opacity)
}

func TestDuplicateSelected(t *testing.T) {
	r := rect(50, 50, 30, 30)
	m, _ := newManager(t, r)
	require.True(t, m.SelectObject(r.ID))

	ids := m.DuplicateSelected()
	require.Len(t, ids, 1)
	assert.NotEqual(t, r.ID, ids[0])

	d := m.Object(ids[0])
	assert.Equal(t, 70.0, d.Left)
	assert.Equal(t, 70.0, d.Top)

	sel := m.Selection()
	assert.Equal(t, []string{ids[0]}, sel.IDs)
	assert.Equal(t, ids[0], sel.ActiveID)
	assert.Equal(t, []string{r.ID, ids[0]}, m.Order())
}

func TestDuplicateOffsetOption(t *testing.T) {
	r := rect(50, 50, 30, 30)
	s := model.NewScene(400, 300, ruler.Pixels)
	s.Objects = []*model.Object{r}
	m := New(s, WithDuplicateOffset(5))
	m.SelectObject(r.ID)
	ids := m.DuplicateSelected()
	assert.Equal(t, 55.0, m.Object(ids[0]).Left)
}

func TestDistributeHorizontal(t *testing.T) {
	objs := []*model.Object{rect(100, 0, 10, 10), rect(0, 0, 10, 10), rect(40, 0, 10, 10), rect(5, 0, 10, 10)}
	m, _ := newManager(t, objs...)
	require.Equal(t, 4, m.SelectAll())

	assert.Equal(t, 2, m.DistributeSelected(Horizontal))
	assert.InDelta(t, 0, m.Object(objs[1].ID).Left, 1e-9)
	assert.InDelta(t, 100.0/3, m.Object(objs[3].ID).Left, 1e-9)
	assert.InDelta(t, 200.0/3, m.Object(objs[2].ID).Left, 1e-9)
	assert.InDelta(t, 100, m.Object(objs[0].ID).Left, 1e-9)
}

func TestDistributeNeedsThree(t *testing.T) {
	a, b := rect(0, 0, 10, 10), rect(50, 0, 10, 10)
	m, _ := newManager(t, a, b)
	m.SelectAll()
	assert.Zero(t, m.DistributeSelected(Vertical))
	assert.False(t, m.IsDirty())
}

func TestAlignLeft(t *testing.T) {
	objs := []*model.Object{rect(30, 0, 10, 10), rect(60, 20, 20, 10), rect(90, 40, 30, 10)}
	m, _ := newManager(t, objs...)
	m.SelectAll()

	assert.Equal(t, 3, m.AlignSelected(AlignLeft))
	for _, o := range objs {
		assert.Equal(t, 0.0, m.Object(o.ID).Left)
	}

	m.AlignSelected(AlignRight)
	for _, o := range objs {
		got := m.Object(o.ID)
		assert.InDelta(t, 400, got.Left+got.Width, 1e-9)
	}

	m.AlignSelected(AlignMiddle)
	for _, o := range objs {
		assert.InDelta(t, 145, m.Object(o.ID).Top, 1e-9)
	}
}

func TestAlignUsesRotatedBounds(t *testing.T) {
	a := rect(100, 100, 40, 20)
	a.Angle = 90
	b := rect(50, 50, 10, 10)
	m, _ := newManager(t, a, b)
	m.SelectAll()
	m.AlignSelected(AlignLeft)

	// A 40×20 box turned 90° is 20 wide, centered 20 in from its left.
	assert.InDelta(t, 0, m.Object(a.ID).RotatedBounds().Left(), 1e-9)
	assert.InDelta(t, -10, m.Object(a.ID).Left, 1e-9)
}

func TestAlignSingleIsNoop(t *testing.T) {
	r := rect(30, 30, 10, 10)
	m, _ := newManager(t, r)
	m.SelectObject(r.ID)
	assert.Zero(t, m.AlignSelected(AlignLeft))
	assert.Equal(t, 30.0, m.Object(r.ID).Left)

	_, err := ParseEdge("diagonal")
	assert.Error(t, err)
}

func TestZOrder(t *testing.T) {
	a, b, c := rect(0, 0, 5, 5), rect(0, 0, 5, 5), rect(0, 0, 5, 5)
	m, _ := newManager(t, a, b, c)

	assert.False(t, m.SendBackward(a.ID))
	assert.False(t, m.BringForward(c.ID))
	assert.False(t, m.IsDirty())
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, m.Order())

	assert.True(t, m.BringToFront(a.ID))
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, m.Order())
	assert.True(t, m.SendToBack(c.ID))
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, m.Order())
	assert.True(t, m.SendBackward(a.ID))
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, m.Order())
	assert.True(t, m.IsDirty())

	assert.False(t, m.BringToFront("missing"))
}

func TestGroupUngroupRoundTrip(t *testing.T) {
	a := rect(10, 20, 30, 40)
	b := rect(100, 50, 20, 20)
	b.Angle = 45
	c := rect(200, 200, 10, 10)
	m, _ := newManager(t, a, c, b)
	before := map[int]geom.Rect{0: a.RotatedBounds(), 1: b.RotatedBounds()}

	m.SelectObjects([]string{a.ID, b.ID})
	gid := m.GroupSelected()
	require.NotEmpty(t, gid)
	assert.Equal(t, []string{c.ID, gid}, m.Order())
	assert.Equal(t, []string{gid}, m.Selection().IDs)

	g := m.Object(gid)
	require.Len(t, g.Children, 2)
	assert.Equal(t, a.ID, g.Children[0].ID)

	ids := m.UngroupSelected()
	require.Len(t, ids, 2)
	assert.Equal(t, []string{c.ID, ids[0], ids[1]}, m.Order())
	assert.NotEqual(t, a.ID, ids[0])
	assert.NotEqual(t, b.ID, ids[1])
	for i, id := range ids {
		got := m.Object(id).RotatedBounds()
		want := before[i]
		assert.InDelta(t, want.X, got.X, 1e-9)
		assert.InDelta(t, want.Y, got.Y, 1e-9)
		assert.InDelta(t, want.Width, got.Width, 1e-9)
		assert.InDelta(t, want.Height, got.Height, 1e-9)
	}
	assert.Equal(t, 45.0, m.Object(ids[1]).Angle)
}

func TestUngroupTransformedGroup(t *testing.T) {
	a := rect(0, 0, 10, 10)
	b := rect(30, 0, 10, 10)
	m, _ := newManager(t, a, b)
	m.SelectAll()
	gid := m.GroupSelected()
	require.NoError(t, m.UpdateObject(gid, func(g *model.Object) {
		g.ScaleX, g.ScaleY = 2, 2
	}))
	m.SelectObject(gid)
	ids := m.UngroupSelected()
	require.Len(t, ids, 2)

	second := m.Object(ids[1])
	assert.InDelta(t, 60, second.Left, 1e-9)
	assert.InDelta(t, 2, second.ScaleX, 1e-9)
	assert.InDelta(t, 20, second.Bounds().Width, 1e-9)
}

func TestGroupNeedsTwo(t *testing.T) {
	a := rect(0, 0, 10, 10)
	m, _ := newManager(t, a)
	m.SelectObject(a.ID)
	assert.Empty(t, m.GroupSelected())
	assert.Nil(t, m.UngroupSelected())
}

func TestLockedWarnings(t *testing.T) {
	a, b := rect(0, 0, 10, 10), rect(20, 0, 10, 10)
	m, warnings := newManager(t, a, b)
	m.SelectAll()
	m.LockObject(a.ID, true)

	assert.Equal(t, 1, m.DeleteSelected())
	assert.Equal(t, []string{a.ID}, m.Order())
	require.Len(t, *warnings, 1)
	assert.Equal(t, WarnLocked, (*warnings)[0].Kind)
	assert.Equal(t, a.ID, (*warnings)[0].ObjectID)

	assert.False(t, m.SelectObject(a.ID))
	assert.False(t, m.RemoveObject(a.ID))
	require.NoError(t, m.UpdateObject(a.ID, func(o *model.Object) { o.Left = 99 }))
	assert.Equal(t, 0.0, m.Object(a.ID).Left)

	queued := m.Warnings()
	assert.Len(t, queued, 4)
	assert.Empty(t, m.Warnings(), "Warnings drains the queue")

	m.LockObject(a.ID, false)
	assert.True(t, m.RemoveObject(a.ID))
}

func TestWarningQueueBounded(t *testing.T) {
	a := rect(0, 0, 10, 10)
	a.Selectable = false
	m := New(model.NewScene(100, 100, ruler.Pixels))
	require.NoError(t, m.AddObject(a))
	for range maxQueuedWarnings + 10 {
		m.SelectObject(a.ID)
	}
	assert.Len(t, m.Warnings(), maxQueuedWarnings)
}

func TestWarningHandlerMayReenter(t *testing.T) {
	a := rect(0, 0, 10, 10)
	a.Selectable = false
	s := model.NewScene(100, 100, ruler.Pixels)
	s.Objects = []*model.Object{a}

	var m *Manager
	var order []string
	m = New(s, WithWarningHandler(func(Warning) {
		order = m.Order()
	}))
	m.SelectObject(a.ID)
	assert.Equal(t, []string{a.ID}, order)
}

func TestCapabilitiesAreANDed(t *testing.T) {
	a, b := rect(0, 0, 10, 10), rect(20, 0, 10, 10)
	b.Constraints.LockRotation = true
	m, _ := newManager(t, a, b)

	m.SelectObject(a.ID)
	sel := m.Selection()
	assert.Equal(t, SelectionSingle, sel.Type)
	assert.True(t, sel.Capabilities.CanRotate)

	m.SelectAll()
	sel = m.Selection()
	assert.Equal(t, SelectionMultiple, sel.Type)
	assert.Equal(t, b.ID, sel.ActiveID)
	assert.False(t, sel.Capabilities.CanRotate)
	assert.True(t, sel.Capabilities.CanMove)
	assert.True(t, sel.Capabilities.CanDelete)

	m.ClearSelection()
	assert.Equal(t, Selection{Type: SelectionNone}, m.Selection())
}

func TestObjectsAt(t *testing.T) {
	a, b := rect(0, 0, 50, 50), rect(25, 25, 50, 50)
	hidden := rect(0, 0, 100, 100)
	hidden.Visible = false
	m, _ := newManager(t, a, b, hidden)
	assert.Equal(t, []string{b.ID, a.ID}, m.ObjectsAt(geom.Pt(30, 30)))
	assert.Empty(t, m.ObjectsAt(geom.Pt(90, 90)))
}

func TestMoveSelectedStayInCanvas(t *testing.T) {
	a := rect(10, 10, 20, 20)
	a.Constraints.StayInCanvas = true
	b := rect(10, 50, 20, 20)
	b.Constraints.LockMovementX = true
	m, warnings := newManager(t, a, b)
	m.SelectAll()

	m.MoveSelected(-50, 5)
	assert.Equal(t, 0.0, m.Object(a.ID).Left)
	assert.Equal(t, 15.0, m.Object(a.ID).Top)
	assert.Equal(t, 10.0, m.Object(b.ID).Left)
	assert.Equal(t, 55.0, m.Object(b.ID).Top)
	require.NotEmpty(t, *warnings)
	assert.Equal(t, WarnClamped, (*warnings)[0].Kind)
}

func TestOutOfBoundsWarning(t *testing.T) {
	m, warnings := newManager(t)
	require.NoError(t, m.AddObject(rect(390, 0, 20, 20)))
	require.Len(t, *warnings, 1)
	assert.Equal(t, WarnOutOfBounds, (*warnings)[0].Kind)
}

func TestSnapSelectedToGrid(t *testing.T) {
	a := rect(27, 31, 10, 10)
	m, _ := newManager(t, a)
	m.SelectObject(a.ID)
	m.SnapSelectedToGrid()
	got := m.Object(a.ID)
	assert.Equal(t, 20.0, got.Left)
	assert.Equal(t, 40.0, got.Top)
}

func TestDirtyTracking(t *testing.T) {
	a := rect(0, 0, 10, 10)
	m, _ := newManager(t, a)
	assert.False(t, m.IsDirty())

	m.SelectObject(a.ID)
	m.SetZoom(2, nil)
	assert.False(t, m.IsDirty(), "selection and view changes are not edits")

	m.SetObjectVisibility(a.ID, false)
	assert.True(t, m.IsDirty())
	m.MarkClean()
	assert.False(t, m.IsDirty())

	m.SetObjectVisibility(a.ID, false)
	assert.False(t, m.IsDirty(), "no-op mutation")

	m.SetLayer(a.ID, 3)
	assert.True(t, m.IsDirty())
}

func TestJSONRoundTrip(t *testing.T) {
	a := rect(5, 5, 10, 10)
	m, _ := newManager(t, a)
	m.SelectObject(a.ID)
	require.NoError(t, m.ResizeScene(500, 200))

	data, err := m.GetSceneJSON()
	require.NoError(t, err)

	other := New(nil)
	require.NoError(t, other.LoadFromJSON(data))
	assert.False(t, other.IsDirty())
	s := other.Scene()
	assert.Equal(t, 500.0, s.Width)
	assert.Equal(t, []string{a.ID}, other.Order())
}

func TestLoadFromJSONFailureKeepsScene(t *testing.T) {
	a := rect(5, 5, 10, 10)
	m, _ := newManager(t, a)
	m.SelectObject(a.ID)

	err := m.LoadFromJSON([]byte(`{"version":"9.0.0","objects":[]}`))
	require.ErrorIs(t, err, codec.ErrUnsupportedVersion)
	assert.Equal(t, []string{a.ID}, m.Order())
	assert.Equal(t, []string{a.ID}, m.Selection().IDs)

	require.Error(t, m.LoadFromJSON([]byte("not json")))
	assert.Equal(t, []string{a.ID}, m.Order())
}

func TestImportMerge(t *testing.T) {
	a := rect(5, 5, 10, 10)
	m, _ := newManager(t, a)
	m.SelectObject(a.ID)

	in := model.NewScene(100, 100, ruler.Pixels)
	in.Objects = []*model.Object{rect(0, 0, 20, 20)}
	data, err := codec.Marshal(in)
	require.NoError(t, err)

	require.NoError(t, m.Import(data, export.ImportOptions{Merge: true}))
	assert.Len(t, m.Order(), 2)
	assert.Equal(t, []string{a.ID}, m.Selection().IDs)
	assert.True(t, m.IsDirty())

	require.NoError(t, m.Import(data, export.ImportOptions{}))
	assert.Len(t, m.Order(), 1)
	assert.Equal(t, in.ID, m.Scene().ID)
	assert.Empty(t, m.Selection().IDs)
}

func TestInsertGeneratedConcurrent(t *testing.T) {
	m, _ := newManager(t)
	proto := rect(0, 0, 10, 10)

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.InsertGenerated(context.Background(), func(context.Context) (*model.Object, error) {
				return proto.Clone(), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ids := m.Order()
	require.Len(t, ids, n)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestInsertGeneratedFailure(t *testing.T) {
	m, _ := newManager(t)
	boom := errors.New("qr service down")
	_, err := m.InsertGenerated(context.Background(), func(context.Context) (*model.Object, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = m.InsertGenerated(ctx, func(context.Context) (*model.Object, error) {
		cancel()
		return rect(0, 0, 5, 5), nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Order())
	assert.False(t, m.IsDirty())
}

func TestExport(t *testing.T) {
	a := rect(5, 5, 10, 10)
	m, _ := newManager(t, a)
	var buf bytes.Buffer
	require.NoError(t, m.Export(context.Background(), &buf, export.FormatJSON, export.Options{}))
	s, err := codec.Unmarshal(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, s.Objects, 1)
}

func TestEditsRejectNonFiniteValues(t *testing.T) {
	nan := math.NaN()
	r := rect(10, 10, 20, 20)
	m, warnings := newManager(t, r)
	m.MarkClean()

	bad := rect(0, 0, 10, 10)
	bad.Width = nan
	var verr *model.ValidationError
	require.ErrorAs(t, m.AddObject(bad), &verr)

	require.ErrorAs(t, m.UpdateObject(r.ID, func(o *model.Object) { o.Left = math.Inf(1) }), &verr)
	require.ErrorAs(t, m.UpdateObject(r.ID, func(o *model.Object) { o.Opacity = nan }), &verr)
	require.ErrorAs(t, m.UpdateObject(r.ID, func(o *model.Object) { o.Fill = `red" onload="x` }), &verr)

	require.True(t, m.SelectObject(r.ID))
	m.MoveSelected(nan, 5)
	assert.Error(t, m.ResizeScene(nan, 100))
	assert.Error(t, m.ResizeScene(math.Inf(1), 100))
	m.SetBackground("not-a-color(", "")

	assert.Equal(t, 10.0, m.Object(r.ID).Left)
	assert.Equal(t, 400.0, m.Scene().Width)
	assert.False(t, m.IsDirty())
	require.NotEmpty(t, *warnings)
	assert.Equal(t, WarnInvalid, (*warnings)[len(*warnings)-1].Kind)

	_, err := m.GetSceneJSON()
	assert.NoError(t, err)
}
