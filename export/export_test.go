package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/ruler"
)

// recorder is a Painter that logs the calls it receives.
type recorder struct {
	calls  []string
	width  float64
	height float64
	bg     string
	depth  int
	texts  []TextBlock
	images []image.Image
}

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Begin(w, h float64, bg string) error {
	r.width, r.height, r.bg = w, h, bg
	return nil
}
func (r *recorder) Save()                   { r.depth++ }
func (r *recorder) Restore()                { r.depth-- }
func (r *recorder) Transform(_ geom.Matrix) {}
func (r *recorder) Rect(w, h, radius float64, st Style) {
	r.log("rect %gx%g fill=%s opacity=%g", w, h, st.Fill, st.Opacity)
}
func (r *recorder) Ellipse(_, _, rx, ry float64, _ Style) { r.log("ellipse %gx%g", rx, ry) }
func (r *recorder) Polygon(pts []geom.Point, closed bool, _ Style) {
	r.log("polygon %d closed=%t", len(pts), closed)
}
func (r *recorder) Path(segs []geom.PathSegment, _ Style) { r.log("path %d", len(segs)) }
func (r *recorder) Text(t TextBlock) {
	r.texts = append(r.texts, t)
	r.log("text %q", strings.Join(t.Lines, "|"))
}
func (r *recorder) Image(img image.Image, w, h, _ float64) {
	r.images = append(r.images, img)
	r.log("image %gx%g", w, h)
}
func (r *recorder) End() error { return nil }

// images is an ImageSource returning a fixed-size image for every source
// and recording what was asked for.
type images struct {
	asked []string
	err   error
}

func (s *images) Image(_ context.Context, src string) (image.Image, error) {
	s.asked = append(s.asked, src)
	if s.err != nil {
		return nil, s.err
	}
	return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
}

func testScene() *model.Scene {
	s := model.NewScene(200, 100, ruler.Pixels)
	s.Objects = []*model.Object{
		model.NewRectangle(0, 0, 50, 20),
		model.NewCircle(60, 0, 10),
		model.NewText("A\nB", 0, 40),
	}
	return s
}

func TestRenderOrderAndScale(t *testing.T) {
	s := testScene()
	hidden := model.NewRectangle(5, 5, 5, 5)
	hidden.Visible = false
	s.Objects = append(s.Objects, hidden)

	rec := &recorder{}
	require.NoError(t, Render(context.Background(), s, rec, Options{Multiplier: 2, Images: &images{}}))

	assert.Equal(t, 400.0, rec.width)
	assert.Equal(t, 200.0, rec.height)
	assert.Equal(t, "#ffffff", rec.bg)
	assert.Zero(t, rec.depth, "unbalanced Save/Restore")
	assert.Equal(t, []string{
		"rect 50x20 fill=#ffffff opacity=1",
		"ellipse 10x10",
		`text "A|B"`,
	}, rec.calls)
	require.Len(t, rec.texts, 1)
	assert.Len(t, rec.texts[0].Advances, 2)
}

func TestRenderTransparentAndDPI(t *testing.T) {
	s := testScene()
	s.BackgroundImage = "bg.png"
	src := &images{}

	rec := &recorder{}
	require.NoError(t, Render(context.Background(), s, rec, Options{DPI: 300, Transparent: true, Images: src}))
	assert.Empty(t, rec.bg)
	assert.InDelta(t, 200*300/96.0, rec.width, 1e-9)
	assert.Empty(t, src.asked, "transparent export skips the background image")
}

func TestRenderGroupOpacity(t *testing.T) {
	a := model.NewRectangle(0, 0, 10, 10)
	a.Opacity = 0.5
	g := model.NewGroup([]*model.Object{a, model.NewRectangle(20, 0, 10, 10)})
	g.Opacity = 0.5
	s := model.NewScene(100, 100, ruler.Pixels)
	s.Objects = []*model.Object{g}

	rec := &recorder{}
	require.NoError(t, Render(context.Background(), s, rec, Options{Images: &images{}}))
	assert.Equal(t, []string{
		"rect 10x10 fill=#ffffff opacity=0.25",
		"rect 10x10 fill=#ffffff opacity=0.5",
	}, rec.calls)
}

func TestRenderGeneratedSources(t *testing.T) {
	qr := model.NewQRCode("hello:world", model.QRLevelH, 0, 0, 50)
	bc := model.NewBarcode("123", model.BarcodeCode128, 0, 60, 100, 30)
	cached := model.NewBarcode("456", model.BarcodeCode128, 0, 60, 100, 30)
	cached.Barcode.Src = "data:image/png;base64,AAAA"
	empty := model.NewQRCode("", model.QRLevelM, 0, 0, 50)
	s := model.NewScene(200, 200, ruler.Pixels)
	s.Objects = []*model.Object{qr, bc, cached, empty, model.NewImage("", 0, 0, 10, 10)}

	src := &images{}
	require.NoError(t, Render(context.Background(), s, &recorder{}, Options{Images: src}))
	assert.Equal(t, []string{
		"qrcode:H:#000000:#ffffff:hello:world",
		"barcode:CODE128:123",
		"data:image/png;base64,AAAA",
	}, src.asked)
}

func TestRenderImageError(t *testing.T) {
	s := model.NewScene(100, 100, ruler.Pixels)
	img := model.NewImage("missing.png", 0, 0, 10, 10)
	s.Objects = []*model.Object{img}

	err := Render(context.Background(), s, &recorder{}, Options{Images: &images{err: io.ErrUnexpectedEOF}})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), img.ID)
}

func TestRenderSkipsUnencodableBarcode(t *testing.T) {
	bad := model.NewBarcode("12345", model.BarcodeEAN13, 0, 0, 100, 30)
	msi := model.NewBarcode("1234", model.BarcodeMSI, 0, 40, 100, 30)
	s := model.NewScene(200, 100, ruler.Pixels)
	s.Objects = []*model.Object{bad, msi, model.NewRectangle(0, 80, 10, 10)}

	rec := &recorder{}
	require.NoError(t, Render(context.Background(), s, rec, Options{Images: NewImageSource(&images{})}))
	require.Len(t, rec.images, 1, "MSI renders, the invalid EAN-13 is skipped")
	assert.Equal(t, []string{"image 100x30", "rect 10x10 fill=#ffffff opacity=1"}, rec.calls)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"zero", Options{}, true},
		{"typical", Options{Multiplier: 2, DPI: 300}, true},
		{"nan multiplier", Options{Multiplier: math.NaN()}, false},
		{"inf multiplier", Options{Multiplier: math.Inf(1)}, false},
		{"huge multiplier", Options{Multiplier: MaxMultiplier + 1}, false},
		{"negative dpi", Options{DPI: -1}, false},
		{"huge dpi", Options{DPI: MaxDPI * 2}, false},
		{"negative budget", Options{MaxPixels: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidOptions)
			}
		})
	}

	assert.NoError(t, Options{}.CheckPixels(1000, 1000))
	assert.ErrorIs(t, Options{MaxPixels: 100}.CheckPixels(10, 10.5), ErrOutputTooLarge)
	assert.ErrorIs(t, Options{}.CheckPixels(math.Inf(1), 1), ErrOutputTooLarge)
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Render(ctx, testScene(), &recorder{}, Options{Images: &images{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCropImage(t *testing.T) {
	o := model.NewImage("a.png", 0, 0, 10, 10)
	o.Image.CropArea = &model.CropArea{X: 2, Y: 3, Width: 4, Height: 5}
	s := model.NewScene(100, 100, ruler.Pixels)
	s.Objects = []*model.Object{o}

	rec := &recorder{}
	require.NoError(t, Render(context.Background(), s, rec, Options{Images: &images{}}))
	require.Len(t, rec.images, 1)
	assert.Equal(t, image.Rect(2, 3, 6, 8), rec.images[0].Bounds())
}

func TestGeneratedImageSource(t *testing.T) {
	next := &images{}
	src := NewImageSource(next)

	img, err := src.Image(context.Background(), "qrcode:M:::label")
	require.NoError(t, err)
	assert.Equal(t, GeneratedQRSize, img.Bounds().Dx())

	img, err = src.Image(context.Background(), "barcode:CODE128:ABC")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, img.Bounds().Dx(), GeneratedBarcodeWidth)

	_, err = src.Image(context.Background(), "qrcode:broken")
	assert.Error(t, err)

	_, err = src.Image(context.Background(), "photo.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"photo.png"}, next.asked)
}

func TestOptions(t *testing.T) {
	s := model.NewScene(10, 10, ruler.Inches)
	assert.Equal(t, 1.0, Options{}.Scale(s))
	assert.Equal(t, 3.0, Options{Multiplier: 3}.Scale(s))
	assert.Equal(t, 2.0, Options{DPI: 192, Multiplier: 3}.Scale(s))
	assert.Equal(t, DefaultJPEGQuality, Options{}.JPEGQuality())
	assert.Equal(t, DefaultJPEGQuality, Options{Quality: 101}.JPEGQuality())
	assert.Equal(t, 70, Options{Quality: 70}.JPEGQuality())
	assert.Equal(t, FormatJPEG, NormalizeFormat(" JPG "))
	assert.Equal(t, FormatSVG, NormalizeFormat("SVG"))
}

type nopEncoder struct{}

func (nopEncoder) ContentType() string { return "application/x-test" }
func (nopEncoder) Encode(context.Context, io.Writer, *model.Scene, Options) error {
	return errors.New("boom")
}

func TestRegistry(t *testing.T) {
	Register("test", func() Encoder { return nopEncoder{} })
	defer Unregister("test")

	assert.True(t, IsRegistered("test"))
	assert.Contains(t, Formats(), "test")
	assert.Contains(t, Formats(), FormatJSON)
	assert.Equal(t, "application/x-test", ContentType("TEST"))

	err := Export(context.Background(), io.Discard, testScene(), "test", Options{})
	assert.EqualError(t, err, "export: test: boom")

	assert.Panics(t, func() { Register("test", func() Encoder { return nopEncoder{} }) })
	assert.Panics(t, func() { Register("nil", nil) })
}

func TestUnknownFormat(t *testing.T) {
	err := Export(context.Background(), io.Discard, testScene(), "bmp", Options{})
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "forgotten import?")
	assert.Empty(t, ContentType("bmp"))
}

func TestExportJSON(t *testing.T) {
	s := testScene()
	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, s, FormatJSON, Options{}))
	assert.Equal(t, "application/json", ContentType(FormatJSON))

	got, err := codec.Unmarshal(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	require.Len(t, got.Objects, 3)
	for i, o := range got.Objects {
		assert.Equal(t, s.Objects[i].ID, o.ID)
	}
}

func mustJSON(t *testing.T, s *model.Scene) []byte {
	t.Helper()
	b, err := codec.Marshal(s)
	require.NoError(t, err)
	return b
}

func TestImportReplace(t *testing.T) {
	current := testScene()
	in := model.NewScene(300, 150, ruler.Millimeters)
	in.Objects = []*model.Object{model.NewRectangle(10, 10, 20, 20)}

	got, err := Import(current, mustJSON(t, in), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, ruler.Millimeters, got.Units)
	require.Len(t, got.Objects, 1)
	assert.Equal(t, in.Objects[0].ID, got.Objects[0].ID)
	assert.Len(t, current.Objects, 3, "current must not change")
}

func TestImportMergeIDs(t *testing.T) {
	current := testScene()
	clash := model.NewRectangle(0, 0, 5, 5)
	clash.ID = current.Objects[0].ID
	fresh := model.NewRectangle(0, 0, 5, 5)
	in := model.NewScene(10, 10, ruler.Pixels)
	in.Objects = []*model.Object{clash, fresh}
	data := mustJSON(t, in)

	got, err := Import(current, data, ImportOptions{Merge: true})
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)
	assert.Equal(t, 200.0, got.Width, "merge keeps the current canvas")
	require.Len(t, got.Objects, 5)
	assert.NotEqual(t, clash.ID, got.Objects[3].ID)
	assert.NotEqual(t, fresh.ID, got.Objects[4].ID)

	got, err = Import(current, data, ImportOptions{Merge: true, PreserveObjectIDs: true})
	require.NoError(t, err)
	assert.NotEqual(t, clash.ID, got.Objects[3].ID, "clashing IDs are always replaced")
	assert.Equal(t, fresh.ID, got.Objects[4].ID)
	assert.Len(t, current.Objects, 3)
}

func TestImportPlacement(t *testing.T) {
	current := model.NewScene(100, 100, ruler.Pixels)
	in := model.NewScene(1000, 1000, ruler.Pixels)
	in.Objects = []*model.Object{model.NewRectangle(0, 0, 400, 200)}
	data := mustJSON(t, in)

	got, err := Import(current, data, ImportOptions{Merge: true, FitToCanvas: true, CenterContent: true})
	require.NoError(t, err)
	b := got.Objects[0].RotatedBounds()
	assert.InDelta(t, 100, b.Width, 1e-9)
	assert.InDelta(t, 50, b.Height, 1e-9)
	assert.InDelta(t, 0, b.X, 1e-9)
	assert.InDelta(t, 25, b.Y, 1e-9)

	got, err = Import(current, data, ImportOptions{Merge: true, Scale: 0.1})
	require.NoError(t, err)
	b = got.Objects[0].RotatedBounds()
	assert.InDelta(t, 40, b.Width, 1e-9)
	assert.InDelta(t, 20, b.Height, 1e-9)
}

func TestImportFailureIsAtomic(t *testing.T) {
	current := testScene()
	in := model.NewScene(10, 10, ruler.Pixels)
	in.Objects = []*model.Object{model.NewRectangle(0, 0, 5, 5)}
	data := strings.Replace(string(mustJSON(t, in)), `"elementType": "rectangle"`, `"elementType": "hexagon"`, 1)

	_, err := Import(current, []byte(data), ImportOptions{Merge: true})
	require.ErrorIs(t, err, codec.ErrUnknownElementType)
	assert.Len(t, current.Objects, 3)

	_, err = Import(current, []byte("{"), ImportOptions{})
	assert.ErrorIs(t, err, codec.ErrMalformed)
}
