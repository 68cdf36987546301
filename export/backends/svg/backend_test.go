package svg

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"image"
	"io"
	"strings"
	"testing"

	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/ruler"
)

func render(t *testing.T, s *model.Scene, opts export.Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := export.Export(context.Background(), &buf, s, "svg", opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	return buf.String()
}

// wellFormed fails the test unless doc parses as XML.
func wellFormed(t *testing.T, doc string) {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, doc)
		}
	}
}

func TestSVGDocument(t *testing.T) {
	s := model.NewScene(100, 50, ruler.Pixels)
	r := model.NewRectangle(10, 10, 30, 20)
	r.Fill = "#ff0000"
	txt := model.NewText("a < b", 0, 0)
	s.Objects = []*model.Object{r, txt}

	doc := render(t, s, export.Options{})
	wellFormed(t, doc)

	for _, want := range []string{
		`width="100"`,
		`height="50"`,
		`viewBox="0 0 100 50"`,
		`fill:#ffffff`,
		`M0 0H30V20H0Z`,
		`fill:#ff0000;stroke:#000000;stroke-width:1`,
		`a &lt; b`,
		`font-family:'Arial'`,
		`</svg>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q\n%s", want, doc)
		}
	}
	if open, closed := strings.Count(doc, "<g "), strings.Count(doc, "</g>"); open != closed {
		t.Errorf("unbalanced groups: %d open, %d closed", open, closed)
	}
}

func TestSVGTransparentAndScale(t *testing.T) {
	s := model.NewScene(100, 50, ruler.Pixels)
	doc := render(t, s, export.Options{Multiplier: 2, Transparent: true})
	if !strings.Contains(doc, `viewBox="0 0 200 100"`) {
		t.Errorf("missing scaled viewBox\n%s", doc)
	}
	if strings.Contains(doc, "<rect") {
		t.Errorf("transparent export painted a background\n%s", doc)
	}
	if !strings.Contains(doc, "matrix(2 0 0 2 0 0)") {
		t.Errorf("missing scale transform\n%s", doc)
	}
}

func TestSVGShapes(t *testing.T) {
	s := model.NewScene(300, 300, ruler.Pixels)
	rounded := model.NewRectangle(0, 0, 40, 20)
	rounded.BorderRadius = 5
	dashed := model.NewLine(0, 0, 100, 0)
	dashed.StrokeDashArray = []float64{4, 2}
	faded := model.NewCircle(0, 0, 10)
	faded.Opacity = 0.5
	s.Objects = []*model.Object{rounded, dashed, faded, model.NewPath("M 0 0 Q 10 10 20 0 Z", 0, 0)}

	doc := render(t, s, export.Options{})
	wellFormed(t, doc)
	for _, want := range []string{
		"M5 0H35A5 5 0 0 1 40 5",
		"stroke-dasharray:4,2",
		"opacity:0.5",
		"M0 0Q10 10 20 0Z",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q\n%s", want, doc)
		}
	}
}

func TestSVGImage(t *testing.T) {
	var buf bytes.Buffer
	b := NewBackend(&buf)
	if err := b.Begin(10, 10, ""); err != nil {
		t.Fatal(err)
	}
	b.Image(image.NewRGBA(image.Rect(0, 0, 4, 2)), 8, 8, 1)
	if err := b.End(); err != nil {
		t.Fatal(err)
	}
	doc := buf.String()
	wellFormed(t, doc)
	if !strings.Contains(doc, "data:image/png;base64,") || !strings.Contains(doc, "scale(2 4)") {
		t.Errorf("image not embedded as expected\n%s", doc)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrShortWrite }

func TestSVGWriteError(t *testing.T) {
	err := export.Export(context.Background(), failWriter{}, model.NewScene(10, 10, ruler.Pixels), "svg", export.Options{})
	if !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("Export() error = %v, want ErrShortWrite", err)
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{0.1 + 0.2, "0.3"},
		{-0.0001, "0"},
		{12.34567, "12.346"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSVGDropsUnsafeStyleValues(t *testing.T) {
	s := model.NewScene(100, 50, ruler.Pixels)
	s.BackgroundColor = `#fff" onload="alert(1)`
	r := model.NewRectangle(0, 0, 20, 20)
	r.Fill = `red" onload="alert(document.domain)`
	r.Stroke = `blue;x=1`
	txt := model.NewText("hi", 0, 25)
	txt.Text.FontFamily = `Arial'" onmouseover="alert(2)`
	txt.Fill = "rgb(255, 0, 0)"
	s.Objects = []*model.Object{r, txt}

	doc := render(t, s, export.Options{})
	wellFormed(t, doc)
	for _, bad := range []string{"onload", "onmouseover=", "document.domain", "x=1"} {
		if strings.Contains(doc, bad) {
			t.Errorf("document contains %q:\n%s", bad, doc)
		}
	}
	if !strings.Contains(doc, "font-family:'Arial onmouseoveralert2'") {
		t.Errorf("font family not sanitized:\n%s", doc)
	}
	if !strings.Contains(doc, "fill:rgb(255, 0, 0)") {
		t.Errorf("rgb() fill dropped:\n%s", doc)
	}
}

func TestPaintValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "none"},
		{"transparent", "none"},
		{"#00ff00", "#00ff00"},
		{"navy", "navy"},
		{"rgba(0,0,0,0.5)", "rgba(0,0,0,0.5)"},
		{`red"`, "none"},
		{"url(#grad)", "none"},
	}
	for _, tt := range tests {
		if got := paintValue(tt.in); got != tt.want {
			t.Errorf("paintValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
