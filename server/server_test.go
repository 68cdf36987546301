package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/config"
	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/grid"
	"github.com/gogpu/labelkit/internal/metrics"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/ruler"
)

func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()
	m, err := metrics.New(nil)
	require.NoError(t, err)
	noImages := export.ImageSourceFunc(func(context.Context, string) (image.Image, error) {
		return nil, assert.AnError
	})
	return New(config.Default(), WithMetrics(m), WithImageSource(noImages)), m
}

func sceneJSON(t *testing.T) []byte {
	t.Helper()
	s := model.NewScene(100, 50, ruler.Pixels)
	r := model.NewRectangle(10, 10, 30, 20)
	r.Fill = "#ff0000"
	s.Objects = append(s.Objects, r, model.NewText("hello", 40, 10))
	data, err := codec.Marshal(s)
	require.NoError(t, err)
	return data
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Subset(t, got.Formats, []string{"json", "png", "jpeg", "svg"})
}

func TestExportFormats(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		prefix      []byte
	}{
		{"png", "image/png", []byte("\x89PNG")},
		{"jpg", "image/jpeg", []byte{0xff, 0xd8}},
		{"svg", "image/svg+xml", []byte("<?xml")},
		{"json", "application/json", []byte("{")},
	}
	s, m := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/export/"+tt.format+"?multiplier=2", sceneJSON(t))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tt.contentType))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), tt.prefix))
		})
	}

	body := metricsBody(t, m)
	assert.Contains(t, body, `labelkit_exports_total{format="png",status="success"} 1`)
	assert.Contains(t, body, `labelkit_exports_total{format="jpeg",status="success"} 1`)
}

func TestExportPNGSize(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/export/png?multiplier=2", sceneJSON(t))
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestExportErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
		body   []byte
		code   int
	}{
		{"unknown format", "/api/v1/export/gif", sceneJSON(t), http.StatusNotFound},
		{"bad multiplier", "/api/v1/export/png?multiplier=-1", sceneJSON(t), http.StatusBadRequest},
		{"nan multiplier", "/api/v1/export/png?multiplier=NaN", sceneJSON(t), http.StatusBadRequest},
		{"inf multiplier", "/api/v1/export/png?multiplier=Inf", sceneJSON(t), http.StatusBadRequest},
		{"huge multiplier", "/api/v1/export/png?multiplier=1000", sceneJSON(t), http.StatusBadRequest},
		{"huge dpi", "/api/v1/export/png?dpi=1e9", sceneJSON(t), http.StatusBadRequest},
		{"bad quality", "/api/v1/export/jpeg?quality=0", sceneJSON(t), http.StatusBadRequest},
		{"bad transparent", "/api/v1/export/png?transparent=maybe", sceneJSON(t), http.StatusBadRequest},
		{"malformed", "/api/v1/export/png", []byte("{"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			var got errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestExportImageFailure(t *testing.T) {
	s, _ := newTestServer(t)
	sc := model.NewScene(100, 50, ruler.Pixels)
	sc.Objects = append(sc.Objects, model.NewImage("https://example.com/a.png", 0, 0, 10, 10))
	data, err := codec.Marshal(sc)
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/v1/export/png", data)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExportPixelBudget(t *testing.T) {
	settings := config.Default()
	settings.Export.MaxPixels = 100 * 50
	s := New(settings)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/v1/export/png", sceneJSON(t)).Code)
	rec := do(t, s, http.MethodPost, "/api/v1/export/png?multiplier=2", sceneJSON(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "pixel budget")
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/v1/export/svg?multiplier=2", sceneJSON(t)).Code)
}

func TestExportRefusesLocalImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	s := New(config.Default())
	for _, src := range []string{path, "file://" + path, "http://127.0.0.1:1/a.png"} {
		sc := model.NewScene(100, 50, ruler.Pixels)
		sc.Objects = append(sc.Objects, model.NewImage(src, 0, 0, 10, 10))
		data, err := codec.Marshal(sc)
		require.NoError(t, err)

		rec := do(t, s, http.MethodPost, "/api/v1/export/png", data)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, src)
		assert.Contains(t, rec.Body.String(), "not allowed", src)
	}
}

func TestExportSVGRejectsMarkupInStyles(t *testing.T) {
	s, _ := newTestServer(t)
	sc := model.NewScene(100, 50, ruler.Pixels)
	r := model.NewRectangle(0, 0, 20, 20)
	r.Fill = `red" onload="alert(document.domain)`
	sc.Objects = append(sc.Objects, r)
	data, err := json.Marshal(codec.SerializeScene(sc))
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/v1/export/svg", data)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<svg")
}

func TestValidate(t *testing.T) {
	s, m := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/validate", sceneJSON(t))
	require.Equal(t, http.StatusOK, rec.Code)
	var ok validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Equal(t, 2, ok.Objects)

	bad := bytes.Replace(sceneJSON(t), []byte(`"rectangle"`), []byte(`"hexagon"`), 1)
	rec = do(t, s, http.MethodPost, "/api/v1/validate", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var got validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Valid)
	assert.Equal(t, "unknown_element_type", got.Kind)

	assert.Contains(t, metricsBody(t, m), `labelkit_validations_total{result="invalid"} 1`)
}

func TestGridGeometry(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/grid?zoom=2&subdivisions=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tile grid.Tile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tile))
	assert.InDelta(t, 40, tile.Size, 1e-9)
	assert.NotEmpty(t, tile.Primitives)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/grid?subdivisions=9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/grid?zoom=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/grid?type=hex", nil).Code)
}

func TestMeasure(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/measure?x1=0&y1=0&x2=96&y2=0&unit=in&precision=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m ruler.Measurement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.InDelta(t, 96, m.Pixels, 1e-9)
	assert.InDelta(t, 1, m.Value, 1e-9)
	assert.Equal(t, ruler.Inches, m.Unit)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/measure?x1=0&y1=0&x2=1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/measure?x1=0&y1=0&x2=1&y2=a", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/measure?x1=0&y1=0&x2=1&y2=1&unit=ft", nil).Code)
}

func TestTicks(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/ticks?length=96&unit=in", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ticks []ruler.Tick
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticks))
	require.NotEmpty(t, ticks)
	assert.True(t, ticks[0].Major)

	for _, target := range []string{
		"/api/v1/ticks",
		"/api/v1/ticks?length=NaN",
		"/api/v1/ticks?length=10&zoom=NaN",
		"/api/v1/ticks?length=10&zoom=Inf",
		"/api/v1/ticks?length=Inf",
		"/api/v1/grid?zoom=NaN",
		"/api/v1/measure?x1=NaN&y1=0&x2=1&y2=1",
	} {
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, target, nil).Code, target)
	}
}

func TestBodyLimit(t *testing.T) {
	settings := config.Default()
	settings.Server.BodyLimit = "1K"
	s := New(settings)
	rec := do(t, s, http.MethodPost, "/api/v1/validate", bytes.Repeat([]byte(" "), 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestMetrics(t *testing.T) {
	s, m := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", nil)
	do(t, s, http.MethodGet, "/api/v1/export/png", nil)
	body := metricsBody(t, m)
	assert.Contains(t, body, `labelkit_http_requests_total{method="GET",path="/healthz",status_code="200"} 1`)
}

func TestRunStopsOnCancel(t *testing.T) {
	settings := config.Default()
	settings.Server.Listen = "127.0.0.1:0"
	s := New(settings)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}

func metricsBody(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
