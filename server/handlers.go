package server

import (
	"bytes"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/geom"
	"github.com/gogpu/labelkit/grid"
	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/ruler"
)

type healthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version"`
	Formats []string `json:"formats"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: labelkit.Version,
		Formats: export.Formats(),
	})
}

// readScene decodes the request body as a scene.
func readScene(c echo.Context) (*model.Scene, error) {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "read body: "+err.Error())
	}
	sc, err := codec.Unmarshal(data)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return sc, nil
}

// exportOptions reads multiplier, dpi, quality and transparent from the
// query, falling back to the configured export defaults.
func (s *Server) exportOptions(c echo.Context) (export.Options, error) {
	opts := s.settings.ExportOptions()
	opts.Images = s.images
	var err error
	if v := c.QueryParam("multiplier"); v != "" {
		if opts.Multiplier, err = strconv.ParseFloat(v, 64); err != nil || !(opts.Multiplier > 0) {
			return opts, echo.NewHTTPError(http.StatusBadRequest, "multiplier must be a positive number")
		}
	}
	if v := c.QueryParam("dpi"); v != "" {
		if opts.DPI, err = strconv.ParseFloat(v, 64); err != nil || !(opts.DPI > 0) {
			return opts, echo.NewHTTPError(http.StatusBadRequest, "dpi must be a positive number")
		}
	}
	if v := c.QueryParam("quality"); v != "" {
		if opts.Quality, err = strconv.Atoi(v); err != nil || opts.Quality < 1 || opts.Quality > 100 {
			return opts, echo.NewHTTPError(http.StatusBadRequest, "quality must be within 1-100")
		}
	}
	if v := c.QueryParam("transparent"); v != "" {
		if opts.Transparent, err = strconv.ParseBool(v); err != nil {
			return opts, echo.NewHTTPError(http.StatusBadRequest, "transparent must be a boolean")
		}
	}
	if err := opts.Validate(); err != nil {
		return opts, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return opts, nil
}

func (s *Server) exportScene(c echo.Context) error {
	format := export.NormalizeFormat(c.Param("format"))
	if !export.IsRegistered(format) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown format "+strconv.Quote(format))
	}
	opts, err := s.exportOptions(c)
	if err != nil {
		return err
	}
	sc, err := readScene(c)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveScene(len(sc.Objects))
	}

	var buf bytes.Buffer
	start := time.Now()
	err = export.Export(c.Request().Context(), &buf, sc, format, opts)
	if s.metrics != nil {
		s.metrics.RecordExport(format, time.Since(start), buf.Len(), err)
	}
	switch {
	case errors.Is(err, export.ErrOutputTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case err != nil:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()).SetInternal(err)
	}
	labelkit.Logger().Info("server: scene exported", "scene", sc.ID, "format", format, "bytes", buf.Len())
	return c.Blob(http.StatusOK, export.ContentType(format), buf.Bytes())
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Objects int    `json:"objects"`
}

// validateScene reports whether the body decodes into a valid scene. An
// invalid scene is a 422 with the first problem found.
func (s *Server) validateScene(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read body: "+err.Error())
	}
	sc, err := codec.Unmarshal(data)
	if s.metrics != nil {
		s.metrics.RecordValidation(err == nil)
	}
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validateResponse{Error: err.Error(), Kind: errorKind(err)})
	}
	return c.JSON(http.StatusOK, validateResponse{Valid: true, Objects: len(sc.Objects)})
}

func errorKind(err error) string {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, codec.ErrUnknownElementType):
		return "unknown_element_type"
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return "unsupported_version"
	default:
		return "malformed"
	}
}

func queryFloat(c echo.Context, name string, def float64) (float64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a finite number")
	}
	return f, nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

func queryUnit(c echo.Context, def ruler.Unit) (ruler.Unit, error) {
	v := c.QueryParam("unit")
	if v == "" {
		return def, nil
	}
	u, err := ruler.ParseUnit(v)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return u, nil
}

// gridGeometry returns the grid tile for the configured grid, optionally
// overridden by size, subdivisions and type, at the requested zoom.
func (s *Server) gridGeometry(c echo.Context) error {
	cfg := s.settings.Grid
	zoom, err := queryFloat(c, "zoom", 1)
	if err != nil {
		return err
	}
	if cfg.Size, err = queryFloat(c, "size", cfg.Size); err != nil {
		return err
	}
	if cfg.Subdivisions, err = queryInt(c, "subdivisions", cfg.Subdivisions); err != nil {
		return err
	}
	if t := c.QueryParam("type"); t != "" {
		cfg.Type = grid.Type(t)
	}
	if err := cfg.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if zoom <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "zoom must be positive")
	}
	return c.JSON(http.StatusOK, grid.ComputeGeometry(cfg, zoom))
}

// measure measures the distance between (x1, y1) and (x2, y2).
func (s *Server) measure(c echo.Context) error {
	var coords [4]float64
	for i, name := range []string{"x1", "y1", "x2", "y2"} {
		if c.QueryParam(name) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, name+" is required")
		}
		v, err := queryFloat(c, name, 0)
		if err != nil {
			return err
		}
		coords[i] = v
	}
	u, err := queryUnit(c, s.settings.Ruler.Unit)
	if err != nil {
		return err
	}
	precision, err := queryInt(c, "precision", s.settings.Ruler.Precision)
	if err != nil {
		return err
	}
	m := ruler.MeasureDistance(geom.Pt(coords[0], coords[1]), geom.Pt(coords[2], coords[3]), u, precision)
	return c.JSON(http.StatusOK, m)
}

// ticks lays out a ruler of the given pixel length at a zoom.
func (s *Server) ticks(c echo.Context) error {
	length, err := queryFloat(c, "length", 0)
	if err != nil {
		return err
	}
	if length <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "length must be positive")
	}
	zoom, err := queryFloat(c, "zoom", 1)
	if err != nil {
		return err
	}
	u, err := queryUnit(c, s.settings.Ruler.Unit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ruler.GenerateTicks(length, u, zoom))
}
