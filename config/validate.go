package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/generate"
)

// Validate checks every section and joins the problems found.
func (s *Settings) Validate() error {
	var errs []error
	if err := s.Grid.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !s.Ruler.Unit.Valid() {
		errs = append(errs, fmt.Errorf("ruler: unknown unit %q", s.Ruler.Unit))
	}
	if s.Ruler.Precision < 0 || s.Ruler.Precision > 6 {
		errs = append(errs, fmt.Errorf("ruler: precision must be within 0-6, got %d", s.Ruler.Precision))
	}

	e := s.Editor
	if e.MinZoom <= 0 || e.MaxZoom < e.MinZoom {
		errs = append(errs, fmt.Errorf("editor: zoom limits must satisfy 0 < min <= max, got %v..%v", e.MinZoom, e.MaxZoom))
	}
	if e.FitMargin < 0 || e.FitMargin >= 1 {
		errs = append(errs, fmt.Errorf("editor: fit margin must be within [0, 1), got %v", e.FitMargin))
	}

	x := s.Export
	switch export.NormalizeFormat(x.Format) {
	case export.FormatJSON, export.FormatPNG, export.FormatJPEG, export.FormatSVG:
	default:
		errs = append(errs, fmt.Errorf("export: unknown format %q", x.Format))
	}
	if x.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("export: multiplier must be positive, got %v", x.Multiplier))
	}
	if x.Quality < 1 || x.Quality > 100 {
		errs = append(errs, fmt.Errorf("export: quality must be within 1-100, got %d", x.Quality))
	}
	if x.MaxImageSize < 0 {
		errs = append(errs, fmt.Errorf("export: max image size must not be negative, got %d", x.MaxImageSize))
	}

	if x.MaxPixels < 0 {
		errs = append(errs, fmt.Errorf("export: max pixels must not be negative, got %d", x.MaxPixels))
	}

	if s.Server.Listen == "" {
		errs = append(errs, errors.New("server: listen address is empty"))
	}
	for _, scheme := range s.Server.ImageSchemes {
		switch scheme {
		case generate.SchemeData, generate.SchemeHTTP, generate.SchemeHTTPS:
		default:
			errs = append(errs, fmt.Errorf("server: image scheme %q is not one of data, http, https", scheme))
		}
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", s.Log.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid settings: %w", err)
	}
	return nil
}
