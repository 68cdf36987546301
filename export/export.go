// Package export writes scenes in output formats and imports scenes from
// the JSON wire format.
//
// Formats are provided by encoders registered by name. JSON is built in;
// raster (png, jpeg) and svg encoders live in the backends sub-packages and
// register themselves when imported:
//
//	import (
//	    _ "github.com/gogpu/labelkit/export/backends/raster"
//	    _ "github.com/gogpu/labelkit/export/backends/svg"
//	)
//
//	err := export.Export(ctx, w, scene, "png", export.Options{Multiplier: 2})
//
// Encoders read a snapshot of the scene; callers holding a live scene
// should pass a copy (canvas.Manager.Snapshot).
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/model"
)

// Built-in format names.
const (
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatSVG  = "svg"
)

// Encoder writes a scene in one output format.
type Encoder interface {
	// ContentType is the MIME type of the output.
	ContentType() string
	Encode(ctx context.Context, w io.Writer, s *model.Scene, opts Options) error
}

// Options tune an export.
type Options struct {
	// Multiplier scales the output relative to canvas units. Zero means 1.
	Multiplier float64
	// DPI, when set, overrides Multiplier with DPI / scene DPI so that the
	// output has the requested physical resolution.
	DPI float64
	// Quality is the JPEG quality, 1-100. Zero means DefaultJPEGQuality.
	Quality int
	// Transparent omits the background color.
	Transparent bool
	// Images resolves image, QR and barcode sources. Nil uses the default
	// loader.
	Images ImageSource
	// MaxPixels bounds width*height of raster output. Zero means
	// DefaultMaxPixels.
	MaxPixels int64
}

// Export limits.
const (
	DefaultJPEGQuality = 90
	DefaultMaxPixels   = 50_000_000
	MaxMultiplier      = 32
	MaxDPI             = 4800
)

var (
	// ErrInvalidOptions is returned for out-of-range or non-finite options.
	ErrInvalidOptions = errors.New("export: invalid options")
	// ErrOutputTooLarge is returned when raster output would exceed the
	// pixel budget.
	ErrOutputTooLarge = errors.New("export: output exceeds pixel budget")
)

// Validate checks the numeric options.
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Multiplier) || o.Multiplier < 0 || o.Multiplier > MaxMultiplier:
		return fmt.Errorf("%w: multiplier must be within (0, %d], got %v", ErrInvalidOptions, MaxMultiplier, o.Multiplier)
	case math.IsNaN(o.DPI) || o.DPI < 0 || o.DPI > MaxDPI:
		return fmt.Errorf("%w: dpi must be within (0, %d], got %v", ErrInvalidOptions, MaxDPI, o.DPI)
	case o.MaxPixels < 0:
		return fmt.Errorf("%w: max pixels must not be negative", ErrInvalidOptions)
	}
	return nil
}

// CheckPixels reports ErrOutputTooLarge when a w×h raster exceeds the
// pixel budget.
func (o Options) CheckPixels(w, h float64) error {
	budget := o.MaxPixels
	if budget == 0 {
		budget = DefaultMaxPixels
	}
	if math.IsNaN(w) || math.IsNaN(h) || math.Ceil(w)*math.Ceil(h) > float64(budget) {
		return fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", ErrOutputTooLarge, math.Ceil(w), math.Ceil(h), budget)
	}
	return nil
}

// Scale returns the output scale for a scene.
func (o Options) Scale(s *model.Scene) float64 {
	if o.DPI > 0 && s.DPI > 0 {
		return o.DPI / s.DPI
	}
	if o.Multiplier > 0 {
		return o.Multiplier
	}
	return 1
}

// JPEGQuality returns the effective JPEG quality.
func (o Options) JPEGQuality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return DefaultJPEGQuality
	}
	return o.Quality
}

// NormalizeFormat lower-cases a format name and maps the "jpg" alias.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "jpg" {
		return FormatJPEG
	}
	return f
}

// Export writes s to w in format.
func Export(ctx context.Context, w io.Writer, s *model.Scene, format string, opts Options) error {
	enc, err := NewEncoder(NormalizeFormat(format))
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := enc.Encode(ctx, w, s, opts); err != nil {
		return fmt.Errorf("export: %s: %w", format, err)
	}
	labelkit.Logger().Debug("export: scene written", "format", format, "scene", s.ID, "objects", len(s.Objects))
	return nil
}

// ContentType returns the MIME type of format, or "" if unknown.
func ContentType(format string) string {
	enc, err := NewEncoder(NormalizeFormat(format))
	if err != nil {
		return ""
	}
	return enc.ContentType()
}
