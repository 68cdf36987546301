package canvas

import "github.com/gogpu/labelkit/grid"

// Option configures a Manager during creation.
type Option func(*options)

type options struct {
	minZoom         float64
	maxZoom         float64
	duplicateOffset float64
	fitMargin       float64
	grid            grid.Config
	onWarning       func(Warning)
}

// Editor defaults.
const (
	DefaultMinZoom         = 0.1
	DefaultMaxZoom         = 10
	DefaultDuplicateOffset = 20
	DefaultFitMargin       = 0.1
)

func defaultOptions() options {
	return options{
		minZoom:         DefaultMinZoom,
		maxZoom:         DefaultMaxZoom,
		duplicateOffset: DefaultDuplicateOffset,
		fitMargin:       DefaultFitMargin,
		grid:            grid.DefaultConfig(),
	}
}

// WithZoomLimits bounds the zoom factor. Invalid or inverted limits are
// ignored.
func WithZoomLimits(minZoom, maxZoom float64) Option {
	return func(o *options) {
		if minZoom > 0 && maxZoom >= minZoom {
			o.minZoom, o.maxZoom = minZoom, maxZoom
		}
	}
}

// WithDuplicateOffset sets how far duplicates are shifted on each axis.
func WithDuplicateOffset(d float64) Option {
	return func(o *options) {
		o.duplicateOffset = d
	}
}

// WithFitMargin sets the fraction of the viewport left empty by
// FitToViewport (0.1 leaves 10%).
func WithFitMargin(m float64) Option {
	return func(o *options) {
		if m >= 0 && m < 1 {
			o.fitMargin = m
		}
	}
}

// WithGrid sets the grid configuration used for snapping. The scene's own
// GridSize and SnapToGrid override the matching fields.
func WithGrid(c grid.Config) Option {
	return func(o *options) {
		o.grid = c
	}
}

// WithWarningHandler registers a callback for constraint warnings. It is
// called after the operation that raised the warning has released the
// manager, so it may call back into it.
func WithWarningHandler(fn func(Warning)) Option {
	return func(o *options) {
		o.onWarning = fn
	}
}
