// Package grid describes the editor grid, produces the primitives needed to
// paint it, and snaps positions to the grid or to neighbouring objects.
//
// Two kinds of snapping are kept apart. Ambient snapping (SnapObject,
// SnapToObjectEdges, SnapRectToObjects) is magnetic: it only pulls a
// position that is already within the tolerance and is used while dragging.
// Forced snapping (SnapPoint, SnapValue) always rounds and backs explicit
// "align to grid" commands.
package grid

import "fmt"

// Type is the visual style of the grid.
type Type string

// Grid styles.
const (
	Lines  Type = "lines"
	Dots   Type = "dots"
	Cross  Type = "cross"
	Hybrid Type = "hybrid"
)

// MaxSubdivisions is the largest number of minor divisions per cell.
const MaxSubdivisions = 5

// MinTileSize is the smallest on-screen cell, in pixels, that is painted.
const MinTileSize = 2.0

// Config holds the grid settings for one editing session.
type Config struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	// Size is the cell size in canvas pixels.
	Size float64 `json:"size" mapstructure:"size" yaml:"size"`
	// Subdivisions is the number of minor lines inside each cell (0-5).
	Subdivisions  int     `json:"subdivisions" mapstructure:"subdivisions" yaml:"subdivisions"`
	Type          Type    `json:"type" mapstructure:"type" yaml:"type"`
	SnapToGrid    bool    `json:"snapToGrid" mapstructure:"snaptogrid" yaml:"snapToGrid"`
	SnapToSubGrid bool    `json:"snapToSubGrid" mapstructure:"snaptosubgrid" yaml:"snapToSubGrid"`
	SnapTolerance float64 `json:"snapTolerance" mapstructure:"snaptolerance" yaml:"snapTolerance"`

	MajorLineColor   string  `json:"majorLineColor" mapstructure:"majorlinecolor" yaml:"majorLineColor"`
	MajorLineOpacity float64 `json:"majorLineOpacity" mapstructure:"majorlineopacity" yaml:"majorLineOpacity"`
	MinorLineColor   string  `json:"minorLineColor" mapstructure:"minorlinecolor" yaml:"minorLineColor"`
	MinorLineOpacity float64 `json:"minorLineOpacity" mapstructure:"minorlineopacity" yaml:"minorLineOpacity"`
	ShowOrigin       bool    `json:"showOrigin" mapstructure:"showorigin" yaml:"showOrigin"`
}

// DefaultConfig returns a 20px line grid with magnetic snapping.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Size:             20,
		Subdivisions:     0,
		Type:             Lines,
		SnapToGrid:       true,
		SnapToSubGrid:    false,
		SnapTolerance:    5,
		MajorLineColor:   "#d0d7de",
		MajorLineOpacity: 0.8,
		MinorLineColor:   "#eaeef2",
		MinorLineOpacity: 0.5,
		ShowOrigin:       false,
	}
}

// Validate checks the ranges of the numeric settings.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("grid: size must be positive, got %v", c.Size)
	}
	if c.Subdivisions < 0 || c.Subdivisions > MaxSubdivisions {
		return fmt.Errorf("grid: subdivisions must be within 0-%d, got %d", MaxSubdivisions, c.Subdivisions)
	}
	if c.SnapTolerance < 0 {
		return fmt.Errorf("grid: snap tolerance must not be negative, got %v", c.SnapTolerance)
	}
	switch c.Type {
	case Lines, Dots, Cross, Hybrid:
	default:
		return fmt.Errorf("grid: unknown type %q", c.Type)
	}
	return nil
}

// Step returns the snapping step: the cell size, or the sub-cell size when
// SnapToSubGrid is on and the grid is subdivided.
func (c Config) Step() float64 {
	if c.SnapToSubGrid && c.Subdivisions > 0 {
		return c.Size / float64(c.Subdivisions+1)
	}
	return c.Size
}
