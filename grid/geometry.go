package grid

// PrimitiveKind is the shape of a grid primitive.
type PrimitiveKind string

// Primitive kinds.
const (
	KindLine  PrimitiveKind = "line"
	KindDot   PrimitiveKind = "dot"
	KindCross PrimitiveKind = "cross"
)

// Primitive is one element of a grid tile, in tile-local screen pixels.
// Lines run from (X1, Y1) to (X2, Y2); dots and crosses are centered on
// (X1, Y1) with the given Size (diameter or arm span).
type Primitive struct {
	Kind    PrimitiveKind `json:"kind"`
	Major   bool          `json:"major"`
	X1      float64       `json:"x1"`
	Y1      float64       `json:"y1"`
	X2      float64       `json:"x2,omitempty"`
	Y2      float64       `json:"y2,omitempty"`
	Size    float64       `json:"size,omitempty"`
	Color   string        `json:"color"`
	Opacity float64       `json:"opacity"`
}

// Tile is one repeating cell of the grid pattern.
type Tile struct {
	// Size is the on-screen tile edge in pixels (Config.Size * zoom).
	Size       float64     `json:"size"`
	Primitives []Primitive `json:"primitives"`
}

// Empty reports whether nothing should be painted.
func (t Tile) Empty() bool {
	return len(t.Primitives) == 0
}

// ComputeGeometry returns the primitives that paint one grid tile at zoom.
// The tile is suppressed (empty) when the grid is disabled or when a cell
// would be smaller than MinTileSize on screen.
func ComputeGeometry(c Config, zoom float64) Tile {
	size := c.Size * zoom
	if !c.Enabled || size < MinTileSize {
		return Tile{}
	}
	sub := min(max(c.Subdivisions, 0), MaxSubdivisions)
	step := size / float64(sub+1)

	t := Tile{Size: size}
	major := func(p Primitive) {
		p.Major = true
		p.Color, p.Opacity = c.MajorLineColor, c.MajorLineOpacity
		t.Primitives = append(t.Primitives, p)
	}
	minor := func(p Primitive) {
		p.Color, p.Opacity = c.MinorLineColor, c.MinorLineOpacity
		t.Primitives = append(t.Primitives, p)
	}

	switch c.Type {
	case Dots:
		major(Primitive{Kind: KindDot, Size: dotSize(size)})
		for i := 0; i <= sub; i++ {
			for j := 0; j <= sub; j++ {
				if i == 0 && j == 0 {
					continue
				}
				minor(Primitive{Kind: KindDot, X1: float64(i) * step, Y1: float64(j) * step, Size: dotSize(size) / 2})
			}
		}
	case Cross:
		major(Primitive{Kind: KindCross, Size: crossSize(size)})
		for i := 0; i <= sub; i++ {
			for j := 0; j <= sub; j++ {
				if i == 0 && j == 0 {
					continue
				}
				minor(Primitive{Kind: KindCross, X1: float64(i) * step, Y1: float64(j) * step, Size: crossSize(size) / 2})
			}
		}
	case Hybrid:
		major(Primitive{Kind: KindLine, X1: 0, Y1: 0, X2: 0, Y2: size})
		major(Primitive{Kind: KindLine, X1: 0, Y1: 0, X2: size, Y2: 0})
		for i := 1; i <= sub; i++ {
			for j := 1; j <= sub; j++ {
				minor(Primitive{Kind: KindDot, X1: float64(i) * step, Y1: float64(j) * step, Size: dotSize(size) / 2})
			}
		}
	default:
		major(Primitive{Kind: KindLine, X1: 0, Y1: 0, X2: 0, Y2: size})
		major(Primitive{Kind: KindLine, X1: 0, Y1: 0, X2: size, Y2: 0})
		for i := 1; i <= sub; i++ {
			off := float64(i) * step
			minor(Primitive{Kind: KindLine, X1: off, Y1: 0, X2: off, Y2: size})
			minor(Primitive{Kind: KindLine, X1: 0, Y1: off, X2: size, Y2: off})
		}
	}
	return t
}

// dotSize keeps dots visible but never larger than a fifth of the tile.
func dotSize(tile float64) float64 {
	return min(max(tile/10, 1), tile/5)
}

func crossSize(tile float64) float64 {
	return min(tile/2, 8)
}
