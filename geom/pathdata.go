package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrEmptyPath is returned by ParsePathData for blank input.
var ErrEmptyPath = errors.New("geom: empty path data")

// PathOp identifies a path segment kind.
type PathOp uint8

// Path segment kinds.
const (
	OpMoveTo PathOp = iota
	OpLineTo
	OpQuadTo
	OpCubicTo
	OpClose
)

// PathSegment is one absolute-coordinate segment of a parsed path.
// Pts holds the control points followed by the end point: one point for
// MoveTo/LineTo, two for QuadTo, three for CubicTo, none for Close.
type PathSegment struct {
	Op  PathOp
	Pts []Point
}

// ParsePathData parses the subset of SVG path syntax used by path and
// freehand elements: M, L, H, V, Q, C and Z in absolute and relative form.
// Repeated coordinate groups after a command repeat that command, and
// extra pairs after M are treated as L, as in SVG.
func ParsePathData(d string) ([]PathSegment, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, ErrEmptyPath
	}

	toks, err := tokenizePath(d)
	if err != nil {
		return nil, err
	}

	var (
		segs       []PathSegment
		cur, start Point
		cmd        byte
	)
	for i := 0; i < len(toks); {
		if toks[i].cmd != 0 {
			cmd = toks[i].cmd
			i++
			if cmd == 'Z' || cmd == 'z' {
				segs = append(segs, PathSegment{Op: OpClose})
				cur = start
				continue
			}
		} else if cmd == 0 {
			return nil, fmt.Errorf("geom: path data must start with a command, got %v", toks[i].num)
		}

		n := argCount(cmd)
		if n == 0 {
			return nil, fmt.Errorf("geom: unsupported path command %q", cmd)
		}
		if i+n > len(toks) {
			return nil, fmt.Errorf("geom: command %q needs %d numbers", cmd, n)
		}
		args := make([]float64, n)
		for k := range n {
			if toks[i+k].cmd != 0 {
				return nil, fmt.Errorf("geom: command %q needs %d numbers", cmd, n)
			}
			args[k] = toks[i+k].num
		}
		i += n

		rel := unicode.IsLower(rune(cmd))
		abs := func(x, y float64) Point {
			if rel {
				return Point{X: cur.X + x, Y: cur.Y + y}
			}
			return Point{X: x, Y: y}
		}

		switch unicode.ToUpper(rune(cmd)) {
		case 'M':
			cur = abs(args[0], args[1])
			start = cur
			segs = append(segs, PathSegment{Op: OpMoveTo, Pts: []Point{cur}})
			// subsequent pairs are implicit line-tos
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L':
			cur = abs(args[0], args[1])
			segs = append(segs, PathSegment{Op: OpLineTo, Pts: []Point{cur}})
		case 'H':
			x := args[0]
			if rel {
				x += cur.X
			}
			cur = Point{X: x, Y: cur.Y}
			segs = append(segs, PathSegment{Op: OpLineTo, Pts: []Point{cur}})
		case 'V':
			y := args[0]
			if rel {
				y += cur.Y
			}
			cur = Point{X: cur.X, Y: y}
			segs = append(segs, PathSegment{Op: OpLineTo, Pts: []Point{cur}})
		case 'Q':
			c1, end := abs(args[0], args[1]), abs(args[2], args[3])
			segs = append(segs, PathSegment{Op: OpQuadTo, Pts: []Point{c1, end}})
			cur = end
		case 'C':
			c1, c2, end := abs(args[0], args[1]), abs(args[2], args[3]), abs(args[4], args[5])
			segs = append(segs, PathSegment{Op: OpCubicTo, Pts: []Point{c1, c2, end}})
			cur = end
		}
	}
	return segs, nil
}

// PathBounds returns the box of all on-curve and control points.
func PathBounds(segs []PathSegment) Rect {
	var pts []Point
	for _, s := range segs {
		pts = append(pts, s.Pts...)
	}
	return RectFromPoints(pts...)
}

func argCount(cmd byte) int {
	switch unicode.ToUpper(rune(cmd)) {
	case 'M', 'L':
		return 2
	case 'H', 'V':
		return 1
	case 'Q':
		return 4
	case 'C':
		return 6
	}
	return 0
}

type pathToken struct {
	cmd byte
	num float64
}

func tokenizePath(d string) ([]pathToken, error) {
	var toks []pathToken
	for i := 0; i < len(d); {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.IndexByte("MmLlHhVvQqCcZz", c) >= 0:
			toks = append(toks, pathToken{cmd: c})
			i++
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			j := scanNumber(d, i)
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("geom: bad number %q in path data: %w", d[i:j], err)
			}
			toks = append(toks, pathToken{num: v})
			i = j
		default:
			return nil, fmt.Errorf("geom: unexpected %q in path data", c)
		}
	}
	return toks, nil
}

// scanNumber returns the end index of the number starting at i.
func scanNumber(d string, i int) int {
	j := i
	if d[j] == '-' || d[j] == '+' {
		j++
	}
	seenDot := false
	for j < len(d) {
		c := d[j]
		switch {
		case c >= '0' && c <= '9':
			j++
		case c == '.' && !seenDot:
			seenDot = true
			j++
		case (c == 'e' || c == 'E') && j+1 < len(d):
			j++
			if d[j] == '-' || d[j] == '+' {
				j++
			}
		default:
			return j
		}
	}
	return j
}
