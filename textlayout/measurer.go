// Package textlayout measures label text with HarfBuzz shaping so text
// elements get a box that matches what the exporters draw.
package textlayout

import (
	"bytes"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Style describes how a run of text is set.
type Style struct {
	Family string
	// Size is the font size in canvas pixels.
	Size   float64
	Bold   bool
	Italic bool
	// CharSpacing is extra tracking in thousandths of an em.
	CharSpacing float64
	// LineHeight is the line advance as a multiple of Size. Zero means 1.
	LineHeight float64
}

// Extent is the measured size of a text block.
type Extent struct {
	Width  float64
	Height float64
	Lines  int
}

// Measurer shapes text with go-text/typesetting.
//
// Measurer is safe for concurrent use. It caches parsed font.Font objects
// (which are thread-safe) and creates a font.Face per call, since
// font.Face is not. HarfbuzzShaper instances are pooled for the same reason.
type Measurer struct {
	shaperPool sync.Pool

	mu    sync.RWMutex
	fonts map[fontKey]*font.Font
}

// NewMeasurer creates a Measurer with an empty font cache.
func NewMeasurer() *Measurer {
	return &Measurer{
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fonts: make(map[fontKey]*font.Font),
	}
}

var (
	defaultOnce     sync.Once
	defaultMeasurer *Measurer
)

// Default returns the process-wide shared Measurer.
func Default() *Measurer {
	defaultOnce.Do(func() {
		defaultMeasurer = NewMeasurer()
	})
	return defaultMeasurer
}

// Advance returns the horizontal advance of a single line of text.
func (m *Measurer) Advance(line string, st Style) float64 {
	if line == "" || st.Size <= 0 {
		return 0
	}
	f, err := m.font(resolve(st))
	if err != nil {
		return fallbackAdvance(line, st)
	}

	runes := []rune(line)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f),
		Size:      floatToFixed(st.Size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := m.shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	m.shaperPool.Put(hb)

	w := fixedToFloat(out.Advance)
	if st.CharSpacing != 0 && len(runes) > 1 {
		w += float64(len(runes)-1) * st.CharSpacing / 1000 * st.Size
	}
	return w
}

// Measure returns the extent of a possibly multi-line block.
func (m *Measurer) Measure(s string, st Style) Extent {
	lines := strings.Split(s, "\n")
	var w float64
	for _, l := range lines {
		w = max(w, m.Advance(l, st))
	}
	lh := st.LineHeight
	if lh <= 0 {
		lh = 1
	}
	return Extent{
		Width:  w,
		Height: float64(len(lines)) * st.Size * lh,
		Lines:  len(lines),
	}
}

// Ascent returns the distance from the top of a line box's glyph area to
// its baseline. Fonts without horizontal extents report 0.8em.
func (m *Measurer) Ascent(st Style) float64 {
	if st.Size <= 0 {
		return 0
	}
	f, err := m.font(resolve(st))
	if err != nil || f.Upem() == 0 {
		return 0.8 * st.Size
	}
	ext, ok := font.NewFace(f).FontHExtents()
	if !ok {
		return 0.8 * st.Size
	}
	return float64(ext.Ascender) / float64(f.Upem()) * st.Size
}

// font returns a cached go-text Font, parsing it on first use.
func (m *Measurer) font(key fontKey) (*font.Font, error) {
	m.mu.RLock()
	if f, ok := m.fonts[key]; ok {
		m.mu.RUnlock()
		return f, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.fonts[key]; ok {
		return f, nil
	}
	face, err := font.ParseTTF(bytes.NewReader(key.data()))
	if err != nil {
		return nil, err
	}
	m.fonts[key] = face.Font
	return face.Font, nil
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// fallbackAdvance approximates an advance of 0.6em per rune.
func fallbackAdvance(line string, st Style) float64 {
	n := float64(len([]rune(line)))
	return n*0.6*st.Size + max(n-1, 0)*st.CharSpacing/1000*st.Size
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
