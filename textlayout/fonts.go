package textlayout

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontKey selects one of the embedded Go fonts.
type fontKey struct {
	mono   bool
	bold   bool
	italic bool
}

// monoFamilies are rendered with Go Mono; every other family falls back
// to the proportional Go font.
var monoFamilies = []string{"courier", "mono", "consolas", "menlo"}

func resolve(st Style) fontKey {
	fam := strings.ToLower(st.Family)
	k := fontKey{bold: st.Bold, italic: st.Italic}
	for _, m := range monoFamilies {
		if strings.Contains(fam, m) {
			k.mono = true
			break
		}
	}
	return k
}

func (k fontKey) data() []byte {
	switch {
	case k.mono && k.bold:
		return gomonobold.TTF
	case k.mono:
		return gomono.TTF
	case k.bold && k.italic:
		return gobolditalic.TTF
	case k.bold:
		return gobold.TTF
	case k.italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

// FontData returns the TrueType bytes used for family with the given
// weight and slant, so renderers draw with the same font that was measured.
func FontData(family string, bold, italic bool) []byte {
	return resolve(Style{Family: family, Bold: bold, Italic: italic}).data()
}

// IsBold reports whether a CSS font-weight value denotes a bold face.
func IsBold(weight string) bool {
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

// IsItalic reports whether a CSS font-style value is slanted.
func IsItalic(style string) bool {
	s := strings.ToLower(strings.TrimSpace(style))
	return s == "italic" || s == "oblique"
}
