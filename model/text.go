package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/labelkit/textlayout"
)

// TextCase is a display-time case transform.
type TextCase string

// Text case transforms.
const (
	CaseNone  TextCase = "none"
	CaseUpper TextCase = "uppercase"
	CaseLower TextCase = "lowercase"
	CaseTitle TextCase = "capitalize"
)

// TextProps is the payload of text and uuid elements.
type TextProps struct {
	Text        string   `json:"text"`
	FontFamily  string   `json:"fontFamily"`
	FontSize    float64  `json:"fontSize"`
	FontWeight  string   `json:"fontWeight"`
	FontStyle   string   `json:"fontStyle"`
	TextAlign   string   `json:"textAlign"`
	LineHeight  float64  `json:"lineHeight"`
	CharSpacing float64  `json:"charSpacing"`
	TextCase    TextCase `json:"textCase,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	MaxLength   int      `json:"maxLength,omitempty"`
	// UUIDLength is the requested generator length for uuid elements.
	UUIDLength int `json:"uuidLength,omitempty"`
}

// Text defaults.
const (
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 20
	DefaultTextColor  = "#000000"
	DefaultLineHeight = 1.16
)

// DisplayText returns the string as drawn: the placeholder when the text is
// empty, cut to MaxLength runes, with TextCase applied.
func (t *TextProps) DisplayText() string {
	s := t.Text
	if s == "" {
		s = t.Placeholder
	}
	if t.MaxLength > 0 {
		if r := []rune(s); len(r) > t.MaxLength {
			s = string(r[:t.MaxLength])
		}
	}
	switch t.TextCase {
	case CaseUpper:
		return cases.Upper(language.Und).String(s)
	case CaseLower:
		return cases.Lower(language.Und).String(s)
	case CaseTitle:
		return cases.Title(language.Und, cases.NoLower).String(s)
	}
	return s
}

// Style returns the layout style for measuring this text.
func (t *TextProps) Style() textlayout.Style {
	return textlayout.Style{
		Family:      t.FontFamily,
		Size:        t.FontSize,
		Bold:        textlayout.IsBold(t.FontWeight),
		Italic:      textlayout.IsItalic(t.FontStyle),
		CharSpacing: t.CharSpacing,
		LineHeight:  t.LineHeight,
	}
}

// Lines splits the display text into drawn lines.
func (t *TextProps) Lines() []string {
	return strings.Split(t.DisplayText(), "\n")
}

// FitText resizes a text object's box to its measured content.
// Width is only grown, so a wider box set by the user is kept.
func FitText(o *Object) {
	if o.Text == nil {
		return
	}
	ext := textlayout.Default().Measure(o.Text.DisplayText(), o.Text.Style())
	o.Width = max(o.Width, ext.Width)
	o.Height = ext.Height
}
