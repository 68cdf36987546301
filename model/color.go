package model

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/image/colornames"
)

var (
	hexColor  = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColor = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\(\s*[0-9.%]+(\s*[,\s]\s*[0-9.%]+){2,3}\s*\)$`)
	fontName  = regexp.MustCompile(`^[\p{L}\p{N} ,_\-.']*$`)
)

// IsColor reports whether s is a color the renderers understand: empty,
// none, transparent, a hex color, rgb[a]() or hsl[a](), or a CSS color
// name.
func IsColor(s string) bool {
	c := strings.ToLower(strings.TrimSpace(s))
	switch c {
	case "", "none", "transparent":
		return true
	}
	if hexColor.MatchString(c) || funcColor.MatchString(c) {
		return true
	}
	_, ok := colornames.Map[c]
	return ok
}

// IsFontFamily reports whether s is a plain font family list: letters,
// digits, spaces, commas, quotes, dots, hyphens and underscores.
func IsFontFamily(s string) bool {
	return len(s) <= 256 && fontName.MatchString(s)
}

// ValidateColor returns a *ValidationError naming field when s is not a
// color.
func ValidateColor(field, s string) error {
	if IsColor(s) {
		return nil
	}
	return &ValidationError{Field: field, Reason: "is not a color"}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// allFinite reports whether every value is finite.
func allFinite(vs ...float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
