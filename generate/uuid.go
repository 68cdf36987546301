// Package generate produces the external content label elements carry:
// identifiers for uuid elements, QR code and barcode images, and decoded
// images loaded from URLs, files or data URLs.
//
// Generators are safe for concurrent use. QR images and loaded images are
// cached with a TTL.
package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUID length bounds. Zero selects DefaultUUIDLength.
const (
	MinUUIDLength     = 8
	MaxUUIDLength     = 36
	DefaultUUIDLength = MaxUUIDLength
)

// ErrInvalidLength is returned for UUID lengths outside 8–36.
var ErrInvalidLength = errors.New("generate: invalid uuid length")

// UUID returns a random version 4 UUID cut to length characters.
//
// Length 36 is the canonical hyphenated form. Lengths up to 32 are taken
// from the 32 hex digits with the hyphens removed; 33–35 truncate the
// canonical form.
func UUID(length int) (string, error) {
	if length == 0 {
		length = DefaultUUIDLength
	}
	if length < MinUUIDLength || length > MaxUUIDLength {
		return "", fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidLength, length, MinUUIDLength, MaxUUIDLength)
	}
	id := uuid.NewString()
	if length <= 32 {
		return strings.ReplaceAll(id, "-", "")[:length], nil
	}
	return id[:length], nil
}
