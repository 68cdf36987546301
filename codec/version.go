package codec

import (
	"strconv"
	"strings"

	"github.com/gogpu/labelkit/model"
)

// FormatVersion is the wire format version written by this package.
const FormatVersion = model.FormatVersion

// FormatMajor is the only major version this package reads.
const FormatMajor = 1

// CheckVersion accepts any version whose major component is FormatMajor.
func CheckVersion(v string) error {
	major, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(v), "v"), ".")
	n, err := strconv.Atoi(major)
	if err != nil || n != FormatMajor {
		return &DeserializationError{Version: v, Err: ErrUnsupportedVersion}
	}
	return nil
}
