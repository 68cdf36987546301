package codec

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by DeserializationError.
var (
	ErrUnknownElementType = errors.New("codec: unknown element type")
	ErrUnsupportedVersion = errors.New("codec: unsupported version")
	ErrMalformed          = errors.New("codec: malformed record")
)

// DeserializationError reports a record that cannot be turned back into a
// scene or object. Loads that hit one are abandoned as a whole.
type DeserializationError struct {
	// ObjectID is set when the failure is inside a specific object record.
	ObjectID    string
	ElementType string
	Version     string
	Reason      string
	Err         error
}

func (e *DeserializationError) Error() string {
	msg := "codec: cannot deserialize"
	if e.ObjectID != "" {
		msg += fmt.Sprintf(" object %q", e.ObjectID)
	}
	switch {
	case errors.Is(e.Err, ErrUnknownElementType):
		msg += fmt.Sprintf(": unknown element type %q", e.ElementType)
	case errors.Is(e.Err, ErrUnsupportedVersion):
		msg += fmt.Sprintf(": unsupported version %q (supported major %d)", e.Version, FormatMajor)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil && !errors.Is(e.Err, ErrUnknownElementType) && !errors.Is(e.Err, ErrUnsupportedVersion) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func malformed(id, reason string, err error) error {
	if err == nil {
		err = ErrMalformed
	} else {
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &DeserializationError{ObjectID: id, Reason: reason, Err: err}
}
