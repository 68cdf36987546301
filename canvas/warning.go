package canvas

import "fmt"

// WarningKind classifies a non-fatal constraint violation.
type WarningKind string

// Warning kinds.
const (
	// WarnLocked: a locked object was the target of a mutating operation
	// and was left unchanged.
	WarnLocked WarningKind = "locked"
	// WarnOutOfBounds: an object extends past the canvas edges.
	WarnOutOfBounds WarningKind = "outOfBounds"
	// WarnClamped: a value was clamped to satisfy a constraint.
	WarnClamped WarningKind = "clamped"
	// WarnInvalid: an input value was rejected and nothing changed.
	WarnInvalid WarningKind = "invalid"
)

// maxQueuedWarnings bounds the queue drained by Manager.Warnings.
const maxQueuedWarnings = 256

// Warning is a constraint violation surfaced to the caller for display. It
// is never returned as an error.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	ObjectID string      `json:"objectId,omitempty"`
	Message  string      `json:"message"`
}

func (w Warning) String() string {
	if w.ObjectID == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (object %s)", w.Kind, w.Message, w.ObjectID)
}
