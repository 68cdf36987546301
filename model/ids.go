package model

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh object identifier.
func NewID() string {
	return uuid.NewString()
}

// now is the clock used for CreatedAt/ModifiedAt stamps.
var now = func() time.Time {
	return time.Now().UTC()
}
