package model

import "time"

// SetClock replaces the timestamp source for the duration of a test.
func SetClock(fn func() time.Time) (restore func()) {
	prev := now
	now = fn
	return func() { now = prev }
}
