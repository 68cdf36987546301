package export

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownFormat is returned for a format no encoder is registered for.
var ErrUnknownFormat = errors.New("export: unknown format")

// EncoderFactory creates a new encoder instance.
type EncoderFactory func() Encoder

var (
	registryMu sync.RWMutex
	encoders   = make(map[string]EncoderFactory)
)

// Register makes an encoder available under name. Backend packages call it
// from init, following the database/sql driver pattern:
//
//	func init() {
//	    export.Register("png", func() export.Encoder { return NewPNG() })
//	}
//
// Register panics if factory is nil or name is already registered.
func Register(name string, factory EncoderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("export: Register factory is nil")
	}
	if _, dup := encoders[name]; dup {
		panic("export: Register called twice for " + name)
	}
	encoders[name] = factory
}

// Unregister removes an encoder. It is a no-op for unknown names.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(encoders, name)
}

// NewEncoder creates the encoder registered under name.
func NewEncoder(name string) (Encoder, error) {
	registryMu.RLock()
	factory, ok := encoders[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownFormat, name)
	}
	return factory(), nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether an encoder is registered under name.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := encoders[name]
	return ok
}
