package decant

import (
	"reflect"
	"sync"
)

// registryKey combines type and codec for cache lookup.
type registryKey struct {
	typ         reflect.Type
	contentType string
}

var (
	registry   = make(map[registryKey]any)
	registryMu sync.RWMutex
)

// Use returns a cached converter or builds a new one. The converter is
// cached by type and codec content type; options only apply when the
// cache entry is first built. Integration points that need a
// per-call-site policy should construct with NewConverter directly.
func Use[T any](codec Codec, opts ...Option) (*Converter[T], error) {
	typ := reflect.TypeFor[T]()
	key := registryKey{typ: typ, contentType: codec.ContentType()}

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[key]; ok {
		registryMu.RUnlock()
		return cached.(*Converter[T]), nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[key]; ok {
		return cached.(*Converter[T]), nil
	}

	converter, err := NewConverter[T](codec, opts...)
	if err != nil {
		return nil, err
	}

	registry[key] = converter
	return converter, nil
}

// Reset clears the converter registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[registryKey]any)
}
