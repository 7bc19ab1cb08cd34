package vfs

import (
	"reflect"
	"sync"
)

// baseRegistry tracks, for each concrete resource type, the set of base
// types it may be safely downcast to. This is the explicit tagged scheme
// §9 calls for in place of the original dynamic-any + virtual-base-throw
// trick: a Handle never discovers a base relationship structurally (via a
// Go type assertion to an arbitrary interface), it only honours one that
// was declared ahead of time.
var baseRegistry = struct {
	mu    sync.RWMutex
	bases map[reflect.Type][]reflect.Type
}{bases: make(map[reflect.Type][]reflect.Type)}

// DeclareBase records that a Handle constructed over a T value may also be
// downcast to Base. Call it once, typically from an init function next to
// the T type itself, before any Handle of T is constructed; registration
// after the fact has no effect on Handles already built.
func DeclareBase[T, Base any]() {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b := reflect.TypeOf((*Base)(nil)).Elem()

	baseRegistry.mu.Lock()
	defer baseRegistry.mu.Unlock()
	for _, existing := range baseRegistry.bases[t] {
		if existing == b {
			return
		}
	}
	baseRegistry.bases[t] = append(baseRegistry.bases[t], b)
}

func declaredBases(t reflect.Type) []reflect.Type {
	baseRegistry.mu.RLock()
	defer baseRegistry.mu.RUnlock()
	if len(baseRegistry.bases[t]) == 0 {
		return nil
	}
	out := make([]reflect.Type, len(baseRegistry.bases[t]))
	copy(out, baseRegistry.bases[t])
	return out
}

// A Handle is a shared, type-erased container for a resource of a single
// concrete type established at construction. It is the Go replacement for
// the C++ original's shared_any: construction captures the dynamic type of
// the payload plus the table of base types declared for it, and downcasts
// consult that table instead of relying on exceptions.
//
// Handles are shared, not copied by value — the payload stored inside is
// whatever reference-like or value type the caller handed to NewHandle;
// repeated downcasts return views onto the same payload. Mutating the
// resource is the resource's concern, not the Handle's.
type Handle struct {
	value interface{}
	typ   reflect.Type
	bases []reflect.Type
}

// NewHandle wraps value in a Handle, capturing its dynamic type and any
// base types declared for it via DeclareBase. A nil value produces the
// empty Handle (HasValue reports false).
func NewHandle(value interface{}) Handle {
	if value == nil {
		return Handle{}
	}
	t := reflect.TypeOf(value)
	return Handle{value: value, typ: t, bases: declaredBases(t)}
}

// HasValue reports whether h carries a resource at all.
func (h Handle) HasValue() bool {
	return h.value != nil
}

// TypeName returns the name of the concrete type h holds, or "" if empty.
func (h Handle) TypeName() string {
	if h.typ == nil {
		return ""
	}
	return h.typ.String()
}

func (h Handle) hasBase(want reflect.Type) bool {
	for _, b := range h.bases {
		if b == want {
			return true
		}
	}
	return false
}

func typeNameOf[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.String()
}

// Downcast performs an exact downcast of h to T: it succeeds only if T is
// precisely the type h was constructed with.
func Downcast[T any](h Handle) (T, error) {
	var zero T
	if !h.HasValue() {
		return zero, &TypeMismatchError{Want: typeNameOf[T](), Have: "<empty>"}
	}
	v, ok := h.value.(T)
	if !ok {
		return zero, &TypeMismatchError{Want: typeNameOf[T](), Have: h.TypeName()}
	}
	return v, nil
}

// BaseDowncast performs a base-type downcast of h to Base. It succeeds if
// Base is exactly h's concrete type, or if Base was declared (via
// DeclareBase) as a base of h's concrete type.
func BaseDowncast[Base any](h Handle) (Base, error) {
	var zero Base
	if !h.HasValue() {
		return zero, &TypeMismatchError{Want: typeNameOf[Base](), Have: "<empty>"}
	}

	wantType := reflect.TypeOf((*Base)(nil)).Elem()
	if h.typ == wantType {
		// An exact match is trivially also a valid base match.
		return h.value.(Base), nil
	}
	if !h.hasBase(wantType) {
		return zero, &TypeMismatchError{Want: wantType.String(), Have: h.TypeName()}
	}
	v, ok := h.value.(Base)
	if !ok {
		// A declared base that the concrete type doesn't actually satisfy
		// is a registration bug, not a caller error, but it still must
		// surface as a TypeMismatch rather than panic.
		return zero, &TypeMismatchError{Want: wantType.String(), Have: h.TypeName()}
	}
	return v, nil
}
