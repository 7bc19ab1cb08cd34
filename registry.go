package vfs

import "reflect"

// NextFunc delegates to the next-oldest handler in a chain. It may be
// called at most once by a handler; a second call is a no-op that returns
// the same (handled, err) pair as the first, rather than re-running the
// downstream handler or panicking — a misbehaving handler shouldn't be able
// to materialise a resource twice.
type NextFunc func() (handled bool, err error)

// A Handler participates in the chain of responsibility registered for one
// file extension. leaf is the file's path relative to its mount point, file
// is the opened backing content (nil when the store has no raw content, e.g.
// a OneItemStore created without an open func), mph is the one-shot
// capability the handler mounts its result through, and next delegates to
// the handler registered immediately before this one. A Handler returns
// handled=true if it (or something it delegated to via next) produced a
// resource; returning handled=false means "I don't recognise this content".
// When the most recently registered handler returns handled=false, Run
// reports HandlerRejectedError, whatever the handlers it delegated to
// returned.
type Handler func(leaf VirtualPath, file ResourceReader, mph *MountPointHandle, next NextFunc) (handled bool, err error)

// ExtensionRegistry holds, per registered file extension, the ordered chain
// of handlers installed for it, plus the map from a resource type's identity
// to its canonical extension (type_ext_map in the original vfs.hpp).
// Registration order matters: the most-recently-registered handler for an
// extension runs first and decides whether to delegate to the ones before
// it, mirroring do_extension_mount's recursive closure capture in the
// original (vfs.cpp) — a later RegisterExtension call can wrap an earlier
// one without the earlier one knowing it's being wrapped.
type ExtensionRegistry struct {
	chains   map[string][]Handler
	typeExts map[reflect.Type]string
}

// NewExtensionRegistry creates an empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{
		chains:   make(map[string][]Handler),
		typeExts: make(map[reflect.Type]string),
	}
}

// Register appends h to the chain for ext. ext should include the leading
// dot, e.g. ".mesh".
func (r *ExtensionRegistry) Register(ext string, h Handler) {
	r.chains[ext] = append(r.chains[ext], h)
}

// HasExtension reports whether any handler is registered for ext.
func (r *ExtensionRegistry) HasExtension(ext string) bool {
	return len(r.chains[ext]) > 0
}

// SetTypeExtension records ext as the canonical extension for t, overwriting
// any previous mapping for t — type_ext_map[typeid(T)] = ext in vfs.hpp.
func (r *ExtensionRegistry) SetTypeExtension(t reflect.Type, ext string) {
	r.typeExts[t] = ext
}

// TypeExtension returns the canonical extension registered for t, if any.
func (r *ExtensionRegistry) TypeExtension(t reflect.Type) (string, bool) {
	ext, ok := r.typeExts[t]
	return ext, ok
}

// Run drives the chain registered for ext against leaf/file, starting from
// the most-recently-registered handler. It returns UnknownExtensionError if
// no handler is registered for ext, and HandlerRejectedError if the most
// recently registered handler returns handled=false; only that handler's
// result is consulted, not the results of the handlers it delegated to.
func (r *ExtensionRegistry) Run(ext string, leaf VirtualPath, file ResourceReader, mph *MountPointHandle) error {
	chain := r.chains[ext]
	if len(chain) == 0 {
		return &UnknownExtensionError{Extension: ext}
	}

	handled, err := r.invoke(chain, len(chain)-1, leaf, file, mph)
	if err != nil {
		return err
	}
	if !handled {
		return &HandlerRejectedError{Extension: ext, MountPoint: leaf.String()}
	}
	return nil
}

func (r *ExtensionRegistry) invoke(chain []Handler, idx int, leaf VirtualPath, file ResourceReader, mph *MountPointHandle) (bool, error) {
	var nextCalled bool
	var nextHandled bool
	var nextErr error

	next := func() (bool, error) {
		if nextCalled {
			return nextHandled, nextErr
		}
		nextCalled = true
		if idx == 0 {
			nextHandled, nextErr = false, nil
			return nextHandled, nextErr
		}
		nextHandled, nextErr = r.invoke(chain, idx-1, leaf, file, mph)
		return nextHandled, nextErr
	}

	return chain[idx](leaf, file, mph, next)
}
