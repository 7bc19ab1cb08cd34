package vfs

import "sync"

// runFunc drives the extension chain registered for a leaf path's
// extension against the opened content file (nil if the store has no raw
// content to offer, e.g. a OneItemStore created without an open func). It is built by VirtualFileSystem
// and threaded down into whichever BackingStore answers a lookup, so that
// only VirtualFileSystem needs to know about ExtensionRegistry.
type runFunc func(leaf VirtualPath, file ResourceReader, mph *MountPointHandle) error

// A BackingStore is one layer in a mount list: something capable of
// resolving a path remainder (relative to the mount point) to a typed
// Handle. It mirrors the backing_storage variants of the original
// virtual_directory (oneitem_directory / real_directory / inmemory_directory)
// collapsed to a single Go interface rather than a closed sum type, since Go
// has no sealed variant construct and the VFS needs to accept stores besides
// the three built in here.
type BackingStore interface {
	// Resolve attempts to produce a Handle for remainder, a VirtualPath
	// relative to this store's mount point (see VirtualPath.Matches). ext is
	// the caller's canonical extension for the type being loaded (resolved
	// by VirtualFileSystem.TryLoad from the type→extension map, §3(b)); a
	// real-directory-backed store needs it to compose the candidate disk
	// filename from a bare stem, the same way the other two built-in stores
	// ignore it since they match purely on the virtual remainder. run drives
	// the extension chain once opened content, if any, is available. ok is
	// false, with a nil error, if this store simply has nothing at
	// remainder (so the caller should fall through to the next, earlier
	// mount); a non-nil error is a hard failure that should abort the whole
	// load (e.g. PathEscapeError).
	Resolve(remainder VirtualPath, ext string, run runFunc) (h Handle, ok bool, err error)
}

// OneItemStore backs a single file mount point (vfs.Mount on a file path).
// It holds exactly one resource slot, lazily materialised on first Resolve
// and cached afterward — the Go counterpart of oneitem_directory.
type OneItemStore struct {
	leaf VirtualPath
	open func() (ResourceReader, error)

	mu      sync.Mutex
	loaded  bool
	handle  Handle
	mounted bool
}

// NewOneItemStore creates a store that answers only to leaf, the exact
// remainder path of the file mount point it backs (typically "/<name.ext>").
// open lazily produces the backing content on first lookup; it may be nil if
// the mounted resource has no raw content (e.g. it is synthesised entirely
// by its handler).
func NewOneItemStore(leaf VirtualPath, open func() (ResourceReader, error)) *OneItemStore {
	return &OneItemStore{leaf: leaf, open: open}
}

// NewOneItemStorePreloaded creates a store whose single slot is already
// resolved to h. Used when the pipeline that materialises the resource must
// run eagerly, at mount time, rather than lazily on first lookup — e.g.
// mounting a lone file underneath a directory mount point (see
// VirtualFileSystem.Mount case 2), where the spec requires driving the
// extension pipeline immediately rather than deferring it.
func NewOneItemStorePreloaded(leaf VirtualPath, h Handle) *OneItemStore {
	return &OneItemStore{leaf: leaf, loaded: true, mounted: true, handle: h}
}

// Resolve implements BackingStore. ext is unused: per §3, a one-item store's
// lookup answers "does remainder equal the stored leaf", the same match the
// original's oneitem_directory::lookup performs, independent of extension.
func (s *OneItemStore) Resolve(remainder VirtualPath, ext string, run runFunc) (Handle, bool, error) {
	if !remainder.Equal(s.leaf) {
		return Handle{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		if !s.mounted {
			return Handle{}, false, nil
		}
		return s.handle, true, nil
	}
	s.loaded = true

	var file ResourceReader
	if s.open != nil {
		f, err := s.open()
		if err != nil {
			return Handle{}, false, &NotFoundError{Path: remainder.String(), Cause: err}
		}
		file = f
		defer file.Close()
	}

	mph := newMountPointHandle()
	if err := run(s.leaf, file, mph); err != nil {
		return Handle{}, false, err
	}
	if h, ok := mph.resultHandle(); ok {
		s.handle = h
		s.mounted = true
		return h, true, nil
	}
	return Handle{}, false, nil
}

// InMemoryStore backs an in-process resource tree that was never present on
// disk: resources registered directly by the embedding program, e.g.
// procedurally generated assets or test fixtures. It is the Go counterpart
// of inmemory_directory, keyed on the exact remainder path rather than run
// through the extension chain, since an in-memory entry already is the
// finished resource.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[VirtualPath]Handle
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[VirtualPath]Handle)}
}

// Put installs (or replaces) the resource at remainder, an absolute path
// relative to this store's mount point.
func (s *InMemoryStore) Put(remainder VirtualPath, h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[remainder] = h
}

// Resolve implements BackingStore. It never invokes the extension chain:
// whatever was Put is returned verbatim, regardless of ext.
func (s *InMemoryStore) Resolve(remainder VirtualPath, ext string, _ runFunc) (Handle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.entries[remainder]
	return h, ok, nil
}
