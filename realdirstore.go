package vfs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// RealDirectoryStore backs a directory mount point with an actual directory
// on disk. It is the Go counterpart of real_directory in the original:
// lookups canonicalise the candidate real path, refuse anything that
// escapes the mount's root (PathEscapeError), open the file, drive it
// through the extension chain keyed on the file's extension, and cache the
// resulting Handle so a repeated lookup for the same (remainder, ext)
// doesn't reopen or re-parse anything. Concurrent identical lookups are
// collapsed through a singleflight.Group so only one goroutine ever does
// the actual work for a given (remainder, ext) (see the singleflight entry
// in SPEC_FULL.md's Domain Stack section).
//
// remainder is the bare virtual stem the caller asked to load — it carries
// no extension of its own; ext, supplied by VirtualFileSystem.TryLoad from
// the type→extension map, is what turns it into a candidate filename on
// disk, exactly as real_directory::lookup in vfs.cpp replaces the looked-up
// name's extension with the one recorded in type_ext_map rather than
// inferring it from the leaf.
//
// Per the resolution of Open Question 2 (see DESIGN.md), a failed lookup is
// never cached: a resource that appears after a prior miss (e.g. an asset
// dropped in during development) is picked up on the very next load.
type RealDirectoryStore struct {
	root     string
	registry *ExtensionRegistry
	log      logrus.FieldLogger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[realDirCacheKey]Handle
}

// realDirCacheKey pairs a lookup's bare stem with the extension it was
// resolved against, so two types that happen to share a stem but register
// different canonical extensions never collide in the cache.
type realDirCacheKey struct {
	remainder VirtualPath
	ext       string
}

// NewRealDirectoryStore creates a store rooted at root, an existing
// directory on disk, using registry to resolve each file's extension chain.
func NewRealDirectoryStore(root string, registry *ExtensionRegistry, log logrus.FieldLogger) (*RealDirectoryStore, error) {
	canonicalRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &NotADirectoryError{RealPath: root, Cause: err}
	}
	info, err := os.Stat(canonicalRoot)
	if err != nil {
		return nil, &NotADirectoryError{RealPath: root, Cause: err}
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{RealPath: root}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RealDirectoryStore{
		root:     canonicalRoot,
		registry: registry,
		log:      log,
		cache:    make(map[realDirCacheKey]Handle),
	}, nil
}

// Resolve implements BackingStore.
func (s *RealDirectoryStore) Resolve(remainder VirtualPath, ext string, run runFunc) (Handle, bool, error) {
	key := realDirCacheKey{remainder: remainder, ext: ext}
	if s.cached(key) {
		s.mu.RLock()
		h := s.cache[key]
		s.mu.RUnlock()
		return h, true, nil
	}

	result, err, _ := s.group.Do(remainder.String()+"\x00"+ext, func() (interface{}, error) {
		if s.cached(key) {
			s.mu.RLock()
			h := s.cache[key]
			s.mu.RUnlock()
			return h, nil
		}
		h, loadErr := s.load(remainder, ext, run)
		if loadErr != nil {
			return Handle{}, loadErr
		}
		s.mu.Lock()
		s.cache[key] = h
		s.mu.Unlock()
		return h, nil
	})
	if err != nil {
		if isNotFound(err) {
			return Handle{}, false, nil
		}
		return Handle{}, false, err
	}
	return result.(Handle), true, nil
}

func (s *RealDirectoryStore) cached(key realDirCacheKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[key]
	return ok
}

func isNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

func (s *RealDirectoryStore) load(remainder VirtualPath, ext string, run runFunc) (Handle, error) {
	rel := strings.TrimPrefix(remainder.String(), "/")
	candidate := replaceExtension(filepath.Join(s.root, filepath.FromSlash(rel)), ext)

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return Handle{}, &NotFoundError{Path: remainder.String(), Cause: err}
		}
		return Handle{}, &PathEscapeError{Candidate: candidate, Root: s.root}
	}
	if !withinRoot(s.root, resolved) {
		s.log.WithFields(logrus.Fields{"candidate": resolved, "root": s.root}).
			Warn("rejected lookup candidate escaping mount root")
		return Handle{}, &PathEscapeError{Candidate: resolved, Root: s.root}
	}

	file, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return Handle{}, &NotFoundError{Path: remainder.String(), Cause: err}
		}
		return Handle{}, err
	}

	mph := newMountPointHandle()
	runErr := run(remainder, file, mph)
	file.Close()
	if runErr != nil {
		return Handle{}, runErr
	}
	h, mounted := mph.resultHandle()
	if !mounted {
		return Handle{}, &NotFoundError{Path: remainder.String()}
	}
	return h, nil
}

// withinRoot reports whether resolved is root itself, or lies strictly
// beneath it, using OS path separators on both sides.
func withinRoot(root, resolved string) bool {
	if resolved == root {
		return true
	}
	return strings.HasPrefix(resolved, root+string(filepath.Separator))
}

// replaceExtension mirrors fs::path::replace_extension from the original
// (vfs.cpp's real_directory::lookup: "(path / name).replace_extension(ext)"):
// it strips whatever extension path already has, if any, and appends ext.
// path is typically a bare stem with no extension at all, since callers
// reach RealDirectoryStore.load with the virtual remainder, not a disk name.
func replaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
