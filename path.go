package vfs

import "strings"

// A VirtualPath is an absolute path inside the virtual file system. Like the
// teacher's Path, it is kept as a plain string rather than a slice of
// segments to avoid an allocation per path and to make comparison and
// hashing free.
//
// Two invariants hold for every VirtualPath in circulation:
//   - it always begins with "/"
//   - it is a directory path iff it ends with "/", otherwise a file path
//
// Internal separators are preserved verbatim. A VirtualPath is an opaque
// key, not a normalised filesystem path, so "//" is not collapsed and ".."
// is not special.
type VirtualPath string

// NewVirtualPath validates s and returns it as a VirtualPath. s must be
// absolute (start with "/").
func NewVirtualPath(s string) (VirtualPath, error) {
	if len(s) == 0 || s[0] != '/' {
		return "", &InvalidPathError{Path: s, Reason: "path is not absolute"}
	}
	return VirtualPath(s), nil
}

// MustVirtualPath is NewVirtualPath for callers (mostly tests and package
// init) that already know s is valid.
func MustVirtualPath(s string) VirtualPath {
	p, err := NewVirtualPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the raw path string.
func (p VirtualPath) String() string {
	return string(p)
}

// IsDirectory reports whether p denotes a directory, i.e. ends with "/".
func (p VirtualPath) IsDirectory() bool {
	return strings.HasSuffix(string(p), "/")
}

// IsFile reports whether p denotes a file, the complement of IsDirectory.
func (p VirtualPath) IsFile() bool {
	return !p.IsDirectory()
}

// Directory returns everything up to and including the final "/". It fails
// with InvalidPathError if p is already a directory path.
func (p VirtualPath) Directory() (VirtualPath, error) {
	if p.IsDirectory() {
		return "", &InvalidPathError{Path: string(p), Reason: "Directory() called on a directory path"}
	}
	idx := strings.LastIndexByte(string(p), '/')
	return VirtualPath(p[:idx+1]), nil
}

// File returns everything from the final "/" onward, including that slash.
// It fails with InvalidPathError if p is already a directory path.
func (p VirtualPath) File() (VirtualPath, error) {
	if p.IsDirectory() {
		return "", &InvalidPathError{Path: string(p), Reason: "File() called on a directory path"}
	}
	idx := strings.LastIndexByte(string(p), '/')
	return VirtualPath(p[idx:]), nil
}

// Equal reports whether p and other denote the same path.
func (p VirtualPath) Equal(other VirtualPath) bool {
	return p == other
}

// Less implements the strict lexicographic ordering over virtual paths.
func (p VirtualPath) Less(other VirtualPath) bool {
	return p < other
}

// Join concatenates other onto the directory p. p must be a directory path.
// other is expected to already be an absolute VirtualPath; its leading "/"
// is folded into p's trailing "/".
func (p VirtualPath) Join(other VirtualPath) (VirtualPath, error) {
	if !p.IsDirectory() {
		return "", &InvalidPathError{Path: string(p), Reason: "Join() receiver must be a directory path"}
	}
	return VirtualPath(string(p) + strings.TrimPrefix(string(other), "/")), nil
}

// Matches implements the VFS's prefix-match rule: a directory path p
// matches other iff other begins with p. The returned remainder begins with
// the "/" that terminates p, so it is itself a valid absolute VirtualPath
// that can be handed to a backing store. ok is false (with a nil error) if
// p simply isn't a prefix of other. An error is returned only if p is not a
// directory path to begin with.
func (p VirtualPath) Matches(other VirtualPath) (remainder VirtualPath, ok bool, err error) {
	if !p.IsDirectory() {
		return "", false, &InvalidPathError{Path: string(p), Reason: "Matches() receiver must be a directory path"}
	}
	if !strings.HasPrefix(string(other), string(p)) {
		return "", false, nil
	}
	// len(p)-1 keeps the trailing slash of p, which becomes the leading
	// slash of the remainder.
	return VirtualPath(other[len(p)-1:]), true, nil
}
