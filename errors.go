package vfs

// This mirrors the teacher's errors.go: small per-concern struct types, each
// implementing error (and Unwrap where it carries a cause), rather than a
// handful of sentinel values.
// Recoverable conditions are always reported this way; the VFS never panics
// for them.

// InvalidPathError is returned when a VirtualPath is constructed without a
// leading "/", or a directory/file-only operation is applied to the wrong
// kind of path.
type InvalidPathError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *InvalidPathError) Error() string {
	return "InvalidPathError: " + e.Path + ": " + e.Reason
}

// Unwrap returns nil or the cause.
func (e *InvalidPathError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned when a mount target doesn't exist on disk, or a
// load exhausts the mount list without a match.
type NotFoundError struct {
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return "NotFoundError: " + e.Path
}

// Unwrap returns nil or the cause.
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// NotADirectoryError is returned when a directory mount point targets a
// real path that isn't a directory.
type NotADirectoryError struct {
	RealPath string
	Cause    error
}

func (e *NotADirectoryError) Error() string {
	return "NotADirectoryError: " + e.RealPath
}

// Unwrap returns nil or the cause.
func (e *NotADirectoryError) Unwrap() error {
	return e.Cause
}

// InvalidMountError is returned when a file mount point targets a real
// directory.
type InvalidMountError struct {
	MountPoint string
	RealPath   string
}

func (e *InvalidMountError) Error() string {
	return "InvalidMountError: cannot mount directory " + e.RealPath + " at file mount point " + e.MountPoint
}

// PathEscapeError is returned when a canonicalised lookup candidate leaves
// the canonical root of a real directory backing store, e.g. via a symlink.
type PathEscapeError struct {
	Candidate string
	Root      string
}

func (e *PathEscapeError) Error() string {
	return "PathEscapeError: " + e.Candidate + " escapes root " + e.Root
}

// UnknownExtensionError is returned when no handler is registered for an
// extension a mount attempt needs.
type UnknownExtensionError struct {
	Extension string
}

func (e *UnknownExtensionError) Error() string {
	return "UnknownExtensionError: " + e.Extension
}

// UnknownTypeError is returned when a load's target type has no canonical
// extension registered.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return "UnknownTypeError: " + e.Type
}

// HandlerRejectedError is returned when the outermost handler in an
// extension chain returns false, or, for a file mounted under a directory
// mount point, when the chain finishes without mounting a resource. During a
// lookup, a chain that reports success but mounts nothing is a plain miss.
type HandlerRejectedError struct {
	Extension  string
	MountPoint string
}

func (e *HandlerRejectedError) Error() string {
	return "HandlerRejectedError: " + e.Extension + " at " + e.MountPoint
}

// AlreadyMountedError is returned on a second Mount call against the same
// one-shot MountPointHandle.
type AlreadyMountedError struct {
	MountPoint string
}

func (e *AlreadyMountedError) Error() string {
	return "AlreadyMountedError: " + e.MountPoint
}

// TypeMismatchError is returned when an exact or base downcast of a Handle
// disagrees with the type it actually holds. VirtualDirectory.Lookup
// deliberately swallows this one (see directory.go) rather than letting it
// reach callers, so that an overlay scan keeps trying earlier mounts.
type TypeMismatchError struct {
	Want string
	Have string
}

func (e *TypeMismatchError) Error() string {
	return "TypeMismatchError: want " + e.Want + ", have " + e.Have
}

// UnsupportedError is returned for operations that are acknowledged but
// deliberately not implemented, e.g. create_if_not_exists for a missing
// file mount target (see DESIGN.md's Open Question notes).
type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string {
	return "UnsupportedError: " + e.Message
}
