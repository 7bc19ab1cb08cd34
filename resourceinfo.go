package vfs

import (
	"time"

	"github.com/worldiety/xobj"
)

// ResourceInfo carries metadata about a loaded resource alongside its
// Handle: where it came from, when it was last refreshed, and an open
// attribute bag for whatever a handler wants to stash (checksum, source
// encoding, a decoded header). The attribute bag is xobj.Obj, the teacher's
// own dependency for exactly this kind of semi-structured data, rather than
// a bespoke map type.
type ResourceInfo struct {
	Path       VirtualPath
	Extension  string
	LoadedAt   time.Time
	Attributes xobj.Obj
}

// NewResourceInfo creates a ResourceInfo with an empty attribute bag ready
// for a handler to populate.
func NewResourceInfo(path VirtualPath, ext string, loadedAt time.Time) *ResourceInfo {
	return &ResourceInfo{
		Path:       path,
		Extension:  ext,
		LoadedAt:   loadedAt,
		Attributes: xobj.Obj{},
	}
}

// Info returns r itself. It exists so that a concrete resource type
// embedding *ResourceInfo promotes a method satisfying ResourceInfoProvider,
// which is what BaseDowncast actually tests against — Go type assertions
// check dynamic type or interface satisfaction, never struct embedding, so
// a base downcast to a concrete struct like *ResourceInfo can never succeed
// on its own.
func (r *ResourceInfo) Info() *ResourceInfo {
	return r
}

// ResourceInfoProvider is the declared base type for any resource that
// carries a ResourceInfo, typically by embedding *ResourceInfo. Handlers
// that want their mounted resources to also answer
// BaseDowncast[ResourceInfoProvider] — e.g. for a diagnostic tool that only
// cares about metadata, not the decoded payload — declare it once per
// concrete type via DeclareResourceInfoBase.
type ResourceInfoProvider interface {
	Info() *ResourceInfo
}

// DeclareResourceInfoBase records that T (which must embed *ResourceInfo,
// or otherwise implement ResourceInfoProvider) may be downcast to
// ResourceInfoProvider.
func DeclareResourceInfoBase[T ResourceInfoProvider]() {
	DeclareBase[T, ResourceInfoProvider]()
}
