package vfs

import "errors"

// A VirtualDirectory is one entry in a VirtualFileSystem's mount list: a
// mount point paired with the BackingStore layered there. Overlay order is
// owned by VirtualFileSystem (mounts are scanned newest-first); this type
// just knows how to test one mount point against a requested path and, on a
// match, drive its store.
type VirtualDirectory struct {
	MountPoint VirtualPath
	Store      BackingStore
}

// Lookup checks whether path falls under d's mount point and, if so,
// resolves it through d's backing store and the supplied extension chain
// runner. ext is the canonical extension resolved for the type being
// loaded (see VirtualFileSystem.TryLoad), passed through to the backing
// store so a real-directory store can compose the candidate disk filename
// from path's bare stem. ok is false (nil error) whenever this mount simply
// has nothing for path — including a mismatched mount point, a store miss,
// and a TypeMismatchError from a downstream Downcast/BaseDowncast — since
// all three mean the same thing to an overlay scan: keep looking at
// earlier mounts. Any other error aborts the scan.
func (d *VirtualDirectory) Lookup(path VirtualPath, ext string, run runFunc) (Handle, bool, error) {
	remainder, ok, err := d.MountPoint.Matches(path)
	if err != nil {
		return Handle{}, false, err
	}
	if !ok {
		return Handle{}, false, nil
	}

	h, ok, err := d.Store.Resolve(remainder, ext, run)
	if err != nil {
		var mismatch *TypeMismatchError
		if errors.As(err, &mismatch) {
			return Handle{}, false, nil
		}
		return Handle{}, false, err
	}
	return h, ok, nil
}
