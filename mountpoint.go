package vfs

import "sync/atomic"

// A MountPointHandle is a one-shot capability handed to an extension chain
// while it materialises a resource. Calling Mount more than once on the same
// handle is a programming error in the handler and is reported as
// AlreadyMountedError rather than silently overwriting the first result;
// this mirrors the original's mount_point_handle / oneitem_mount_point_handle
// / realdir_mount_point_handle split, fused into one type per the redesign
// (see SPEC_FULL.md, §9): both the one-item file case and the real-directory
// case just need "capture exactly one Handle", not two distinct C++ classes.
type MountPointHandle struct {
	mounted int32
	handle  Handle
}

func newMountPointHandle() *MountPointHandle {
	return &MountPointHandle{}
}

// Mount records h as the result of this mount point. It returns
// AlreadyMountedError if called a second time.
func (m *MountPointHandle) Mount(h Handle) error {
	if !atomic.CompareAndSwapInt32(&m.mounted, 0, 1) {
		return &AlreadyMountedError{}
	}
	m.handle = h
	return nil
}

// resultHandle returns the Handle mounted through m, if any.
func (m *MountPointHandle) resultHandle() (Handle, bool) {
	if atomic.LoadInt32(&m.mounted) == 0 {
		return Handle{}, false
	}
	return m.handle, true
}
