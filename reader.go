package vfs

import "io"

// A ResourceReader is the opened content handed to an extension chain. It is
// satisfied by *os.File and any in-memory io.ReadSeeker the embedder wants
// to feed through the same handlers (tests use bytes.NewReader). It is nil
// when a store has no raw content to open, such as a OneItemStore created
// without an open func. InMemoryStore never runs the extension chain at all.
type ResourceReader interface {
	io.Reader
	io.Seeker
	io.Closer
}
