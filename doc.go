// Package vfs provides a process-embedded virtual file system used to load
// typed resources from a unified absolute-path namespace over heterogeneous
// backing stores: real on-disk directories, individually mounted files, and
// in-memory storage. Clients register extension handlers once and then
// request typed resources by virtual path.
package vfs
