package vfs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, loadCount *int) *ExtensionRegistry {
	t.Helper()
	r := NewExtensionRegistry()
	r.Register(".mesh", func(leaf VirtualPath, file ResourceReader, mph *MountPointHandle, next NextFunc) (bool, error) {
		if loadCount != nil {
			*loadCount++
		}
		var content []byte
		if file != nil {
			var err error
			content, err = io.ReadAll(file)
			if err != nil {
				return false, err
			}
		}
		mph.Mount(NewHandle(&testMesh{Name: string(content)}))
		return true, nil
	})
	return r
}

// runWithExt builds a runFunc that drives store's registry chain for a fixed
// extension, standing in for the ext that VirtualFileSystem.TryLoad would
// have resolved from the type→extension map before ever reaching the store.
func runWithExt(store *RealDirectoryStore, ext string) runFunc {
	return func(leaf VirtualPath, file ResourceReader, mph *MountPointHandle) error {
		return store.registry.Run(ext, leaf, file, mph)
	}
}

func TestRealDirectoryStore_RejectsNonDirectoryRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewRealDirectoryStore(file, NewExtensionRegistry(), logrus.StandardLogger())
	require.Error(t, err)
	var notADir *NotADirectoryError
	require.ErrorAs(t, err, &notADir)
}

func TestRealDirectoryStore_LoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.mesh"), []byte("hero-data"), 0o644))

	loads := 0
	store, err := NewRealDirectoryStore(dir, newTestRegistry(t, &loads), logrus.StandardLogger())
	require.NoError(t, err)

	run := runWithExt(store, ".mesh")

	// remainder is a bare stem; Resolve composes the on-disk candidate by
	// appending ext itself, the same way real_directory::lookup replaces the
	// looked-up name's extension rather than trusting the caller to supply one.
	h1, ok, err := store.Resolve(MustVirtualPath("/hero"), ".mesh", run)
	require.NoError(t, err)
	require.True(t, ok)

	h2, ok, err := store.Resolve(MustVirtualPath("/hero"), ".mesh", run)
	require.NoError(t, err)
	require.True(t, ok)

	mesh1, _ := Downcast[*testMesh](h1)
	mesh2, _ := Downcast[*testMesh](h2)
	assert.Equal(t, "hero-data", mesh1.Name)
	assert.Equal(t, mesh1, mesh2)
	assert.Equal(t, 1, loads)
}

func TestRealDirectoryStore_MissingFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRealDirectoryStore(dir, newTestRegistry(t, nil), logrus.StandardLogger())
	require.NoError(t, err)

	run := runWithExt(store, ".mesh")

	_, ok, err := store.Resolve(MustVirtualPath("/missing"), ".mesh", run)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRealDirectoryStore_SymlinkEscapeIsRejected(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.mesh")
	require.NoError(t, os.WriteFile(secret, []byte("top-secret"), 0o644))

	link := filepath.Join(root, "escape.mesh")
	require.NoError(t, os.Symlink(secret, link))

	store, err := NewRealDirectoryStore(root, newTestRegistry(t, nil), logrus.StandardLogger())
	require.NoError(t, err)

	run := runWithExt(store, ".mesh")

	_, _, err = store.Resolve(MustVirtualPath("/escape"), ".mesh", run)
	require.Error(t, err)
	var escape *PathEscapeError
	require.ErrorAs(t, err, &escape)
}
