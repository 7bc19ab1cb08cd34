package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVirtualPath_RejectsRelative(t *testing.T) {
	_, err := NewVirtualPath("relative/path")
	require.Error(t, err)
	var invalid *InvalidPathError
	require.ErrorAs(t, err, &invalid)
}

func TestVirtualPath_IsDirectoryAndIsFile(t *testing.T) {
	dir := MustVirtualPath("/textures/")
	file := MustVirtualPath("/textures/brick.png")

	assert.True(t, dir.IsDirectory())
	assert.False(t, dir.IsFile())
	assert.True(t, file.IsFile())
	assert.False(t, file.IsDirectory())
}

func TestVirtualPath_DirectoryAndFile(t *testing.T) {
	file := MustVirtualPath("/textures/brick.png")

	dir, err := file.Directory()
	require.NoError(t, err)
	assert.Equal(t, MustVirtualPath("/textures/"), dir)

	leaf, err := file.File()
	require.NoError(t, err)
	assert.Equal(t, MustVirtualPath("/brick.png"), leaf)

	_, err = dir.Directory()
	assert.Error(t, err)
	_, err = dir.File()
	assert.Error(t, err)
}

func TestVirtualPath_Join(t *testing.T) {
	dir := MustVirtualPath("/textures/")
	joined, err := dir.Join(MustVirtualPath("/brick.png"))
	require.NoError(t, err)
	assert.Equal(t, MustVirtualPath("/textures/brick.png"), joined)

	_, err = MustVirtualPath("/brick.png").Join(MustVirtualPath("/x"))
	assert.Error(t, err)
}

func TestVirtualPath_MatchesPrefixAndRemainder(t *testing.T) {
	mount := MustVirtualPath("/assets/")
	target := MustVirtualPath("/assets/models/hero.mesh")

	remainder, ok, err := mount.Matches(target)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, MustVirtualPath("/models/hero.mesh"), remainder)
}

func TestVirtualPath_MatchesNonPrefix(t *testing.T) {
	mount := MustVirtualPath("/assets/")
	target := MustVirtualPath("/other/hero.mesh")

	_, ok, err := mount.Matches(target)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVirtualPath_MatchesRequiresDirectoryReceiver(t *testing.T) {
	notADir := MustVirtualPath("/assets")
	_, _, err := notADir.Matches(MustVirtualPath("/assets/hero.mesh"))
	require.Error(t, err)
	var invalid *InvalidPathError
	require.ErrorAs(t, err, &invalid)
}

func TestVirtualPath_EqualAndLess(t *testing.T) {
	a := MustVirtualPath("/a")
	b := MustVirtualPath("/b")
	assert.True(t, a.Equal(MustVirtualPath("/a")))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}
