package vfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testScript struct {
	*ResourceInfo
	Body string
}

func TestResourceInfo_AttachedViaDeclaredBase(t *testing.T) {
	DeclareResourceInfoBase[*testScript]()

	info := NewResourceInfo(MustVirtualPath("/scripts/intro.lua"), ".lua", time.Time{})
	info.Attributes["checksum"] = "abc123"

	script := &testScript{ResourceInfo: info, Body: "print('hi')"}
	h := NewHandle(script)

	provider, err := BaseDowncast[ResourceInfoProvider](h)
	require.NoError(t, err)
	got := provider.Info()
	assert.Equal(t, "abc123", got.Attributes["checksum"])
	assert.Equal(t, ".lua", got.Extension)
}

func TestResourceInfo_UndeclaredTypeHasNoResourceInfoBase(t *testing.T) {
	h := NewHandle(&testMesh{Name: "hero"})
	_, err := BaseDowncast[ResourceInfoProvider](h)
	assert.Error(t, err)
}
