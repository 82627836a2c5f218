package utils

import (
	"testing"

	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/stretchr/testify/assert"
)

func TestBuildStoresListCacheKey(t *testing.T) {
	name := "  Corner "
	other := "corner"

	a := BuildStoresListCacheKey(3, store.ListFilter{Name: &name})
	b := BuildStoresListCacheKey(3, store.ListFilter{Name: &other})
	c := BuildStoresListCacheKey(4, store.ListFilter{Name: &other})

	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Contains(t, c, "gen=4")
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("5f2b1c9e-8a37-4d0e-9a51-1f2c3d4e5f60"))
	assert.False(t, IsUUID("not-a-uuid"))
	assert.False(t, IsUUID(""))
}
