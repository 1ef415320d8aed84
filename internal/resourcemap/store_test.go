package resourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutAndGet(t *testing.T) {
	store := NewStore()

	previous, existed := store.Put("sample.emf", "file:///work/sample.emf")
	assert.False(t, existed)
	assert.Empty(t, previous)

	uri, ok := store.Get("sample.emf")
	assert.True(t, ok)
	assert.Equal(t, "file:///work/sample.emf", uri)
	assert.Equal(t, 1, store.Len())
}

func TestStore_LastWriteWins(t *testing.T) {
	store := NewStore()

	store.Put("core", "file:///work/child/core")
	previous, existed := store.Put("core", "file:///work/parent/core")

	assert.True(t, existed)
	assert.Equal(t, "file:///work/child/core", previous)

	uri, _ := store.Get("core")
	assert.Equal(t, "file:///work/parent/core", uri)
	assert.Equal(t, 1, store.Len())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.Put("core", "file:///work/core")

	snapshot := store.Snapshot()
	snapshot["core"] = "file:///elsewhere"
	snapshot["extra"] = "file:///extra"

	uri, _ := store.Get("core")
	assert.Equal(t, "file:///work/core", uri)
	assert.Equal(t, 1, store.Len())
}

func TestStore_WatchReceivesRegistrations(t *testing.T) {
	store := NewStore()
	events := store.Watch()

	store.Put("core", "file:///work/core")
	store.Put("core", "file:///work/parent/core")

	first := <-events
	assert.Equal(t, "core", first.Name)
	assert.Equal(t, "file:///work/core", first.URI)
	assert.False(t, first.Replaced)

	second := <-events
	assert.Equal(t, "file:///work/parent/core", second.URI)
	assert.True(t, second.Replaced)
}

func TestCanonicalURI(t *testing.T) {
	require.Equal(t, "file:///work/sample.emf", CanonicalURI("/work/sample.emf"))
}
