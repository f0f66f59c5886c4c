package slot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "first_name")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "first_name", "Nathan"))
	require.NoError(t, s.Set(ctx, "age", 30))
	v, ok, err := s.Get(ctx, "first_name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Nathan", v)

	require.NoError(t, s.Set(ctx, "age", nil))
	_, ok, _ = s.Get(ctx, "age")
	assert.False(t, ok, "setting nil clears the slot")

	require.NoError(t, s.Delete(ctx, "first_name"))
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestMemoryStoreSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "a", 1))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snap["a"] = 2
	snap["b"] = 3

	v, _, _ := s.Get(ctx, "a")
	assert.Equal(t, 1, v)
	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx))
	snap, _ = s.Snapshot(ctx)
	assert.Empty(t, snap)
}
