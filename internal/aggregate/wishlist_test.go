package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/store"
)

func newTestWishlist(t *testing.T, kv store.KVStore) *Wishlist {
	t.Helper()
	w := NewWishlist(kv, nil)
	require.NoError(t, w.Load(context.Background()))
	return w
}

func TestWishlist_Add_IsIdempotent(t *testing.T) {
	w := newTestWishlist(t, store.NewMemoryStore())
	ctx := context.Background()
	p1 := testProduct("p1", 10.0)

	first, err := w.Add(ctx, p1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 1)

	second, err := w.Add(ctx, p1)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists, "Duplicate add reports already-present")
	assert.Len(t, second.Items, 1, "Duplicate add must not grow or reorder the list")
}

func TestWishlist_Add_PreservesOrder(t *testing.T) {
	w := newTestWishlist(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := w.Add(ctx, testProduct("p1", 1.0))
	require.NoError(t, err)
	_, err = w.Add(ctx, testProduct("p2", 2.0))
	require.NoError(t, err)
	_, err = w.Add(ctx, testProduct("p1", 1.0))
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	snapshot := w.Snapshot()
	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, "p1", snapshot.Items[0].ID)
	assert.Equal(t, "p2", snapshot.Items[1].ID)
}

func TestWishlist_Remove_AbsentIsNoop(t *testing.T) {
	w := newTestWishlist(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := w.Add(ctx, testProduct("p1", 1.0))
	require.NoError(t, err)

	snapshot, err := w.Remove(ctx, "ghost")
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 1)

	snapshot, err = w.Remove(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
}

func TestWishlist_Contains(t *testing.T) {
	w := newTestWishlist(t, store.NewMemoryStore())
	ctx := context.Background()

	assert.False(t, w.Contains("p1"))
	_, err := w.Add(ctx, testProduct("p1", 1.0))
	require.NoError(t, err)
	assert.True(t, w.Contains("p1"))
}

func TestWishlist_SurvivesReload(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	first := newTestWishlist(t, kv)
	_, err := first.Add(ctx, testProduct("p1", 1.0))
	require.NoError(t, err)

	second := newTestWishlist(t, kv)
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}
