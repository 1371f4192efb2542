package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/store"
)

func newTestCart(t *testing.T, kv store.KVStore) *Cart {
	t.Helper()
	cart := NewCart(kv, nil)
	require.NoError(t, cart.Load(context.Background()))
	require.True(t, cart.Ready())
	return cart
}

func TestCart_AddItem_MergesLinesForSameProduct(t *testing.T) {
	cart := newTestCart(t, store.NewMemoryStore())
	ctx := context.Background()
	p1 := testProduct("p1", 10.0)

	_, err := cart.AddItem(ctx, p1, 2)
	require.NoError(t, err)
	snapshot, err := cart.AddItem(ctx, p1, 3)
	require.NoError(t, err)

	require.Len(t, snapshot.Lines, 1, "Same product id must collapse into one line")
	assert.Equal(t, 5, snapshot.Lines[0].Quantity)
	assert.Equal(t, 5, snapshot.ItemCount())
	assert.InDelta(t, 50.0, snapshot.Total(), 1e-9)
}

func TestCart_AddItem_AppendsDistinctProducts(t *testing.T) {
	cart := newTestCart(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := cart.AddItem(ctx, testProduct("p1", 10.0), 1)
	require.NoError(t, err)
	snapshot, err := cart.AddItem(ctx, testProduct("p2", 5.0), 2)
	require.NoError(t, err)

	require.Len(t, snapshot.Lines, 2)
	assert.Equal(t, "p1", snapshot.Lines[0].Product.ID, "Insertion order is preserved")
	assert.InDelta(t, 20.0, snapshot.Total(), 1e-9)
}

func TestCart_AddItem_RejectsInvalidInput(t *testing.T) {
	cart := newTestCart(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := cart.AddItem(ctx, testProduct("p1", 10.0), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = cart.AddItem(ctx, domain.ProductSnapshot{Name: "no id"}, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, cart.Snapshot().Lines, "Failed command must not mutate state")
}

func TestCart_SetQuantity_ZeroBehavesAsRemove(t *testing.T) {
	cart := newTestCart(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := cart.AddItem(ctx, testProduct("p1", 10.0), 2)
	require.NoError(t, err)

	snapshot, err := cart.SetQuantity(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Lines)
}

func TestCart_SetQuantity_ReplacesQuantity(t *testing.T) {
	cart := newTestCart(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := cart.AddItem(ctx, testProduct("p1", 10.0), 2)
	require.NoError(t, err)

	snapshot, err := cart.SetQuantity(ctx, "p1", 7)
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 7, snapshot.Lines[0].Quantity)
}

func TestCart_RemoveItem_AbsentIsNoop(t *testing.T) {
	cart := newTestCart(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := cart.AddItem(ctx, testProduct("p1", 10.0), 1)
	require.NoError(t, err)

	snapshot, err := cart.RemoveItem(ctx, "ghost")
	require.NoError(t, err, "Removing an absent id is not an error")
	assert.Len(t, snapshot.Lines, 1)
}

func TestCart_Clear_RemovesPersistedKey(t *testing.T) {
	kv := store.NewMemoryStore()
	cart := newTestCart(t, kv)
	ctx := context.Background()

	_, err := cart.AddItem(ctx, testProduct("p1", 10.0), 1)
	require.NoError(t, err)
	require.Equal(t, 1, kv.Len())

	snapshot, err := cart.Clear(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Lines)
	assert.Equal(t, 0, kv.Len(), "Clear removes the key instead of writing an empty document")
}

func TestCart_FailedPersistLeavesSnapshotIntact(t *testing.T) {
	kv := &failingStore{MemoryStore: store.NewMemoryStore()}
	cart := newTestCart(t, kv)
	ctx := context.Background()

	_, err := cart.AddItem(ctx, testProduct("p1", 10.0), 2)
	require.NoError(t, err)

	kv.failSet = true
	snapshot, err := cart.AddItem(ctx, testProduct("p2", 5.0), 1)

	require.Error(t, err)
	var perr *store.PersistenceError
	assert.True(t, errors.As(err, &perr), "Storage failure surfaces as *PersistenceError")
	require.Len(t, snapshot.Lines, 1, "Returned snapshot is the pre-command state")
	assert.Len(t, cart.Snapshot().Lines, 1, "In-memory state must not move without a committed write")
}

func TestCart_SurvivesReload(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	first := newTestCart(t, kv)
	_, err := first.AddItem(ctx, testProduct("p1", 19.99), 3)
	require.NoError(t, err)

	second := newTestCart(t, kv)
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestCart_ConcurrentAddsAreSerialized(t *testing.T) {
	kv := store.NewMemoryStore()
	cart := newTestCart(t, kv)
	ctx := context.Background()
	p1 := testProduct("p1", 2.0)

	const workers = 25
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := cart.AddItem(ctx, p1, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snapshot := cart.Snapshot()
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, workers, snapshot.Lines[0].Quantity, "No add may be lost to a stale-snapshot race")

	// The persisted document must agree with memory.
	reloaded := newTestCart(t, kv)
	assert.Equal(t, snapshot, reloaded.Snapshot())
}

func TestCart_SubscribersSeeCommittedSnapshots(t *testing.T) {
	cart := newTestCart(t, store.NewMemoryStore())
	ctx := context.Background()

	var seen []int
	cart.Subscribe(func(s domain.CartSnapshot) {
		seen = append(seen, s.ItemCount())
	})

	_, err := cart.AddItem(ctx, testProduct("p1", 1.0), 2)
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, testProduct("p1", 1.0), 0)
	require.Error(t, err)
	_, err = cart.AddItem(ctx, testProduct("p2", 1.0), 1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, seen, "Only committed mutations are published")
}
