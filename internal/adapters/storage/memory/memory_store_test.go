package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UnknownTokenHasNoCounts(t *testing.T) {
	store := New(Config{})

	counts, err := store.AllCounts(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestStore_RecordAndReadBack(t *testing.T) {
	store := New(Config{})
	ctx := context.Background()

	require.NoError(t, store.RecordRequest(ctx, "user", 5, 60))
	require.NoError(t, store.RecordRequest(ctx, "user", 5, 60))
	require.NoError(t, store.RecordRequest(ctx, "user", 7, 60))

	counts, err := store.AllCounts(ctx, "user", 7)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{5: 2, 7: 1}, counts)
}

func TestStore_SnapshotRestrictedToWindow(t *testing.T) {
	store := New(Config{NumSlots: 3})
	ctx := context.Background()

	require.NoError(t, store.RecordRequest(ctx, "user", 10, 60))
	require.NoError(t, store.RecordRequest(ctx, "user", 11, 60))
	require.NoError(t, store.RecordRequest(ctx, "user", 12, 60))

	// Window for slot 13 is [11, 13]; slot 10 is out of range even
	// though it is still physically cached.
	counts, err := store.AllCounts(ctx, "user", 13)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{11: 1, 12: 1}, counts)
}

func TestStore_OldSlotsEvictedBeyondCapacity(t *testing.T) {
	store := New(Config{NumSlots: 3})
	ctx := context.Background()

	for slot := int64(1); slot <= 5; slot++ {
		require.NoError(t, store.RecordRequest(ctx, "user", slot, 60))
	}

	counts, err := store.AllCounts(ctx, "user", 5)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{3: 1, 4: 1, 5: 1}, counts)
}

func TestStore_TokenEvictionResetsCounts(t *testing.T) {
	store := New(Config{Capacity: 2})
	ctx := context.Background()

	require.NoError(t, store.RecordRequest(ctx, "a", 1, 60))
	require.NoError(t, store.RecordRequest(ctx, "b", 1, 60))
	require.NoError(t, store.RecordRequest(ctx, "c", 1, 60))

	// "a" was the least recently used token and fell out of the store.
	counts, err := store.AllCounts(ctx, "a", 1)
	require.NoError(t, err)
	assert.Empty(t, counts)

	counts, err = store.AllCounts(ctx, "c", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 1}, counts)
}

func TestStore_ConcurrentRecordsAreNotLost(t *testing.T) {
	store := New(Config{})
	ctx := context.Background()

	const goroutines = 16
	const perGoroutine = 50

	done := make(chan error, goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			for i := 0; i < perGoroutine; i++ {
				if err := store.RecordRequest(ctx, "hot", 1, 60); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	for g := 0; g < goroutines; g++ {
		require.NoError(t, <-done)
	}

	counts, err := store.AllCounts(ctx, "hot", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*perGoroutine), counts[1])
}

func TestStore_TokensAreIndependent(t *testing.T) {
	store := New(Config{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordRequest(ctx, "first", 1, 60))
	}
	require.NoError(t, store.RecordRequest(ctx, "second", 1, 60))

	counts, err := store.AllCounts(ctx, "second", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 1}, counts)
}

func TestStore_ManyTokensWithinCapacity(t *testing.T) {
	store := New(Config{Capacity: 100})
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, store.RecordRequest(ctx, fmt.Sprintf("token-%d", i), 1, 60))
	}
	counts, err := store.AllCounts(ctx, "token-0", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 1}, counts)
}
