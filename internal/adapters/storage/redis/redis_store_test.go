package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmaraopv/rate-limiter/internal/core/domain"
)

// testSlot returns slot values large enough that slot+ttl lies in the
// future, matching production slot indices for sub-ten-second
// intervals.
func testSlot(offset int64) int64 {
	return time.Now().Unix() + 3600 + offset
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewWithClient(client, 10)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestStore_RecordAndReadBack(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	slot := testSlot(0)

	require.NoError(t, store.RecordRequest(ctx, "user", slot, 60))
	require.NoError(t, store.RecordRequest(ctx, "user", slot, 60))
	require.NoError(t, store.RecordRequest(ctx, "user", slot-1, 60))

	counts, err := store.AllCounts(ctx, "user", slot)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{slot: 2, slot - 1: 1}, counts)
}

func TestStore_UnknownTokenHasNoCounts(t *testing.T) {
	store, _ := newTestStore(t)

	counts, err := store.AllCounts(context.Background(), "nobody", testSlot(0))
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestStore_AllCountsRestrictedToWindow(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	slot := testSlot(0)

	// Live fields outside the ten-slot window must not count.
	mr.HSet("user", strconv.FormatInt(slot-10, 10), "4")
	mr.HSet("user", strconv.FormatInt(slot-9, 10), "3")
	mr.HSet("user", strconv.FormatInt(slot, 10), "1")

	counts, err := store.AllCounts(ctx, "user", slot)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{slot - 9: 3, slot: 1}, counts)
}

func TestStore_SkipsUndecodableFields(t *testing.T) {
	store, mr := newTestStore(t)
	slot := testSlot(0)

	mr.HSet("user", "not-a-slot", "1")
	mr.HSet("user", strconv.FormatInt(slot, 10), "2")

	counts, err := store.AllCounts(context.Background(), "user", slot)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{slot: 2}, counts)
}

func TestStore_TokensAreIndependent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	slot := testSlot(0)

	require.NoError(t, store.RecordRequest(ctx, "first", slot, 60))

	counts, err := store.AllCounts(ctx, "second", slot)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestStore_UnreachableBackendIsStoreUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	slot := testSlot(0)

	mr.Close()

	err := store.RecordRequest(ctx, "user", slot, 60)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = store.AllCounts(ctx, "user", slot)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
