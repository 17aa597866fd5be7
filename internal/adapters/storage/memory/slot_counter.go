package memory

import (
	"sync"

	"github.com/dharmaraopv/rate-limiter/internal/cache"
)

// slotCounter tracks request counts per slot for one token. Its backing
// cache is capped at numSlots, so writing a new slot transparently
// evicts the oldest tracked one.
type slotCounter struct {
	mu       sync.Mutex
	counts   *cache.LRU[int64, int64]
	numSlots int
}

func newSlotCounter(numSlots int) *slotCounter {
	return &slotCounter{
		counts:   cache.NewLRU[int64, int64](numSlots),
		numSlots: numSlots,
	}
}

// increment adds one request to slot. The read-modify-write is guarded
// so concurrent requests for the same token never lose an increment.
func (c *slotCounter) increment(slot int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, _ := c.counts.Get(slot)
	c.counts.Set(slot, count+1)
}

// snapshot returns the counts for every tracked slot in
// [slot-numSlots+1, slot]. Slots with no recorded requests are absent.
func (c *slotCounter) snapshot(slot int64) map[int64]int64 {
	all := c.counts.Entries()
	window := make(map[int64]int64, len(all))
	for s := slot - int64(c.numSlots) + 1; s <= slot; s++ {
		if count, ok := all[s]; ok {
			window[s] = count
		}
	}
	return window
}
