package slru

import "sync/atomic"

// relaxedTick is a word-sized counter any goroutine may load or store
// without holding the control lock. It backs the cache's LRU ordering: the
// only promise is that individual loads and stores are atomic, not that a
// tick bump happens-before or after any other slot's metadata. select_victim
// (see lru.go) tolerates this by clamping a slot's tick down to the current
// value whenever it is ahead of it, which is also how it heals a slot whose
// last update raced with a concurrent reader of touchLRU.
type relaxedTick struct {
	v atomic.Uint64
}

func (t *relaxedTick) load() uint64   { return t.v.Load() }
func (t *relaxedTick) store(v uint64) { t.v.Store(v) }
