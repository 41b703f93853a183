package slru

// selectVictim implements SlruSelectLRUPage: find the slot already holding
// target, or failing that, the least-recently-used evictable slot, writing
// or waiting out whatever currently occupies it until one is free. The
// caller must hold the control lock exclusively; selectVictim releases and
// reacquires it internally while writing a dirty victim or waiting on a
// busy one, and always returns with it held exclusively again.
func (c *Cache) selectVictim(target PageNumber) (int, error) {
	for {
		for i := 0; i < c.pool.numSlots; i++ {
			if c.pool.state[i] != stateEmpty && c.pool.pageNumber[i] == target {
				return i, nil
			}
		}

		best := -1
		var bestPage PageNumber
		bestDelta := int64(-1)

		// advance the pool's logical clock on every call, the same way a
		// cache hit via touchLRU does, so two calls to select_victim in a
		// row can still tell slots apart even if nothing else touched them.
		cur := c.pool.curLRUCount.load()
		c.pool.curLRUCount.store(cur + 1)

		for i := 0; i < c.pool.numSlots; i++ {
			if c.pool.state[i] == stateEmpty {
				return i, nil
			}

			tick := c.pool.lruCount[i].load()
			delta := int64(cur) - int64(tick)
			if delta < 0 {
				// this slot's tick is somehow ahead of the pool's: clamp it
				// down to the pool's tick rather than let it look
				// artificially fresh forever.
				c.pool.lruCount[i].store(cur)
				delta = 0
			}

			pn := c.pool.pageNumber[i]
			if pn == c.pool.latestPageNumber {
				continue
			}

			if best == -1 || delta > bestDelta || (delta == bestDelta && c.precedes(pn, bestPage)) {
				best = i
				bestDelta = delta
				bestPage = pn
			}
		}

		if best == -1 {
			// every slot holds the latest page number. No two slots may
			// share a page number (see pool invariants), so at most one
			// slot is ever excluded by the check above and this only
			// happens in a single-slot pool.
			return -1, ErrLatestNotEvictable
		}

		switch c.pool.state[best] {
		case stateValid:
			if !c.pool.dirty[best] {
				return best, nil
			}
			if err := c.WritePage(best, nil); err != nil {
				return -1, err
			}
		default: // read or write in progress
			c.waitIO(best)
		}
		// state changed out from under us (written clean, or the busy
		// slot's I/O finished); restart the scan.
	}
}
