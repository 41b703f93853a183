package slru

// Flush calls WritePage on every slot in the pool, writing out the dirty
// ones and fsyncing/closing the segment files touched, batching file
// handles across slots in the same segment. Calling WritePage on every
// slot regardless of its dirty bit, rather than only the ones a pre-scan
// found dirty, is what makes a slot mid-write by some other goroutine
// actually get waited on here instead of skipped. checkpoint suppresses
// the "slot was re-dirtied mid-flush" warning, since a checkpoint's job is
// exactly to let concurrent writers keep mutating pages while it runs;
// redirtied reports how many slots that happened to, for callers that
// want the count regardless.
func (c *Cache) Flush(checkpoint bool) (redirtied int, err error) {
	fctx := newFlushContext(c.maxOpenFlushFiles)

	c.pool.mu.Lock()
	for slot := 0; slot < c.pool.numSlots; slot++ {
		if err := c.WritePage(slot, fctx); err != nil {
			c.pool.mu.Unlock()
			return redirtied, err
		}
		if c.pool.state[slot] == stateValid && c.pool.dirty[slot] {
			redirtied++
			if !checkpoint {
				c.log.WithField("slot", slot).Debug("slru: slot re-dirtied during flush")
			}
		}
	}
	c.pool.mu.Unlock()

	if err := fctx.closeAll(c); err != nil {
		return redirtied, err
	}
	return redirtied, nil
}
