package slru

// waitIO blocks until whatever I/O is in flight on slot completes, without
// caring whether it succeeds. The caller must hold the control lock
// exclusively; waitIO releases it for the duration of the wait and
// reacquires it before returning.
//
// The wait itself is just acquiring and immediately releasing the slot's
// I/O lock in shared mode: the goroutine doing the I/O holds it exclusively
// for exactly as long as the I/O takes. If, after regaining the control
// lock, the slot still looks busy, a non-blocking shared acquire is tried
// once more: success there means the I/O's owner crashed or returned
// without updating the slot's state, so waitIO heals it itself rather than
// leaving it stuck forever.
func (c *Cache) waitIO(slot int) {
	c.pool.mu.Unlock()
	c.pool.ioLock[slot].RLock()
	c.pool.ioLock[slot].RUnlock()
	c.pool.mu.Lock()

	switch c.pool.state[slot] {
	case stateReadInProgress, stateWriteInProgress:
	default:
		return
	}

	if !c.pool.ioLock[slot].TryRLock() {
		return
	}
	defer c.pool.ioLock[slot].RUnlock()

	switch c.pool.state[slot] {
	case stateReadInProgress:
		c.pool.state[slot] = stateEmpty
	case stateWriteInProgress:
		c.pool.state[slot] = stateValid
		c.pool.dirty[slot] = true
	}
}
