package slru

// PageExists reports whether pageNumber can be read without error, either
// because it is already resident or because the physical read of it
// succeeds. It acquires the control lock itself and releases it before
// returning; unlike ReadPage it never hands a slot back to the caller, so
// there is nothing useful to keep the lock held for.
func (c *Cache) PageExists(pageNumber PageNumber) bool {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	_, err := c.readPageLocked(pageNumber, true, "")
	return err == nil
}
