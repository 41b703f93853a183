package slru

import "github.com/pkg/errors"

// ZeroPage allocates pageNumber a fresh, zero-filled slot, marks it dirty
// and valid, and sets it as the latest page (never evicted until some later
// page takes its place). Control lock must be held exclusively at entry and
// exit.
func (c *Cache) ZeroPage(pageNumber PageNumber) (int, error) {
	slot, err := c.selectVictim(pageNumber)
	if err != nil {
		return -1, err
	}

	c.pool.pageNumber[slot] = pageNumber
	c.pool.state[slot] = stateValid
	c.pool.dirty[slot] = true
	c.pool.touchLRU(slot)

	buf := c.pool.buffers[slot]
	for i := range buf {
		buf[i] = 0
	}
	c.pool.zeroLSNs(slot)

	c.pool.latestPageNumber = pageNumber
	return slot, nil
}

// WritePage writes slot out if it is dirty, first waiting out any write
// already in progress for the page it held when called. fctx, non-nil only
// when called from Flush, batches the destination segment file across many
// pages.
//
// Control lock must be held exclusively at entry and exit.
func (c *Cache) WritePage(slot int, fctx *flushContext) error {
	pageNumber := c.pool.pageNumber[slot]

	for c.pool.state[slot] == stateWriteInProgress && c.pool.pageNumber[slot] == pageNumber {
		c.waitIO(slot)
	}

	if c.pool.pageNumber[slot] != pageNumber || c.pool.state[slot] != stateValid || !c.pool.dirty[slot] {
		return nil
	}

	c.pool.state[slot] = stateWriteInProgress
	c.pool.dirty[slot] = false
	c.pool.ioLock[slot].Lock()

	if c.pool.lsnGroupsPerPage > 0 {
		if maxLSN := c.pool.maxLSN(slot); maxLSN.IsValid() {
			if c.wal == nil {
				c.log.WithField("page", pageNumber).Fatal("slru: page carries a WAL position but no WALFlusher is configured")
			}
			if err := c.wal.Flush(maxLSN); err != nil {
				// the page's new contents are only safe to write once the
				// WAL record that justifies them is durable; failing to
				// flush means continuing would let the page outrun its
				// own WAL, so this is unrecoverable.
				c.log.WithError(err).WithField("page", pageNumber).Fatal("slru: WAL flush before page write failed, terminating")
			}
		}
	}

	c.pool.mu.Unlock()
	buf := c.pool.buffers[slot]
	writeErr := c.physicalWrite(pageNumber, buf, fctx)
	if writeErr != nil && fctx != nil {
		fctx.closeAllBestEffort(c)
	}
	c.pool.mu.Lock()

	if c.pool.pageNumber[slot] != pageNumber || c.pool.state[slot] != stateWriteInProgress {
		c.pool.ioLock[slot].Unlock()
		return errors.Wrapf(ErrProgressLockStuck, "slot %d during write of page %d", slot, pageNumber)
	}

	if writeErr != nil {
		c.pool.dirty[slot] = true
	}
	c.pool.state[slot] = stateValid
	c.pool.ioLock[slot].Unlock()

	if writeErr != nil {
		return c.reportIOError(writeErr, pageNumber, "")
	}
	return nil
}
