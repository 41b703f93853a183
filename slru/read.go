package slru

import "github.com/pkg/errors"

// controlLockMode records which way ReadPageReadOnly ended up holding the
// control lock, so its caller can release it correctly. Which one happens
// depends on the path ReadPageReadOnly took (see its doc); ReleaseControlLock
// hides the distinction from everything except the two sync calls it makes.
type controlLockMode uint8

const (
	lockShared controlLockMode = iota
	lockExclusive
)

// ReleaseControlLock releases a hold returned by ReadPageReadOnly. Do not
// use it for locks taken with Lock/RLock; those are unambiguous, use
// Unlock/RUnlock directly.
func (c *Cache) ReleaseControlLock(mode controlLockMode) {
	if mode == lockExclusive {
		c.pool.mu.Unlock()
	} else {
		c.pool.mu.RUnlock()
	}
}

// ReadPage returns the slot holding pageNumber, reading it from disk if
// necessary. writeOK controls whether a slot already undergoing a write may
// be returned as-is (true) or must be waited out first (false). A caller
// that mutates a slot returned mid-write and calls MarkDirty leaves it
// dirty after that write completes, so the page is written again later.
// tag is attached to any I/O error for diagnostics; it carries no other
// meaning.
//
// The control lock must be held exclusively at entry and is held
// exclusively at exit, success or failure.
func (c *Cache) ReadPage(pageNumber PageNumber, writeOK bool, tag string) (int, error) {
	return c.readPageLocked(pageNumber, writeOK, tag)
}

func (c *Cache) readPageLocked(pageNumber PageNumber, writeOK bool, tag string) (int, error) {
	for {
		slot, err := c.selectVictim(pageNumber)
		if err != nil {
			return -1, err
		}

		if c.pool.state[slot] != stateEmpty && c.pool.pageNumber[slot] == pageNumber {
			if c.pool.state[slot] == stateReadInProgress ||
				(c.pool.state[slot] == stateWriteInProgress && !writeOK) {
				c.waitIO(slot)
				continue
			}
			c.pool.touchLRU(slot)
			return slot, nil
		}

		c.pool.pageNumber[slot] = pageNumber
		c.pool.state[slot] = stateReadInProgress
		c.pool.dirty[slot] = false

		c.pool.ioLock[slot].Lock()
		c.pool.touchLRU(slot)

		c.pool.mu.Unlock()
		buf := c.pool.buffers[slot]
		readErr := c.physicalRead(pageNumber, buf)
		if readErr == nil && c.pool.lsnGroupsPerPage > 0 {
			c.pool.zeroLSNs(slot)
		}
		c.pool.mu.Lock()

		if c.pool.pageNumber[slot] != pageNumber || c.pool.state[slot] != stateReadInProgress {
			c.pool.ioLock[slot].Unlock()
			return -1, errors.Wrapf(ErrProgressLockStuck, "slot %d during read of page %d", slot, pageNumber)
		}

		if readErr != nil {
			c.pool.state[slot] = stateEmpty
		} else {
			c.pool.state[slot] = stateValid
		}
		c.pool.ioLock[slot].Unlock()

		if readErr != nil {
			return -1, c.reportIOError(readErr, pageNumber, tag)
		}
		return slot, nil
	}
}

// ReadPageReadOnly is ReadPage's read-only variant: it checks for the page
// already resident under a shared hold of the control lock before falling
// back to the full ReadPage path, so a page that is already cached (valid,
// or valid and being written) never needs the exclusive lock at all.
//
// The control lock must NOT be held at entry. On success it is held at
// exit, shared or exclusive depending on which path was taken; release it
// with ReleaseControlLock. On error it is not held at exit.
func (c *Cache) ReadPageReadOnly(pageNumber PageNumber, tag string) (slot int, mode controlLockMode, err error) {
	c.pool.mu.RLock()
	for i := 0; i < c.pool.numSlots; i++ {
		if c.pool.pageNumber[i] == pageNumber &&
			(c.pool.state[i] == stateValid || c.pool.state[i] == stateWriteInProgress) {
			c.pool.touchLRU(i)
			return i, lockShared, nil
		}
	}
	c.pool.mu.RUnlock()

	c.pool.mu.Lock()
	slot, err = c.readPageLocked(pageNumber, true, tag)
	if err != nil {
		c.pool.mu.Unlock()
		return -1, lockExclusive, err
	}
	return slot, lockExclusive, nil
}

// TryReadPage is ReadPage without a raised error on I/O failure: ok reports
// whether the page was read successfully. The control lock must NOT be held
// at entry; TryReadPage acquires it exclusively itself. On success it is
// still held exclusively at exit, as after ReadPage. On failure -- either
// an I/O error or an internal assertion failure -- the control lock is
// released before returning, since there is no valid slot to hand back to
// the caller to keep operating under lock.
func (c *Cache) TryReadPage(pageNumber PageNumber, tag string) (slot int, ok bool, err error) {
	c.pool.mu.Lock()
	slot, err = c.readPageLocked(pageNumber, false, tag)
	if err == nil {
		return slot, true, nil
	}
	c.pool.mu.Unlock()
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return -1, false, nil
	}
	return -1, false, err
}

func (c *Cache) reportIOError(err error, pageNumber PageNumber, tag string) error {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		ioErr.Tag = tag
		c.log.WithError(ioErr.Err).WithField("page", pageNumber).WithField("tag", tag).
			Error("slru: physical I/O failed")
		return ioErr
	}
	return err
}
