package slru

import (
	"os"
	"strconv"
)

// Truncate discards every page strictly older than cutoffPage: slots
// holding such a page are emptied (writing them out first if dirty, per
// the conservative choice recorded in the design notes -- a page about to
// be deleted from disk is still written once, rather than discarded
// unwritten, so a concurrent reader racing the truncate never observes a
// page number that exists in the pool but not on disk), and whole segment
// files entirely below the cutoff are removed from directory.
//
// If the latest known page itself precedes cutoffPage, Truncate assumes the
// cutoff was computed from a wrapped-around counter, logs, and returns
// without removing anything -- see ErrWraparound.
func (c *Cache) Truncate(cutoffPage PageNumber) error {
	cutoffPage -= cutoffPage % PageNumber(c.pagesPerSegment)

	c.pool.mu.Lock()
	for {
		if c.precedes(c.pool.latestPageNumber, cutoffPage) {
			c.pool.mu.Unlock()
			c.log.WithField("cutoff", cutoffPage).Warn("slru: truncate aborted: apparent wraparound")
			return nil
		}

		progressed := false
		for slot := 0; slot < c.pool.numSlots; slot++ {
			if c.pool.state[slot] == stateEmpty {
				continue
			}
			if !c.precedes(c.pool.pageNumber[slot], cutoffPage) {
				continue
			}

			switch {
			case c.pool.state[slot] == stateValid && !c.pool.dirty[slot]:
				c.pool.state[slot] = stateEmpty
			case c.pool.state[slot] == stateValid:
				if err := c.WritePage(slot, nil); err != nil {
					c.pool.mu.Unlock()
					return err
				}
			default:
				c.waitIO(slot)
			}
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}
	c.pool.mu.Unlock()

	c.removeSegmentsBefore(cutoffPage)
	return nil
}

func (c *Cache) removeSegmentsBefore(cutoffPage PageNumber) {
	entries, err := os.ReadDir(c.directory)
	if err != nil {
		c.log.WithError(err).Warn("slru: could not scan directory for truncation")
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isSegmentFileName(name) {
			continue
		}
		segno, err := strconv.ParseInt(name, 16, 64)
		if err != nil {
			continue
		}
		segPage := PageNumber(segno * int64(c.pagesPerSegment))
		if !c.precedes(segPage, cutoffPage) {
			continue
		}
		path := c.segmentPath(segno)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.log.WithError(err).WithField("path", path).Warn("slru: could not remove segment")
		}
	}
}
