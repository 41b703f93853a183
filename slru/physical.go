package slru

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func (c *Cache) segmentNumber(p PageNumber) int64 {
	return int64(p) / int64(c.pagesPerSegment)
}

func (c *Cache) segmentOffset(p PageNumber) int64 {
	return (int64(p) % int64(c.pagesPerSegment)) * PageSize
}

func (c *Cache) segmentPath(segno int64) string {
	return filepath.Join(c.directory, fmt.Sprintf("%0*X", segmentNameDigits, segno))
}

func isSegmentFileName(name string) bool {
	if len(name) != segmentNameDigits {
		return false
	}
	for _, r := range name {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

// physicalRead fills buf (len PageSize) with the on-disk contents of p. A
// missing segment file is an error unless the cache is in recovery, in
// which case it is treated as a page of zeroes -- crash recovery may be
// probing for pages that were never written before the crash. A close
// failure after a successful read is logged but not returned: buf already
// holds the page's correct contents, and the caller has no use for a
// handle to the segment file.
func (c *Cache) physicalRead(p PageNumber, buf []byte) error {
	path := c.segmentPath(c.segmentNumber(p))

	f, err := os.OpenFile(path, os.O_RDONLY, 0o600)
	if err != nil {
		if os.IsNotExist(err) && c.inRecovery() {
			c.log.WithField("segment", path).Debug("segment missing during recovery, treating page as zeroes")
			for i := range buf {
				buf[i] = 0
			}
			return nil
		}
		return &IOError{Cause: ErrOpenFailed, Page: p, Err: err}
	}

	if _, err := f.Seek(c.segmentOffset(p), io.SeekStart); err != nil {
		f.Close()
		return &IOError{Cause: ErrSeekFailed, Page: p, Err: err}
	}

	if _, err := io.ReadFull(f, buf); err != nil {
		f.Close()
		return &IOError{Cause: ErrReadFailed, Page: p, Err: err}
	}

	if err := f.Close(); err != nil {
		c.log.WithError(err).WithField("segment", path).Warn("slru: close failed after page read")
	}
	return nil
}

// flushContext batches the segment files touched by a single Flush or
// checkpoint so consecutive pages in the same segment reuse one open file
// handle instead of reopening it per page.
type flushContext struct {
	files map[int64]*os.File
	order []int64
	cap   int
}

func newFlushContext(cap int) *flushContext {
	return &flushContext{files: make(map[int64]*os.File), cap: cap}
}

// closeAll fsyncs (if enabled) and closes every file the context
// accumulated, continuing past individual failures so every file gets a
// chance to close. It reports the first fsync failure; later fsync failures
// and every close failure are only logged.
func (fc *flushContext) closeAll(c *Cache) error {
	var firstErr error
	var firstPage PageNumber
	for _, segno := range fc.order {
		f := fc.files[segno]
		if c.doFsync {
			if err := f.Sync(); err != nil {
				if firstErr == nil {
					firstErr = err
					firstPage = PageNumber(segno * int64(c.pagesPerSegment))
				} else {
					c.log.WithError(err).WithField("segment", segno).Warn("slru: fsync failed while finishing flush")
				}
			}
		}
		if err := f.Close(); err != nil {
			c.log.WithError(err).WithField("segment", segno).Warn("slru: close failed while finishing flush")
		}
	}
	fc.files = map[int64]*os.File{}
	fc.order = nil
	if firstErr != nil {
		return &IOError{Cause: ErrFsyncFailed, Page: firstPage, Err: firstErr}
	}
	return nil
}

// closeAllBestEffort is used when a write inside the flush has already
// failed: every file accumulated so far is closed without fsync, and close
// errors are only logged, since the flush is already reporting the write
// failure as its result.
func (fc *flushContext) closeAllBestEffort(c *Cache) {
	for _, segno := range fc.order {
		if err := fc.files[segno].Close(); err != nil {
			c.log.WithError(err).WithField("segment", segno).Warn("slru: close failed while aborting flush")
		}
	}
	fc.files = map[int64]*os.File{}
	fc.order = nil
}

// physicalWrite writes buf (len PageSize) to p's location on disk. When
// fctx is non-nil the underlying file is kept open across calls (up to
// fctx.cap segments); fctx.closeAll must be called once the batch is done.
// A close failure after the write itself succeeded (and, when fsync is
// enabled, after a successful fsync) is logged but not returned: the bytes
// are already durable or at least written, and nothing about a failed
// close undoes that.
func (c *Cache) physicalWrite(p PageNumber, buf []byte, fctx *flushContext) error {
	segno := c.segmentNumber(p)

	var f *os.File
	var err error
	batched := false

	if fctx != nil {
		if existing, ok := fctx.files[segno]; ok {
			f, batched = existing, true
		}
	}
	if f == nil {
		path := c.segmentPath(segno)
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
		if err != nil {
			return &IOError{Cause: ErrOpenFailed, Page: p, Err: err}
		}
	}

	ownsFile := !batched

	if _, err := f.Seek(c.segmentOffset(p), io.SeekStart); err != nil {
		if ownsFile {
			f.Close()
		}
		return &IOError{Cause: ErrSeekFailed, Page: p, Err: err}
	}
	if _, err := f.Write(buf); err != nil {
		if ownsFile {
			f.Close()
		}
		return &IOError{Cause: ErrWriteFailed, Page: p, Err: err}
	}

	if fctx == nil {
		if c.doFsync {
			if err := f.Sync(); err != nil {
				f.Close()
				return &IOError{Cause: ErrFsyncFailed, Page: p, Err: err}
			}
		}
		if err := f.Close(); err != nil {
			c.log.WithError(err).Warn("slru: close failed after page write")
		}
		return nil
	}

	if batched {
		return nil
	}

	if len(fctx.files) < fctx.cap {
		fctx.files[segno] = f
		fctx.order = append(fctx.order, segno)
		return nil
	}

	// too many distinct segments touched by this flush to keep them all
	// open: fall back to fsync+close per page for the overflow.
	if c.doFsync {
		if err := f.Sync(); err != nil {
			f.Close()
			return &IOError{Cause: ErrFsyncFailed, Page: p, Err: err}
		}
	}
	if err := f.Close(); err != nil {
		c.log.WithError(err).Warn("slru: close failed for overflow flush page")
	}
	return nil
}
