package slru

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds the cache can report. Physical I/O failures are always
// wrapped in an *IOError carrying one of these as Cause, so callers can
// branch with errors.Is(err, slru.ErrReadFailed) and similar without
// parsing strings.
var (
	ErrOpenFailed  = errors.New("slru: open failed")
	ErrSeekFailed  = errors.New("slru: seek failed")
	ErrReadFailed  = errors.New("slru: read failed")
	ErrWriteFailed = errors.New("slru: write failed")
	ErrFsyncFailed = errors.New("slru: fsync failed")
	ErrCloseFailed = errors.New("slru: close failed")

	// ErrWraparound names the refusal Truncate makes when the requested
	// cutoff would remove the latest page, which usually means the caller
	// computed the cutoff from a counter that has wrapped around. Truncate
	// does not return it: it logs a warning and returns nil without
	// truncating anything.
	ErrWraparound = errors.New("slru: truncate aborted: apparent wraparound")

	// ErrLatestNotEvictable reports that victim selection found no slot
	// other than the one holding the latest page, which happens when a
	// single-slot pool already holds the latest page and another page is
	// requested. ErrProgressLockStuck reports a slot's state changing out
	// from under the goroutine that marked it busy, which means the
	// embedder broke the Cache contract (concurrent writers not both going
	// through the same Cache, for instance). Neither is a disk failure.
	ErrLatestNotEvictable = errors.New("slru: internal assertion: no evictable slot found")
	ErrProgressLockStuck  = errors.New("slru: internal assertion: slot state changed during I/O")
)

// IOError reports a failed physical read or write.
type IOError struct {
	Cause error // one of the Err* sentinels above
	Page  PageNumber
	Tag   string // embedder-supplied context, e.g. a transaction id
	Err   error  // underlying OS error, if any
}

func (e *IOError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: page %d (%s): %v", e.Cause, e.Page, e.Tag, e.Err)
	}
	return fmt.Sprintf("%s: page %d: %v", e.Cause, e.Page, e.Err)
}

func (e *IOError) Unwrap() error { return e.Cause }
