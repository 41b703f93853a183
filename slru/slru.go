/*
Package slru implements a Simple Least-Recently-Used page cache, the same
role SimpleLruReadPage/SlruSelectLRUPage/etc. play in postgres: a small,
fixed-size pool of fixed-size page buffers sitting in front of a numbered,
append-only sequence of pages on disk, shared by many goroutines.

A Cache never acts alone. It is wrapped by a subsystem (see package clog and
package subtrans) that owns the mapping from its own domain key to a page
number and the ordering predicate used to decide which pages are old enough
to evict or truncate. The cache itself only knows about page numbers.
*/
package slru

import "math"

// PageNumber identifies a page within a Cache. It wraps around at whatever
// modulus the embedding subsystem's key space uses; ordering across a wrap
// is only meaningful through a Precedes function, never through plain <.
type PageNumber uint32

// InvalidPageNumber never legitimately appears on disk; it is used as a
// sentinel for "no latest page configured yet".
const InvalidPageNumber PageNumber = math.MaxUint32

// PageSize is the fixed size, in bytes, of every page buffer in every Cache.
// The original implementation this is modeled on makes it a compile-time
// constant (BLCKSZ) rather than a runtime knob, and so does this package.
const PageSize = 8192

// LSN is an opaque write-ahead-log position. The zero value means "no
// associated WAL record".
type LSN uint64

// IsValid reports whether lsn refers to an actual WAL position.
func (lsn LSN) IsValid() bool { return lsn != 0 }

// Precedes reports whether a is strictly older than b in the embedder's
// page-number space, honoring wraparound. It must be a strict weak
// ordering: irreflexive, and consistent with how the embedder advances page
// numbers over time. The cache uses it for victim selection (breaking ties
// between equally old slots in favor of the older page) and truncation
// (choosing the pages and segments to drop, and never truncating past a
// page that might still be the newest live one).
type Precedes func(a, b PageNumber) bool

// WALFlusher flushes the embedder's write-ahead log through lsn. A Cache
// configured with LSNGroupsPerPage > 0 calls this before writing a dirty
// page out, to guarantee the WAL record justifying the page's new contents
// reaches disk first. A non-nil error here is treated as unrecoverable:
// the cache cannot safely continue, so it logs and terminates the process
// rather than risk writing data that outruns its WAL (see Cache.log).
type WALFlusher interface {
	Flush(lsn LSN) error
}
