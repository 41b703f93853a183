package slru

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultPagesPerSegment   = 32
	defaultMaxOpenFlushFiles = 16
	segmentNameDigits        = 4
)

// Config carries the knobs a Cache needs. Every field here corresponds to a
// named knob; there is no file or flag parser, the knobs are few and closed
// over by the embedding subsystem at construction time (see package clog,
// package subtrans).
type Config struct {
	// Name identifies this cache's shared pool. Two Caches constructed with
	// the same Name in the same process attach to the same pool. NumSlots
	// and LSNGroupsPerPage size that pool when it is first built, and a
	// later construction with different values is an error; every other
	// field applies to the Cache being constructed.
	Name string
	// Directory is where segment files live.
	Directory string
	// NumSlots is the number of page buffers in the pool.
	NumSlots int
	// LSNGroupsPerPage is the number of WAL-position slots tracked per
	// page. Zero disables the write-ahead-of-data ordering hook entirely
	// (a log that is not itself WAL-logged, like subtrans).
	LSNGroupsPerPage int
	// PagesPerSegment is how many pages share one segment file. Defaults
	// to 32.
	PagesPerSegment int
	// DoFsync controls whether physical writes are followed by fsync.
	DoFsync bool
	// Precedes is the wraparound-aware strict ordering over page numbers.
	// Required.
	Precedes Precedes
	// InRecovery is polled on every physical read; when it returns true, a
	// missing segment file is treated as a page of zeroes instead of an
	// error. Defaults to a function that always returns false.
	InRecovery func() bool
	// WAL is consulted before writing any page with a nonzero LSN group,
	// when LSNGroupsPerPage > 0. Required in that case.
	WAL WALFlusher
	// Logger receives the cache's structured log entries. Defaults to
	// logrus.StandardLogger().
	Logger *logrus.Entry
	// MaxOpenFlushFiles caps how many segment files Flush keeps open
	// concurrently before falling back to opening/closing per page.
	// Defaults to 16.
	MaxOpenFlushFiles int
}

// Validate checks required fields and fills in defaults for the optional
// ones. It mutates c, so callers should call it on the Config they intend
// to keep, not a copy they discard.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("slru: Config.Name is required")
	}
	if c.Directory == "" {
		return errors.New("slru: Config.Directory is required")
	}
	if c.NumSlots <= 0 {
		return errors.New("slru: Config.NumSlots must be > 0")
	}
	if c.LSNGroupsPerPage < 0 {
		return errors.New("slru: Config.LSNGroupsPerPage must be >= 0")
	}
	if c.Precedes == nil {
		return errors.New("slru: Config.Precedes is required")
	}
	if c.LSNGroupsPerPage > 0 && c.WAL == nil {
		return errors.New("slru: Config.WAL is required when LSNGroupsPerPage > 0")
	}
	if c.PagesPerSegment == 0 {
		c.PagesPerSegment = defaultPagesPerSegment
	}
	if c.PagesPerSegment < 0 {
		return errors.New("slru: Config.PagesPerSegment must be > 0")
	}
	if c.MaxOpenFlushFiles == 0 {
		c.MaxOpenFlushFiles = defaultMaxOpenFlushFiles
	}
	if c.InRecovery == nil {
		c.InRecovery = func() bool { return false }
	}
	if c.Logger == nil {
		c.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return nil
}

// ShmemSize estimates, in bytes, how large the pool of numSlots page
// buffers plus its metadata arrays would be. Mirrors SimpleLruShmemSize in
// the implementation this package is modeled on; since this package keeps
// its pool in regular Go memory rather than an OS shared-memory segment
// (see package shmem), nothing actually needs to be sized against this, but
// an embedder sizing a real shared segment for a multi-process deployment
// built on top of goslru can use it.
func ShmemSize(numSlots, lsnGroupsPerPage int) int64 {
	const (
		perSlotFixed = PageSize + 1 /* state */ + 1 /* dirty */ + 4 /* page number */ + 8 /* lru count */
		perLSNGroup  = 8
	)
	sz := int64(numSlots) * perSlotFixed
	sz += int64(numSlots) * int64(lsnGroupsPerPage) * perLSNGroup
	return sz
}
