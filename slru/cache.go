package slru

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kyoh86-lab/goslru/shmem"
)

// Cache is one SLRU instance: a directory of segment files backed by a
// named, possibly-shared pool of page buffers. Callers of ReadPage,
// WritePage, and ZeroPage must hold the control lock exclusively themselves
// (Lock/Unlock below) around the call and whatever else they do to the returned
// slot; Flush, Truncate, and PageExists manage the lock internally because
// they have no caller-visible slot to hand back.
type Cache struct {
	name              string
	directory         string
	pagesPerSegment   int
	maxOpenFlushFiles int
	doFsync           bool
	precedes          Precedes
	inRecovery        func() bool
	wal               WALFlusher
	log               *logrus.Entry

	pool *pool
}

// New constructs or attaches to the Cache named by cfg.Name. If another
// Cache with the same Name already exists in this process, the returned
// Cache shares its pool; cfg's NumSlots and LSNGroupsPerPage must then
// match what that pool was built with, or New reports an error.
func New(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region, attached := shmem.Attach(cfg.Name, func() interface{} {
		return newPool(cfg.NumSlots, cfg.LSNGroupsPerPage)
	})
	p, ok := region.(*pool)
	if !ok {
		return nil, errors.Errorf("slru: region %q already attached with an incompatible type", cfg.Name)
	}
	if attached && (p.numSlots != cfg.NumSlots || p.lsnGroupsPerPage != cfg.LSNGroupsPerPage) {
		return nil, errors.Errorf(
			"slru: region %q already attached with num_slots=%d lsn_groups_per_page=%d, got %d/%d",
			cfg.Name, p.numSlots, p.lsnGroupsPerPage, cfg.NumSlots, cfg.LSNGroupsPerPage,
		)
	}

	return &Cache{
		name:              cfg.Name,
		directory:         cfg.Directory,
		pagesPerSegment:   cfg.PagesPerSegment,
		maxOpenFlushFiles: cfg.MaxOpenFlushFiles,
		doFsync:           cfg.DoFsync,
		precedes:          cfg.Precedes,
		inRecovery:        cfg.InRecovery,
		wal:               cfg.WAL,
		log:               cfg.Logger.WithField("cache", cfg.Name),
		pool:              p,
	}, nil
}

// Detach removes this cache's pool from the process-wide registry. Later
// calls to New with the same name build a fresh, empty pool. It does not
// flush first; callers that care about dirty pages must call Flush before
// Detach.
func (c *Cache) Detach() {
	shmem.Detach(c.name)
}

// Name returns the cache's shared-pool name, as passed to Config.Name.
func (c *Cache) Name() string { return c.name }

// Lock acquires the control lock exclusively. ZeroPage, ReadPage, and
// WritePage require it held exclusively for their whole call.
func (c *Cache) Lock() { c.pool.mu.Lock() }

// Unlock releases a lock acquired by Lock.
func (c *Cache) Unlock() { c.pool.mu.Unlock() }

// RLock acquires the control lock in shared mode, sufficient for
// ReadPageReadOnly's fast path.
func (c *Cache) RLock() { c.pool.mu.RLock() }

// RUnlock releases a lock acquired by RLock.
func (c *Cache) RUnlock() { c.pool.mu.RUnlock() }

// SetLatestPageNumber records the newest page number the embedder has
// handed out. The slot holding it, if any, is never chosen as an eviction
// victim. Callers must hold the control lock exclusively.
func (c *Cache) SetLatestPageNumber(p PageNumber) {
	c.pool.latestPageNumber = p
}

// LatestPageNumber returns the value last set by SetLatestPageNumber or
// ZeroPage, or InvalidPageNumber if neither has set it. Callers must hold
// the control lock.
func (c *Cache) LatestPageNumber() PageNumber {
	return c.pool.latestPageNumber
}
