package slru

import "sync"

// pool is the shared state every attacher of a given Cache name sees. It is
// constructed once per name (see shmem) and lives for the lifetime of the
// process; Cache itself is just a typed view onto it plus per-attacher
// configuration (directory, precedes, logger, ...) that does not need to be
// shared.
type pool struct {
	numSlots         int
	lsnGroupsPerPage int

	mu sync.RWMutex // control lock

	buffers    [][]byte
	state      []slotState
	dirty      []bool
	pageNumber []PageNumber
	lruCount   []relaxedTick
	ioLock     []sync.RWMutex
	groupLSN   [][]LSN // nil when lsnGroupsPerPage == 0

	curLRUCount      relaxedTick
	latestPageNumber PageNumber
}

func newPool(numSlots, lsnGroupsPerPage int) *pool {
	p := &pool{
		numSlots:         numSlots,
		lsnGroupsPerPage: lsnGroupsPerPage,
		buffers:          make([][]byte, numSlots),
		state:            make([]slotState, numSlots),
		dirty:            make([]bool, numSlots),
		pageNumber:       make([]PageNumber, numSlots),
		lruCount:         make([]relaxedTick, numSlots),
		ioLock:           make([]sync.RWMutex, numSlots),
		latestPageNumber: InvalidPageNumber,
	}
	for i := range p.buffers {
		p.buffers[i] = make([]byte, PageSize)
	}
	if lsnGroupsPerPage > 0 {
		p.groupLSN = make([][]LSN, numSlots)
		for i := range p.groupLSN {
			p.groupLSN[i] = make([]LSN, lsnGroupsPerPage)
		}
	}
	return p
}

// touchLRU implements the relaxed "recently used" update: bump the slot's
// tick to the pool's current tick, bumping the pool's tick too, but only
// when they already differ. Consecutive touches of the same slot (the
// common case: repeated access to the latest page) are then nearly free.
func (p *pool) touchLRU(slot int) {
	cur := p.curLRUCount.load()
	if cur == p.lruCount[slot].load() {
		return
	}
	cur++
	p.curLRUCount.store(cur)
	p.lruCount[slot].store(cur)
}

func (p *pool) zeroLSNs(slot int) {
	if p.groupLSN == nil {
		return
	}
	for i := range p.groupLSN[slot] {
		p.groupLSN[slot][i] = 0
	}
}

func (p *pool) maxLSN(slot int) LSN {
	var max LSN
	for _, lsn := range p.groupLSN[slot] {
		if lsn > max {
			max = lsn
		}
	}
	return max
}
