package clog

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kyoh86-lab/goslru/slru"
	"github.com/kyoh86-lab/goslru/txid"
)

// defaultNumSlots is deliberately small next to postgres's NUM_CLOG_BUFFERS
// (which scales with shared_buffers): this package has no equivalent
// autotuning, and a caller embedding it in a real server should size
// Config.NumSlots itself.
const defaultNumSlots = 8

// Config configures a Manager's underlying slru.Cache.
type Config struct {
	Directory  string
	NumSlots   int
	DoFsync    bool
	InRecovery func() bool
	WAL        slru.WALFlusher
	Logger     *logrus.Entry
}

// Manager is the commit-status log: get/set the 2-bit status of a
// transaction id, backed by a Cache of its own.
type Manager struct {
	cache *slru.Cache
}

// pagePrecedes is the same wraparound-tolerant comparison txid.TxID.IsFollows
// uses, applied to page numbers instead of transaction ids directly: a page
// number is just a transaction id divided by txPerPage, so it wraps at the
// same point and the same int32-subtraction trick applies.
func pagePrecedes(a, b slru.PageNumber) bool {
	return int32(a-b) < 0
}

// NewManager constructs (or attaches to, if name is already in use in this
// process) the commit-status log named name.
func NewManager(name string, cfg Config) (*Manager, error) {
	numSlots := cfg.NumSlots
	if numSlots == 0 {
		numSlots = defaultNumSlots
	}
	cache, err := slru.New(slru.Config{
		Name:             name,
		Directory:        cfg.Directory,
		NumSlots:         numSlots,
		LSNGroupsPerPage: 1,
		DoFsync:          cfg.DoFsync,
		Precedes:         pagePrecedes,
		InRecovery:       cfg.InRecovery,
		WAL:              cfg.WAL,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "clog: new manager")
	}
	return &Manager{cache: cache}, nil
}

// ExtendAndZero starts tracking the page covering id, zero-filled -- every
// transaction on a freshly extended page defaults to StateInProgress,
// matching the zero value of State. Callers allocate transaction ids in
// increasing order, so a request to extend always names the new latest
// page.
func (m *Manager) ExtendAndZero(id txid.TxID) error {
	p := slru.PageNumber(pageNumberForTx(id))
	m.cache.Lock()
	defer m.cache.Unlock()
	_, err := m.cache.ZeroPage(p)
	if err != nil {
		return errors.Wrap(err, "clog: extend")
	}
	m.cache.SetLatestPageNumber(p)
	return nil
}

// GetState returns id's recorded commit status.
func (m *Manager) GetState(id txid.TxID) (State, error) {
	p := slru.PageNumber(pageNumberForTx(id))

	slot, mode, err := m.cache.ReadPageReadOnly(p, txidTag(id))
	if err != nil {
		return 0, errors.Wrap(err, "clog: get state")
	}
	defer m.cache.ReleaseControlLock(mode)

	b := m.cache.Buffer(slot)[byteOffsetForTx(id)]
	return getState(b, id), nil
}

// SetState sets id's commit status and, since a status change must never
// reach disk before the WAL record it depends on, advances the page's max
// LSN so the next write of this page flushes that WAL record first.
func (m *Manager) SetState(id txid.TxID, st State, lsn slru.LSN) error {
	p := slru.PageNumber(pageNumberForTx(id))

	m.cache.Lock()
	defer m.cache.Unlock()

	slot, err := m.cache.ReadPage(p, true, txidTag(id))
	if err != nil {
		return errors.Wrap(err, "clog: set state")
	}

	buf := m.cache.Buffer(slot)
	off := byteOffsetForTx(id)
	buf[off] = setState(buf[off], id, st)
	m.cache.MarkDirty(slot, lsn)
	return nil
}

// SetStateCommitted and SetStateAborted are SetState's two common callers.
func (m *Manager) SetStateCommitted(id txid.TxID, lsn slru.LSN) error {
	return m.SetState(id, StateCommitted, lsn)
}

func (m *Manager) SetStateAborted(id txid.TxID, lsn slru.LSN) error {
	return m.SetState(id, StateAborted, lsn)
}

// IsCommitted and IsAborted are convenience wrappers over GetState.
func (m *Manager) IsCommitted(id txid.TxID) (bool, error) {
	st, err := m.GetState(id)
	return st == StateCommitted, err
}

func (m *Manager) IsAborted(id txid.TxID) (bool, error) {
	st, err := m.GetState(id)
	return st == StateAborted, err
}

// Flush writes out every dirty page, as a checkpoint would.
func (m *Manager) Flush() error {
	_, err := m.cache.Flush(true)
	return errors.Wrap(err, "clog: flush")
}

// Truncate discards pages wholly older than the oldest transaction id any
// running transaction might still need to look up, oldestRunningTx.
func (m *Manager) Truncate(oldestRunningTx txid.TxID) error {
	p := slru.PageNumber(pageNumberForTx(oldestRunningTx))
	return errors.Wrap(m.cache.Truncate(p), "clog: truncate")
}

func txidTag(id txid.TxID) string {
	return "txid:" + strconv.FormatUint(uint64(id), 10)
}
