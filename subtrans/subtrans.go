/*
Package subtrans is the subtransaction parent-id log: for every
subtransaction, the id of the transaction it is nested directly inside (0
for a top-level transaction). Unlike clog, subtrans is never itself
WAL-logged in the system this is modeled on -- a crash always aborts every
in-progress subtransaction, so there is nothing about this log that needs
to survive a crash in a way WAL ordering would protect -- so it wraps its
slru.Cache with LSNGroupsPerPage == 0, and it is truncated independently of
clog to show the core supports several independently configured instances
per process.
*/
package subtrans

import (
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kyoh86-lab/goslru/slru"
	"github.com/kyoh86-lab/goslru/txid"
)

const defaultNumSlots = 8

const (
	// entrySize is 4 bytes: one full txid.TxID per subtransaction.
	entrySize   = 4
	txPerPage   = slru.PageSize / entrySize
)

func pageNumberForTx(id txid.TxID) slru.PageNumber {
	return slru.PageNumber(uint32(id) / txPerPage)
}

func byteOffsetForTx(id txid.TxID) int {
	return int(uint32(id)%txPerPage) * entrySize
}

func pagePrecedes(a, b slru.PageNumber) bool {
	return int32(a-b) < 0
}

// Config configures a Manager's underlying slru.Cache.
type Config struct {
	Directory  string
	NumSlots   int
	DoFsync    bool
	InRecovery func() bool
	Logger     *logrus.Entry
}

// Manager is the subtransaction parent-id log.
type Manager struct {
	cache *slru.Cache
}

// NewManager constructs (or attaches to) the subtransaction log named name.
func NewManager(name string, cfg Config) (*Manager, error) {
	numSlots := cfg.NumSlots
	if numSlots == 0 {
		numSlots = defaultNumSlots
	}
	cache, err := slru.New(slru.Config{
		Name:       name,
		Directory:  cfg.Directory,
		NumSlots:   numSlots,
		DoFsync:    cfg.DoFsync,
		Precedes:   pagePrecedes,
		InRecovery: cfg.InRecovery,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "subtrans: new manager")
	}
	return &Manager{cache: cache}, nil
}

// ExtendAndZero starts tracking the page covering id, zero-filled: every
// subtransaction on a freshly extended page defaults to parent
// txid.InvalidTxID, i.e. "not a subtransaction of anything known here".
func (m *Manager) ExtendAndZero(id txid.TxID) error {
	p := pageNumberForTx(id)
	m.cache.Lock()
	defer m.cache.Unlock()
	if _, err := m.cache.ZeroPage(p); err != nil {
		return errors.Wrap(err, "subtrans: extend")
	}
	m.cache.SetLatestPageNumber(p)
	return nil
}

// SetParent records that id is a subtransaction of parent.
func (m *Manager) SetParent(id, parent txid.TxID) error {
	p := pageNumberForTx(id)

	m.cache.Lock()
	defer m.cache.Unlock()

	slot, err := m.cache.ReadPage(p, true, tag(id))
	if err != nil {
		return errors.Wrap(err, "subtrans: set parent")
	}

	buf := m.cache.Buffer(slot)
	off := byteOffsetForTx(id)
	binary.LittleEndian.PutUint32(buf[off:off+entrySize], uint32(parent))
	m.cache.MarkDirty(slot, 0)
	return nil
}

// GetParent returns the transaction id was recorded as a subtransaction
// of, or txid.InvalidTxID if id is not known to be a subtransaction of
// anything here.
func (m *Manager) GetParent(id txid.TxID) (txid.TxID, error) {
	p := pageNumberForTx(id)

	slot, mode, err := m.cache.ReadPageReadOnly(p, tag(id))
	if err != nil {
		return txid.InvalidTxID, errors.Wrap(err, "subtrans: get parent")
	}
	defer m.cache.ReleaseControlLock(mode)

	off := byteOffsetForTx(id)
	return txid.TxID(binary.LittleEndian.Uint32(m.cache.Buffer(slot)[off : off+entrySize])), nil
}

// Truncate discards pages wholly older than the oldest transaction id any
// running transaction might still need the parent of. It is independent of
// any other log's truncation point.
func (m *Manager) Truncate(oldestRunningTx txid.TxID) error {
	p := pageNumberForTx(oldestRunningTx)
	return errors.Wrap(m.cache.Truncate(p), "subtrans: truncate")
}

// Flush writes out every dirty page.
func (m *Manager) Flush() error {
	_, err := m.cache.Flush(true)
	return errors.Wrap(err, "subtrans: flush")
}

func tag(id txid.TxID) string {
	return "txid:" + strconv.FormatUint(uint64(id), 10)
}
