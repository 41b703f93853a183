package clog

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/kyoh86-lab/goslru/slru"
)

// noopWAL satisfies slru.WALFlusher for tests that never look at group
// LSNs: clog's pages always carry one, so a Cache with LSNGroupsPerPage >
// 0 refuses to construct without a WALFlusher at all.
type noopWAL struct{}

func (noopWAL) Flush(slru.LSN) error { return nil }

// TestingNewManager builds a Manager backed by a fresh temp directory and a
// pool name unique to t, so tests never see another test's pages.
func TestingNewManager(t *testing.T) (*Manager, error) {
	t.Helper()
	m, err := NewManager(t.Name(), Config{Directory: t.TempDir(), WAL: noopWAL{}})
	if err != nil {
		return nil, errors.Wrap(err, "TestingNewManager failed")
	}
	return m, nil
}
