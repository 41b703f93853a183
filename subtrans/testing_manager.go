package subtrans

import (
	"testing"

	"github.com/pkg/errors"
)

// TestingNewManager builds a Manager backed by a fresh temp directory and a
// pool name unique to t.
func TestingNewManager(t *testing.T) (*Manager, error) {
	t.Helper()
	m, err := NewManager(t.Name(), Config{Directory: t.TempDir()})
	if err != nil {
		return nil, errors.Wrap(err, "TestingNewManager failed")
	}
	return m, nil
}
