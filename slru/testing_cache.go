package slru

import "testing"

// TestingNewCache builds a Cache for use in tests: a fresh temp directory,
// a pool name derived from t.Name() (unique per test, so pools never leak
// between cases), and whatever overrides cfg supplies. Precedes defaults to
// plain numeric ordering if cfg.Precedes is nil, which is enough for tests
// that don't exercise wraparound directly.
func TestingNewCache(t *testing.T, cfg Config) (*Cache, error) {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = t.Name()
	}
	if cfg.Directory == "" {
		cfg.Directory = t.TempDir()
	}
	if cfg.NumSlots == 0 {
		cfg.NumSlots = 8
	}
	if cfg.Precedes == nil {
		cfg.Precedes = func(a, b PageNumber) bool { return a < b }
	}
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	t.Cleanup(c.Detach)
	return c, nil
}
