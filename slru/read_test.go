package slru

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadPageMissThenHit(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 4})
	assert.Nil(t, err)

	// page 17 must exist on disk for the first read to succeed outside
	// recovery.
	assert.Nil(t, os.WriteFile(c.segmentPath(c.segmentNumber(17)), make([]byte, 18*PageSize), 0o600))

	c.Lock()
	slot, err := c.ReadPage(17, true, "")
	assert.Nil(t, err)
	assert.Equal(t, stateValid, c.pool.state[slot])
	c.Unlock()

	c.Lock()
	slot2, err := c.ReadPage(17, true, "")
	assert.Nil(t, err)
	assert.Equal(t, slot, slot2)
	c.Unlock()
}

func TestSelectVictimNeverEvictsLatest(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 3})
	assert.Nil(t, err)

	// page 3 must exist on disk for the read that forces the eviction to
	// succeed; evicting dirty page 0 writes into this same segment file
	// without truncating it.
	assert.Nil(t, os.WriteFile(c.segmentPath(0), make([]byte, 4*PageSize), 0o600))

	c.Lock()
	for _, p := range []PageNumber{0, 1, 2} {
		_, err := c.ZeroPage(p)
		assert.Nil(t, err)
	}
	c.SetLatestPageNumber(2)

	slot, err := c.ReadPage(3, true, "")
	assert.Nil(t, err)
	assert.Equal(t, PageNumber(3), c.pool.pageNumber[slot])

	for i := 0; i < c.pool.numSlots; i++ {
		assert.NotEqual(t, PageNumber(2), c.pool.pageNumber[i], "latest page must never be evicted")
	}
	c.Unlock()
}

func TestZeroPageEvictionWritesBackDirtyPage(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 2, PagesPerSegment: 32})
	assert.Nil(t, err)

	c.Lock()
	slot0, err := c.ZeroPage(0)
	assert.Nil(t, err)
	assert.True(t, c.pool.dirty[slot0])

	// fill the second slot; page 1 becomes the latest page, so page 0 is
	// no longer protected from eviction
	_, err = c.ZeroPage(1)
	assert.Nil(t, err)

	// forces eviction of slot0, writing it back first: both slots are
	// taken, page 5 is a miss, and the slot holding page 1 is the latest
	_, err = c.ZeroPage(5)
	assert.Nil(t, err)
	c.Unlock()

	segPath := c.segmentPath(0)
	info, err := os.Stat(segPath)
	assert.Nil(t, err)
	assert.True(t, info.Size() >= PageSize)
}

func TestReadPageInRecoveryMissingSegmentIsZeroes(t *testing.T) {
	var recovering bool
	c, err := TestingNewCache(t, Config{
		NumSlots:   2,
		InRecovery: func() bool { return recovering },
	})
	assert.Nil(t, err)
	recovering = true

	// directory is already empty: no segment file exists for page 42
	c.Lock()
	slot, err := c.ReadPage(42, true, "")
	assert.Nil(t, err)
	assert.Equal(t, stateValid, c.pool.state[slot])
	for _, b := range c.pool.buffers[slot] {
		assert.Equal(t, byte(0), b)
	}
	c.Unlock()
}

func TestReadPageNotInRecoveryMissingSegmentErrors(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 2})
	assert.Nil(t, err)

	c.Lock()
	_, err = c.ReadPage(42, true, "")
	c.Unlock()
	assert.NotNil(t, err)
	assert.ErrorIs(t, err, ErrOpenFailed)
}

func TestReadPageReadOnlyHitsWithoutExclusiveLock(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 2})
	assert.Nil(t, err)

	c.Lock()
	slot, err := c.ZeroPage(9)
	assert.Nil(t, err)
	c.Unlock()

	got, mode, err := c.ReadPageReadOnly(9, "")
	assert.Nil(t, err)
	assert.Equal(t, slot, got)
	assert.Equal(t, lockShared, mode)
	c.ReleaseControlLock(mode)
}

func TestTryReadPageReportsFailureWithoutError(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 2})
	assert.Nil(t, err)

	_, ok, err := c.TryReadPage(99, "")
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestRoundTripZeroWriteRead(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 2})
	assert.Nil(t, err)

	c.Lock()
	slot, err := c.ZeroPage(3)
	assert.Nil(t, err)
	assert.Nil(t, c.WritePage(slot, nil))
	c.Unlock()

	assert.FileExists(t, filepath.Join(c.directory, "0000"))

	c.Lock()
	slot2, err := c.ReadPage(3, false, "")
	assert.Nil(t, err)
	for _, b := range c.pool.buffers[slot2] {
		assert.Equal(t, byte(0), b)
	}
	c.Unlock()
}
