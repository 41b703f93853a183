package slru

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRemovesOldSegmentsAndEmptiesSlots(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 8, PagesPerSegment: 4})
	assert.Nil(t, err)

	c.Lock()
	for _, p := range []PageNumber{0, 1, 4, 5, 8} {
		slot, err := c.ZeroPage(p)
		assert.Nil(t, err)
		assert.Nil(t, c.WritePage(slot, nil))
	}
	c.SetLatestPageNumber(8)
	c.Unlock()

	assert.Nil(t, c.Truncate(8))

	c.Lock()
	for i := 0; i < c.pool.numSlots; i++ {
		if c.pool.state[i] == stateEmpty {
			continue
		}
		assert.False(t, c.precedes(c.pool.pageNumber[i], 8), "no resident slot may precede the cutoff")
	}
	c.Unlock()

	_, err = os.Stat(c.segmentPath(0))
	assert.True(t, os.IsNotExist(err), "segment 0000 (pages 0-3) must be removed")
	_, err = os.Stat(c.segmentPath(1))
	assert.True(t, os.IsNotExist(err), "segment 0001 (pages 4-7) must be removed")
}

func TestTruncateWraparoundRefusal(t *testing.T) {
	c, err := TestingNewCache(t, Config{
		NumSlots: 2,
		Precedes: func(a, b PageNumber) bool { return a == 10 && b == 1000000 },
	})
	assert.Nil(t, err)

	c.Lock()
	c.SetLatestPageNumber(10)
	c.Unlock()

	assert.Nil(t, c.Truncate(1000000))

	entries, err := os.ReadDir(c.directory)
	assert.Nil(t, err)
	assert.Empty(t, entries, "wraparound refusal must not remove anything")
}
