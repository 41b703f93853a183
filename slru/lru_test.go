package slru

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectVictimPrefersEmptySlot(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 3})
	assert.Nil(t, err)

	c.Lock()
	defer c.Unlock()

	slot, err := c.selectVictim(99)
	assert.Nil(t, err)
	assert.Equal(t, stateEmpty, c.pool.state[slot])
}

func TestSelectVictimReturnsExistingSlotForSamePage(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 3})
	assert.Nil(t, err)

	c.Lock()
	defer c.Unlock()

	slot, err := c.ZeroPage(5)
	assert.Nil(t, err)

	again, err := c.selectVictim(5)
	assert.Nil(t, err)
	assert.Equal(t, slot, again)
}

func TestSelectVictimPicksOldestByTick(t *testing.T) {
	c, err := TestingNewCache(t, Config{NumSlots: 2})
	assert.Nil(t, err)

	c.Lock()
	defer c.Unlock()

	s0, err := c.ZeroPage(0)
	assert.Nil(t, err)
	assert.Nil(t, c.WritePage(s0, nil))
	s1, err := c.ZeroPage(1)
	assert.Nil(t, err)
	assert.Nil(t, c.WritePage(s1, nil))

	// s1 was allocated and touched after s0, so it carries a strictly
	// newer lru tick; evicting to make room for page 7 must take s0.
	victim, err := c.selectVictim(7)
	assert.Nil(t, err)
	assert.Equal(t, s0, victim)
}
