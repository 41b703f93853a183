package subtrans

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyoh86-lab/goslru/txid"
)

func TestSetAndGetParent(t *testing.T) {
	m, err := TestingNewManager(t)
	assert.Nil(t, err)

	tests := []struct {
		name   string
		id     txid.TxID
		parent txid.TxID
	}{
		{name: "small ids", id: 10, parent: 3},
		{name: "larger ids on the same page", id: 200, parent: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, m.ExtendAndZero(tt.id))
			assert.Nil(t, m.SetParent(tt.id, tt.parent))

			got, err := m.GetParent(tt.id)
			assert.Nil(t, err)
			assert.Equal(t, tt.parent, got)
		})
	}
}

func TestGetParentDefaultsToInvalid(t *testing.T) {
	m, err := TestingNewManager(t)
	assert.Nil(t, err)

	assert.Nil(t, m.ExtendAndZero(10))

	got, err := m.GetParent(11)
	assert.Nil(t, err)
	assert.Equal(t, txid.InvalidTxID, got)
}

func TestTruncateWithNothingBeforeCutoff(t *testing.T) {
	m, err := TestingNewManager(t)
	assert.Nil(t, err)

	assert.Nil(t, m.ExtendAndZero(1))
	assert.Nil(t, m.SetParent(1, 1))

	// truncating at a cutoff that no extended page precedes (page 0, the
	// only extended page) must not error even though nothing is removed.
	assert.Nil(t, m.Truncate(0))
}
