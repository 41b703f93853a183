package clog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyoh86-lab/goslru/txid"
)

func TestSetStateAbortedAndCommitted(t *testing.T) {
	m, err := TestingNewManager(t)
	assert.Nil(t, err)

	tests := []struct {
		name string
		txID txid.TxID
		set  func(txid.TxID) error
		want State
	}{
		{name: "aborted", txID: 3, set: func(id txid.TxID) error { return m.SetStateAborted(id, 0) }, want: StateAborted},
		{name: "committed", txID: 100, set: func(id txid.TxID) error { return m.SetStateCommitted(id, 0) }, want: StateCommitted},
		{name: "sub-committed", txID: 9000, set: func(id txid.TxID) error { return m.SetState(id, StateSubCommitted, 0) }, want: StateSubCommitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, m.ExtendAndZero(tt.txID))

			got, err := m.GetState(tt.txID)
			assert.Nil(t, err)
			assert.Equal(t, StateInProgress, got)

			assert.Nil(t, tt.set(tt.txID))

			got, err = m.GetState(tt.txID)
			assert.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCommittedIsAborted(t *testing.T) {
	m, err := TestingNewManager(t)
	assert.Nil(t, err)

	assert.Nil(t, m.ExtendAndZero(5))
	assert.Nil(t, m.SetStateCommitted(5, 0))

	committed, err := m.IsCommitted(5)
	assert.Nil(t, err)
	assert.True(t, committed)

	aborted, err := m.IsAborted(5)
	assert.Nil(t, err)
	assert.False(t, aborted)
}

func TestManyTransactionsShareOnePage(t *testing.T) {
	m, err := TestingNewManager(t)
	assert.Nil(t, err)

	assert.Nil(t, m.ExtendAndZero(txid.FirstTxID))

	for _, id := range []txid.TxID{txid.FirstTxID, txid.FirstTxID + 1, txid.FirstTxID + 2} {
		assert.Nil(t, m.SetStateCommitted(id, 0))
	}

	for _, id := range []txid.TxID{txid.FirstTxID, txid.FirstTxID + 1, txid.FirstTxID + 2} {
		got, err := m.GetState(id)
		assert.Nil(t, err)
		assert.Equal(t, StateCommitted, got)
	}

	// a neighbor that was never set must still read as in-progress.
	got, err := m.GetState(txid.FirstTxID + 3)
	assert.Nil(t, err)
	assert.Equal(t, StateInProgress, got)
}

func TestFlushThenGetState(t *testing.T) {
	m, err := TestingNewManager(t)
	assert.Nil(t, err)

	assert.Nil(t, m.ExtendAndZero(1))
	assert.Nil(t, m.SetStateCommitted(1, 0))
	assert.Nil(t, m.Flush())

	got, err := m.GetState(1)
	assert.Nil(t, err)
	assert.Equal(t, StateCommitted, got)
}
