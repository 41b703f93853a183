/*
Package clog is the commit-status log: for every transaction id ever
allocated, two bits recording whether it is still in progress, committed,
aborted, or sub-committed (waiting on its parent). Status changes must
reach disk no earlier than the WAL record that justifies them, so clog
wraps its slru.Cache with LSNGroupsPerPage > 0 and supplies a WALFlusher.
*/
package clog

import (
	"github.com/kyoh86-lab/goslru/slru"
	"github.com/kyoh86-lab/goslru/txid"
)

const (
	bitsPerTx = 2
	txPerByte = 8 / bitsPerTx
	// txPerPage mirrors postgres's CLOG_XACTS_PER_PAGE: every page buffer
	// holds status bits for this many consecutive transaction ids.
	txPerPage = slru.PageSize * txPerByte
)

// State is the commit status of one transaction.
type State uint8

const (
	StateInProgress   State = 0x00
	StateCommitted    State = 0x01
	StateAborted      State = 0x02
	StateSubCommitted State = 0x03
)

func pageNumberForTx(id txid.TxID) uint32 {
	return uint32(id) / txPerPage
}

func byteOffsetForTx(id txid.TxID) int {
	return int(uint32(id)%txPerPage) / txPerByte
}

func bitOffsetForTx(id txid.TxID) int {
	return int(uint32(id)%uint32(txPerByte)) * bitsPerTx
}

// getState reads the 2-bit status of id out of the byte that holds it.
func getState(b byte, id txid.TxID) State {
	shift := 6 - bitOffsetForTx(id)
	return State((b >> shift) & 0x03)
}

// setState returns b with id's 2-bit status replaced by st; the other three
// transactions packed into the same byte are left untouched.
func setState(b byte, id txid.TxID, st State) byte {
	shift := 6 - bitOffsetForTx(id)
	mask := byte(0x03) << shift
	return (b &^ mask) | (byte(st) << shift)
}
