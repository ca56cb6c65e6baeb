package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCoinbaseIsCoinbase(t *testing.T) {
	cb := NewCoinbase("abc123", []byte("alice"))
	require.True(t, cb.IsCoinbase())
	require.Len(t, cb.Ins, 1)
	require.Len(t, cb.Outs, 1)
	require.Equal(t, 50, cb.Outs[0].Amount)
}

func TestOrdinaryTxIsNotCoinbase(t *testing.T) {
	tx := Tx{ID: "x", Ins: []TxIn{{TxID: "prev", Index: 0}}}
	require.False(t, tx.IsCoinbase())
}

func TestTxEqualityIsByID(t *testing.T) {
	a := Tx{ID: "same", Outs: []TxOut{{Amount: 1}}}
	b := Tx{ID: "same", Outs: []TxOut{{Amount: 2}}}
	require.True(t, a.Equal(b))

	c := Tx{ID: "different"}
	require.False(t, a.Equal(c))
}

func TestBlockCoinbaseAndEquality(t *testing.T) {
	cb := NewCoinbase("abc123", []byte("alice"))
	b1 := NewCandidate([]Tx{cb}, "", 1)
	b2 := NewCandidate([]Tx{cb}, "", 1)
	require.True(t, b1.Equal(b2))
	require.Equal(t, cb, b1.Coinbase())
}
