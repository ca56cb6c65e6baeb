package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectTxCoinbaseAddsOutput(t *testing.T) {
	u := NewUTXOSet()
	cb := NewCoinbase("abc123", []byte("alice"))

	require.NoError(t, u.ConnectTx(cb))
	out, ok := u.Lookup(Outpoint{TxID: "abc123", Index: 0})
	require.True(t, ok)
	require.Equal(t, 50, out.Amount)
}

func TestConnectTxMissingInputFails(t *testing.T) {
	u := NewUTXOSet()
	tx := Tx{ID: "x", Ins: []TxIn{{TxID: "nope", Index: 0}}}
	err := u.ConnectTx(tx)
	require.ErrorIs(t, err, ErrMissingUTXO)
}

func TestConnectThenDisconnectRestoresUTXO(t *testing.T) {
	u := NewUTXOSet()
	cb := NewCoinbase("abc123", []byte("alice"))
	require.NoError(t, u.ConnectTx(cb))

	spend := Tx{
		ID:   "spend1",
		Ins:  []TxIn{{TxID: "abc123", Index: 0}},
		Outs: []TxOut{{TxID: "spend1", Index: 0, Amount: 50, PublicKey: []byte("bob")}},
	}
	require.NoError(t, u.ConnectTx(spend))
	_, ok := u.Lookup(Outpoint{TxID: "abc123", Index: 0})
	require.False(t, ok)

	blocks := []Block{NewCandidate([]Tx{cb}, "", 0)}
	require.NoError(t, u.DisconnectTx(spend, blocks))

	_, ok = u.Lookup(Outpoint{TxID: "abc123", Index: 0})
	require.True(t, ok, "disconnecting the spend should restore the original output")
	_, ok = u.Lookup(Outpoint{TxID: "spend1", Index: 0})
	require.False(t, ok, "disconnecting the spend should remove its own output")

	require.True(t, u.inMempool(spend), "a disconnected non-coinbase tx returns to the mempool")
}

func TestAddToMempoolRejectsDoubleSpend(t *testing.T) {
	u := NewUTXOSet()
	o := Outpoint{TxID: "abc123", Index: 0}
	tx1 := Tx{ID: "t1", Ins: []TxIn{{TxID: o.TxID, Index: o.Index}}, Outs: []TxOut{{Amount: 10}}}
	tx2 := Tx{ID: "t2", Ins: []TxIn{{TxID: o.TxID, Index: o.Index}}, Outs: []TxOut{{Amount: 10}}}

	require.NoError(t, u.AddToMempool(tx1))
	err := u.AddToMempool(tx2)
	require.Error(t, err, "a second tx spending the same pooled outpoint must be rejected")
}

func TestAddToMempoolIsIdempotent(t *testing.T) {
	u := NewUTXOSet()
	tx := Tx{ID: "t1", Outs: []TxOut{{Amount: 10}}}
	require.NoError(t, u.AddToMempool(tx))
	require.NoError(t, u.AddToMempool(tx))
	require.Len(t, u.Mempool(), 1)
}

func TestByPublicKey(t *testing.T) {
	u := NewUTXOSet()
	alice := []byte("alice")
	bob := []byte("bob")
	require.NoError(t, u.ConnectTx(Tx{
		ID: "t1",
		Outs: []TxOut{
			{TxID: "t1", Index: 0, Amount: 5, PublicKey: alice},
			{TxID: "t1", Index: 1, Amount: 7, PublicKey: bob},
		},
	}))

	require.Len(t, u.ByPublicKey(alice), 1)
	require.Equal(t, 5, u.ByPublicKey(alice)[0].Amount)
}
