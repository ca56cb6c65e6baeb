package chain

import "fmt"

// UTXOSet is the live mapping from outpoint to unspent output, reflecting
// the UTXOs of the current main-chain tip. It is not safe for concurrent
// use without an external lock (see node.Node).
type UTXOSet struct {
	outs    map[Outpoint]TxOut
	mempool []Tx
}

// NewUTXOSet returns an empty set.
func NewUTXOSet() *UTXOSet {
	return &UTXOSet{outs: make(map[Outpoint]TxOut)}
}

// Lookup returns the output at an outpoint, if unspent.
func (u *UTXOSet) Lookup(o Outpoint) (TxOut, bool) {
	out, ok := u.outs[o]
	return out, ok
}

// Mempool returns the transactions currently pending inclusion in a block.
func (u *UTXOSet) Mempool() []Tx {
	return u.mempool
}

// ByPublicKey returns every unspent output locked to pub.
func (u *UTXOSet) ByPublicKey(pub []byte) []TxOut {
	var result []TxOut
	for _, out := range u.outs {
		if string(out.PublicKey) == string(pub) {
			result = append(result, out)
		}
	}
	return result
}

// inMempool reports whether a tx with this id is already pooled.
func (u *UTXOSet) inMempool(tx Tx) bool {
	for _, t := range u.mempool {
		if t.Equal(tx) {
			return true
		}
	}
	return false
}

func (u *UTXOSet) removeFromMempool(tx Tx) {
	for i, t := range u.mempool {
		if t.Equal(tx) {
			u.mempool = append(u.mempool[:i], u.mempool[i+1:]...)
			return
		}
	}
}

// AddToMempool pools tx, rejecting a double-spend against anything
// already pooled (spec.md §3 invariant 2).
func (u *UTXOSet) AddToMempool(tx Tx) error {
	if u.inMempool(tx) {
		return nil
	}
	for _, pending := range u.mempool {
		for _, in := range pending.Ins {
			for _, candidate := range tx.Ins {
				if in.Outpoint() == candidate.Outpoint() {
					return fmt.Errorf("chain: outpoint %v already spent by a pooled tx", in.Outpoint())
				}
			}
		}
	}
	u.mempool = append(u.mempool, tx)
	return nil
}

// ConnectTx applies tx to the UTXO set: spent outpoints are removed, new
// outputs are inserted, and tx is dropped from the mempool if present.
// Coinbase transactions have nothing to spend.
func (u *UTXOSet) ConnectTx(tx Tx) error {
	if !tx.IsCoinbase() {
		for _, in := range tx.Ins {
			o := in.Outpoint()
			if _, ok := u.outs[o]; !ok {
				return fmt.Errorf("chain: %w: %v", ErrMissingUTXO, o)
			}
			delete(u.outs, o)
		}
	}
	for _, out := range tx.Outs {
		u.outs[out.Outpoint()] = out
	}
	u.removeFromMempool(tx)
	return nil
}

// DisconnectTx undoes ConnectTx: spent outpoints are restored by locating
// the original output (scanning blocks — see spec.md §9 "Disconnect
// scan"), created outputs are removed, and a non-coinbase tx returns to
// the mempool.
func (u *UTXOSet) DisconnectTx(tx Tx, blocks []Block) error {
	if !tx.IsCoinbase() {
		for _, in := range tx.Ins {
			out, ok := findTxOut(blocks, in.Outpoint())
			if !ok {
				return fmt.Errorf("chain: disconnect: outpoint %v not found in chain", in.Outpoint())
			}
			u.outs[out.Outpoint()] = out
		}
	}
	for _, out := range tx.Outs {
		delete(u.outs, out.Outpoint())
	}
	if !tx.IsCoinbase() && !u.inMempool(tx) {
		u.mempool = append(u.mempool, tx)
	}
	return nil
}

// findTxOut scans blocks for the output a spent outpoint refers to.
func findTxOut(blocks []Block, o Outpoint) (TxOut, bool) {
	for _, b := range blocks {
		for _, tx := range b.Txns {
			if tx.ID == o.TxID {
				if o.Index < 0 || o.Index >= len(tx.Outs) {
					return TxOut{}, false
				}
				return tx.Outs[o.Index], true
			}
		}
	}
	return TxOut{}, false
}
