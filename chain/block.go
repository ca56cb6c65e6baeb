package chain

import "github.com/golang-powcoin/powcoin/chain/chaincfg"

// Block is an ordered list of transactions (the first is the coinbase),
// the id of its parent (empty for genesis), and the nonce a miner varies
// to satisfy the proof-of-work target. Bits records the difficulty this
// block was mined at; it is a global constant in this variant (spec.md §9
// "Work formula"), but kept per-block rather than collapsed away so
// TotalWork's Σ 2^bits formula survives a future difficulty-adjusting
// variant unchanged.
type Block struct {
	Txns   []Tx
	PrevID string
	Nonce  uint64
	Bits   uint
}

// NewCandidate builds an unmined block at the network's current difficulty.
func NewCandidate(txns []Tx, prevID string, nonce uint64) Block {
	return Block{Txns: txns, PrevID: prevID, Nonce: nonce, Bits: chaincfg.Bits}
}

// ID is the block's identity: SHA-256 of the deterministic serialization
// of Txns/PrevID/Nonce/Bits. See codec.go.
func (b Block) ID() string {
	return BlockID(b)
}

// Equal compares blocks by id, per spec.md §3.
func (b Block) Equal(other Block) bool {
	return b.ID() == other.ID()
}

// Coinbase returns the block's first transaction.
func (b Block) Coinbase() Tx {
	return b.Txns[0]
}
