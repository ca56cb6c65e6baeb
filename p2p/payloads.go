package p2p

import (
	"encoding/gob"

	"github.com/golang-powcoin/powcoin/chain"
)

// BlocksPayload carries a list of blocks (blocks).
type BlocksPayload struct {
	Blocks []chain.Block
}

// TxPayload carries a single transaction (tx).
type TxPayload struct {
	Tx chain.Tx
}

// UTXOsPayload carries a list of unspent outputs (utxos-response).
type UTXOsPayload struct {
	UTXOs []chain.TxOut
}

func init() {
	gob.Register(BlocksPayload{})
	gob.Register(TxPayload{})
	gob.Register(UTXOsPayload{})
}
