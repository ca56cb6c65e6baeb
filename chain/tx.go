package chain

import "github.com/golang-powcoin/powcoin/chain/chaincfg"

// Outpoint identifies one transaction output: the id of the transaction
// that created it, and that output's index within the transaction.
type Outpoint struct {
	TxID  string
	Index int
}

// TxOut is an immutable, spendable value locked to a public key. Outputs
// are addressed directly by public key — there is no script system.
type TxOut struct {
	TxID      string
	Index     int
	Amount    int
	PublicKey []byte
}

// Outpoint returns the outpoint identifying this output.
func (o TxOut) Outpoint() Outpoint {
	return Outpoint{TxID: o.TxID, Index: o.Index}
}

// TxIn references a spent output and carries the signature authorizing
// the spend. A coinbase's sole input has an empty TxID and no signature.
type TxIn struct {
	TxID      string
	Index     int
	Signature []byte
}

// Outpoint returns the outpoint this input spends.
func (in TxIn) Outpoint() Outpoint {
	return Outpoint{TxID: in.TxID, Index: in.Index}
}

// Tx is a transfer of value: an id, an ordered list of inputs, an ordered
// list of outputs.
type Tx struct {
	ID   string
	Ins  []TxIn
	Outs []TxOut
}

// IsCoinbase reports whether tx is a block's coinbase: its first input's
// referenced tx id is the empty sentinel.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Ins) > 0 && tx.Ins[0].TxID == ""
}

// Equal compares transactions by id, per spec.md §3.
func (tx Tx) Equal(other Tx) bool {
	return tx.ID == other.ID
}

// NewCoinbase builds the subsidy-minting first transaction of a block.
func NewCoinbase(txID string, payee []byte) Tx {
	return Tx{
		ID:  txID,
		Ins: []TxIn{{}},
		Outs: []TxOut{
			{TxID: txID, Index: 0, Amount: chaincfg.BlockSubsidy, PublicKey: payee},
		},
	}
}
