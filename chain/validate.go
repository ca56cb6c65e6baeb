package chain

import (
	"fmt"

	"github.com/golang-powcoin/powcoin/chain/chaincfg"
	"github.com/golang-powcoin/powcoin/identity"
)

// ValidatePoW is the stateless half of spec.md §4.4: a block's proof must
// be strictly below the network target.
func ValidatePoW(b Block) error {
	if Proof(b).Cmp(chaincfg.PowTarget) >= 0 {
		return ErrInsufficientPoW
	}
	return nil
}

// ValidateTx is the stateful half of spec.md §4.4, checked against the
// live UTXO set: every input must reference an unspent output, every
// signature must verify against that output's locking key, and the sum
// of inputs must equal the sum of outputs (fees are not modeled).
func (u *UTXOSet) ValidateTx(tx Tx) error {
	inSum := 0
	for i, in := range tx.Ins {
		out, ok := u.Lookup(in.Outpoint())
		if !ok {
			return fmt.Errorf("%w: %v", ErrMissingUTXO, in.Outpoint())
		}
		msg := SpendMessage(tx, i)
		if !identity.Verify(out.PublicKey, in.Signature, msg) {
			return fmt.Errorf("%w: input %d", ErrBadSignature, i)
		}
		inSum += out.Amount
	}

	outSum := 0
	for _, out := range tx.Outs {
		outSum += out.Amount
	}

	if inSum != outSum {
		return fmt.Errorf("%w: in=%d out=%d", ErrValueMismatch, inSum, outSum)
	}
	return nil
}

// ValidateCoinbase checks spec.md §4.4's coinbase rule: exactly one input
// and one output, and the output pays exactly the block subsidy.
func ValidateCoinbase(tx Tx) error {
	if len(tx.Ins) != 1 || len(tx.Outs) != 1 {
		return fmt.Errorf("%w: coinbase must have exactly one input and output", ErrValueMismatch)
	}
	if tx.Outs[0].Amount != chaincfg.BlockSubsidy {
		return fmt.Errorf("%w: coinbase amount %d != subsidy %d", ErrValueMismatch, tx.Outs[0].Amount, chaincfg.BlockSubsidy)
	}
	return nil
}

// ValidateBlock always checks PoW. When validateTxns is set (the block
// extends the main tip) it additionally validates the coinbase and every
// other transaction against the live UTXO set, rejecting a block in which
// two transactions spend the same outpoint. Branch blocks are left
// with only the PoW check until fork choice actually selects their
// branch — spec.md §4.4's load-bearing split.
func (u *UTXOSet) ValidateBlock(b Block, validateTxns bool) error {
	if err := ValidatePoW(b); err != nil {
		return err
	}
	if !validateTxns {
		return nil
	}
	if err := ValidateCoinbase(b.Coinbase()); err != nil {
		return err
	}
	spent := make(map[Outpoint]bool)
	for _, tx := range b.Txns[1:] {
		if err := u.ValidateTx(tx); err != nil {
			return err
		}
		for _, in := range tx.Ins {
			if spent[in.Outpoint()] {
				return fmt.Errorf("%w: %v spent twice in block", ErrMissingUTXO, in.Outpoint())
			}
			spent[in.Outpoint()] = true
		}
	}
	return nil
}
