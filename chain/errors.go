package chain

import "errors"

// Error kinds surfaced by the validator and acceptor (spec.md §7).
var (
	ErrInsufficientPoW = errors.New("chain: insufficient proof-of-work")
	ErrDuplicateBlock  = errors.New("chain: duplicate block")
	ErrUnknownParent   = errors.New("chain: unknown parent")
	ErrBadSignature    = errors.New("chain: bad signature")
	ErrMissingUTXO     = errors.New("chain: missing utxo")
	ErrValueMismatch   = errors.New("chain: input/output value mismatch")
	ErrReorgFailed     = errors.New("chain: reorg failed")
)
