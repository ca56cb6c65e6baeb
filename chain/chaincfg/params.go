// Package chaincfg holds the node's compile-time tunables.
package chaincfg

import "math/big"

const (
	// DifficultyBits is test-grade; see spec.md §6.
	DifficultyBits = 2

	// Bits is the per-block work exponent used by TotalWork. It is a
	// global constant in this variant, but kept per-block in the work
	// formula so a difficulty-adjusting variant can reuse the same
	// reorg code (spec.md §9 "Work formula").
	Bits = DifficultyBits

	// BlockSubsidy is the fixed coinbase reward, in the base unit.
	BlockSubsidy = 50

	// GetBlocksChunk bounds how many blocks a single "sync" reply carries.
	GetBlocksChunk = 10

	// Port is the node's P2P listen port.
	Port = 10000

	// GenesisCoinbaseID is the fixed tx id POWCoin uses so every node's
	// locally-mined genesis block is identical.
	GenesisCoinbaseID = "abc123"
)

// PowTarget is 2^(256-DifficultyBits); a block id, read as a big-endian
// unsigned integer, must be strictly less than this to be valid.
var PowTarget = new(big.Int).Lsh(big.NewInt(1), 256-DifficultyBits)
