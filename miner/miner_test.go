package miner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golang-powcoin/powcoin/chain"
)

func TestMineGenesisClearsTarget(t *testing.T) {
	payee := []byte("alice")
	genesis := MineGenesis(payee)
	require.NoError(t, chain.ValidatePoW(genesis))
	require.Equal(t, payee, genesis.Coinbase().Outs[0].PublicKey)
	require.Equal(t, "", genesis.PrevID)
}

func TestSearchRespectsInterrupt(t *testing.T) {
	m := &Miner{Interrupt: &Interrupt{}}
	m.Interrupt.Set()

	candidate := chain.NewCandidate([]chain.Tx{chain.NewCoinbase("t", []byte("p"))}, "", 0)
	_, ok := m.search(candidate)
	require.False(t, ok, "an interrupt set before the first nonce check must abandon the candidate")
}

func TestMineOnceSubmitsAMinedBlock(t *testing.T) {
	var submitted chain.Block
	submittedCount := 0

	m := &Miner{
		Payee: []byte("alice"),
		Snapshot: func() Snapshot {
			return Snapshot{TipID: "genesis"}
		},
		Submit: func(b chain.Block) error {
			submitted = b
			submittedCount++
			return nil
		},
		Interrupt: &Interrupt{},
	}

	m.mineOnce()

	require.Equal(t, 1, submittedCount)
	require.NoError(t, chain.ValidatePoW(submitted))
	require.Equal(t, "genesis", submitted.PrevID)
}

// TestMineOnceAbandonsOnInterrupt exercises spec.md §8 scenario S6: an
// interrupt pending when the nonce search runs causes mineOnce to submit
// nothing.
func TestMineOnceAbandonsOnInterrupt(t *testing.T) {
	interrupt := &Interrupt{}
	interrupt.Set()

	submittedCount := 0
	m := &Miner{
		Payee: []byte("alice"),
		Snapshot: func() Snapshot {
			return Snapshot{TipID: "stale-tip"}
		},
		Submit: func(b chain.Block) error {
			submittedCount++
			return nil
		},
		Interrupt: interrupt,
	}

	m.mineOnce()
	require.Equal(t, 0, submittedCount)
}
