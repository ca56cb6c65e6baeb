// Package miner implements the node's proof-of-work search: assemble a
// candidate block from the mempool, vary its nonce until the proof meets
// the network target, re-enter the acceptor on success. Grounded on the
// teacher's ProofOfWork.Run nonce loop, generalized into the long-lived
// goroutine POWCoin's mine_forever describes.
package miner

import (
	"math/rand"

	"github.com/golang-powcoin/powcoin/chain"
	"github.com/golang-powcoin/powcoin/chain/chaincfg"
	"github.com/golang-powcoin/powcoin/log"
)

// Snapshot is a point-in-time view of what a candidate should build on,
// taken outside the node lock — stale snapshots waste hashes on the loser
// of a race but never corrupt state (spec.md §5).
type Snapshot struct {
	TipID   string
	Mempool []chain.Tx
}

// SnapshotFunc returns the current tip id and a copy of the mempool.
type SnapshotFunc func() Snapshot

// SubmitFunc re-enters the acceptor under the node lock with a
// successfully mined block. Its error is ignored by the miner — a
// rejection of our own candidate is treated as a lost race, per
// spec.md §7's propagation policy.
type SubmitFunc func(chain.Block) error

// Miner repeatedly builds candidates against a snapshot source and
// submits any block whose proof clears the network target.
type Miner struct {
	Payee     []byte
	Snapshot  SnapshotFunc
	Submit    SubmitFunc
	Interrupt *Interrupt
}

// Mine runs the search loop forever. Call it in its own goroutine.
func (m *Miner) Mine() {
	log.Miner.Info("starting miner")
	for {
		m.mineOnce()
	}
}

func (m *Miner) mineOnce() {
	snap := m.Snapshot()
	coinbase := chain.NewCoinbase(chain.NewTxID(), m.Payee)
	txns := append([]chain.Tx{coinbase}, snap.Mempool...)
	candidate := chain.NewCandidate(txns, snap.TipID, rand.Uint64())

	mined, ok := m.search(candidate)
	if !ok {
		return
	}

	log.Miner.Info("mined a block")
	if err := m.Submit(mined); err != nil {
		log.Miner.Debugf("mined block lost the race: %v", err)
	}
}

// search increments candidate's nonce until its proof clears the target,
// checking the cooperative interrupt on every iteration. It returns
// (Block{}, false) if interrupted before a solution is found.
func (m *Miner) search(candidate chain.Block) (chain.Block, bool) {
	for {
		if m.Interrupt.Poll() {
			log.Miner.Info("mining interrupted")
			return chain.Block{}, false
		}
		if chain.Proof(candidate).Cmp(chaincfg.PowTarget) < 0 {
			return candidate, true
		}
		candidate.Nonce++
	}
}

// MineGenesis mines the fixed genesis block: a single coinbase paying
// payee, nonce starting at zero, no parent.
func MineGenesis(payee []byte) chain.Block {
	coinbase := chain.NewCoinbase(chaincfg.GenesisCoinbaseID, payee)
	candidate := chain.NewCandidate([]chain.Tx{coinbase}, "", 0)
	for chain.Proof(candidate).Cmp(chaincfg.PowTarget) >= 0 {
		candidate.Nonce++
	}
	return candidate
}
