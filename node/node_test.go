package node

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/golang-powcoin/powcoin/chain"
	"github.com/golang-powcoin/powcoin/identity"
	"github.com/golang-powcoin/powcoin/miner"
	"github.com/golang-powcoin/powcoin/p2p"
)

// serveTestNode is a minimal stand-in for p2p.Serve that a test can shut
// down by closing the returned listener, unlike the signal-driven
// production server.
func serveTestNode(t *testing.T, addr string, n *Node) {
	t.Helper()
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				env, err := p2p.ReadFrame(conn)
				if err != nil {
					return
				}
				reply, ok := n.Handle(conn.RemoteAddr().String(), env)
				if ok {
					_ = p2p.WriteFrame(conn, reply)
				}
			}()
		}
	}()
}

func newGenesisNode(t *testing.T, addr string, payee []byte) *Node {
	t.Helper()
	n := New(addr)
	genesis := miner.MineGenesis(payee)
	require.NoError(t, n.SeedGenesis(genesis))
	return n
}

func TestHandlePing(t *testing.T) {
	n := newGenesisNode(t, "node0:10000", []byte("alice"))
	reply, ok := n.Handle("peer", p2p.Envelope{Command: p2p.CmdPing})
	require.True(t, ok)
	require.Equal(t, p2p.CmdPong, reply.Command)
}

func TestHandlePeersReturnsKnownList(t *testing.T) {
	n := newGenesisNode(t, "node0:10000", []byte("alice"))
	reply, ok := n.Handle("peer", p2p.Envelope{Command: p2p.CmdPeers})
	require.True(t, ok)
	payload, ok := reply.Data.(p2p.PeersPayload)
	require.True(t, ok)
	require.Empty(t, payload.Peers)
}

func TestHandleBalanceAndUTXOs(t *testing.T) {
	alice := identity.Generate()
	n := newGenesisNode(t, "node0:10000", alice.Public)

	reply, ok := n.Handle("peer", p2p.Envelope{
		Command: p2p.CmdBalance,
		Data:    p2p.PublicKeyPayload{PublicKey: alice.Public},
	})
	require.True(t, ok)
	balance, ok := reply.Data.(p2p.BalancePayload)
	require.True(t, ok)
	require.Equal(t, 50, balance.Amount)

	reply, ok = n.Handle("peer", p2p.Envelope{
		Command: p2p.CmdUTXOs,
		Data:    p2p.PublicKeyPayload{PublicKey: alice.Public},
	})
	require.True(t, ok)
	utxos, ok := reply.Data.(p2p.UTXOsPayload)
	require.True(t, ok)
	require.Len(t, utxos.UTXOs, 1)
}

func TestHandleSyncReturnsSuccessorsPastKnownTip(t *testing.T) {
	alice := identity.Generate()
	n := newGenesisNode(t, "node0:10000", alice.Public)

	genesisID := n.acceptor.Store.Blocks[0].ID()
	b1 := mineBlockOn(t, alice.Public, genesisID)
	_, err := n.acceptor.Accept(b1)
	require.NoError(t, err)

	reply, ok := n.Handle("peer", p2p.Envelope{
		Command: p2p.CmdSync,
		Data:    p2p.SyncPayload{BlockIDs: []string{genesisID}},
	})
	require.True(t, ok)
	payload, ok := reply.Data.(p2p.BlocksPayload)
	require.True(t, ok)
	require.Len(t, payload.Blocks, 1)
	require.Equal(t, b1.ID(), payload.Blocks[0].ID())
}

func mineBlockOn(t *testing.T, payee []byte, prevID string) chain.Block {
	t.Helper()
	b := chain.NewCandidate([]chain.Tx{chain.NewCoinbase(chain.NewTxID(), payee)}, prevID, 0)
	for chain.ValidatePoW(b) != nil {
		b.Nonce++
	}
	return b
}

// TestConnectHandshakeAndTxGossip exercises spec.md §8 scenario S1 over a
// real TCP connection: two nodes complete the connect handshake, a
// transaction is gossiped to the peer's mempool, and a block including
// it brings the recipient's balance up.
func TestConnectHandshakeAndTxGossip(t *testing.T) {
	alice := identity.Generate()
	bob := identity.Generate()

	addrA := "127.0.0.1:19301"
	addrB := "127.0.0.1:19302"

	nodeA := newGenesisNode(t, addrA, alice.Public)
	nodeB := New(addrB)
	genesisBlock := nodeA.acceptor.Store.Blocks[0]
	require.NoError(t, nodeB.SeedGenesis(genesisBlock))

	serveTestNode(t, addrA, nodeA)
	serveTestNode(t, addrB, nodeB)

	require.NoError(t, nodeA.Connect(addrB))
	// Give the asynchronous peers-response handshake a moment to settle.
	time.Sleep(50 * time.Millisecond)
	require.Contains(t, nodeA.peerList(), addrB)

	tx := buildTestTx(t, alice, bob.Public, 50, genesisBlock.Coinbase().ID)
	require.NoError(t, p2p.Send(addrB, p2p.Envelope{Command: p2p.CmdTx, Data: p2p.TxPayload{Tx: tx}}))

	time.Sleep(50 * time.Millisecond)
	require.True(t, nodeB.acceptor.UTXO.inMempool(tx), "tx gossiped to B must land in its mempool")
	require.Equal(t, 0, nodeB.Balance(bob.Public), "an unconfirmed tx must not yet count toward balance")

	next := chain.NewCandidate([]chain.Tx{chain.NewCoinbase(chain.NewTxID(), alice.Public), tx}, genesisBlock.ID(), 0)
	for chain.ValidatePoW(next) != nil {
		next.Nonce++
	}
	require.NoError(t, nodeB.Submit(next))
	require.Equal(t, 50, nodeB.Balance(bob.Public))
}

func buildTestTx(t *testing.T, from identity.KeyPair, to []byte, amount int, spendTxID string) chain.Tx {
	t.Helper()
	txID := chain.NewTxID()
	tx := chain.Tx{
		ID:   txID,
		Ins:  []chain.TxIn{{TxID: spendTxID, Index: 0}},
		Outs: []chain.TxOut{{TxID: txID, Index: 0, Amount: amount, PublicKey: to}},
	}
	tx.Ins[0].Signature = identity.Sign(from, chain.SpendMessage(tx, 0))
	return tx
}
