// Package node owns all of a running instance's shared state — chain,
// mempool, peer lists — behind one mutex, and drives its lifecycle:
// mine or accept genesis, connect to peers, dispatch inbound messages,
// and feed the miner. It implements p2p.Handler so p2p need not know
// anything about chains or transactions; node is where spec.md §4.8's
// command table actually lives (spec.md §9 "Global node handle").
package node

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-powcoin/powcoin/chain"
	"github.com/golang-powcoin/powcoin/chain/chaincfg"
	"github.com/golang-powcoin/powcoin/identity"
	"github.com/golang-powcoin/powcoin/log"
	"github.com/golang-powcoin/powcoin/miner"
	"github.com/golang-powcoin/powcoin/p2p"
)

// Node is the single critical section guarding a running instance's
// shared state (spec.md §5). Every accessor below acquires mu.
type Node struct {
	mu sync.Mutex

	selfAddr string
	acceptor *chain.Acceptor

	peers map[string]bool

	interrupt *miner.Interrupt
}

// New returns a node listening (logically) at selfAddr, with an empty
// chain — the caller must still seed genesis via SeedGenesis (for
// example with a block from miner.MineGenesis) before serving.
func New(selfAddr string) *Node {
	return &Node{
		selfAddr:  selfAddr,
		acceptor:  chain.NewAcceptor(),
		peers:     make(map[string]bool),
		interrupt: &miner.Interrupt{},
	}
}

// SeedGenesis installs a pre-mined genesis block directly, bypassing the
// classifier (spec.md §6 "Genesis").
func (n *Node) SeedGenesis(b chain.Block) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.acceptor.AcceptGenesis(b)
}

// Interrupt exposes the cooperative mining-cancellation flag so main can
// wire it into a miner.Miner alongside Snapshot/Submit.
func (n *Node) Interrupt() *miner.Interrupt {
	return n.interrupt
}

// Snapshot implements miner.SnapshotFunc: the current tip id and a copy
// of the mempool, taken under the lock but used by the miner outside it
// (spec.md §5).
func (n *Node) Snapshot() miner.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	mempool := append([]chain.Tx{}, n.acceptor.UTXO.Mempool()...)
	return miner.Snapshot{TipID: n.acceptor.Store.Tip().ID(), Mempool: mempool}
}

// Submit implements miner.SubmitFunc: re-enter the acceptor with a freshly
// mined block and, on success, broadcast it (spec.md §4.7).
func (n *Node) Submit(b chain.Block) error {
	n.mu.Lock()
	class, err := n.acceptor.Accept(b)
	peers := n.peerList()
	n.mu.Unlock()

	if err != nil {
		return err
	}
	if class != chain.ClassExtendsChain {
		return fmt.Errorf("node: mined block classified as %v, not extends-chain", class)
	}
	n.broadcastBlocks(peers, []chain.Block{b})
	log.Node.Infof("mined block %s paying %s", b.ID(), identity.Fingerprint(b.Coinbase().Outs[0].PublicKey))
	return nil
}

// Balance sums the amount of every UTXO locked to pub.
func (n *Node) Balance(pub []byte) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, out := range n.acceptor.UTXO.ByPublicKey(pub) {
		total += out.Amount
	}
	return total
}

// UTXOs returns every UTXO locked to pub.
func (n *Node) UTXOs(pub []byte) []chain.TxOut {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.acceptor.UTXO.ByPublicKey(pub)
}

func (n *Node) peerList() []string {
	list := make([]string, 0, len(n.peers))
	for p := range n.peers {
		list = append(list, p)
	}
	return list
}

// Connect initiates the handshake with addr: send connect, and on reply
// record it as a peer and ask for its peers (spec.md §4.8).
func (n *Node) Connect(addr string) error {
	if addr == n.selfAddr {
		return nil
	}
	_, err := p2p.Request(addr, p2p.Envelope{Command: p2p.CmdConnect, Data: p2p.Empty{}})
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.peers[addr] = true
	n.mu.Unlock()
	log.Node.Infof("connected to %s", addr)

	reply, err := p2p.Request(addr, p2p.Envelope{Command: p2p.CmdPeers, Data: p2p.Empty{}})
	if err != nil {
		return err
	}
	if payload, ok := reply.Data.(p2p.PeersPayload); ok {
		n.handlePeersResponse(payload)
	}
	return nil
}

// Handle implements p2p.Handler, dispatching on the envelope's command
// per spec.md §4.8's table. peerAddr is the sender's canonical address.
func (n *Node) Handle(peerAddr string, env p2p.Envelope) (p2p.Envelope, bool) {
	switch env.Command {
	case p2p.CmdConnect:
		n.mu.Lock()
		if peerAddr != n.selfAddr {
			n.peers[peerAddr] = true
		}
		n.mu.Unlock()
		log.Node.Infof("peer %s connected to us", peerAddr)
		return p2p.Envelope{Command: p2p.CmdConnectResponse, Data: p2p.Empty{}}, true

	case p2p.CmdPeers:
		n.mu.Lock()
		list := n.peerList()
		n.mu.Unlock()
		return p2p.Envelope{Command: p2p.CmdPeersResponse, Data: p2p.PeersPayload{Peers: list}}, true

	case p2p.CmdPing:
		return p2p.Envelope{Command: p2p.CmdPong, Data: p2p.Empty{}}, true

	case p2p.CmdSync:
		payload, _ := env.Data.(p2p.SyncPayload)
		return n.handleSync(payload), true

	case p2p.CmdBlocks:
		payload, _ := env.Data.(p2p.BlocksPayload)
		n.handleBlocks(peerAddr, payload)
		return p2p.Envelope{}, false

	case p2p.CmdTx:
		payload, _ := env.Data.(p2p.TxPayload)
		n.handleTx(payload)
		return p2p.Envelope{}, false

	case p2p.CmdBalance:
		payload, _ := env.Data.(p2p.PublicKeyPayload)
		amount := n.Balance(payload.PublicKey)
		return p2p.Envelope{Command: p2p.CmdBalanceResponse, Data: p2p.BalancePayload{Amount: amount}}, true

	case p2p.CmdUTXOs:
		payload, _ := env.Data.(p2p.PublicKeyPayload)
		utxos := n.UTXOs(payload.PublicKey)
		return p2p.Envelope{Command: p2p.CmdUTXOsResponse, Data: p2p.UTXOsPayload{UTXOs: utxos}}, true

	default:
		log.Node.Warnf("unknown command %q from %s", env.Command, peerAddr)
		return p2p.Envelope{}, false
	}
}

func (n *Node) handlePeersResponse(payload p2p.PeersPayload) {
	n.mu.Lock()
	var unknown []string
	for _, addr := range payload.Peers {
		if addr != n.selfAddr && !n.peers[addr] {
			unknown = append(unknown, addr)
		}
	}
	n.mu.Unlock()

	for _, addr := range unknown {
		go func(addr string) {
			if err := n.Connect(addr); err != nil {
				log.Node.Debugf("connect to %s failed: %v", addr, err)
			}
		}(addr)
	}
}

// handleSync answers spec.md §4.8's "sync": the highest of our blocks
// whose parent is in the sender's recent-ids list and whose own id is
// not, plus up to GetBlocksChunk-1 successors.
func (n *Node) handleSync(payload p2p.SyncPayload) p2p.Envelope {
	known := make(map[string]bool, len(payload.BlockIDs))
	for _, id := range payload.BlockIDs {
		known[id] = true
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	blocks := n.acceptor.Store.Blocks
	start := -1
	for i := len(blocks) - 1; i >= 0; i-- {
		if known[blocks[i].PrevID] && !known[blocks[i].ID()] {
			start = i
			break
		}
	}
	if start == -1 {
		return p2p.Envelope{Command: p2p.CmdBlocks, Data: p2p.BlocksPayload{}}
	}

	end := start + chaincfg.GetBlocksChunk
	if end > len(blocks) {
		end = len(blocks)
	}
	chunk := append([]chain.Block{}, blocks[start:end]...)
	return p2p.Envelope{Command: p2p.CmdBlocks, Data: p2p.BlocksPayload{Blocks: chunk}}
}

// handleBlocks implements spec.md §4.8's "blocks": accept each block in
// order, interrupt the miner on any success, gossip accepted blocks, and
// continue the bounded tip-sync if the reply was a full chunk.
func (n *Node) handleBlocks(peerAddr string, payload p2p.BlocksPayload) {
	anyUnknownParent := false

	for _, b := range payload.Blocks {
		n.mu.Lock()
		class, err := n.acceptor.Accept(b)
		peers := n.peerList()
		n.mu.Unlock()

		if err != nil {
			if err == chain.ErrUnknownParent {
				anyUnknownParent = true
			}
			log.Node.Debugf("rejected block from %s: %v", peerAddr, err)
			continue
		}
		n.interrupt.Set()
		if class != chain.ClassDuplicate {
			n.broadcastBlocks(peers, []chain.Block{b})
		}
	}

	if anyUnknownParent {
		n.requestSync(peerAddr)
		return
	}
	if len(payload.Blocks) == chaincfg.GetBlocksChunk {
		n.requestSync(peerAddr)
	}
}

func (n *Node) requestSync(peerAddr string) {
	n.mu.Lock()
	ids := make([]string, len(n.acceptor.Store.Blocks))
	for i, b := range n.acceptor.Store.Blocks {
		ids[i] = b.ID()
	}
	n.mu.Unlock()

	reply, err := p2p.Request(peerAddr, p2p.Envelope{Command: p2p.CmdSync, Data: p2p.SyncPayload{BlockIDs: ids}})
	if err != nil {
		log.Node.Debugf("sync request to %s failed: %v", peerAddr, err)
		return
	}
	if payload, ok := reply.Data.(p2p.BlocksPayload); ok && len(payload.Blocks) > 0 {
		n.handleBlocks(peerAddr, payload)
	}
}

func (n *Node) handleTx(payload p2p.TxPayload) {
	n.mu.Lock()
	if err := n.acceptor.UTXO.ValidateTx(payload.Tx); err != nil {
		n.mu.Unlock()
		log.Node.Debugf("rejected tx: %v", err)
		return
	}
	err := n.acceptor.UTXO.AddToMempool(payload.Tx)
	peers := n.peerList()
	n.mu.Unlock()

	if err != nil {
		log.Node.Debugf("rejected tx: %v", err)
		return
	}
	n.broadcastTx(peers, payload.Tx)
}

func (n *Node) broadcastBlocks(peers []string, blocks []chain.Block) {
	env := p2p.Envelope{Command: p2p.CmdBlocks, Data: p2p.BlocksPayload{Blocks: blocks}}
	for _, addr := range peers {
		go func(addr string) {
			if err := p2p.Send(addr, env); err != nil {
				log.Node.Debugf("gossip blocks to %s failed: %v", addr, err)
			}
		}(addr)
	}
}

func (n *Node) broadcastTx(peers []string, tx chain.Tx) {
	env := p2p.Envelope{Command: p2p.CmdTx, Data: p2p.TxPayload{Tx: tx}}
	for _, addr := range peers {
		go func(addr string) {
			if err := p2p.Send(addr, env); err != nil {
				log.Node.Debugf("gossip tx to %s failed: %v", addr, err)
			}
		}(addr)
	}
}

// StartupDelay staggers a test cluster's binds by a role-derived amount
// so nodes come up in a deterministic order (spec.md §5 "Startup
// staggering").
func StartupDelay(role int) time.Duration {
	return time.Duration(role) * 2 * time.Second
}
