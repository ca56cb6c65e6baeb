// Package p2p is the node's wire protocol: a length-prefixed envelope
// framing, a peer-address helper, and the plumbing to send/receive/serve
// it. Message semantics (spec.md §4.8's command table) live in node,
// which implements Handler; p2p itself knows nothing about chains,
// blocks, or transactions beyond the payload types below.
package p2p

import "encoding/gob"

// Envelope is the on-wire unit: a command name and its payload. Framing
// prefixes the gob-encoded envelope with a 4-byte big-endian length,
// per spec.md §6.
type Envelope struct {
	Command string
	Data    interface{}
}

// Commands, per spec.md §4.8.
const (
	CmdConnect         = "connect"
	CmdConnectResponse = "connect-response"
	CmdPeers           = "peers"
	CmdPeersResponse   = "peers-response"
	CmdPing            = "ping"
	CmdPong            = "pong"
	CmdSync            = "sync"
	CmdBlocks          = "blocks"
	CmdTx              = "tx"
	CmdBalance         = "balance"
	CmdBalanceResponse = "balance-response"
	CmdUTXOs           = "utxos"
	CmdUTXOsResponse   = "utxos-response"
)

// Empty is the payload of commands that carry no data (connect,
// connect-response, ping, pong).
type Empty struct{}

// PeersPayload lists peer addresses (peers-response).
type PeersPayload struct {
	Peers []string
}

// SyncPayload carries the sender's recent block ids, tip-ward (sync).
type SyncPayload struct {
	BlockIDs []string
}

// PublicKeyPayload carries a public key (balance, utxos).
type PublicKeyPayload struct {
	PublicKey []byte
}

// BalancePayload carries a summed UTXO amount (balance-response).
type BalancePayload struct {
	Amount int
}

func init() {
	gob.Register(Empty{})
	gob.Register(PeersPayload{})
	gob.Register(SyncPayload{})
	gob.Register(PublicKeyPayload{})
	gob.Register(BalancePayload{})
}
