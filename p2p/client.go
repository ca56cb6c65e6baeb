package p2p

import "net"

// Send dials addr, writes a single framed envelope, and closes the
// connection without waiting for a reply — used for fire-and-forget
// gossip (tx, blocks).
func Send(addr string, env Envelope) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	return WriteFrame(conn, env)
}

// Request dials addr, writes env, and reads back one framed reply —
// used for request/response commands (sync, balance, utxos, ping).
func Request(addr string, env Envelope) (Envelope, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return Envelope{}, err
	}
	defer conn.Close()
	if err := WriteFrame(conn, env); err != nil {
		return Envelope{}, err
	}
	return ReadFrame(conn)
}
