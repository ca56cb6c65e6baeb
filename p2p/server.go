package p2p

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"syscall"

	"github.com/vrecan/death/v3"

	"github.com/golang-powcoin/powcoin/chain/chaincfg"
	"github.com/golang-powcoin/powcoin/log"
)

// Handler answers one inbound envelope from a peer. peerAddr is that
// peer's canonical address (host, our listen port), not the ephemeral
// source port of the TCP connection. A zero-value reply with ok=false
// means "no reply is sent" (spec.md §4.8's fire-and-forget commands).
type Handler interface {
	Handle(peerAddr string, env Envelope) (reply Envelope, ok bool)
}

// Server accepts inbound connections and hands each one, in its own
// goroutine, to a Handler — mirroring the teacher's
// "go HandleConnection(conn, chain)" per-accept goroutine.
type Server struct {
	listener net.Listener
}

// Serve binds addr and serves forever, handing each connection to
// handler. It installs a SIGINT/SIGTERM/os.Interrupt hook (as the
// teacher's network.CloseDB does for its database handle) that closes
// the listener so Serve returns cleanly.
func Serve(addr string, handler Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s := &Server{listener: ln}

	go func() {
		d := death.NewDeath(syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		d.WaitForDeathWithFunc(func() {
			log.P2P.Info("shutting down")
			_ = s.listener.Close()
		})
	}()

	log.P2P.Infof("listening on %s", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go serveConn(conn, addr, handler)
	}
}

func serveConn(conn net.Conn, ourAddr string, handler Handler) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			log.P2P.Warnf("handler panicked: %v", r)
		}
	}()

	env, err := ReadFrame(conn)
	if err != nil {
		log.P2P.Debugf("read frame: %v", err)
		return
	}

	peer := CanonicalPeer(conn)
	reply, ok := handler.Handle(peer, env)
	if !ok {
		return
	}
	if err := WriteFrame(conn, reply); err != nil {
		log.P2P.Debugf("write reply: %v", err)
	}
}

var canonicalNamePattern = regexp.MustCompile(`_(.*?)_`)

// CanonicalPeer derives a peer's logical address from the reverse DNS of
// its connecting IP plus the node's fixed listen port, matching the
// `_name_` pattern a Docker-composed test cluster's hostnames carry,
// exactly as POWCoin's get_canonical_peer_address returns (hostname,
// PORT). The port is always chaincfg.Port, never the connection's
// ephemeral source port, so the result is a "host:port" address
// comparable to the ones node.Node's peer set keys on elsewhere. On any
// lookup failure or pattern mismatch it falls back to the raw IP, also as
// POWCoin does.
func CanonicalPeer(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	} else if names, err := net.LookupAddr(host); err == nil && len(names) > 0 {
		if m := canonicalNamePattern.FindStringSubmatch(names[0]); len(m) == 2 {
			host = m[1]
		}
	}
	return fmt.Sprintf("%s:%d", host, chaincfg.Port)
}
