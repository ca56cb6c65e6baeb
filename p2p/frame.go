package p2p

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang-powcoin/powcoin/chain"
)

// WriteFrame gob-encodes env and writes it as a 4-byte-big-endian-length-
// prefixed frame, per spec.md §6.
func WriteFrame(w io.Writer, env Envelope) error {
	body, err := chain.Encode(env)
	if err != nil {
		return err
	}
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(body)))
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadFrame reads one length-prefixed frame and decodes its envelope.
func ReadFrame(r io.Reader) (Envelope, error) {
	var length [4]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return Envelope{}, err
	}
	n := binary.BigEndian.Uint32(length[:])
	if n == 0 {
		return Envelope{}, fmt.Errorf("p2p: empty frame")
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Envelope{}, err
	}
	var env Envelope
	if err := chain.Decode(body, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
