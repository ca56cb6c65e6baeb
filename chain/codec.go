package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"math/big"
)

// header is the exact shape that is hashed to produce a block's id. It is
// a separate type (rather than hashing Block directly) so that adding
// fields to Block that must never affect its identity can't happen by
// accident.
type header struct {
	Txns   []Tx
	PrevID string
	Nonce  uint64
	Bits   uint
}

// SerializeHeader deterministically encodes a block's header. encoding/gob
// is deterministic for fixed-shape structs and slices — no maps ever
// appear in a header — so identical logical values always yield identical
// bytes, which is the only contract this spec places on the codec.
func SerializeHeader(b Block) []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(header{Txns: b.Txns, PrevID: b.PrevID, Nonce: b.Nonce, Bits: b.Bits}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// BlockID is SHA-256 of the block's header, hex-encoded.
func BlockID(b Block) string {
	sum := sha256.Sum256(SerializeHeader(b))
	return hex.EncodeToString(sum[:])
}

// Proof interprets a block's id as a 256-bit big-endian unsigned integer,
// for comparison against chaincfg.PowTarget.
func Proof(b Block) *big.Int {
	id := b.ID()
	raw, err := hex.DecodeString(id)
	if err != nil {
		panic(err)
	}
	return new(big.Int).SetBytes(raw)
}

// SpendMessage is the message an input's signature is produced over:
// serialize(outpoint) ∥ serialize(outputs). Deliberately excludes the
// transaction's other inputs — see spec.md §9 "Message-hash coverage".
func SpendMessage(tx Tx, index int) []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(tx.Ins[index].Outpoint()); err != nil {
		panic(err)
	}
	if err := enc.Encode(tx.Outs); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Encode gob-encodes an arbitrary wire value (used for p2p envelopes).
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode gob-decodes into v.
func Decode(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
