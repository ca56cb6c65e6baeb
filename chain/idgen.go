package chain

import (
	"crypto/rand"
	"encoding/hex"
)

// NewTxID returns a fresh collision-resistant 128-bit transaction id, hex
// encoded. Per spec.md §3, any collision-resistant identifier will do;
// genesis's coinbase uses the fixed literal chaincfg.GenesisCoinbaseID
// instead so every node's locally-mined genesis is identical.
func NewTxID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}
