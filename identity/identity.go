// Package identity is the node's opaque signature primitive: sign(msg) →
// sig, verify(pub, sig, msg) → bool, plus the deterministic name→keypair
// table the companion CLI and the test scenarios in spec.md §8 rely on.
// Neither the signature scheme nor the name registry is part of this
// spec's core (spec.md §1) — this package exists so the core has
// something concrete to call.
package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

var curve = elliptic.P256()

// KeyPair is a signing identity: a private key and its serialized
// public key (the concatenation of the P256 point's X and Y coordinates,
// as the teacher's wallet package encodes it).
type KeyPair struct {
	Private ecdsa.PrivateKey
	Public  []byte
}

// Generate creates a fresh random keypair.
func Generate() KeyPair {
	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		panic(err)
	}
	return KeyPair{Private: *priv, Public: encodePublic(&priv.PublicKey)}
}

func encodePublic(pub *ecdsa.PublicKey) []byte {
	buf := make([]byte, 64)
	pub.X.FillBytes(buf[:32])
	pub.Y.FillBytes(buf[32:])
	return buf
}

// Sign produces a signature over msg with kp's private key: r and s, each
// left-padded to 32 bytes.
func Sign(kp KeyPair, msg []byte) []byte {
	digest := sha256.Sum256(msg)
	r, s, err := ecdsa.Sign(rand.Reader, &kp.Private, digest[:])
	if err != nil {
		panic(err)
	}
	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig
}

// Verify checks sig against pub (the fixed-width X‖Y P256 point encoding
// Generate produces) over msg.
func Verify(pub []byte, sig []byte, msg []byte) bool {
	if len(pub) == 0 || len(sig) == 0 {
		return false
	}
	half := len(pub) / 2
	x := new(big.Int).SetBytes(pub[:half])
	y := new(big.Int).SetBytes(pub[half:])
	pk := ecdsa.PublicKey{Curve: curve, X: x, Y: y}

	sigHalf := len(sig) / 2
	r := new(big.Int).SetBytes(sig[:sigHalf])
	s := new(big.Int).SetBytes(sig[sigHalf:])

	digest := sha256.Sum256(msg)
	return ecdsa.Verify(&pk, digest[:], r, s)
}

// namedExponents maps each well-known name to the fixed scalar Named
// derives its keypair from, mirroring POWCoin's lookup_private_key
// exponent table. Used only for the handful
// of well-known names the test cluster and CLI use; it is not a general
// identity registry.
var namedExponents = map[string]int64{
	"alice": 1,
	"bob":   2,
	"node0": 3,
	"node1": 4,
	"node2": 5,
}

// Named returns the deterministic keypair for one of the fixed names
// (alice, bob, node0, node1, node2).
func Named(name string) (KeyPair, bool) {
	exp, ok := namedExponents[name]
	if !ok {
		return KeyPair{}, false
	}
	d := big.NewInt(exp)
	x, y := curve.ScalarBaseMult(d.Bytes())
	priv := ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}
	return KeyPair{Private: priv, Public: encodePublic(&priv.PublicKey)}, true
}

// Fingerprint derives a short, human-readable tag for a public key for use
// in log lines and CLI output only — it is never a protocol value. Uses
// the same SHA-256-then-RIPEMD160-then-Base58 pipeline the teacher's
// wallet package uses to derive addresses, without the version byte or
// checksum an address needs (this spec has no address system: outputs
// lock directly to a public key).
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	h := ripemd160.New()
	h.Write(sum[:])
	return base58.Encode(h.Sum(nil))
}
