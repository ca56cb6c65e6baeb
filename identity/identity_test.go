package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp := Generate()
	msg := []byte("spend this outpoint")

	sig := Sign(kp, msg)
	require.True(t, Verify(kp.Public, sig, msg))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	a := Generate()
	b := Generate()
	sig := Sign(a, []byte("msg"))
	require.False(t, Verify(b.Public, sig, []byte("msg")))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	kp := Generate()
	sig := Sign(kp, []byte("original"))
	require.False(t, Verify(kp.Public, sig, []byte("tampered")))
}

func TestNamedIsDeterministic(t *testing.T) {
	a1, ok := Named("alice")
	require.True(t, ok)
	a2, ok := Named("alice")
	require.True(t, ok)
	require.Equal(t, a1.Public, a2.Public)

	bob, ok := Named("bob")
	require.True(t, ok)
	require.NotEqual(t, a1.Public, bob.Public)
}

func TestNamedUnknownName(t *testing.T) {
	_, ok := Named("mallory")
	require.False(t, ok)
}

func TestNamedKeyPairSignsAndVerifies(t *testing.T) {
	node0, ok := Named("node0")
	require.True(t, ok)

	sig := Sign(node0, []byte("ping"))
	require.True(t, Verify(node0.Public, sig, []byte("ping")))
}

func TestFingerprintIsStableAndDistinct(t *testing.T) {
	a, _ := Named("alice")
	b, _ := Named("bob")
	require.Equal(t, Fingerprint(a.Public), Fingerprint(a.Public))
	require.NotEqual(t, Fingerprint(a.Public), Fingerprint(b.Public))
}
