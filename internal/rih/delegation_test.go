package rih

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHash(t *testing.T, hexStr string) Hash {
	t.Helper()
	b, err := hex.DecodeString(hexStr)
	require.NoError(t, err)
	var out Hash
	copy(out[:], b)
	return out
}

// These golden values pin the canonical wire encoding. Changing any of
// them is a breaking protocol change: off-platform verifiers recompute
// these hashes independently.
func TestDelegationMessageHash_Golden(t *testing.T) {
	got := DelegationMessageHash([]byte{0xAA, 0xBB}, 1000+31536000000000000, nil)
	want := mustHash(t, "8cbc015937d679df7d907c6fdd782b401d6137de52a09b1ddd0479f5ccec0afa")
	require.Equal(t, want, got)

	got2 := DelegationMessageHash([]byte{0x01, 0x02, 0x03, 0x04, 0x05}, 42, nil)
	want2 := mustHash(t, "a4611a67ddb3b4191f280ed8fdbe3cc41fbb39fc7a26263cef5b3bdfeea8005b")
	require.Equal(t, want2, got2)

	got3 := DelegationMessageHash([]byte{0x01, 0x02, 0x03, 0x04, 0x05}, 42, [][]byte{{0x01, 0x02}, {0x03}})
	want3 := mustHash(t, "7dc74d8a4b19444565a0807b7a90b2e013857a4336315e89aa97abc4a936ec85")
	require.Equal(t, want3, got3)
}

func TestDelegationMessageHash_Deterministic(t *testing.T) {
	// Structurally equal delegations hash byte-equal regardless of how
	// the caller built them.
	a := DelegationMessageHash([]byte{1, 2, 3}, 99, nil)
	b := DelegationMessageHash([]byte{1, 2, 3}, 99, nil)
	require.Equal(t, a, b)
}

func TestDelegationMessageHash_TargetsChangeHash(t *testing.T) {
	noTargets := DelegationMessageHash([]byte{1, 2, 3}, 99, nil)
	withTargets := DelegationMessageHash([]byte{1, 2, 3}, 99, [][]byte{{9}})
	require.NotEqual(t, noTargets, withTargets)
}

func TestHashSeed_Golden(t *testing.T) {
	got := HashSeed(7)
	want := mustHash(t, "7902699be42c8a8e46fbbb4501726517e86b22c56a189f7625a6da49081b2451")
	require.Equal(t, want, got)

	got2 := HashSeed(42)
	want2 := mustHash(t, "73475cb40a568e8da8a045ced110137e159f890ac4da883b6b17dc651b3a8049")
	require.Equal(t, want2, got2)
}
