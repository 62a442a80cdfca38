package siglog

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// seed and message derive distinct 32-byte keys from a small integer
// (big- and little-endian encodings respectively, so seed(n) != message(n)
// for every nonzero n below 256; seed(0) == message(0)).
func seed(x uint64) Hash {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], x)
	return sha256.Sum256(b[:])
}

func message(x uint64) Hash {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	return sha256.Sum256(b[:])
}

func TestSignatureMap_Lookup(t *testing.T) {
	m := NewSignatureMap()
	m.Put(seed(1), message(1), 10)

	w, ok := m.Witness(seed(1), message(1))
	require.True(t, ok)
	require.Equal(t, m.RootHash(), HashNode(w))

	_, ok = m.Witness(seed(1), message(2))
	require.False(t, ok)
	_, ok = m.Witness(seed(2), message(1))
	require.False(t, ok)

	m.Delete(seed(1), message(1))
	_, ok = m.Witness(seed(1), message(1))
	require.False(t, ok)
	require.Equal(t, NewSignatureMap().RootHash(), m.RootHash())
}

func TestSignatureMap_PutThenDeleteRestoresRoot(t *testing.T) {
	// Put followed by delete of the same key yields the root from before
	// the put, with other records present.
	m := NewSignatureMap()
	m.Put(seed(1), message(1), 10)
	before := m.RootHash()

	m.Put(seed(2), message(2), 20)
	m.Delete(seed(2), message(2))
	require.Equal(t, before, m.RootHash())
}

func TestSignatureMap_Expiration(t *testing.T) {
	m := NewSignatureMap()
	m.Put(seed(1), message(1), 10)
	m.Put(seed(1), message(2), 20)
	m.Put(seed(2), message(1), 15)
	m.Put(seed(2), message(2), 25)

	require.Equal(t, 2, m.PruneExpired(19, 10))

	_, ok := m.Witness(seed(1), message(1))
	require.False(t, ok)
	_, ok = m.Witness(seed(2), message(1))
	require.False(t, ok)

	_, ok = m.Witness(seed(1), message(2))
	require.True(t, ok)
	_, ok = m.Witness(seed(2), message(2))
	require.True(t, ok)
}

func TestSignatureMap_ExpirationLimit(t *testing.T) {
	m := NewSignatureMap()
	for i := uint64(0); i < 10; i++ {
		m.Put(seed(i), message(i), 10*i)
	}

	require.Equal(t, 5, m.PruneExpired(100, 5))

	for i := uint64(0); i < 5; i++ {
		_, ok := m.Witness(seed(i), message(i))
		require.False(t, ok)
	}
	for i := uint64(5); i < 10; i++ {
		_, ok := m.Witness(seed(i), message(i))
		require.True(t, ok)
	}
}

func TestSignatureMap_RootHash_OrderIndependent(t *testing.T) {
	// The root depends only on the final (seed, msg, expiry) set.
	a := NewSignatureMap()
	a.Put(seed(1), message(1), 10)
	a.Put(seed(2), message(2), 20)

	b := NewSignatureMap()
	b.Put(seed(2), message(2), 20)
	b.Put(seed(1), message(1), 10)

	require.Equal(t, a.RootHash(), b.RootHash())
}

func TestSignatureMap_Put_Overwrite(t *testing.T) {
	m := NewSignatureMap()
	m.Put(seed(1), message(1), 10)
	before := m.RootHash()

	m.Put(seed(1), message(1), 999)
	after := m.RootHash()
	require.NotEqual(t, before, after)

	// Overwriting must also retire the old expiry-index entry: pruning at
	// the old expiry must no longer touch this record.
	require.Equal(t, 0, m.PruneExpired(10, 10))
	_, ok := m.Witness(seed(1), message(1))
	require.True(t, ok)
}

func TestSignatureMap_EmptyRootHash_Deterministic(t *testing.T) {
	a := NewSignatureMap()
	b := NewSignatureMap()
	require.Equal(t, a.RootHash(), b.RootHash())
}
