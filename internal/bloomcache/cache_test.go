package bloomcache

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedOf(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

func TestSeedCache_InsertedSeedIsMaybePresent(t *testing.T) {
	c := NewSeedCache(100)
	s := seedOf("alice")
	c.Insert(s)
	require.True(t, c.MaybeContains(s))
}

func TestSeedCache_NeverInsertedSeedIsUsuallyAbsent(t *testing.T) {
	c := NewSeedCache(1000)
	c.Insert(seedOf("alice"))
	require.False(t, c.MaybeContains(seedOf("definitely-not-inserted")))
}

func TestSeedCache_SurvivesOneRotation(t *testing.T) {
	c := NewSeedCache(100)
	s := seedOf("bob")
	c.Insert(s)
	c.Rotate()

	// bob was in the generation that is now "previous"; MaybeContains
	// must still find it there.
	require.True(t, c.MaybeContains(s))
}

func TestSeedCache_DroppedAfterTwoRotations(t *testing.T) {
	c := NewSeedCache(100)
	s := seedOf("carol")
	c.Insert(s)
	c.Rotate()
	c.Rotate()
	require.False(t, c.MaybeContains(s))
}

func TestSeedCache_ManySeedsNoFalseNegatives(t *testing.T) {
	c := NewSeedCache(1000)
	for i := 0; i < 1000; i++ {
		c.Insert(seedOf(string(rune('a'+i%26)) + string(rune('0'+i%10)) + string(rune(i))))
	}
	for i := 0; i < 1000; i++ {
		s := seedOf(string(rune('a'+i%26)) + string(rune('0'+i%10)) + string(rune(i)))
		require.True(t, c.MaybeContains(s), "seed %d", i)
	}
}
