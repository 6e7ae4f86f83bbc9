package triemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutRootGetRoot(t *testing.T) {
	tm := New()
	require.True(t, tm.PutRoot(10, 10))
	node := tm.GetRoot(10)
	require.True(t, node.IsValid)
	require.EqualValues(t, 10, node.Value)
}

func TestMultiLevel(t *testing.T) {
	tm := New()
	require.True(t, tm.PutRoot(10, 10))
	require.EqualValues(t, 10, tm.GetRoot(10).Value)

	child := tm.GetNextLevelBitmapEntryIndex(10)
	require.NotEqual(t, InvalidIndex, child)

	require.True(t, tm.Put(9, 9, child))
	require.EqualValues(t, 9, tm.Get(9, child).Value)
	require.False(t, tm.Get(11, child).IsValid)

	// sibling level (root) is unaffected by writes into the child level.
	require.False(t, tm.GetRoot(9).IsValid)
}

func TestGetNextLevelIsIdempotent(t *testing.T) {
	tm := New()
	tm.PutRoot(1, 1)
	a := tm.GetNextLevelBitmapEntryIndex(1)
	b := tm.GetNextLevelBitmapEntryIndex(1)
	require.Equal(t, a, b)
}

func TestMissReturnsInvalid(t *testing.T) {
	tm := New()
	node := tm.GetRoot(42)
	require.False(t, node.IsValid)
}

func TestOverflowOnHashCollision(t *testing.T) {
	tm := New()
	// Find two distinct keys that collide in the 5-bit hash bucket.
	var k1, k2 uint32 = 0, 0
	buckets := make(map[uint32]uint32)
	for k := uint32(0); k < 100000; k++ {
		h := hash(k)
		if existing, ok := buckets[h]; ok {
			k1, k2 = existing, k
			break
		}
		buckets[h] = k
	}
	require.NotEqual(t, k1, k2, "expected to find a colliding pair within search space")

	require.True(t, tm.PutRoot(k1, 100))
	require.True(t, tm.PutRoot(k2, 200))

	require.EqualValues(t, 100, tm.GetRoot(k1).Value)
	require.EqualValues(t, 200, tm.GetRoot(k2).Value)
}

func TestPutRejectsOutOfRangeValue(t *testing.T) {
	tm := New()
	require.False(t, tm.PutRoot(1, MaxValue+1))
}

func TestDelete(t *testing.T) {
	tm := New()
	tm.PutRoot(5, 5)
	tm.Delete(5, rootIndex)
	require.False(t, tm.GetRoot(5).IsValid)
}

func TestDeleteOnPrimarySlotPromotesOverflowEntry(t *testing.T) {
	tm := New()
	// k1 occupies the primary slot; k2 collides into overflow.
	var k1, k2 uint32 = 0, 0
	buckets := make(map[uint32]uint32)
	for k := uint32(0); k < 100000; k++ {
		h := hash(k)
		if existing, ok := buckets[h]; ok {
			k1, k2 = existing, k
			break
		}
		buckets[h] = k
	}
	require.NotEqual(t, k1, k2, "expected to find a colliding pair within search space")

	tm.PutRoot(k1, 100)
	tm.PutRoot(k2, 200)

	tm.Delete(k1, rootIndex)

	require.False(t, tm.GetRoot(k1).IsValid)
	node := tm.GetRoot(k2)
	require.True(t, node.IsValid, "overflow entry must survive deletion of the primary slot it collided with")
	require.EqualValues(t, 200, node.Value)
}

func TestUpdateOverwritesValue(t *testing.T) {
	tm := New()
	tm.PutRoot(7, 1)
	tm.PutRoot(7, 2)
	require.EqualValues(t, 2, tm.GetRoot(7).Value)
	require.Equal(t, 1, tm.Count(rootIndex))
}
