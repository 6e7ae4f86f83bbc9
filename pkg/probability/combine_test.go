package probability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordict/pkg/dictconst"
)

func TestCombineNotAProbability(t *testing.T) {
	require.Equal(t, dictconst.NotAProbability, Combine(dictconst.NotAProbability, 200))
}

func TestCombinePassesThroughWithoutBigram(t *testing.T) {
	require.Equal(t, 120, Combine(120, dictconst.NotAProbability))
}

func TestCombineKnownPair(t *testing.T) {
	require.Equal(t, 80+(180*(255-80))/255, Combine(80, 180))
}

func TestCombineIsMonotonicInBigram(t *testing.T) {
	for u := 0; u <= dictconst.MaxProbability; u += 17 {
		last := -1
		for b := 0; b <= dictconst.MaxProbability; b++ {
			got := Combine(u, b)
			require.GreaterOrEqual(t, got, last)
			last = got
		}
	}
}

func TestCombineIsMonotonicInUnigram(t *testing.T) {
	for b := 0; b <= dictconst.MaxProbability; b += 17 {
		last := -1
		for u := 0; u <= dictconst.MaxProbability; u++ {
			got := Combine(u, b)
			require.GreaterOrEqual(t, got, last)
			last = got
		}
	}
}

func TestCombineNeverExceedsMax(t *testing.T) {
	for u := 0; u <= dictconst.MaxProbability; u++ {
		for b := 0; b <= dictconst.MaxProbability; b++ {
			require.LessOrEqual(t, Combine(u, b), dictconst.MaxProbability)
		}
	}
}
