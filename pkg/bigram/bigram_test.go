package bigram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/triemap"
	"github.com/bastiangx/wordict/pkg/wordstore"
)

func setup(t *testing.T) (*wordstore.Store, *Store, int, int) {
	t.Helper()
	trie := triemap.New()
	words := wordstore.New(trie)
	require.True(t, words.AddUnigramWord([]rune("good"), wordstore.UnigramProperty{Probability: 100}))
	require.True(t, words.AddUnigramWord([]rune("morning"), wordstore.UnigramProperty{Probability: 80}))

	srcPos := words.GetTerminalPtNodePositionOfWord([]rune("good"), false)
	dstPos := words.GetTerminalPtNodePositionOfWord([]rune("morning"), false)
	return words, New(trie), srcPos, dstPos
}

func TestAddAndGetBigramProbability(t *testing.T) {
	words, bigrams, src, dst := setup(t)

	require.True(t, bigrams.AddBigramWords(words, src, dst, Property{Probability: 180}))
	require.Equal(t, 180, bigrams.GetBigramProbability(words, src, dst))
}

func TestGetBigramProbabilityAbsent(t *testing.T) {
	words, bigrams, src, dst := setup(t)
	require.Equal(t, dictconst.NotAProbability, bigrams.GetBigramProbability(words, src, dst))
}

func TestAddBigramWordsFailsForUnknownSource(t *testing.T) {
	words, bigrams, _, dst := setup(t)
	require.False(t, bigrams.AddBigramWords(words, 9999, dst, Property{Probability: 10}))
}

func TestRemoveBigramWordsIsSilentOnAbsence(t *testing.T) {
	words, bigrams, src, dst := setup(t)
	require.NotPanics(t, func() { bigrams.RemoveBigramWords(words, src, dst) })
}

func TestRemoveBigramWords(t *testing.T) {
	words, bigrams, src, dst := setup(t)
	bigrams.AddBigramWords(words, src, dst, Property{Probability: 180})
	bigrams.RemoveBigramWords(words, src, dst)
	require.Equal(t, dictconst.NotAProbability, bigrams.GetBigramProbability(words, src, dst))
}

func TestGetPredictions(t *testing.T) {
	words, bigrams, src, dst := setup(t)
	bigrams.AddBigramWords(words, src, dst, Property{Probability: 180})

	preds := bigrams.GetPredictions(words, src, 0)
	require.Len(t, preds, 1)
	require.Equal(t, "morning", string(preds[0].Word))
	require.Equal(t, 180, preds[0].Probability)
}

func TestGetPredictionsRespectsLength(t *testing.T) {
	words, bigrams, src, dst := setup(t)
	words.AddUnigramWord([]rune("day"), wordstore.UnigramProperty{Probability: 50})
	dayPos := words.GetTerminalPtNodePositionOfWord([]rune("day"), false)

	bigrams.AddBigramWords(words, src, dst, Property{Probability: 180})
	bigrams.AddBigramWords(words, src, dayPos, Property{Probability: 90})

	preds := bigrams.GetPredictions(words, src, 1)
	require.Len(t, preds, 1)
}

func TestTargetPositionsAreUniquePerSource(t *testing.T) {
	words, bigrams, src, dst := setup(t)
	bigrams.AddBigramWords(words, src, dst, Property{Probability: 100})
	bigrams.AddBigramWords(words, src, dst, Property{Probability: 200})

	require.Equal(t, 1, bigrams.Count(words, src))
	require.Equal(t, 200, bigrams.GetBigramProbability(words, src, dst))
}
