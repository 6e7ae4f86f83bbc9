package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/probability"
)

func TestEmptyDictionaryMiss(t *testing.T) {
	d := New(4, "en_US")
	defer d.Close()

	require.Equal(t, dictconst.NotAProbability, d.GetProbability([]rune("hello")))
}

func TestInsertLookup(t *testing.T) {
	d := New(4, "en_US")
	defer d.Close()

	require.True(t, d.AddUnigramWord([]rune("hello"), 120, UnigramFlags{}))
	require.Equal(t, 120, d.GetProbability([]rune("hello")))

	wp, ok := d.GetWordProperty([]rune("hello"))
	require.True(t, ok)
	require.False(t, wp.Unigram.IsNotAWord)
	require.False(t, wp.Unigram.IsBlacklisted)
	require.Empty(t, wp.Bigrams)
}

func TestBigramScenario(t *testing.T) {
	d := New(4, "en_US")
	defer d.Close()

	require.True(t, d.AddUnigramWord([]rune("good"), 100, UnigramFlags{}))
	require.True(t, d.AddUnigramWord([]rune("morning"), 80, UnigramFlags{}))
	require.True(t, d.AddBigramWords([]rune("good"), []rune("morning"), 180))

	require.Equal(t, 180, d.GetBigramProbability([]rune("good"), []rune("morning")))

	preds := d.GetPredictions([]rune("good"), 0)
	require.Len(t, preds, 1)
	require.Equal(t, "morning", preds[0].Word)
	require.Equal(t, probability.Combine(80, 180), preds[0].Probability)
}

func TestGetSuggestionsDelegatesToEngine(t *testing.T) {
	d := New(4, "en_US")
	defer d.Close()

	d.AddUnigramWord([]rune("cat"), 100, UnigramFlags{})
	d.AddUnigramWord([]rune("car"), 150, UnigramFlags{})

	got, err := d.GetSuggestions(context.Background(), nil, []rune("ca"), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "car", got[0].Word)
}

func TestFlushWithGCRoundTrip(t *testing.T) {
	d := New(5, "en_US")
	require.True(t, d.AddUnigramWord([]rune("hello"), 120, UnigramFlags{}))
	require.True(t, d.AddUnigramWord([]rune("world"), 90, UnigramFlags{}))
	require.True(t, d.AddBigramWords([]rune("hello"), []rune("world"), 200))

	path := filepath.Join(t.TempDir(), "dict.wdct")
	require.True(t, d.FlushWithGC(path))
	d.Close()

	reopened, err := Open(path, false)
	require.NoError(t, err)
	defer reopened.Close()
	require.False(t, reopened.IsCorrupted())

	require.Equal(t, 120, reopened.GetProbability([]rune("hello")))
	require.Equal(t, 90, reopened.GetProbability([]rune("world")))
	require.Equal(t, 200, reopened.GetBigramProbability([]rune("hello"), []rune("world")))
}

func TestFlushWithGCIsIdempotent(t *testing.T) {
	d := New(5, "en_US")
	defer d.Close()
	d.AddUnigramWord([]rune("alpha"), 50, UnigramFlags{})
	d.AddUnigramWord([]rune("beta"), 60, UnigramFlags{})

	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.wdct")
	p2 := filepath.Join(dir, "b.wdct")
	require.True(t, d.FlushWithGC(p1))
	require.True(t, d.FlushWithGC(p2))

	b1, err1 := Open(p1, false)
	require.NoError(t, err1)
	defer b1.Close()
	b2, err2 := Open(p2, false)
	require.NoError(t, err2)
	defer b2.Close()

	require.Equal(t, b1.GetProbability([]rune("alpha")), b2.GetProbability([]rune("alpha")))

	raw1, err := os.ReadFile(p1)
	require.NoError(t, err)
	raw2, err := os.ReadFile(p2)
	require.NoError(t, err)
	require.Equal(t, raw1, raw2)
}

func TestGCStabilityAfterFlushWithGC(t *testing.T) {
	d := New(5, "en_US")
	words := []string{"a", "an", "and", "ant", "bat", "cat"}
	for _, w := range words {
		d.AddUnigramWord([]rune(w), 1, UnigramFlags{})
	}
	path := filepath.Join(t.TempDir(), "dict.wdct")
	require.True(t, d.FlushWithGC(path))

	seen := map[string]bool{}
	token := dictconst.IterationStartToken
	for {
		word, next := d.GetNextWordAndNextToken(token)
		if word == nil {
			break
		}
		seen[string(word)] = true
		if next == 0 {
			break
		}
		token = next
	}
	require.Equal(t, len(words), len(seen))
	d.Close()
}

func TestMigratePreservesWordsAndBigrams(t *testing.T) {
	d := New(4, "en_US")
	defer d.Close()
	d.AddUnigramWord([]rune("good"), 100, UnigramFlags{})
	d.AddUnigramWord([]rune("morning"), 80, UnigramFlags{})
	d.AddBigramWords([]rune("good"), []rune("morning"), 180)

	migrated := d.Migrate(5, "en_US")
	require.NotNil(t, migrated)
	defer migrated.Close()

	require.Equal(t, uint16(5), migrated.header.FormatVersion)
	require.Equal(t, 100, migrated.GetProbability([]rune("good")))
	require.Equal(t, 180, migrated.GetBigramProbability([]rune("good"), []rune("morning")))
	require.False(t, migrated.IsCorrupted())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wdct")
	d := New(4, "en_US")
	defer d.Close()
	d.AddUnigramWord([]rune("x"), 1, UnigramFlags{})
	require.True(t, d.Flush(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// corrupt a byte well inside the body blob
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	reopened, err := Open(path, false)
	require.NoError(t, err)
	defer reopened.Close()
	require.True(t, reopened.IsCorrupted())
	require.Equal(t, dictconst.NotAProbability, reopened.GetProbability([]rune("x")))
}

func TestNeedsToRunGCFalseWhenEmpty(t *testing.T) {
	d := New(4, "en_US")
	defer d.Close()
	require.False(t, d.NeedsToRunGC(false))
	require.False(t, d.NeedsToRunGC(true))
}

func TestGetPropertyQueries(t *testing.T) {
	d := New(5, "en_US")
	defer d.Close()
	d.AddUnigramWord([]rune("hi"), 1, UnigramFlags{})

	require.Equal(t, "1", d.GetProperty("NUM_WORDS", 0))
	require.Equal(t, "5", d.GetProperty("FORMAT_VERSION", 0))
	require.Equal(t, "0", d.GetProperty("NEEDS_GC", 0))
	require.Equal(t, "", d.GetProperty("BOGUS", 0))
}

func TestAddMultipleDictionaryEntries(t *testing.T) {
	d := New(4, "en_US")
	defer d.Close()

	entries := []DictionaryEntry{
		{Word1: []rune("good"), UnigramProbability: 100},
		{Word1: []rune("morning"), UnigramProbability: 80},
		{Word0: []rune("good"), Word1: []rune("morning"), UnigramProbability: dictconst.NotAProbability, HasBigram: true, BigramProbability: 180},
	}
	next := d.AddMultipleDictionaryEntries(entries, 0)
	require.Equal(t, len(entries), next)
	require.Equal(t, 180, d.GetBigramProbability([]rune("good"), []rune("morning")))
}
