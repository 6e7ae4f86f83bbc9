package dictionary

import (
	"github.com/bastiangx/wordict/pkg/bigram"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/wordstore"
)

// AddUnigramWord inserts or updates word (spec.md §4.4, §4.2). Returns
// false if the handle is not updatable, is corrupted, or word is
// rejected by the word store (empty or over dictconst.MaxWordLength).
func (f *Facade) AddUnigramWord(word []rune, probability int, flags UnigramFlags) bool {
	if !f.updatable || f.corrupted {
		return false
	}
	now := advanceClock()
	ok := f.words.AddUnigramWord(word, wordstore.UnigramProperty{
		Probability:   probability,
		Timestamp:     now,
		IsNotAWord:    flags.IsNotAWord,
		IsBlacklisted: flags.IsBlacklisted,
	})
	if ok {
		f.reloadEngine()
	}
	return ok
}

// UnigramFlags carries the two boolean flags spec.md §3's
// UnigramProperty names alongside probability and counters.
type UnigramFlags struct {
	IsNotAWord    bool
	IsBlacklisted bool
}

// AddBigramWords adds or updates the edge w0->w1 with the given
// probability (spec.md §4.4, §4.3 addBigramWords). Returns false if
// either word is unknown, the handle isn't updatable, or it's
// corrupted.
func (f *Facade) AddBigramWords(w0, w1 []rune, probability int) bool {
	if !f.updatable || f.corrupted {
		return false
	}
	now := advanceClock()
	src := f.words.GetTerminalPtNodePositionOfWord(w0, false)
	dst := f.words.GetTerminalPtNodePositionOfWord(w1, false)
	if src == dictconst.NotADictPos || dst == dictconst.NotADictPos {
		return false
	}
	return f.bigrams.AddBigramWords(f.words, src, dst, bigram.Property{
		Probability: probability,
		Timestamp:   now,
	})
}

// RemoveBigramWords removes the edge w0->w1, silently succeeding if
// absent or if either word is unknown (spec.md §4.3
// removeBigramWords).
func (f *Facade) RemoveBigramWords(w0, w1 []rune) {
	if !f.updatable || f.corrupted {
		return
	}
	advanceClock()
	src := f.words.GetTerminalPtNodePositionOfWord(w0, false)
	dst := f.words.GetTerminalPtNodePositionOfWord(w1, false)
	if src == dictconst.NotADictPos || dst == dictconst.NotADictPos {
		return
	}
	f.bigrams.RemoveBigramWords(f.words, src, dst)
}

// DictionaryEntry is one batched mutation as consumed by
// AddMultipleDictionaryEntries and by cmd/wordictctl's bulk import
// path — msgpack-encoded on the wire (spec.md §6 "Batched mutation").
// Word0 is the optional bigram source; Word1 is required. A
// UnigramProbability of dictconst.NotAProbability means "leave the
// unigram alone, this entry only adds a bigram edge"; the zero value 0
// inserts Word1 with probability 0.
type DictionaryEntry struct {
	Word0               []rune
	Word1               []rune
	UnigramProbability  int
	HasBigram           bool
	BigramProbability   int
	ShortcutTarget      []rune
	ShortcutProbability int
	IsNotAWord          bool
	IsBlacklisted       bool
}

// AddMultipleDictionaryEntries processes entries from startIndex
// onward, stopping early (and returning the index of the next
// unprocessed entry) if NeedsToRunGC(true) becomes true partway
// through, so the caller can FlushWithGC and resume (spec.md §6, §9
// open question: this implementation does not itself guarantee prior
// entries are durably persisted before returning early — callers
// wanting that must FlushWithGC before resuming). A return equal to
// len(entries) means every entry was processed.
func (f *Facade) AddMultipleDictionaryEntries(entries []DictionaryEntry, startIndex int) int {
	if !f.updatable || f.corrupted {
		return startIndex
	}
	for i := startIndex; i < len(entries); i++ {
		if f.NeedsToRunGC(true) {
			return i
		}
		e := entries[i]
		now := advanceClock()

		if e.UnigramProbability != dictconst.NotAProbability {
			f.words.AddUnigramWord(e.Word1, wordstore.UnigramProperty{
				Probability:   e.UnigramProbability,
				Timestamp:     now,
				IsNotAWord:    e.IsNotAWord,
				IsBlacklisted: e.IsBlacklisted,
			})
		}

		if e.ShortcutTarget != nil {
			if pos := f.words.GetTerminalPtNodePositionOfWord(e.Word1, false); pos != dictconst.NotADictPos {
				wp, _ := f.words.GetWordProperty(e.Word1)
				wp.Unigram.Shortcuts = append(wp.Unigram.Shortcuts, wordstore.ShortcutProperty{
					TargetWord:  e.ShortcutTarget,
					Probability: e.ShortcutProbability,
				})
				f.words.AddUnigramWord(e.Word1, wp.Unigram)
			}
		}

		if e.HasBigram && len(e.Word0) > 0 {
			src := f.words.GetTerminalPtNodePositionOfWord(e.Word0, false)
			dst := f.words.GetTerminalPtNodePositionOfWord(e.Word1, false)
			if src != dictconst.NotADictPos && dst != dictconst.NotADictPos {
				f.bigrams.AddBigramWords(f.words, src, dst, bigram.Property{
					Probability: e.BigramProbability,
					Timestamp:   now,
				})
			}
		}
	}
	f.reloadEngine()
	return len(entries)
}
