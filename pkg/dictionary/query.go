package dictionary

import (
	"context"
	"strconv"

	"github.com/bastiangx/wordict/pkg/bigram"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/format"
	"github.com/bastiangx/wordict/pkg/probability"
	"github.com/bastiangx/wordict/pkg/suggest"
	"github.com/bastiangx/wordict/pkg/wordstore"
)

// GetProbability returns word's unigram probability, or
// dictconst.NotAProbability on miss or on a corrupted handle (spec.md
// §4.4, §7).
func (f *Facade) GetProbability(word []rune) int {
	advanceClock()
	if f.corrupted {
		return dictconst.NotAProbability
	}
	pos := f.words.GetTerminalPtNodePositionOfWord(word, false)
	if pos == dictconst.NotADictPos {
		return dictconst.NotAProbability
	}
	return f.words.GetUnigramProbabilityOfPtNode(pos)
}

// GetBigramProbability returns the combined-free, raw bigram
// probability of w0->w1, or dictconst.NotAProbability on miss (spec.md
// §4.4).
func (f *Facade) GetBigramProbability(w0, w1 []rune) int {
	advanceClock()
	if f.corrupted {
		return dictconst.NotAProbability
	}
	src := f.words.GetTerminalPtNodePositionOfWord(w0, false)
	dst := f.words.GetTerminalPtNodePositionOfWord(w1, false)
	if src == dictconst.NotADictPos || dst == dictconst.NotADictPos {
		return dictconst.NotAProbability
	}
	return f.bigrams.GetBigramProbability(f.words, src, dst)
}

// GetWordProperty returns word's full record — codepoints, unigram
// statistics, and its bigram set composed in from the bigram store
// (spec.md §3 WordProperty; §4.2 notes the word store alone excludes
// bigrams, so composition happens here, the only layer that knows
// about both stores).
func (f *Facade) GetWordProperty(word []rune) (WordProperty, bool) {
	advanceClock()
	if f.corrupted {
		return WordProperty{}, false
	}
	wp, ok := f.words.GetWordProperty(word)
	if !ok {
		return WordProperty{}, false
	}
	pos := f.words.GetTerminalPtNodePositionOfWord(word, false)
	props := f.bigrams.Properties(f.words, pos)
	bigrams := make([]BigramEntry, 0, len(props))
	for targetPos, prop := range props {
		target := f.words.CodepointsAt(targetPos)
		bigrams = append(bigrams, BigramEntry{TargetWord: target, Bigram: prop})
	}
	return WordProperty{
		Codepoints: wp.Codepoints,
		Unigram:    wp.Unigram,
		Bigrams:    bigrams,
	}, true
}

// WordProperty is the façade-level export of a terminal: codepoints,
// unigram record, and bigram set (spec.md §3; wordstore.WordProperty
// is the narrower word-store-only record this composes from).
type WordProperty struct {
	Codepoints []rune
	Unigram    wordstore.UnigramProperty
	Bigrams    []BigramEntry
}

// BigramEntry is one outgoing edge in a WordProperty's bigram list.
type BigramEntry struct {
	TargetWord []rune
	Bigram     bigram.Property
}

// GetNextWordAndNextToken enumerates terminals in pre-order (spec.md
// §3, §4.2). Token dictconst.IterationStartToken starts iteration.
func (f *Facade) GetNextWordAndNextToken(token int) ([]rune, int) {
	advanceClock()
	if f.corrupted {
		return nil, 0
	}
	return f.words.GetNextWordAndNextToken(token)
}

// GetProperty answers the debug/diagnostic query surface (spec.md
// §4.3 supplement E.3): "NUM_WORDS", "FORMAT_VERSION", "LOCALE",
// "NEEDS_GC", truncated to maxLen bytes. Unknown queries return "".
func (f *Facade) GetProperty(query string, maxLen int) string {
	advanceClock()
	var result string
	switch query {
	case "NUM_WORDS":
		if !f.corrupted {
			result = strconv.Itoa(f.words.WordCount())
		}
	case "FORMAT_VERSION":
		if f.header != nil {
			result = strconv.Itoa(int(f.header.FormatVersion))
		}
	case "LOCALE":
		if f.header != nil {
			result = f.header.Attributes[format.AttrDictionary]
		}
	case "NEEDS_GC":
		if f.NeedsToRunGC(false) {
			result = "1"
		} else {
			result = "0"
		}
	default:
		return ""
	}
	if maxLen > 0 && len(result) > maxLen {
		result = result[:maxLen]
	}
	return result
}

// GetSuggestions delegates to the façade's suggestion engine, passing
// along bigram context from prevWord when present (spec.md §4.4:
// "delegates to the appropriate suggestion engine ... after refreshing
// ... the process-wide time reference"). The gesture-vs-typing engine
// choice itself lives in the caller-supplied SuggestOptions-equivalent:
// callers that need gesture decoding install it via SetEngine.
func (f *Facade) GetSuggestions(ctx context.Context, prevWord, input []rune, limit int) ([]suggest.Suggestion, error) {
	advanceClock()
	if f.corrupted {
		return nil, nil
	}
	if f.prefixEngine != nil {
		if len(prevWord) > 0 {
			srcPos := f.words.GetTerminalPtNodePositionOfWord(prevWord, false)
			f.prefixEngine.SetBigramContext(func(candidate string) int {
				targetPos := f.words.GetTerminalPtNodePositionOfWord([]rune(candidate), false)
				if targetPos == dictconst.NotADictPos {
					return dictconst.NotAProbability
				}
				return f.bigrams.GetBigramProbability(f.words, srcPos, targetPos)
			})
		} else {
			f.prefixEngine.SetBigramContext(nil)
		}
	}
	return f.engine.Suggest(ctx, string(input), limit)
}

// GetPredictions expands bigram-only predictions from prevWord
// (spec.md §4.4 "bigram-only expansion when there is a previous word
// but no current input"), combining each with probability.Combine.
func (f *Facade) GetPredictions(prevWord []rune, limit int) []suggest.Suggestion {
	advanceClock()
	if f.corrupted {
		return nil
	}
	srcPos := f.words.GetTerminalPtNodePositionOfWord(prevWord, false)
	if srcPos == dictconst.NotADictPos {
		return nil
	}
	preds := f.bigrams.GetPredictions(f.words, srcPos, limit)
	out := make([]suggest.Suggestion, 0, len(preds))
	for _, p := range preds {
		targetPos := f.words.GetTerminalPtNodePositionOfWord(p.Word, false)
		unigram := f.words.GetUnigramProbabilityOfPtNode(targetPos)
		out = append(out, suggest.Suggestion{
			Word:        string(p.Word),
			Probability: probability.Combine(unigram, p.Probability),
		})
	}
	return out
}
