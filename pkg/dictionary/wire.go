package dictionary

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordict/pkg/bigram"
	"github.com/bastiangx/wordict/pkg/codec"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/triemap"
	"github.com/bastiangx/wordict/pkg/wordstore"
)

// wordRecord is one word-store terminal as persisted in the body blob:
// its codepoints and full UnigramProperty. Word is stored as UTF-8
// bytes (pkg/codec.CodepointsToUTF8) rather than a raw []rune array,
// since msgpack would otherwise encode each codepoint as its own
// 4-byte element. wordIndex (its position in the enclosing
// bodyDoc.Words slice) is how bigramRecord references it — terminal
// positions themselves are internal and never serialised (spec.md §9:
// "do not leak terminal positions across a GC boundary").
type wordRecord struct {
	Word    []byte
	Unigram wordstore.UnigramProperty
}

// bigramRecord is one outgoing bigram edge, referencing its endpoints
// by index into bodyDoc.Words.
type bigramRecord struct {
	SourceIndex int
	TargetIndex int
	Bigram      bigram.Property
}

// bodyDoc is the whole dictionary body, msgpack-encoded: the format
// version's "structure policy" (spec.md §6) this implementation
// chooses, in place of AOSP's exact byte-for-byte PtNode layout, which
// spec.md leaves format-version-specific and does not pin down at the
// byte level.
type bodyDoc struct {
	Words   []wordRecord
	Bigrams []bigramRecord
}

// encodeBody walks words/bigrams in traversal order and renders them
// as a bodyDoc, then msgpack-encodes it. It is a free function (not a
// *Facade method) so FlushWithGC can encode a freshly-compacted store
// before swapping it into the live handle.
//
// Word order follows the word store's own pre-order traversal
// (deterministic per spec.md §3), but bigram edges are discovered via
// bigrams.Properties, which returns a map — so bigramRecords are
// sorted by (SourceIndex, TargetIndex) before marshaling. Without that
// sort, map iteration order would make two FlushWithGC calls to
// different paths produce non-byte-identical output, violating spec.md
// §8's idempotence invariant.
func encodeBody(words *wordstore.Store, bigrams *bigram.Store) ([]byte, error) {
	doc := bodyDoc{}
	indexOf := make(map[int]int)
	order := make([]int, 0)

	token := dictconst.IterationStartToken
	for {
		word, next := words.GetNextWordAndNextToken(token)
		if word == nil {
			break
		}
		pos := words.GetTerminalPtNodePositionOfWord(word, false)
		wp, _ := words.GetWordProperty(word)
		indexOf[pos] = len(doc.Words)
		order = append(order, pos)
		doc.Words = append(doc.Words, wordRecord{Word: codec.CodepointsToUTF8(wp.Codepoints), Unigram: wp.Unigram})
		if next == 0 {
			break
		}
		token = next
	}

	for _, pos := range order {
		idx := indexOf[pos]
		props := bigrams.Properties(words, pos)
		for targetPos, prop := range props {
			targetIdx, ok := indexOf[targetPos]
			if !ok {
				continue
			}
			doc.Bigrams = append(doc.Bigrams, bigramRecord{
				SourceIndex: idx,
				TargetIndex: targetIdx,
				Bigram:      prop,
			})
		}
	}

	sort.Slice(doc.Bigrams, func(i, j int) bool {
		if doc.Bigrams[i].SourceIndex != doc.Bigrams[j].SourceIndex {
			return doc.Bigrams[i].SourceIndex < doc.Bigrams[j].SourceIndex
		}
		return doc.Bigrams[i].TargetIndex < doc.Bigrams[j].TargetIndex
	})

	out, err := msgpack.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "dictionary: encode body")
	}
	return out, nil
}

// decodeBody parses blob into a fresh trie, word store and bigram
// store. Any insertion failure indicates a corrupted body (spec.md §6
// isCorrupted).
func decodeBody(blob []byte) (*triemap.TrieMap, *wordstore.Store, *bigram.Store, error) {
	var doc bodyDoc
	if err := msgpack.Unmarshal(blob, &doc); err != nil {
		return nil, nil, nil, errors.Wrap(err, "dictionary: decode body")
	}

	trie := triemap.New()
	words := wordstore.New(trie)
	bigrams := bigram.New(trie)

	positions := make([]int, len(doc.Words))
	for i, wr := range doc.Words {
		if len(wr.Word) == 0 {
			return nil, nil, nil, errors.New("dictionary: corrupted body, zero-length word record")
		}
		word := codec.UTF8ToCodepoints(wr.Word)
		if !words.AddUnigramWord(word, wr.Unigram) {
			return nil, nil, nil, errors.New("dictionary: corrupted body, word re-insertion failed")
		}
		positions[i] = words.GetTerminalPtNodePositionOfWord(word, false)
	}

	for _, br := range doc.Bigrams {
		if br.SourceIndex < 0 || br.SourceIndex >= len(positions) ||
			br.TargetIndex < 0 || br.TargetIndex >= len(positions) {
			return nil, nil, nil, errors.New("dictionary: corrupted body, bigram index out of range")
		}
		if !bigrams.AddBigramWords(words, positions[br.SourceIndex], positions[br.TargetIndex], br.Bigram) {
			return nil, nil, nil, errors.New("dictionary: corrupted body, bigram re-insertion failed")
		}
	}

	return trie, words, bigrams, nil
}
