// Package bigram implements the per-source-terminal bigram edge store
// of spec.md §4.3: for each source word's terminal, a set of target
// terminals each carrying its own BigramProperty, keyed through
// pkg/triemap so that a source's bigram set is addressed by the opaque
// "bigrams" child level attached to its word-store node
// (wordstore.Store.BigramGroup/SetBigramGroup).
//
// The store never resolves words itself: word->position and
// position->word translation is the word store's job, so bigram
// always takes a *wordstore.Store alongside the positions it operates
// on, matching the teacher's layering of keeping each trie-like
// collaborator blind to the others' internals.
package bigram

import (
	"github.com/bastiangx/wordict/internal/logger"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/triemap"
	"github.com/bastiangx/wordict/pkg/wordstore"
)

var log = logger.New("bigram")

// Property is the per-edge bigram record (spec.md §3 BigramProperty):
// probability plus historical counters analogous to UnigramProperty.
type Property struct {
	Probability int
	Level       uint8
	Count       uint16
	Timestamp   uint32
}

// Store owns the shared TrieMap plus a side table of Property records:
// every bigram set lives as a child level hung off its source
// terminal's wordstore.ptNode, but the level's payload is a handle
// (an index into props) rather than a packed Property, since a packed
// [probability:8|level:8|count:16|timestamp:32] record needs 64 bits
// and triemap.MaxValue caps a payload at 36 — the process clock alone
// (Timestamp, 32 bits) blows that budget well before a dictionary sees
// real use. Indirecting through a small integer handle keeps every
// payload comfortably under MaxValue regardless of field widths.
type Store struct {
	trie  *triemap.TrieMap
	props []Property
}

// New creates a bigram store bound to trie, the same TrieMap instance
// the word store allocates children groups from (spec.md §4.1: "the
// general-purpose index used by the word store and by the bigram
// store").
func New(trie *triemap.TrieMap) *Store {
	return &Store{trie: trie}
}

// AddBigramWords resolves sourcePos's bigram group (allocating one on
// first use) and upserts an edge to targetPos (spec.md §4.3
// addBigramWords). Returns false if sourcePos is not a live terminal
// or if the underlying trie rejects the write.
func (s *Store) AddBigramWords(words *wordstore.Store, sourcePos, targetPos int, prop Property) bool {
	if words.GetUnigramProbabilityOfPtNode(sourcePos) == dictconst.NotAProbability {
		log.Debugf("addBigramWords: source pos %d is not a live terminal", sourcePos)
		return false
	}
	group := words.BigramGroup(sourcePos)
	if group == triemap.InvalidIndex {
		group = s.trie.AllocateLevel()
		words.SetBigramGroup(sourcePos, group)
	}

	if existing := s.trie.Get(uint32(targetPos), group); existing.IsValid {
		s.props[int(existing.Value)] = prop
		return true
	}

	handle := len(s.props)
	s.props = append(s.props, prop)
	if !s.trie.Put(uint32(targetPos), uint64(handle), group) {
		log.Warnf("addBigramWords: trie rejected handle %d for source pos %d", handle, sourcePos)
		s.props = s.props[:handle]
		return false
	}
	return true
}

// RemoveBigramWords removes the edge sourcePos->targetPos. Silently
// succeeds if absent (spec.md §4.3).
func (s *Store) RemoveBigramWords(words *wordstore.Store, sourcePos, targetPos int) {
	group := words.BigramGroup(sourcePos)
	if group == triemap.InvalidIndex {
		return
	}
	s.trie.Delete(uint32(targetPos), group)
}

// GetBigramProbability returns the probability of sourcePos->targetPos,
// or dictconst.NotAProbability on absence.
func (s *Store) GetBigramProbability(words *wordstore.Store, sourcePos, targetPos int) int {
	group := words.BigramGroup(sourcePos)
	if group == triemap.InvalidIndex {
		return dictconst.NotAProbability
	}
	node := s.trie.Get(uint32(targetPos), group)
	if !node.IsValid {
		return dictconst.NotAProbability
	}
	return s.props[int(node.Value)].Probability
}

// Prediction is one (word, probability) pair pushed by GetPredictions.
type Prediction struct {
	Word        []rune
	Probability int
}

// GetPredictions iterates sourcePos's bigram set, materialises each
// target word via words, and appends up to length predictions (spec.md
// §4.3 getPredictions), in an unspecified but stable-per-call order.
func (s *Store) GetPredictions(words *wordstore.Store, sourcePos int, length int) []Prediction {
	group := words.BigramGroup(sourcePos)
	if group == triemap.InvalidIndex {
		return nil
	}
	entries := s.trie.Entries(group)
	out := make([]Prediction, 0, len(entries))
	for _, e := range entries {
		if length > 0 && len(out) >= length {
			break
		}
		targetPos := int(e.Key)
		word := words.CodepointsAt(targetPos)
		if word == nil {
			continue
		}
		out = append(out, Prediction{
			Word:        word,
			Probability: s.props[int(e.Value)].Probability,
		})
	}
	return out
}

// Properties returns every (targetPos, Property) pair in sourcePos's
// bigram set, for pkg/dictionary's migration and getWordProperty
// composition paths.
func (s *Store) Properties(words *wordstore.Store, sourcePos int) map[int]Property {
	group := words.BigramGroup(sourcePos)
	if group == triemap.InvalidIndex {
		return nil
	}
	entries := s.trie.Entries(group)
	out := make(map[int]Property, len(entries))
	for _, e := range entries {
		out[int(e.Key)] = s.props[int(e.Value)]
	}
	return out
}

// Count returns the number of bigram edges attached to sourcePos.
func (s *Store) Count(words *wordstore.Store, sourcePos int) int {
	group := words.BigramGroup(sourcePos)
	if group == triemap.InvalidIndex {
		return 0
	}
	return s.trie.Count(group)
}
