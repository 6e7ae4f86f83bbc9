// Package wordstore implements the mutable patricia trie of spec.md
// §4.2: the node graph of words, with edges labelled by codepoint runs,
// terminals carrying a UnigramProperty, and children addressed through
// pkg/triemap (the generic bitmap-indexed index substrate named in
// spec.md §4.1/§9).
package wordstore

import (
	"unicode"

	"github.com/bastiangx/wordict/internal/logger"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/triemap"
)

var log = logger.New("wordstore")

// Store is the mutable word graph. Position 0 is always the root
// node (empty edge label, never terminal).
type Store struct {
	trie  *triemap.TrieMap
	nodes []ptNode

	order      []int            // cached pre-order terminal positions
	wordCache  map[int][]rune   // pos -> full word spelled by the path to it, valid alongside order
	orderDirty bool
}

// New creates an empty word store with just its root node, indexed
// through trie — the same TrieMap instance the caller (pkg/dictionary)
// also hands to pkg/bigram, so both stores share one index substrate
// per spec.md §4.1.
func New(trie *triemap.TrieMap) *Store {
	s := &Store{
		trie: trie,
	}
	s.nodes = append(s.nodes, ptNode{childGroup: triemap.InvalidIndex, bigramGroup: triemap.InvalidIndex})
	return s
}

const rootPos = 0

// NodeCount returns the number of allocated nodes (including internal
// split nodes that carry no terminal), used by pkg/dictionary's GC
// fragmentation probe to judge node-graph bloat against live word
// count.
func (s *Store) NodeCount() int {
	return len(s.nodes)
}

// BigramGroup returns the opaque bigram-store handle attached to the
// terminal at pos, or triemap.InvalidIndex if none has been attached
// yet. Used by pkg/bigram, which owns the handle's meaning.
func (s *Store) BigramGroup(pos int) int {
	if pos < 0 || pos >= len(s.nodes) {
		return triemap.InvalidIndex
	}
	return s.nodes[pos].bigramGroup
}

// SetBigramGroup attaches a bigram-store handle to the terminal at
// pos.
func (s *Store) SetBigramGroup(pos, group int) {
	if pos < 0 || pos >= len(s.nodes) {
		return
	}
	s.nodes[pos].bigramGroup = group
}

// GetTerminalPtNodePositionOfWord looks up word, returning its
// terminal position or dictconst.NotADictPos. When forceLowerCase is
// set, a case-insensitive match is accepted if no exact match exists
// (spec.md §4.2).
func (s *Store) GetTerminalPtNodePositionOfWord(word []rune, forceLowerCase bool) int {
	if pos, ok := s.find(word, false); ok {
		return pos
	}
	if forceLowerCase {
		if pos, ok := s.find(word, true); ok {
			return pos
		}
	}
	return dictconst.NotADictPos
}

// find walks the trie matching word against edge labels. caseFold
// selects whether codepoint comparisons ignore case.
func (s *Store) find(word []rune, caseFold bool) (int, bool) {
	cur := rootPos
	pos := 0
	for pos < len(word) {
		node := &s.nodes[cur]
		if node.childGroup == triemap.InvalidIndex {
			return 0, false
		}
		childIdx, ok := s.lookupChild(node.childGroup, word[pos], caseFold)
		if !ok {
			return 0, false
		}
		child := &s.nodes[childIdx]
		common := commonPrefixLen(child.edgeLabel, word[pos:], caseFold)
		if common < len(child.edgeLabel) {
			return 0, false
		}
		pos += common
		cur = childIdx
	}
	if s.nodes[cur].isTerminal {
		return cur, true
	}
	return 0, false
}

// lookupChild finds the child edge starting with r under the children
// group childGroup, trying the exact key first and (if caseFold) the
// opposite-case key second.
func (s *Store) lookupChild(childGroup int, r rune, caseFold bool) (int, bool) {
	if node := s.trie.Get(uint32(r), childGroup); node.IsValid {
		return int(node.Value), true
	}
	if caseFold {
		if alt := toggleCase(r); alt != r {
			if node := s.trie.Get(uint32(alt), childGroup); node.IsValid {
				return int(node.Value), true
			}
		}
	}
	return 0, false
}

// AddUnigramWord inserts or updates word's UnigramProperty, splitting
// edges as needed to preserve all existing terminals (spec.md §4.2).
func (s *Store) AddUnigramWord(word []rune, prop UnigramProperty) bool {
	if len(word) == 0 || len(word) > dictconst.MaxWordLength {
		log.Debugf("rejecting word of length %d (max %d)", len(word), dictconst.MaxWordLength)
		return false
	}
	s.orderDirty = true

	cur := rootPos
	pos := 0
	for {
		node := &s.nodes[cur]
		if pos == len(word) {
			s.terminate(cur, prop)
			return true
		}
		if node.childGroup == triemap.InvalidIndex {
			node.childGroup = s.trie.AllocateLevel()
		}
		lookup := s.trie.Get(uint32(word[pos]), node.childGroup)
		if !lookup.IsValid {
			newIdx := s.newTerminalNode(word[pos:], prop)
			s.trie.Put(uint32(word[pos]), uint64(newIdx), node.childGroup)
			return true
		}

		childIdx := int(lookup.Value)
		child := &s.nodes[childIdx]
		common := commonPrefixLen(child.edgeLabel, word[pos:], false)

		switch {
		case common == len(child.edgeLabel) && common == len(word)-pos:
			s.terminate(childIdx, prop)
			return true
		case common == len(child.edgeLabel):
			cur = childIdx
			pos += common
			continue
		default:
			s.splitEdge(node.childGroup, word[pos], childIdx, common)
			// re-resolve: after the split, the edge starting at
			// word[pos] now leads to the new internal split node.
			continue
		}
	}
}

// terminate marks pos as a terminal and merges prop into its existing
// UnigramProperty (or sets it, if pos was not previously a terminal).
func (s *Store) terminate(pos int, prop UnigramProperty) {
	node := &s.nodes[pos]
	if !node.isTerminal {
		node.unigram = prop
	} else {
		node.unigram = mergeUnigram(node.unigram, prop)
	}
	node.isTerminal = true
}

// splitEdge breaks the edge under childGroup keyed by firstRune at
// commonLen codepoints: a new internal node takes the shared prefix,
// the existing child is re-parented under it with the remaining
// suffix of its label.
func (s *Store) splitEdge(childGroup int, firstRune rune, childIdx, commonLen int) {
	child := &s.nodes[childIdx]
	sharedLabel := append([]rune(nil), child.edgeLabel[:commonLen]...)
	suffixLabel := append([]rune(nil), child.edgeLabel[commonLen:]...)

	splitIdx := len(s.nodes)
	s.nodes = append(s.nodes, ptNode{
		edgeLabel:   sharedLabel,
		childGroup:  triemap.InvalidIndex,
		bigramGroup: triemap.InvalidIndex,
	})

	// child may point into the array the append above replaced, so the
	// new label is written through s.nodes.
	s.nodes[childIdx].edgeLabel = suffixLabel
	s.trie.Put(uint32(firstRune), uint64(splitIdx), childGroup)

	splitChildGroup := s.trie.AllocateLevel()
	s.nodes[splitIdx].childGroup = splitChildGroup
	s.trie.Put(uint32(suffixLabel[0]), uint64(childIdx), splitChildGroup)
}

// newTerminalNode allocates a new terminal node with the given edge
// label and unigram property, returning its position.
func (s *Store) newTerminalNode(label []rune, prop UnigramProperty) int {
	idx := len(s.nodes)
	s.nodes = append(s.nodes, ptNode{
		edgeLabel:   append([]rune(nil), label...),
		isTerminal:  true,
		unigram:     prop,
		childGroup:  triemap.InvalidIndex,
		bigramGroup: triemap.InvalidIndex,
	})
	return idx
}

// GetUnigramProbabilityOfPtNode returns the probability stored at pos,
// or dictconst.NotAProbability if pos is not a terminal.
func (s *Store) GetUnigramProbabilityOfPtNode(pos int) int {
	if pos < 0 || pos >= len(s.nodes) {
		return dictconst.NotAProbability
	}
	node := &s.nodes[pos]
	if !node.isTerminal {
		return dictconst.NotAProbability
	}
	return node.unigram.Probability
}

// GetWordProperty returns a dense copy of word's terminal record.
func (s *Store) GetWordProperty(word []rune) (WordProperty, bool) {
	pos := s.GetTerminalPtNodePositionOfWord(word, false)
	if pos == dictconst.NotADictPos {
		return WordProperty{}, false
	}
	return WordProperty{
		Codepoints: append([]rune(nil), word...),
		Unigram:    s.nodes[pos].unigram.Clone(),
	}, true
}

// CodepointsAt reconstructs the full word spelled out by the path to
// the terminal at pos, for use by traversal and by the bigram store
// when materialising a target word from its terminal position.
func (s *Store) CodepointsAt(pos int) []rune {
	if pos < 0 || pos >= len(s.nodes) || !s.nodes[pos].isTerminal {
		return nil
	}
	// Terminal nodes don't track a parent pointer (the trie is
	// indexed top-down only), so reconstruction walks the cached
	// pre-order table, which stores full codepoints alongside each
	// terminal position.
	s.ensureOrder()
	for _, p := range s.order {
		if p == pos {
			return append([]rune(nil), s.wordAt(p)...)
		}
	}
	return nil
}

// GetNextWordAndNextToken enumerates terminals in a deterministic
// pre-order. Token 0 starts iteration; the returned token is 0 when
// there is nothing further to enumerate (spec.md §3).
func (s *Store) GetNextWordAndNextToken(token int) ([]rune, int) {
	s.ensureOrder()
	if token < 0 || token >= len(s.order) {
		return nil, 0
	}
	pos := s.order[token]
	word := append([]rune(nil), s.wordAt(pos)...)
	next := token + 1
	if next >= len(s.order) {
		return word, 0
	}
	return word, next
}

// WordCount returns the number of live terminals.
func (s *Store) WordCount() int {
	s.ensureOrder()
	return len(s.order)
}

func (s *Store) ensureOrder() {
	if !s.orderDirty && s.order != nil {
		return
	}
	var positions []int
	cache := make(map[int][]rune)
	s.collectPositions(rootPos, nil, &positions, &cache)
	s.order = positions
	s.wordCache = cache
	s.orderDirty = false
}

func (s *Store) collectPositions(cur int, prefix []rune, out *[]int, cache *map[int][]rune) {
	node := &s.nodes[cur]
	label := append(append([]rune(nil), prefix...), node.edgeLabel...)
	if node.isTerminal {
		*out = append(*out, cur)
		(*cache)[cur] = label
	}
	if node.childGroup == triemap.InvalidIndex {
		return
	}
	for _, e := range s.trie.Entries(node.childGroup) {
		s.collectPositions(int(e.Value), label, out, cache)
	}
}

func (s *Store) wordAt(pos int) []rune {
	return s.wordCache[pos]
}

// mergeUnigram implements the update policy for re-inserting an
// already-present word: the probability is replaced by the newer
// value, counters accumulate, and shortcut lists merge keeping the
// higher probability per target (spec.md §4.2, §9 "historical counters
// ... format-specific", resolved here as: replace probability, sum
// counts, keep the higher level and newest timestamp).
func mergeUnigram(old, next UnigramProperty) UnigramProperty {
	merged := next
	merged.Count = saturatingAdd16(old.Count, next.Count)
	if old.Level > merged.Level {
		merged.Level = old.Level
	}
	merged.Shortcuts = mergeShortcuts(old.Shortcuts, next.Shortcuts)
	return merged
}

func mergeShortcuts(a, b []ShortcutProperty) []ShortcutProperty {
	byTarget := make(map[string]ShortcutProperty, len(a)+len(b))
	order := make([]string, 0, len(a)+len(b))
	add := func(s ShortcutProperty) {
		key := string(s.TargetWord)
		if existing, ok := byTarget[key]; !ok {
			byTarget[key] = s
			order = append(order, key)
		} else if s.Probability > existing.Probability {
			byTarget[key] = s
		}
	}
	for _, s := range a {
		add(s)
	}
	for _, s := range b {
		add(s)
	}
	out := make([]ShortcutProperty, 0, len(order))
	for _, key := range order {
		out = append(out, byTarget[key])
	}
	return out
}

func saturatingAdd16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	if sum > 0xFFFF {
		return 0xFFFF
	}
	return uint16(sum)
}

func commonPrefixLen(a, b []rune, caseFold bool) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if caseFold {
			if unicode.ToLower(a[i]) != unicode.ToLower(b[i]) {
				return i
			}
		} else if a[i] != b[i] {
			return i
		}
	}
	return n
}

func toggleCase(r rune) rune {
	if unicode.IsUpper(r) {
		return unicode.ToLower(r)
	}
	return unicode.ToUpper(r)
}
