package dictionary

import (
	"os"

	"github.com/pkg/errors"

	"github.com/bastiangx/wordict/pkg/bigram"
	"github.com/bastiangx/wordict/pkg/codec"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/triemap"
	"github.com/bastiangx/wordict/pkg/wordstore"
)

// Fragmentation thresholds driving NeedsToRunGC (spec.md §4.5). This
// implementation tracks node-graph bloat and index-level bloat instead
// of AOSP's byte-level tombstone count: wordstore never deletes nodes
// in place (spec.md §4.2 "removal of unigrams is not part of the
// public mutation surface"), so the fragmentation signal that matters
// here is internal split nodes and TrieMap levels accumulating faster
// than live vocabulary — the in-memory analogue of on-disk tombstones.
// See DESIGN.md for the full rationale.
const (
	nodeBloatThreshold        = 2.0
	nodeBloatThresholdStrict  = 1.5
	levelBloatThreshold       = 3.0
	levelBloatThresholdStrict = 2.0
)

// NeedsToRunGC reports whether the live store has fragmented enough to
// warrant FlushWithGC (spec.md §4.5). mindsBlockByGC selects the
// stricter threshold for callers that can tolerate a GC pause. The
// word store's root node and the TrieMap's root level exist in every
// store, even an empty one, so neither ratio counts them.
func (f *Facade) NeedsToRunGC(mindsBlockByGC bool) bool {
	if f.corrupted {
		return false
	}
	wordCount := f.words.WordCount()
	if wordCount == 0 {
		return false
	}
	nodeThreshold, levelThreshold := nodeBloatThreshold, levelBloatThreshold
	if mindsBlockByGC {
		nodeThreshold, levelThreshold = nodeBloatThresholdStrict, levelBloatThresholdStrict
	}
	nodeRatio := float64(f.words.NodeCount()-1) / float64(wordCount)
	levelRatio := float64(f.trie.LevelCount()-1) / float64(wordCount)
	return nodeRatio > nodeThreshold || levelRatio > levelThreshold
}

// Flush persists the current state to path in place (spec.md §4.5
// "fast path"): it writes whatever the live word/bigram stores
// currently hold, without compacting them first.
func (f *Facade) Flush(path string) bool {
	if !f.updatable || f.corrupted {
		return false
	}
	advanceClock()
	if err := f.writeTo(path, f.words, f.bigrams); err != nil {
		log.Warnf("flush %s: %v", path, err)
		return false
	}
	f.path = path
	return true
}

// FlushWithGC compacts the store (re-inserting every terminal and
// bigram in traversal order into a fresh word/bigram store, per
// spec.md §4.5) and persists the result to a sibling temp file before
// renaming it into place at path, for best-effort atomicity. Terminal
// positions and any outstanding iteration tokens are invalidated by
// this call (spec.md §5, §9).
func (f *Facade) FlushWithGC(path string) bool {
	if !f.updatable || f.corrupted {
		return false
	}
	advanceClock()

	trie, words, bigrams, ok := f.compact()
	if !ok {
		log.Warnf("flushWithGC %s: compaction failed", path)
		return false
	}
	if err := f.writeToAtomic(path, words, bigrams); err != nil {
		log.Warnf("flushWithGC %s: %v", path, err)
		return false
	}

	f.trie, f.words, f.bigrams = trie, words, bigrams
	f.path = path
	f.reloadEngine()
	return true
}

// compactInPlace rebuilds the handle's stores via compact() and swaps
// them in without touching disk — the in-memory half of FlushWithGC,
// reused by Migrate's intermediate compaction step.
func (f *Facade) compactInPlace() bool {
	trie, words, bigrams, ok := f.compact()
	if !ok {
		return false
	}
	f.trie, f.words, f.bigrams = trie, words, bigrams
	f.reloadEngine()
	return true
}

// compact rebuilds a fresh trie/word-store/bigram-store by re-inserting
// every live word and bigram edge in traversal order.
func (f *Facade) compact() (*triemap.TrieMap, *wordstore.Store, *bigram.Store, bool) {
	trie := triemap.New()
	words := wordstore.New(trie)
	bigrams := bigram.New(trie)

	type pending struct {
		sourceWord []rune
		targetWord []rune
		prop       bigram.Property
	}
	var edges []pending

	token := dictconst.IterationStartToken
	for {
		word, next := f.words.GetNextWordAndNextToken(token)
		if word == nil {
			break
		}
		wp, ok := f.words.GetWordProperty(word)
		if !ok {
			return nil, nil, nil, false
		}
		if !words.AddUnigramWord(word, wp.Unigram) {
			return nil, nil, nil, false
		}
		srcPos := f.words.GetTerminalPtNodePositionOfWord(word, false)
		for targetPos, prop := range f.bigrams.Properties(f.words, srcPos) {
			edges = append(edges, pending{
				sourceWord: append([]rune(nil), word...),
				targetWord: f.words.CodepointsAt(targetPos),
				prop:       prop,
			})
		}
		if next == 0 {
			break
		}
		token = next
	}

	for _, e := range edges {
		srcPos := words.GetTerminalPtNodePositionOfWord(e.sourceWord, false)
		dstPos := words.GetTerminalPtNodePositionOfWord(e.targetWord, false)
		if srcPos == dictconst.NotADictPos || dstPos == dictconst.NotADictPos {
			return nil, nil, nil, false
		}
		if !bigrams.AddBigramWords(words, srcPos, dstPos, e.prop) {
			return nil, nil, nil, false
		}
	}

	return trie, words, bigrams, true
}

// writeTo encodes header+body, stages it through the handle's Buffer,
// and writes it directly to path.
func (f *Facade) writeTo(path string, words *wordstore.Store, bigrams *bigram.Store) error {
	data, err := f.render(words, bigrams)
	if err != nil {
		return err
	}
	data, err = f.stageBody(data)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return errors.Wrap(err, "dictionary: create parent dir")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "dictionary: write file")
}

// writeToAtomic encodes header+body, writes it to a sibling temp file,
// and renames it into place at path (spec.md §6 "writes to a sibling
// path then renames").
func (f *Facade) writeToAtomic(path string, words *wordstore.Store, bigrams *bigram.Store) error {
	data, err := f.render(words, bigrams)
	if err != nil {
		return err
	}
	data, err = f.stageBody(data)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return errors.Wrap(err, "dictionary: create parent dir")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "dictionary: write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "dictionary: rename temp file")
	}
	return nil
}

// render serialises header + length-prefixed body into one byte slice.
// The body length is a pkg/codec varint rather than a fixed-width
// field, since most dictionaries' body length fits in one or two
// bytes and the prefix is read back the same way in Open.
func (f *Facade) render(words *wordstore.Store, bigrams *bigram.Store) ([]byte, error) {
	body, err := encodeBody(words, bigrams)
	if err != nil {
		return nil, err
	}
	headerBytes := f.header.Write()
	out := make([]byte, 0, len(headerBytes)+codec.MaxVarintBytes+len(body))
	out = append(out, headerBytes...)
	out = codec.PutUvarint(out, uint32(len(body)))
	out = append(out, body...)
	return out, nil
}

// Migrate is GC across a format-version boundary (spec.md §4.5): every
// word and bigram is re-inserted into a fresh, empty dictionary built
// at targetFormatVersion. On any insertion failure the source handle
// (f) is left untouched and migrate returns nil.
func (f *Facade) Migrate(targetFormatVersion uint16, locale string) *Facade {
	if f.corrupted {
		return nil
	}
	dst := New(targetFormatVersion, locale)

	type pending struct {
		sourceWord []rune
		targetWord []rune
		prop       bigram.Property
	}
	var edges []pending

	token := dictconst.IterationStartToken
	for {
		word, next := f.words.GetNextWordAndNextToken(token)
		if word == nil {
			break
		}
		wp, ok := f.words.GetWordProperty(word)
		if !ok {
			return nil
		}
		if !dst.words.AddUnigramWord(word, wp.Unigram) {
			return nil
		}
		if dst.NeedsToRunGC(false) {
			// Intermediate compaction (spec.md §4.5 "if fragmentation
			// accumulates in the new dictionary during migration, an
			// intermediate flushWithGC is taken"): the in-memory half
			// only, since dst has no target path of its own until the
			// caller flushes the migrated result.
			if !dst.compactInPlace() {
				return nil
			}
		}
		srcPos := f.words.GetTerminalPtNodePositionOfWord(word, false)
		for targetPos, prop := range f.bigrams.Properties(f.words, srcPos) {
			edges = append(edges, pending{
				sourceWord: append([]rune(nil), word...),
				targetWord: f.words.CodepointsAt(targetPos),
				prop:       prop,
			})
		}
		if next == 0 {
			break
		}
		token = next
	}

	for _, e := range edges {
		srcPos := dst.words.GetTerminalPtNodePositionOfWord(e.sourceWord, false)
		dstPos := dst.words.GetTerminalPtNodePositionOfWord(e.targetWord, false)
		if srcPos == dictconst.NotADictPos || dstPos == dictconst.NotADictPos {
			return nil
		}
		if !dst.bigrams.AddBigramWords(dst.words, srcPos, dstPos, e.prop) {
			return nil
		}
	}

	dst.reloadEngine()
	return dst
}
