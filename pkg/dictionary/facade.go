// Package dictionary implements the dictionary façade of spec.md §4.4:
// the sole entry point for callers, owning the buffer, header, word
// store and bigram store, and exposing the public query/mutation
// surface of spec.md §6.
package dictionary

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/bastiangx/wordict/internal/logger"
	"github.com/bastiangx/wordict/pkg/bigram"
	"github.com/bastiangx/wordict/pkg/buffer"
	"github.com/bastiangx/wordict/pkg/codec"
	"github.com/bastiangx/wordict/pkg/format"
	"github.com/bastiangx/wordict/pkg/suggest"
	"github.com/bastiangx/wordict/pkg/triemap"
	"github.com/bastiangx/wordict/pkg/wordstore"
)

var log = logger.New("dictionary")

// Facade is a single dictionary handle. It is not safe for concurrent
// use by multiple goroutines (spec.md §5: "single-threaded cooperative
// per dictionary handle"); distinct handles share no mutable state and
// may run on distinct goroutines freely.
type Facade struct {
	path      string
	updatable bool
	corrupted bool

	header  *format.Header
	trie    *triemap.TrieMap
	words   *wordstore.Store
	bigrams *bigram.Store
	buf     *buffer.Buffer

	engine suggest.Engine
	// prefixEngine is the concrete *suggest.PrefixEngine behind engine
	// when the caller didn't supply their own Engine, kept so mutation
	// paths can reload its candidate set.
	prefixEngine *suggest.PrefixEngine
}

// New constructs an empty, updatable, in-memory dictionary at the
// given format version and locale (spec.md §3 lifecycle).
func New(formatVersion uint16, locale string) *Facade {
	trie := triemap.New()
	engine := suggest.NewPrefixEngine()
	f := &Facade{
		updatable:    true,
		header:       format.NewHeader(formatVersion, locale),
		trie:         trie,
		words:        wordstore.New(trie),
		bigrams:      bigram.New(trie),
		buf:          buffer.NewInMemory(4096),
		engine:       engine,
		prefixEngine: engine,
	}
	return f
}

// Open memory-maps path and parses it into a live Facade. updatable
// controls whether mutations and flush are permitted on the result.
// A file whose header or body-length prefix fails to parse returns an
// error. A body that fails to decode returns a non-updatable handle
// with IsCorrupted() == true and a nil error.
func Open(path string, updatable bool) (*Facade, error) {
	advanceClock()

	buf, err := buffer.OpenFile(path, updatable)
	if err != nil {
		return nil, errors.Wrap(err, "dictionary: open")
	}

	raw := buf.Bytes()
	header, headerSize, err := format.Parse(raw)
	if err != nil {
		buf.Close()
		return nil, errors.Wrap(err, "dictionary: parse header")
	}

	if headerSize >= len(raw) {
		buf.Close()
		return nil, errors.New("dictionary: corrupted, missing body length prefix")
	}
	bodyLen, prefixLen, err := codec.Uvarint(raw[headerSize:])
	if err != nil {
		buf.Close()
		return nil, errors.Wrap(err, "dictionary: corrupted, body length prefix")
	}
	bodyStart := headerSize + prefixLen
	if bodyStart+int(bodyLen) > len(raw) {
		buf.Close()
		return nil, errors.New("dictionary: corrupted, body extends past buffer")
	}
	blob := raw[bodyStart : bodyStart+int(bodyLen)]

	trie, words, bigrams, err := decodeBody(blob)
	if err != nil {
		log.Warnf("corrupted body in %s: %v", path, err)
		return &Facade{path: path, updatable: false, corrupted: true, buf: buf, header: header}, nil
	}

	engine := suggest.NewPrefixEngine()
	f := &Facade{
		path:         path,
		updatable:    updatable,
		header:       header,
		trie:         trie,
		words:        words,
		bigrams:      bigrams,
		buf:          buf,
		engine:       engine,
		prefixEngine: engine,
	}
	f.reloadEngine()
	return f, nil
}

// SetEngine overrides the suggestion engine delegated to by
// GetSuggestions (spec.md §4.4 "delegates to the appropriate
// suggestion engine"), e.g. to swap in a gesture-decoding engine.
func (f *Facade) SetEngine(e suggest.Engine) {
	f.engine = e
}

// IsCorrupted reports whether the on-disk structure failed to parse
// (spec.md §6, §7 Corrupted). A corrupted handle answers every read
// with its NotFound sentinel and rejects every mutation.
func (f *Facade) IsCorrupted() bool {
	return f.corrupted
}

// Close releases the buffer (spec.md §3 lifecycle).
func (f *Facade) Close() error {
	if f.buf == nil {
		return nil
	}
	return f.buf.Close()
}

// reloadEngine rebuilds the prefix engine's candidate set from the
// live word store, called after any mutation that changes the
// vocabulary so suggestions never serve stale candidates.
func (f *Facade) reloadEngine() {
	if f.prefixEngine == nil {
		return
	}
	words := make(map[string]int)
	token := 0
	for {
		word, next := f.words.GetNextWordAndNextToken(token)
		if word == nil {
			break
		}
		p := f.words.GetUnigramProbabilityOfPtNode(f.words.GetTerminalPtNodePositionOfWord(word, false))
		words[string(word)] = p
		if next == 0 {
			break
		}
		token = next
	}
	f.prefixEngine.Load(words)
}

// stageBody mirrors data into the handle's in-memory Buffer via its
// Write/Truncate/Append surface before the caller persists it to disk,
// and returns the bytes to write. Opened (mmap'd) handles skip staging
// and return data unchanged: their backing region is fixed at the
// mapped file's size, and the façade always flushes a grown or shrunk
// dictionary out to a fresh file rather than writing back through the
// mapping (see Buffer.Append).
func (f *Facade) stageBody(data []byte) ([]byte, error) {
	if f.buf == nil || f.buf.Mmapped() {
		return data, nil
	}
	if len(data) <= f.buf.Size() {
		if err := f.buf.Write(0, data); err != nil {
			return nil, errors.Wrap(err, "dictionary: stage buffer")
		}
		if err := f.buf.Truncate(len(data)); err != nil {
			return nil, errors.Wrap(err, "dictionary: stage buffer")
		}
		return f.buf.Bytes(), nil
	}
	if err := f.buf.Truncate(0); err != nil {
		return nil, errors.Wrap(err, "dictionary: reset buffer")
	}
	if _, err := f.buf.Append(data); err != nil {
		return nil, errors.Wrap(err, "dictionary: stage buffer")
	}
	return f.buf.Bytes(), nil
}

// ensureDir makes sure path's parent directory exists, used by flush
// paths before writing the sibling-then-rename temp file.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
