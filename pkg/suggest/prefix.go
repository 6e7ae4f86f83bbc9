package suggest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/bastiangx/wordict/internal/logger"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/probability"
)

var log = logger.New("suggest")

// BigramContext resolves the bigram probability of a candidate word
// following some (engine-held) previous word, or
// dictconst.NotAProbability if none is known. dictionary.Facade wires
// this to its own bigram store so PrefixEngine can run the spec's
// probability.Combine step without knowing about bigrams itself.
type BigramContext func(candidate string) int

// PrefixEngine is a minimal Engine: exact-prefix subtree walk over a
// patricia trie of (word -> unigram probability), optionally boosted
// by a BigramContext. It is intentionally the simplest thing that
// exercises dictionary.Facade.GetSuggestions end to end — it does not
// attempt beam search over noisy input, proximity scoring, or gesture
// geometry (spec.md §1 leaves those to the external suggestion
// engines).
type PrefixEngine struct {
	mu            sync.RWMutex
	trie          *patricia.Trie
	bigramContext BigramContext
}

// NewPrefixEngine creates an empty PrefixEngine.
func NewPrefixEngine() *PrefixEngine {
	return &PrefixEngine{trie: patricia.NewTrie()}
}

// Load replaces the engine's candidate set wholesale. dictionary.Facade
// calls this after mutations that change the live vocabulary
// (addUnigramWord, flush, migrate) so the engine never serves stale
// candidates.
func (e *PrefixEngine) Load(words map[string]int) {
	trie := patricia.NewTrie()
	for w, p := range words {
		trie.Insert(patricia.Prefix(strings.ToLower(w)), p)
	}
	e.mu.Lock()
	e.trie = trie
	e.mu.Unlock()
}

// SetBigramContext installs (or clears, with nil) the bigram-boost
// callback used by Suggest.
func (e *PrefixEngine) SetBigramContext(fn BigramContext) {
	e.mu.Lock()
	e.bigramContext = fn
	e.mu.Unlock()
}

// Suggest walks the subtree rooted at prefix (case-folded) and returns
// up to limit candidates, ranked by probability then lexicographically.
// The exact-match word itself is excluded, matching the teacher's
// completion semantics of only offering continuations.
func (e *PrefixEngine) Suggest(ctx context.Context, prefix string, limit int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	lower := strings.ToLower(prefix)
	var out []Suggestion
	err := e.trie.VisitSubtree(patricia.Prefix(lower), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == lower {
			return nil
		}
		unigram, ok := item.(int)
		if !ok {
			log.Warnf("unexpected item type %T for word %q", item, word)
			return nil
		}
		combined := unigram
		if e.bigramContext != nil {
			if bp := e.bigramContext(word); bp != dictconst.NotAProbability {
				combined = probability.Combine(unigram, bp)
			}
		}
		out = append(out, Suggestion{Word: word, Probability: combined})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
