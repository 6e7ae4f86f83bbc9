// Package suggest holds the consumed interface between the dictionary
// façade (pkg/dictionary) and the typing/gesture suggestion engines
// that spec.md §1/§6 explicitly name as external collaborators whose
// search algorithm (beam search over noisy taps, swipe-gesture
// geometry) is out of scope for this core. Only the interface the
// façade calls through, plus one minimal concrete engine
// (PrefixEngine), live here — grounded in the teacher's
// pkg/suggest/completion.go and pkg/suggest/trie.go.
package suggest

import "context"

// Suggestion is one candidate returned by an Engine: a surface word
// and its already-combined probability (spec.md §4.6 combine, applied
// by the engine before returning).
type Suggestion struct {
	Word        string
	Probability int
}

// Engine is the minimal surface dictionary.Facade.GetSuggestions
// delegates to. Concrete engines decide their own search strategy
// (prefix walk, fuzzy/proximity scoring, gesture decoding); the façade
// only needs candidates back, ranked.
type Engine interface {
	Suggest(ctx context.Context, prefix string, limit int) ([]Suggestion, error)
}
