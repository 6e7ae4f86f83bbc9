// Package dictconst holds the sentinels and size limits shared across
// the dictionary core (spec.md §3, §7), so that pkg/wordstore,
// pkg/bigram, pkg/probability and pkg/dictionary agree on one
// definition instead of each declaring their own.
package dictconst

const (
	// NotAProbability is the sentinel returned by probability lookups
	// on absence (spec.md §3, §7 NotFound).
	NotAProbability = -1

	// MaxProbability is the largest value a unigram or bigram
	// probability can carry (8-bit field, spec.md §3).
	MaxProbability = 255

	// NotADictPos is the sentinel for an absent terminal position
	// (spec.md §3).
	NotADictPos = -1

	// InvalidIndex mirrors pkg/triemap.InvalidIndex for callers that
	// only need the sentinel value, not the package.
	InvalidIndex = -1

	// MaxWordLength is the longest word the store accepts (spec.md
	// §3: "at most MAX_WORD_LENGTH (48) codepoints").
	MaxWordLength = 48

	// IterationStartToken is the token value that starts or restarts
	// enumeration (spec.md §3).
	IterationStartToken = 0
)
