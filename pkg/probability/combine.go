// Package probability implements the fixed scoring function that
// combines a unigram probability and a bigram probability into an
// adjusted score (spec.md §4.6). The function is deterministic and
// monotonic in both inputs: evidence from a stronger bigram pulls the
// combined score toward dictconst.MaxProbability, proportionally to
// the unigram's remaining headroom, so a bigram probability of
// dictconst.MaxProbability lifts any unigram to MaxProbability.
package probability

import "github.com/bastiangx/wordict/pkg/dictconst"

// Combine returns the adjusted score for the pair (unigramProbability,
// bigramProbability). It returns dictconst.NotAProbability when the
// unigram is dictconst.NotAProbability (spec.md §4.6); an absent
// bigram (dictconst.NotAProbability) leaves the unigram unchanged.
func Combine(unigramProbability, bigramProbability int) int {
	if unigramProbability == dictconst.NotAProbability {
		return dictconst.NotAProbability
	}
	if bigramProbability == dictconst.NotAProbability {
		return unigramProbability
	}

	headroom := dictconst.MaxProbability - unigramProbability
	boost := (bigramProbability * headroom) / dictconst.MaxProbability
	combined := unigramProbability + boost
	if combined > dictconst.MaxProbability {
		combined = dictconst.MaxProbability
	}
	return combined
}
