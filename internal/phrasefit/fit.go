// Package phrasefit implements the optimal segmentation of a sentence's
// lexical token sequence into maximal non-overlapping phrases plus
// singletons, against a trie of known phrase orthographies (spec.md §4.B).
package phrasefit

import "github.com/influx-reader/influx-server/internal/trie"

// Slice is a half-open range [Start, End) into the original sequence.
type Slice struct {
	Start int
	End   int
}

// Len reports the number of elements the slice covers.
func (s Slice) Len() int { return s.End - s.Start }

// Fit partitions seq into contiguous slices, each either a length-1
// singleton or an exact terminal match in t, minimizing the number of
// slices. Ties are broken by the DP's leftmost-earliest-finish backtrace,
// which is equivalent to preferring the longest leading match at each
// position (spec.md §4.B).
//
// Returns slices covering [0, len(seq)) in order. Callers that only care
// about phrases (length >= 2) should filter the result themselves — this is
// how spec.md §4.C's assembler consumes it.
func Fit[T comparable, S any](seq []T, t *trie.Trie[T, S]) []Slice {
	n := len(seq)
	if n == 0 {
		return nil
	}

	// dp[i] = min cost to cover seq[i:n]; chosenLen[i] = length of the slice
	// chosen at position i in the optimal solution.
	const unreachable = 1<<31 - 1
	dp := make([]int, n+1)
	chosenLen := make([]int, n)
	for i := range dp {
		dp[i] = unreachable
	}
	dp[n] = 0

	for i := n - 1; i >= 0; i-- {
		prefixes := t.Prefixes(seq[i:], true)
		best := unreachable
		bestLen := 0
		// Ascending length order from Prefixes; on a cost tie we want the
		// *longest* leading match, so iterate and take "<=" to let later
		// (longer) candidates overwrite earlier ties.
		for _, p := range prefixes {
			l := len(p)
			if i+l > n {
				continue
			}
			cand := dp[i+l]
			if cand == unreachable {
				continue
			}
			cost := 1 + cand
			if cost <= best {
				best = cost
				bestLen = l
			}
		}
		dp[i] = best
		chosenLen[i] = bestLen
	}

	var out []Slice
	for i := 0; i < n; {
		l := chosenLen[i]
		out = append(out, Slice{Start: i, End: i + l})
		i += l
	}
	return out
}
