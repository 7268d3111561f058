package novelty

import "sort"

// DefaultShingleSize is the character n-gram length used when none is configured.
const DefaultShingleSize = 3

// ShingleSet is the set of overlapping character n-grams of a normalized text.
type ShingleSet map[string]struct{}

// Shingles returns every contiguous run of n runes in normalized text (stride 1).
// A nonempty text shorter than n yields the whole text as its only shingle;
// empty text yields an empty set. Values of n below 1 are treated as 1.
func Shingles(normalized string, n int) ShingleSet {
	if normalized == "" {
		return ShingleSet{}
	}
	if n < 1 {
		n = 1
	}

	runes := []rune(normalized)
	if len(runes) <= n {
		return ShingleSet{normalized: {}}
	}

	set := make(ShingleSet, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}

// Contains reports whether shingle is in the set.
func (s ShingleSet) Contains(shingle string) bool {
	_, ok := s[shingle]
	return ok
}

// Sorted returns the shingles in lexical order.
func (s ShingleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for shingle := range s {
		out = append(out, shingle)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets have similarity 0:
// empty text is similar to nothing.
func Jaccard(a, b ShingleSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	intersection := 0
	for shingle := range a {
		if _, ok := b[shingle]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
