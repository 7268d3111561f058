package history

import (
	"unicode/utf8"

	"github.com/jonathan/autopost/internal/novelty"
	"github.com/jonathan/autopost/internal/types"
)

// Summary describes the contents of a history.
type Summary struct {
	Entries              int     `json:"entries"`
	DistinctFingerprints int     `json:"distinct_fingerprints"`
	AverageRunes         float64 `json:"average_runes"`
	ShortestRunes        int     `json:"shortest_runes"`
	LongestRunes         int     `json:"longest_runes"`
	// ClosestPairHamming is the smallest fingerprint distance between two
	// entries, or -1 with fewer than two entries.
	ClosestPairHamming int `json:"closest_pair_hamming"`
}

// Summarize computes a Summary. The closest pair search compares every pair of
// fingerprints, which stays cheap for the sizes a posting history reaches.
func Summarize(entries []types.Entry) Summary {
	s := Summary{Entries: len(entries), ClosestPairHamming: -1}
	if len(entries) == 0 {
		return s
	}

	distinct := make(map[types.Fingerprint]struct{}, len(entries))
	total := 0
	for i, entry := range entries {
		distinct[entry.Fingerprint] = struct{}{}

		n := utf8.RuneCountInString(entry.NormalizedText)
		total += n
		if i == 0 || n < s.ShortestRunes {
			s.ShortestRunes = n
		}
		if n > s.LongestRunes {
			s.LongestRunes = n
		}

		for _, earlier := range entries[:i] {
			d := novelty.HammingDistance(entry.Fingerprint, earlier.Fingerprint)
			if s.ClosestPairHamming < 0 || d < s.ClosestPairHamming {
				s.ClosestPairHamming = d
			}
		}
	}

	s.DistinctFingerprints = len(distinct)
	s.AverageRunes = float64(total) / float64(len(entries))
	return s
}
