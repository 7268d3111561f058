package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/autopost/internal/types"
)

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{ClosestPairHamming: -1}, Summarize(nil))

	single := Summarize([]types.Entry{{NormalizedText: "abc", Fingerprint: 1}})
	assert.Equal(t, Summary{
		Entries:              1,
		DistinctFingerprints: 1,
		AverageRunes:         3,
		ShortestRunes:        3,
		LongestRunes:         3,
		ClosestPairHamming:   -1,
	}, single)

	s := Summarize([]types.Entry{
		{NormalizedText: "ab", Fingerprint: 0b0000},
		{NormalizedText: "今日はいい天気", Fingerprint: 0b1111},
		{NormalizedText: "abcdef", Fingerprint: 0b0111},
		{NormalizedText: "abcd", Fingerprint: 0b0111},
	})
	assert.Equal(t, 4, s.Entries)
	assert.Equal(t, 3, s.DistinctFingerprints)
	assert.Equal(t, 2, s.ShortestRunes)
	assert.Equal(t, 7, s.LongestRunes)
	assert.InDelta(t, 19.0/4.0, s.AverageRunes, 1e-9)
	assert.Equal(t, 0, s.ClosestPairHamming)
}
