package novelty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autopost/internal/types"
)

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	checker, err := NewChecker(DefaultParams())
	require.NoError(t, err)
	return checker
}

// farEntry stores text with a fingerprint at Hamming distance 64 from fp, so
// only the exact tier can match it.
func farEntry(text string, fp types.Fingerprint) types.Entry {
	return types.Entry{NormalizedText: text, Fingerprint: ^fp}
}

func TestNewChecker_ValidatesParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr bool
	}{
		{name: "defaults", mutate: func(p *Params) {}, wantErr: false},
		{name: "zero shingle size", mutate: func(p *Params) { p.ShingleSize = 0 }, wantErr: true},
		{name: "32 bit fingerprint", mutate: func(p *Params) { p.FingerprintBits = 32 }, wantErr: true},
		{name: "zero jaccard", mutate: func(p *Params) { p.JaccardThreshold = 0 }, wantErr: true},
		{name: "jaccard above one", mutate: func(p *Params) { p.JaccardThreshold = 1.5 }, wantErr: true},
		{name: "negative hamming", mutate: func(p *Params) { p.HammingThreshold = -1 }, wantErr: true},
		{name: "hamming zero allowed", mutate: func(p *Params) { p.HammingThreshold = 0 }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			tt.mutate(&params)
			checker, err := NewChecker(params)
			if tt.wantErr {
				require.Error(t, err)
				var paramsErr *ParamsError
				assert.ErrorAs(t, err, &paramsErr)
				assert.Nil(t, checker)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, params, checker.Params())
		})
	}
}

func TestChecker_SelfSimilarity(t *testing.T) {
	checker := newTestChecker(t)
	texts := []string{
		"Hello, World!",
		"AIが変える未来の働き方について考えてみた",
		"x",
	}

	for _, text := range texts {
		candidate := checker.Prepare(text)
		history := []types.Entry{candidate.Entry()}

		m := checker.Compare(text, text)
		assert.Equal(t, 1.0, m.Jaccard, "text %q", text)
		assert.Equal(t, 0, m.Hamming, "text %q", text)

		decision := checker.Check(candidate.Normalized, candidate.Fingerprint, history)
		assert.True(t, decision.Duplicate, "text %q", text)
		assert.Equal(t, ReasonJaccard, decision.Reason)
		assert.Equal(t, 0, decision.MatchIndex)
		assert.Equal(t, candidate.Normalized, decision.MatchText)
	}
}

func TestChecker_JaccardBoundaryIsInclusive(t *testing.T) {
	checker := newTestChecker(t)

	candidate := checker.Prepare("abcdefg")
	history := []types.Entry{farEntry("abcdef", candidate.Fingerprint)}

	decision := checker.CheckCandidate(candidate, history)
	assert.True(t, decision.Duplicate)
	assert.Equal(t, ReasonJaccard, decision.Reason)
	assert.Equal(t, 0.8, decision.Match.Jaccard)
	assert.Equal(t, 64, decision.Match.Hamming)
}

func TestChecker_BelowJaccardAndFarFingerprintIsNovel(t *testing.T) {
	checker := newTestChecker(t)

	candidate := checker.Prepare("abcdefgh")
	history := []types.Entry{farEntry("abcdef", candidate.Fingerprint)}

	decision := checker.CheckCandidate(candidate, history)
	assert.False(t, decision.Duplicate)
	assert.Equal(t, ReasonNovel, decision.Reason)
	assert.Equal(t, -1, decision.MatchIndex)
	assert.InDelta(t, 4.0/6.0, decision.BestJaccard, 1e-12)
	assert.Equal(t, 64, decision.MinHamming)
	assert.Equal(t, 1, decision.Compared)
}

func TestChecker_HammingTierAlone(t *testing.T) {
	checker := newTestChecker(t)
	candidate := checker.Prepare("completely unrelated words here")

	tests := []struct {
		name      string
		flipMask  uint64
		duplicate bool
	}{
		{name: "identical fingerprint", flipMask: 0, duplicate: true},
		{name: "three bits apart", flipMask: 0b111, duplicate: true},
		{name: "four bits apart", flipMask: 0b1111, duplicate: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := types.Entry{
				NormalizedText: "zzz qqq",
				Fingerprint:    types.Fingerprint(uint64(candidate.Fingerprint) ^ tt.flipMask),
			}
			decision := checker.CheckCandidate(candidate, []types.Entry{entry})
			assert.Equal(t, tt.duplicate, decision.Duplicate)
			if tt.duplicate {
				assert.Equal(t, ReasonHamming, decision.Reason)
				assert.Equal(t, 0.0, decision.Match.Jaccard)
			}
		})
	}
}

func TestChecker_IsDuplicateRule(t *testing.T) {
	checker := newTestChecker(t)

	tests := []struct {
		name     string
		match    Match
		expected bool
	}{
		{name: "jaccard at threshold", match: Match{Jaccard: 0.80, Hamming: 40}, expected: true},
		{name: "jaccard just below", match: Match{Jaccard: 0.7999, Hamming: 40}, expected: false},
		{name: "hamming at threshold", match: Match{Jaccard: 0.1, Hamming: 3}, expected: true},
		{name: "hamming just above", match: Match{Jaccard: 0.1, Hamming: 4}, expected: false},
		{name: "both fire", match: Match{Jaccard: 1, Hamming: 0}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.IsDuplicate(tt.match))
		})
	}
}

func TestChecker_ConcreteScenario(t *testing.T) {
	checker := newTestChecker(t)

	assert.Equal(t, Normalize("hello world"), Normalize("Hello, World!  "))

	accepted := checker.Prepare("ai technology trends")
	history := []types.Entry{accepted.Entry()}

	candidate, decision := checker.CheckText("AI technology trend", history)
	assert.Equal(t, "ai technology trend", candidate.Normalized)
	assert.Greater(t, decision.Match.Jaccard, 0.80)
	assert.True(t, decision.Duplicate)
	assert.Equal(t, ReasonJaccard, decision.Reason)
}

func TestChecker_EmptyCandidateIsNovel(t *testing.T) {
	checker := newTestChecker(t)
	history := []types.Entry{
		{NormalizedText: "anything", Fingerprint: 0},
	}

	candidate, decision := checker.CheckText("  !!! 🎉 ", history)
	assert.True(t, candidate.Empty())
	assert.Equal(t, types.Fingerprint(0), candidate.Fingerprint)
	assert.False(t, decision.Duplicate)
	assert.Equal(t, ReasonEmpty, decision.Reason)
	assert.Equal(t, 0, decision.Compared)
}

func TestChecker_EmptyHistoryIsNovel(t *testing.T) {
	checker := newTestChecker(t)

	_, decision := checker.CheckText("first post ever", nil)
	assert.False(t, decision.Duplicate)
	assert.Equal(t, ReasonNovel, decision.Reason)
	assert.Equal(t, -1, decision.MinHamming)
	assert.Equal(t, 0, decision.Compared)
}

func TestChecker_StopsAtFirstMatch(t *testing.T) {
	checker := newTestChecker(t)
	candidate := checker.Prepare("ai technology trends")

	history := []types.Entry{
		farEntry("the weather is lovely today", candidate.Fingerprint),
		farEntry("ai technology trends", candidate.Fingerprint),
		farEntry("ai technology trends", candidate.Fingerprint),
	}

	decision := checker.CheckCandidate(candidate, history)
	assert.True(t, decision.Duplicate)
	assert.Equal(t, 1, decision.MatchIndex)
	assert.Equal(t, 2, decision.Compared)
}

func TestChecker_OrderIndependentVerdict(t *testing.T) {
	checker := newTestChecker(t)
	candidate := checker.Prepare("machine learning for everyone")

	a := farEntry("deep learning for everyone", candidate.Fingerprint)
	b := farEntry("cooking pasta at home", candidate.Fingerprint)

	forward := checker.CheckCandidate(candidate, []types.Entry{a, b})
	backward := checker.CheckCandidate(candidate, []types.Entry{b, a})
	assert.Equal(t, forward.Duplicate, backward.Duplicate)
}

func TestChecker_CJKNearDuplicate(t *testing.T) {
	checker := newTestChecker(t)
	accepted := checker.Prepare("今日はAIの最新トレンドについて話します")

	_, decision := checker.CheckText("今日はAIの最新トレンドについて話します！", []types.Entry{accepted.Entry()})
	assert.True(t, decision.Duplicate)
	assert.Equal(t, 1.0, decision.Match.Jaccard)
}
