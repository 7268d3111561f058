package novelty

import "github.com/jonathan/autopost/internal/types"

// Reason explains a Decision.
type Reason string

// Decision reasons
const (
	// ReasonNovel means no entry came within either threshold
	ReasonNovel Reason = "novel"
	// ReasonJaccard means an entry's shingle overlap reached the Jaccard threshold
	ReasonJaccard Reason = "jaccard"
	// ReasonHamming means an entry's fingerprint was within the Hamming threshold
	ReasonHamming Reason = "hamming"
	// ReasonEmpty means the candidate normalized to nothing and is vacuously novel
	ReasonEmpty Reason = "empty"
)

// Match holds the pairwise similarity of a candidate and one entry.
type Match struct {
	Jaccard float64 `json:"jaccard"`
	Hamming int     `json:"hamming"`
}

// Decision is the outcome of checking one candidate against history.
type Decision struct {
	Duplicate bool   `json:"duplicate"`
	Reason    Reason `json:"reason"`

	// MatchIndex is the position of the entry that triggered rejection, or -1
	MatchIndex int `json:"match_index"`
	// MatchText is that entry's normalized text
	MatchText string `json:"match_text,omitempty"`
	// Match is the pairwise similarity with the triggering entry
	Match Match `json:"match"`

	// Compared is the number of entries inspected before deciding
	Compared int `json:"compared"`
	// BestJaccard and MinHamming summarize the closest entries inspected.
	// MinHamming is -1 when nothing was compared.
	BestJaccard float64 `json:"best_jaccard"`
	MinHamming  int     `json:"min_hamming"`
}

// Candidate is a piece of raw text with its derived comparison keys.
type Candidate struct {
	Raw         string
	Normalized  string
	Shingles    ShingleSet
	Fingerprint types.Fingerprint
}

// Entry returns the history record that would be stored if the candidate is accepted.
func (c Candidate) Entry() types.Entry {
	return types.Entry{NormalizedText: c.Normalized, Fingerprint: c.Fingerprint}
}

// Empty reports whether the candidate normalized to nothing.
func (c Candidate) Empty() bool {
	return c.Normalized == ""
}

// Checker classifies candidates as novel or duplicate.
//
// Every check is a flat scan: the exact tier costs O(len(history) × shingles)
// because each entry is re-shingled from its stored text, and the fingerprint
// tier costs O(len(history)). That is fine for the hundreds to low thousands of
// entries a posting history accumulates; beyond that an LSH band index over the
// fingerprints would be needed.
//
// A Checker holds no mutable state and is safe for concurrent use.
type Checker struct {
	params Params
}

// NewChecker builds a Checker from validated parameters.
func NewChecker(params Params) (*Checker, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Checker{params: params}, nil
}

// Params returns the parameters the Checker was built with.
func (c *Checker) Params() Params {
	return c.params
}

// Prepare normalizes raw text and derives its shingles and fingerprint.
func (c *Checker) Prepare(raw string) Candidate {
	normalized := Normalize(raw)
	shingles := Shingles(normalized, c.params.ShingleSize)
	return Candidate{
		Raw:         raw,
		Normalized:  normalized,
		Shingles:    shingles,
		Fingerprint: Fingerprint(shingles),
	}
}

// Check decides whether a normalized candidate with the given fingerprint
// duplicates any history entry.
func (c *Checker) Check(normalized string, fp types.Fingerprint, history []types.Entry) Decision {
	return c.CheckCandidate(Candidate{
		Normalized:  normalized,
		Shingles:    Shingles(normalized, c.params.ShingleSize),
		Fingerprint: fp,
	}, history)
}

// CheckText prepares raw text and checks it against history.
func (c *Checker) CheckText(raw string, history []types.Entry) (Candidate, Decision) {
	candidate := c.Prepare(raw)
	return candidate, c.CheckCandidate(candidate, history)
}

// CheckCandidate checks a prepared candidate against history. The scan stops at
// the first entry that meets either threshold.
func (c *Checker) CheckCandidate(candidate Candidate, history []types.Entry) Decision {
	decision := Decision{
		Reason:     ReasonNovel,
		MatchIndex: -1,
		MinHamming: -1,
	}
	if candidate.Empty() {
		decision.Reason = ReasonEmpty
		return decision
	}

	for i, entry := range history {
		m := c.compare(candidate, entry)
		decision.Compared++
		if m.Jaccard > decision.BestJaccard {
			decision.BestJaccard = m.Jaccard
		}
		if decision.MinHamming < 0 || m.Hamming < decision.MinHamming {
			decision.MinHamming = m.Hamming
		}

		if reason, dup := c.classify(m); dup {
			decision.Duplicate = true
			decision.Reason = reason
			decision.MatchIndex = i
			decision.MatchText = entry.NormalizedText
			decision.Match = m
			return decision
		}
	}
	return decision
}

// Compare returns the pairwise similarity of two raw texts.
func (c *Checker) Compare(a, b string) Match {
	left := c.Prepare(a)
	right := c.Prepare(b)
	return c.compare(left, right.Entry())
}

// IsDuplicate applies the decision rule to one pairwise match.
func (c *Checker) IsDuplicate(m Match) bool {
	_, dup := c.classify(m)
	return dup
}

func (c *Checker) compare(candidate Candidate, entry types.Entry) Match {
	return Match{
		Jaccard: Jaccard(candidate.Shingles, Shingles(entry.NormalizedText, c.params.ShingleSize)),
		Hamming: HammingDistance(candidate.Fingerprint, entry.Fingerprint),
	}
}

// classify is the two-tier rule: either tier alone rejects. The exact tier is
// reported first when both fire.
func (c *Checker) classify(m Match) (Reason, bool) {
	if m.Jaccard >= c.params.JaccardThreshold {
		return ReasonJaccard, true
	}
	if m.Hamming <= c.params.HammingThreshold {
		return ReasonHamming, true
	}
	return ReasonNovel, false
}
