package preview

import (
	"time"

	"github.com/jonathan/autopost/internal/gate"
)

// Metadata describes how a post was produced.
type Metadata struct {
	Character   string `json:"character"`
	Model       string `json:"model"`
	GeneratedAt string `json:"generated_at"`
	// Topic is "auto" when the model picked the subject
	Topic string `json:"topic"`
}

// NewMetadata fills Metadata, stamping it with now in RFC 3339.
func NewMetadata(character, model, topic string, now time.Time) Metadata {
	if topic == "" {
		topic = "auto"
	}
	return Metadata{
		Character:   character,
		Model:       model,
		GeneratedAt: now.Format(time.RFC3339),
		Topic:       topic,
	}
}

// Payload is the JSON document written after every run.
type Payload struct {
	Text     string        `json:"text"`
	Metadata Metadata      `json:"metadata"`
	Result   PayloadResult `json:"result"`
}

// PayloadResult summarizes the gate run behind a payload.
type PayloadResult struct {
	RunID          string           `json:"run_id"`
	State          gate.State       `json:"state"`
	Attempts       int              `json:"attempts"`
	DryRun         bool             `json:"dry_run"`
	Fingerprint    string           `json:"fingerprint,omitempty"`
	NormalizedText string           `json:"normalized_text,omitempty"`
	BestJaccard    float64          `json:"best_jaccard"`
	MinHamming     int              `json:"min_hamming"`
	Rejections     []gate.Rejection `json:"rejections,omitempty"`
}

// NewPayload builds the payload for a finished run. An exhausted run carries
// no text: the last rejected candidate is never offered for posting.
func NewPayload(result *gate.Result, meta Metadata, dryRun bool) Payload {
	p := Payload{
		Metadata: meta,
		Result: PayloadResult{
			RunID:      result.RunID,
			State:      result.State,
			Attempts:   result.Attempts,
			DryRun:     dryRun,
			MinHamming: -1,
			Rejections: result.Rejections,
		},
	}
	if result.Accepted() {
		p.Text = result.Text
		p.Result.Fingerprint = result.Entry.Fingerprint.String()
		p.Result.NormalizedText = result.Entry.NormalizedText
		p.Result.BestJaccard = result.Decision.BestJaccard
		p.Result.MinHamming = result.Decision.MinHamming
	}
	return p
}
