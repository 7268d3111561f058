package novelty

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/autopost/internal/types"
)

// Default thresholds for the two comparison tiers
const (
	DefaultJaccardThreshold = 0.80
	DefaultHammingThreshold = 3
)

// Params configures the comparison. It is immutable once a Checker is built.
type Params struct {
	// ShingleSize is the character n-gram length
	ShingleSize int `json:"shingle_size" validate:"gte=1,lte=16"`
	// FingerprintBits is the SimHash width; only 64 is supported
	FingerprintBits int `json:"fingerprint_bits" validate:"eq=64"`
	// JaccardThreshold rejects a candidate whose shingle overlap with any entry is >= this value
	JaccardThreshold float64 `json:"jaccard_threshold" validate:"gt=0,lte=1"`
	// HammingThreshold rejects a candidate whose fingerprint is within this many bits of any entry
	HammingThreshold int `json:"hamming_threshold" validate:"gte=0,lte=64"`
}

// DefaultParams returns the policy defaults: trigrams, 64-bit fingerprints,
// Jaccard 0.80 and Hamming 3.
func DefaultParams() Params {
	return Params{
		ShingleSize:      DefaultShingleSize,
		FingerprintBits:  types.FingerprintBits,
		JaccardThreshold: DefaultJaccardThreshold,
		HammingThreshold: DefaultHammingThreshold,
	}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return &ParamsError{
			Message: fmt.Sprintf("invalid comparison parameters %+v", p),
			Cause:   err,
		}
	}
	return nil
}
