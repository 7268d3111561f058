// Package types provides type definitions for structured data used throughout the autopost system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Fingerprint is a 64-bit SimHash summary of a shingle set.
// It serializes as 16 lowercase hex digits so that JSON readers without
// 64-bit integers keep every bit.
type Fingerprint uint64

// FingerprintBits is the width of a Fingerprint.
const FingerprintBits = 64

// String returns the fixed-width hex form of the fingerprint.
func (f Fingerprint) String() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(f))
	return hex.EncodeToString(buf[:])
}

// MarshalText implements encoding.TextMarshaler.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFingerprint parses the 16 hex digit form produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("fingerprint %q: expected 16 hex digits, got %d", s, len(s))
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("fingerprint %q: %w", s, err)
	}
	return Fingerprint(v), nil
}

// Entry is one previously accepted piece of text.
// NormalizedText is stored once at acceptance time and never re-derived
// from raw text; comparison re-shingles it on the fly.
type Entry struct {
	NormalizedText string      `json:"normalized_text"`
	Fingerprint    Fingerprint `json:"fingerprint"`
}
