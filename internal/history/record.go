package history

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/autopost/internal/types"
)

// record is the wire form of one entry in the file and Redis stores.
// Pointer fields let decoding tell a missing field from a zero value.
type record struct {
	NormalizedText *string            `json:"normalized_text"`
	Fingerprint    *types.Fingerprint `json:"fingerprint"`
}

func encodeRecord(entry types.Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history record: %w", err)
	}
	return data, nil
}

// decodeRecord parses one record. source and n locate it in error messages.
func decodeRecord(data []byte, source string, n int) (types.Entry, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.Entry{}, &CorruptIndexError{Source: source, Record: n, Message: "invalid JSON record", Cause: err}
	}
	if rec.NormalizedText == nil || *rec.NormalizedText == "" {
		return types.Entry{}, &CorruptIndexError{Source: source, Record: n, Message: "missing normalized_text"}
	}
	if rec.Fingerprint == nil {
		return types.Entry{}, &CorruptIndexError{Source: source, Record: n, Message: "missing fingerprint"}
	}
	return types.Entry{NormalizedText: *rec.NormalizedText, Fingerprint: *rec.Fingerprint}, nil
}
