// Package history provides the durable, append-only index of previously accepted posts.
package history

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks
var (
	// ErrCorruptIndex means stored history could not be parsed
	ErrCorruptIndex = errors.New("corrupt history index")
	// ErrStoreWrite means an append or reset did not complete
	ErrStoreWrite = errors.New("history store write failed")
)

// CorruptIndexError reports a record that could not be parsed at load time.
// History is never silently discarded: the caller decides whether to abort or reset.
type CorruptIndexError struct {
	Source  string // file path, table or key the record came from
	Record  int    // 1-based record (line) number, 0 when unknown
	Message string
	Cause   error
}

func (e *CorruptIndexError) Error() string {
	location := e.Source
	if e.Record > 0 {
		location = fmt.Sprintf("%s record %d", e.Source, e.Record)
	}
	if e.Cause != nil {
		return fmt.Sprintf("corrupt history index: %s: %s: %v", location, e.Message, e.Cause)
	}
	return fmt.Sprintf("corrupt history index: %s: %s", location, e.Message)
}

func (e *CorruptIndexError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrCorruptIndex) true.
func (e *CorruptIndexError) Is(target error) bool {
	return target == ErrCorruptIndex
}

// StoreWriteError reports a failed append or reset. The index in memory is left
// unchanged when it is returned.
type StoreWriteError struct {
	Op      string // "append" or "reset"
	Message string
	Cause   error
}

func (e *StoreWriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("history %s failed: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("history %s failed: %s", e.Op, e.Message)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrStoreWrite) true.
func (e *StoreWriteError) Is(target error) bool {
	return target == ErrStoreWrite
}
