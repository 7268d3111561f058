package gate

import (
	"errors"
	"fmt"
)

// ErrNoNovelContent is returned by Result.Err when every attempt was rejected.
var ErrNoNovelContent = errors.New("no novel content after max attempts")

// ErrGeneration matches any *GenerationError.
var ErrGeneration = errors.New("candidate generation failed")

// GenerationError represents a failed call to the Generator. It consumes an attempt.
type GenerationError struct {
	Attempt int
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error (attempt %d): %s: %v", e.Attempt, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error (attempt %d): %s", e.Attempt, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}
