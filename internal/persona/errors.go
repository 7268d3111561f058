// Package persona loads the persona a post is written in and renders the
// prompts that describe it to the model.
package persona

import "fmt"

// LoadError represents a persona file that could not be read or parsed.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persona load error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("persona load error (%s): %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
