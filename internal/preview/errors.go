// Package preview writes the human-readable Markdown preview and the JSON
// payload that a scheduler hands to the posting client.
package preview

import "fmt"

// OutputError represents a failure writing preview files
type OutputError struct {
	Path    string
	Message string
	Cause   error
}

func (e *OutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("preview output error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("preview output error (%s): %s", e.Path, e.Message)
}

func (e *OutputError) Unwrap() error {
	return e.Cause
}
