package novelty

import "fmt"

// ParamsError is returned when comparison parameters are out of range
type ParamsError struct {
	Message string
	Cause   error
}

func (e *ParamsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("novelty params error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("novelty params error: %s", e.Message)
}

func (e *ParamsError) Unwrap() error {
	return e.Cause
}
