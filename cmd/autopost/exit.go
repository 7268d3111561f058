package main

import (
	"context"
	"errors"
)

// Process exit codes
const (
	ExitOK          = 0
	ExitConfig      = 1 // bad configuration, persona or missing credentials
	ExitInit        = 2 // history or model client could not be set up
	ExitGeneration  = 3 // no novel post, or a checked text is a duplicate
	ExitOutput      = 4 // history write or preview output failed
	ExitInterrupted = 130
)

// exitError attaches a process exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps a command error to a process exit code. Errors without an
// explicit code come from flag parsing and count as configuration errors.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitConfig
}
