package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a form still fails validation after
	// the configured number of correction rounds.
	ErrTooManyAttempts = errors.New("tui: form still invalid")
)
