package core

import "fmt"

type Unit struct{}

// CommandError is a handler failure whose Message is safe to send back to
// the client. Handlers return it for domain faults; any other error is
// surfaced to the client as a generic failure instead.
type CommandError struct {
	Message string
	Err     error
}

func NewCommandError(message string, err error) CommandError {
	return CommandError{Message: message, Err: err}
}

func (e CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e CommandError) Unwrap() error {
	return e.Err
}
