package apiclient

import (
	"errors"
	"fmt"
)

// LogicalError is a response whose envelope carried success=false.
type LogicalError struct {
	StatusCode int
	Message    string
}

func (e *LogicalError) Error() string {
	return fmt.Sprintf("server reported failure (status %d): %s", e.StatusCode, e.Message)
}

// TransportError means no usable envelope was obtained: the request failed,
// or the body was not the expected JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// IsLogical reports whether err is a server-reported failure and returns its message.
func IsLogical(err error) (string, bool) {
	var le *LogicalError
	if errors.As(err, &le) {
		return le.Message, true
	}
	return "", false
}
