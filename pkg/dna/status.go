package dna

import (
	"errors"
	"fmt"
)

// StatusCode classifies the result of a Read or Write call.
type StatusCode int

const (
	StatusOK          StatusCode = iota // Operation succeeded
	StatusIOError                       // Stream open/read/write failed
	StatusFormatError                   // Input is corrupt or unsupported
	StatusIndexError                    // An index was out of range
	StatusStateError                    // Call not valid in the current state
)

// String returns a human-readable status code name.
func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusIOError:
		return "IOError"
	case StatusFormatError:
		return "FormatError"
	case StatusIndexError:
		return "IndexError"
	case StatusStateError:
		return "StateError"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Status is the result of a single Read or Write call.
// It is returned by value; nothing in this package keeps a shared copy.
type Status struct {
	Code    StatusCode
	Message string
	Err     error
}

// OK reports whether the operation succeeded.
func (s Status) OK() bool {
	return s.Code == StatusOK
}

// String returns "OK" or "<code>: <message>".
func (s Status) String() string {
	if s.OK() {
		return StatusOK.String()
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// Success returns a successful status.
func Success() Status {
	return Status{Code: StatusOK}
}

// StatusFromError converts an error returned by this package into a Status.
// A nil error yields a successful status.
func StatusFromError(err error) Status {
	if err == nil {
		return Success()
	}
	return Status{Code: codeOf(err), Message: err.Error(), Err: err}
}

func codeOf(err error) StatusCode {
	switch {
	case errors.Is(err, ErrFormat):
		return StatusFormatError
	case errors.Is(err, ErrIndex):
		return StatusIndexError
	case errors.Is(err, ErrState):
		return StatusStateError
	default:
		// Anything unclassified came from the environment.
		return StatusIOError
	}
}
