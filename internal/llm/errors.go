package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the completion endpoint is unreachable.
	ErrUnavailable = errors.New("completion endpoint unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("completion request timed out")

	// ErrBadStatus indicates the endpoint answered with a non-2xx status.
	ErrBadStatus = errors.New("completion endpoint returned an error status")

	// ErrInvalidOutput indicates the response body could not be decoded
	// or carried no reply.
	ErrInvalidOutput = errors.New("invalid completion response")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("completion retry attempts exhausted")
)

// ErrorKind maps an error from Send to a stable diagnostic code.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrBadStatus):
		return "BAD_STATUS"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}
