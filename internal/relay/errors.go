package relay

import (
	"fmt"
	"time"
)

// StatusError is a non-2xx transport status.
type StatusError int

func (err StatusError) Error() string {
	return fmt.Sprintf("HTTP error: status %d", int(err))
}

// APIError is a relay response with an application code other than SuccessCode.
type APIError struct {
	Code    int
	Message string
}

func (err APIError) Error() string {
	if err.Message == "" {
		return "unknown error"
	}

	return err.Message
}

// TimeoutError is returned when the relay did not answer in time.
type TimeoutError time.Duration

func (err TimeoutError) Error() string {
	return "request timed out after " + time.Duration(err).String()
}
