package productapi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is returned when the API answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrInvalidBody is returned when the response body is not the expected JSON.
	ErrInvalidBody = errors.New("invalid response body")
)

// TransportError describes a failed call to the remote product API.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("product api %s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("product api %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
