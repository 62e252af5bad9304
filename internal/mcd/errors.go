package mcd

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in customer
	ErrNotAuthenticated = errors.New("you must sign in to use this operation")

	// ErrInvalidState is returned when a checkout step is called out of order
	ErrInvalidState = errors.New("order session is not in the required state")
)

// APIError reports a response the upstream API marked as failed. Body holds the
// raw response so callers can inspect it.
type APIError struct {
	Endpoint   string
	StatusCode int
	ResultCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if e.ResultCode != 0 || e.StatusCode == http.StatusOK {
		return fmt.Sprintf("%s: result code %d", e.Endpoint, e.ResultCode)
	}
	return fmt.Sprintf("%s: http status %d", e.Endpoint, e.StatusCode)
}
