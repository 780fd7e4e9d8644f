package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-success HTTP response from one of the backend services,
// carrying the status code and the normalized human-readable message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NetworkError is a transport-level failure: the request never produced an
// HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthExpired reports whether err is an API failure with status 401. Outside
// the login flow this must force a logout.
func AuthExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func statusMessage(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = "unexpected response"
	}
	return fmt.Sprintf("HTTP %d: %s", status, text)
}
