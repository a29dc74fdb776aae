package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTokenProviderRequired indicates a token-reading profile was
	// configured without a TokenProvider.
	ErrTokenProviderRequired = errors.New("client: token provider required")

	// ErrResponseTooLarge indicates the response body exceeded max_response_size.
	ErrResponseTooLarge = errors.New("client: response body too large")
)

// StatusError is returned for responses with a status code of 400 or above.
// The response is still returned alongside it.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
