package contents

import "errors"

var (
	// ErrUnavailable indicates the contents API could not be reached or
	// answered with a failure status.
	ErrUnavailable = errors.New("contents unavailable")

	// ErrMalformed indicates the response body could not be decoded.
	ErrMalformed = errors.New("contents response malformed")
)
