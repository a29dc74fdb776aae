package routes

import "errors"

var (
	// ErrDuplicatePath indicates two routes resolve to the same path.
	ErrDuplicatePath = errors.New("routes: duplicate path")

	// ErrInvalidPath indicates an absolute child path or a relative top-level path.
	ErrInvalidPath = errors.New("routes: invalid path")

	// ErrMissingPage indicates a route without a page component.
	ErrMissingPage = errors.New("routes: missing page")
)
