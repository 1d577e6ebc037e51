package mapping

import "errors"

var (
	// ErrMissingIcon is returned when a node icon cannot be found or decoded.
	ErrMissingIcon = errors.New("icon not found")

	// ErrUnfedLink is returned when a link is drawn before its rates were fed.
	ErrUnfedLink = errors.New("link has no traffic data")

	// ErrInvalidCapacity is returned for links with a non-positive capacity.
	ErrInvalidCapacity = errors.New("link capacity must be positive")
)
