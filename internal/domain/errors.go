package domain

import "errors"

var (
	// ErrValidation marks input rejected before any store or external call.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the task does not exist in the caller-visible set.
	ErrNotFound = errors.New("todo not found")

	// ErrUnauthorized indicates the request carried no valid identity.
	ErrUnauthorized = errors.New("unauthorized")
)
