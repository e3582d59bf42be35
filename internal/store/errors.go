// Package store holds the error taxonomy shared by the pipeline's
// storage-backed packages. Handlers map these to HTTP responses.
package store

import "errors"

var (
	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the operation is not allowed from the entity's
	// current status (e.g. confirming an already processed order).
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation: malformed input, e.g. non-positive quantity.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCart: checkout attempted with no open cart lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrUnavailable: transient storage failure. Mutations are never
	// retried automatically on this; reads may be.
	ErrUnavailable = errors.New("storage unavailable")
)
