package application

import "errors"

// Domain errors surfaced to the HTTP layer. All of them are
// recoverable by retrying with corrected input.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrDuplicateEmail rejects registration with an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInsufficientStock aborts an order when any line requests more
	// units than a product has available.
	ErrInsufficientStock = errors.New("insufficient stock to fulfill order")

	// ErrEmptyOrder rejects an order whose resolved lines price to a
	// zero subtotal.
	ErrEmptyOrder = errors.New("unable to complete order: no valid products")

	ErrInvalidCredentials = errors.New("invalid credentials")
)
