package database

import "errors"

// Expected, reportable outcomes of the booking path. Anything else coming out
// of this package is an unexpected storage fault.
var (
	ErrInvalidRange           = errors.New("invalid booking range")
	ErrInvalidQuantity        = errors.New("invalid booking quantity")
	ErrItemNotFound           = errors.New("item not found")
	ErrNotAvailable           = errors.New("not enough items available")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrCustomerResolution     = errors.New("customer could not be resolved")
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
