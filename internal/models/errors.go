package models

import "errors"

// Domain error categories. Callers wrap these with %w so boundaries can
// classify with errors.Is while messages stay specific.
var (
	ErrNotFound          = errors.New("not found")
	ErrInactive          = errors.New("entity is inactive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidOdometer   = errors.New("invalid odometer reading")
	ErrValidation        = errors.New("invalid input")
)
