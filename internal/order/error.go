package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order must contain at least one item")
	ErrInvalidItem   = errors.New("item quantity must be a positive integer")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrAlreadyPaid   = errors.New("order already paid")
)
