package domain

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptySale         = errors.New("bill is empty")
	ErrLineIndex         = errors.New("line index out of range")
	ErrNotFound          = errors.New("inventory item not found")
	ErrSessionNotFound   = errors.New("bill session not found")
	ErrDuplicateRequest  = errors.New("duplicate request")
)
