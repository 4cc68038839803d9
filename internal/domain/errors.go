package domain

import "errors"

// ErrInvalidInput marks a request that can never succeed as submitted.
// Callers wrap it with the specific reason.
var ErrInvalidInput = errors.New("invalid input")
