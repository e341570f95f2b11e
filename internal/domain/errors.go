package domain

import "errors"

// Sentinel errors used across all layers.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrEmptyTerm     = errors.New("term cannot be empty")
	ErrStorage       = errors.New("storage failure")
)
