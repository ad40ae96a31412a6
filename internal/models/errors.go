package models

import "errors"

var (
	ErrConflict         = errors.New("participant name already in use")
	ErrNotFound         = errors.New("participant not found")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)
