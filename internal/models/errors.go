package models

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// DuplicateKeyError names the unique field that collided, when it is known.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return ErrDuplicateKey.Error()
	}
	return "duplicate " + e.Field
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }
