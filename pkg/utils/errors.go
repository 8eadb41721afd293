package utils

import "errors"

// Sentinel errors dipakai service layer, di-wrap dengan fmt.Errorf("%w: ...")
// lalu dipetakan ke HTTP status oleh handler.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)
