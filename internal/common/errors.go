// Package common defines sentinel errors shared by the repository, storage,
// service and HTTP layers. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository and storage errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Request validation errors (missing fields, bad file type or size).
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrInternal = errors.New("internal error")
)
