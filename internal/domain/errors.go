package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers and commands compare against these with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrLockBusy           = errors.New("another run holds the queue lock")
	ErrMissingTrackingURL = errors.New("URL no especificada")
	ErrInvalidTrackingURL = errors.New("URL inválida")
	ErrTabNotFound        = errors.New("tab not found")
)
