package services

import "errors"

// Define common service errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict") // e.g., duplicate email
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRenderFailed       = errors.New("failed to render invoice")
	ErrNotificationFailed = errors.New("failed to send notification")
	ErrUnauthenticated    = errors.New("unauthenticated")
)
