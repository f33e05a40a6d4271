package domain

import "errors"

var (
	ErrInvalidInput         = errors.New("missing or malformed input")
	ErrStoreUnavailable     = errors.New("record store unavailable")
	ErrInferenceUnavailable = errors.New("inference backend unavailable")
	ErrUnauthenticated      = errors.New("missing or invalid identity")
	ErrForbidden            = errors.New("session belongs to another user")
	ErrSessionNotFound      = errors.New("session not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
)
