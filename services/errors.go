package services

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNoteNotFound       = errors.New("note not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrInvalidState covers mutations a note's lifecycle state does not allow.
	ErrInvalidState      = errors.New("invalid state")
	ErrCannotEditDeleted = fmt.Errorf("%w: cannot edit deleted note", ErrInvalidState)
	ErrAlreadyDeleted    = fmt.Errorf("%w: note already deleted", ErrInvalidState)

	// ErrUpstream wraps failures of the scheduler and email providers.
	ErrUpstream = errors.New("upstream failure")
)
