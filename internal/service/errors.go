// Package service holds the access rules and workflows of the backend:
// per-role row policies over the collections, authentication, and the
// privileged administrator operations.
package service

import "errors"

var (
	// ErrForbidden: the caller's role may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized: missing or wrong credentials, or a claimed
	// administrator email that does not match.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials: login with an unknown email or bad password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation: the input is malformed.
	ErrValidation = errors.New("validation failed")
	// ErrSelfLockout: an administrator tried to demote or delete their own account.
	ErrSelfLockout = errors.New("cannot change your own account")
	// ErrUnknownCollection: no collection with that name.
	ErrUnknownCollection = errors.New("unknown collection")
)
