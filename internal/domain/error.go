package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("session is not active")
	ErrUpstreamFailed  = errors.New("upstream service unavailable")
	ErrRateLimited     = errors.New("too many messages")
	ErrLockUnavailable = errors.New("could not acquire entity lock")
)
