package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrQueueEmpty      = errors.New("queue empty")
	ErrPoisonMessage   = errors.New("unrecognized queue message")
)
