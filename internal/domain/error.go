package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")

	// Page processing
	ErrFetchFailed      = errors.New("failed to fetch resource")
	ErrExtractionFailed = errors.New("failed to extract content")
	ErrEmptyContent     = errors.New("no readable content found")

	// Summary jobs
	ErrJobFinalized = errors.New("job already in a terminal state")
	ErrQueueFull    = errors.New("worker queue full")
	ErrRateLimited  = errors.New("rate limit exceeded")
)
