// Package service provides application-level services for managing tasks.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for specific conditions; the API layer maps
// them to HTTP status codes.
var (
	// ErrTaskNotOwned indicates a task is owned by a different user than the
	// one making the request. The API layer maps this to HTTP 403 Forbidden.
	ErrTaskNotOwned = errors.New("task is owned by another user")
)
