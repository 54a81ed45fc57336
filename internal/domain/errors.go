package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRecipient = errors.New("recipient id must not be empty")
	ErrInvalidType      = errors.New("notification type must not be empty")
	ErrInvalidTitle     = errors.New("title must not be empty")
	ErrInvalidPriority  = errors.New("priority must be between 0 and 10")
	ErrInvalidChannel   = errors.New("invalid channel: must be in_app, push, email, or sms")
	ErrQueueFull        = errors.New("queue is at capacity, try again later")
)
