package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicate            = errors.New("duplicate entry")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnknownPlatform      = errors.New("unknown platform")
	ErrCollectionInProgress = errors.New("collection already in progress")
	ErrMalformedResponse    = errors.New("malformed analysis response")
	ErrProviderUnavailable  = errors.New("analysis provider unavailable")
)
