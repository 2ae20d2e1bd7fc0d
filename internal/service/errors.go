package service

import (
	"errors"

	"taman-digital/internal/repository"
)

var (
	ErrPostNotFound         = errors.New("post not found")
	ErrForbidden            = errors.New("not the author of this post")
	ErrUnauthenticated      = errors.New("session required")
	ErrNothingToRecover     = errors.New("no newer snapshot to recover")
	ErrGeneratorUnavailable = errors.New("text generator unavailable")
	ErrProviderUnavailable  = errors.New("provider sign-in unavailable")

	// Identity errors are raised by the user repository.
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrInvalidCredentials = repository.ErrInvalidCredentials
	ErrUsernameTaken      = repository.ErrUsernameTaken
	ErrEmailTaken         = repository.ErrEmailTaken
	ErrSelfFollow         = repository.ErrSelfFollow
)
