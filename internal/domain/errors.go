package domain

import "errors"

var (
	ErrCatalogUnavailable    = errors.New("catalog unavailable")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrLockHeld              = errors.New("lock already held")
)
