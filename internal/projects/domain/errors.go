package domain

import "errors"

var (
	// ErrRemoteUnavailable covers every failure talking to the remote store:
	// network, auth, quota. Callers fall back to the local cache.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrLocalUnavailable covers local cache and queue read/write failures.
	ErrLocalUnavailable = errors.New("local store unavailable")
	ErrNotFound         = errors.New("project not found")
	ErrMissingID        = errors.New("project id is required")
	// ErrPersistenceFailed is returned when a mutation could be stored neither remotely nor locally.
	ErrPersistenceFailed = errors.New("project could not be persisted")
)
