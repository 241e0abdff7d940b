package session

import "errors"

var (
	ErrNotFound = errors.New("session not found")
	ErrLocked   = errors.New("session is locked by another worker")
)
