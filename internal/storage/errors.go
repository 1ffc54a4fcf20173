package storage

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUserNotFound = errors.New("user not found")
	ErrConflict     = errors.New("conflict")
	ErrUserExist    = errors.New("user already exists")
	ErrLimitReached = errors.New("invitation use limit reached")
)
