package repository

import "errors"

var (
	ErrNotFound        = errors.New("repository: not found")
	ErrVersionConflict = errors.New("repository: version conflict")
)
