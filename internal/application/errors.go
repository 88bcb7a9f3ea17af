package application

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrCycleInProgress = errors.New("resolution cycle already in progress")
)
