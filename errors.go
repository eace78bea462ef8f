package solvee

import "errors"

var (
	ErrNoEquation        = errors.New("solvee: no equation set")
	ErrOperationDisabled = errors.New("solvee: operation not enabled")
	ErrBusy              = errors.New("solvee: expansion in progress")
)
