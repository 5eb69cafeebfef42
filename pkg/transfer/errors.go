package transfer

import "errors"

var (
	// ErrInvalidTransferRequest rejects a submission without touching the registry.
	ErrInvalidTransferRequest = errors.New("invalid transfer request")
	ErrNotFound               = errors.New("transfer not found")
	// ErrIllegalTransition is returned for any status change that is not a step forward.
	ErrIllegalTransition = errors.New("illegal status transition")
)
