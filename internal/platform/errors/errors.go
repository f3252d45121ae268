package apperrors

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrNoActiveSession      = errors.New("no active tracking session")
	ErrSessionAlreadyActive = errors.New("tracking session already active")
	ErrNoPendingDecision    = errors.New("no pending idle decision")
	ErrDecisionPending      = errors.New("idle decision already pending")
)
