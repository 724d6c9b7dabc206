package services

import "errors"

// Error taxonomy surfaced by the relationship service. Callers match
// with errors.Is; the HTTP layer maps them to status codes.
//
// ErrNotFound deliberately covers both "no such request" and "request
// exists but addressed to someone else", so a caller can never probe
// for requests that are not theirs.
var (
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrTransactionFailed = errors.New("transaction failed")
)
