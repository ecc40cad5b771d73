package domain

import "errors"

var (
	// ErrInvalidInput is returned when an input file is missing or malformed
	ErrInvalidInput = errors.New("invalid input")

	// ErrLoadFailed is returned when the store rejects a load and the transaction was rolled back
	ErrLoadFailed = errors.New("load failed")

	// ErrUnresolvedTag is returned when a movie-tag association names a tag the store does not know
	ErrUnresolvedTag = errors.New("unresolved tag")
)
