package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInvalidVocabulary   = errors.New("invalid vocabulary")
	ErrCandidateGeneration = errors.New("candidate generation failed")
	ErrStoreUnavailable    = errors.New("store unavailable")
)
