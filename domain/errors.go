package domain

import "errors"

var (
	ErrOrgNotFound       = errors.New("organization not found")
	ErrContentNotFound   = errors.New("content not found")
	ErrSearchUnavailable = errors.New("search unavailable")
)

// ValidationError is a caller input problem, reported as 400 and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RepositoryError represents an error from the repository layer.
type RepositoryError struct {
	Op  string
	Err string
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err
}

// SearchEngineError represents an error from the search engine layer.
type SearchEngineError struct {
	Op  string
	Err string
}

func (e *SearchEngineError) Error() string {
	return e.Op + ": " + e.Err
}

// Is lets a failed search engine call satisfy errors.Is(err, ErrSearchUnavailable).
func (e *SearchEngineError) Is(target error) bool {
	return target == ErrSearchUnavailable
}
