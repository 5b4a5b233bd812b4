package service

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateName = errors.New("name already in use")
	ErrNameRequired  = errors.New("name is required")
	ErrImageRequired = errors.New("image is required")
	ErrIncompleteSet = errors.New("incomplete rectangle set")
	ErrBoundaryCount = errors.New("boundary count mismatch")
	ErrNoUnits       = errors.New("no units")
	ErrNoSections    = errors.New("at least one section is required")
)

// ValidationError collects every problem found in a draft. Nothing is
// written when a save returns one.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) add(err error) {
	e.Problems = append(e.Problems, err)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Error()
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error { return e.Problems }
