package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLine is returned for a line without any tokens.
	ErrEmptyLine = errors.New("empty line")
	// ErrCommentLine marks a line that is only a comment. Callers skip it
	// silently; it is not a failure.
	ErrCommentLine = errors.New("comment line")
	// ErrMalformedLine is returned when the line does not start with a date
	// or a part, or (strict mode) carries no parts.
	ErrMalformedLine = errors.New("malformed line")
	ErrMalformedDate = errors.New("malformed date")
	ErrMalformedTime = errors.New("malformed time")
	ErrMalformedPart = errors.New("malformed part")
	// ErrMalformedFactor is only returned in strict mode; tolerant parsing
	// substitutes the default factor.
	ErrMalformedFactor = errors.New("malformed factor")
)

// ParseError describes which token failed and why. Kind is one of the
// sentinel errors of this package or model.ErrStopBeforeStart.
type ParseError struct {
	Kind  error
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v %q: %v", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("%v %q", e.Kind, e.Input)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsSkip reports whether err only signals a line to ignore.
func IsSkip(err error) bool {
	return errors.Is(err, ErrCommentLine)
}

func fail(kind error, input string, err error) error {
	return &ParseError{Kind: kind, Input: input, Err: err}
}
