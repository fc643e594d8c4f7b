package parser

import (
	"errors"
	"fmt"
)

// ParsingError reports that an element the page layout requires is missing.
type ParsingError struct {
	Selector string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("element %q not found", e.Selector)
}

// IsParsingError reports whether err is, or wraps, a *ParsingError.
func IsParsingError(err error) bool {
	var pe *ParsingError
	return errors.As(err, &pe)
}

// rowError is a recoverable problem with a single table row.
type rowError struct {
	msg string
}

func (e *rowError) Error() string { return e.msg }

func rowErrorf(format string, args ...interface{}) error {
	return &rowError{msg: fmt.Sprintf(format, args...)}
}
