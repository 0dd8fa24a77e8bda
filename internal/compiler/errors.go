package compiler

import (
	"errors"
	"fmt"
)

// CompileError reports a token that cannot be compiled.
type CompileError struct {
	Index   int    // Token position in the expression
	Field   string // Offending token field, e.g. "val"
	Message string
	Err     error // Underlying cause, may be nil
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("token %d: %s: %s", e.Index, e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsCompileError reports whether err is or wraps a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}
