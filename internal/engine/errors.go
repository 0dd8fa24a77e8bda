package engine

import (
	"errors"
	"fmt"
)

// EvalError describes why a record evaluated fail-closed.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the instruction being processed, or -1 at end of program.
	Index int
}

// EvalErrorCode categorizes evaluation anomalies.
type EvalErrorCode string

const (
	// ErrCodeStackUnderflow indicates a connector without two operands.
	ErrCodeStackUnderflow EvalErrorCode = "STACK_UNDERFLOW"

	// ErrCodeUnmatchedClose indicates ")" with no "(" on the stack.
	ErrCodeUnmatchedClose EvalErrorCode = "UNMATCHED_CLOSE"

	// ErrCodeUnclosedGroup indicates "(" still open at end of program.
	ErrCodeUnclosedGroup EvalErrorCode = "UNCLOSED_GROUP"

	// ErrCodeUnsupportedOperator indicates a connective other than AND/OR.
	ErrCodeUnsupportedOperator EvalErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeDanglingOperands indicates more than one result at end of program.
	ErrCodeDanglingOperands EvalErrorCode = "DANGLING_OPERANDS"

	// ErrCodePredicatePanic indicates a predicate panicked on the record.
	ErrCodePredicatePanic EvalErrorCode = "PREDICATE_PANIC"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (instruction %d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsEvalError reports whether err is or wraps an *EvalError.
func IsEvalError(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee)
}

// EvalErrorCodeOf returns the code of an *EvalError in err's chain, or "".
func EvalErrorCodeOf(err error) EvalErrorCode {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

func newEvalError(code EvalErrorCode, index int, format string, args ...any) *EvalError {
	return &EvalError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Index:   index,
	}
}
