package compiler

import (
	"fmt"
	"strings"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Condition errors (E101-E109)
	ErrEmptyKey          = "E101" // condition key is empty
	ErrEmptyPathSegment  = "E102" // dotted key has an empty segment
	ErrUnknownOperator   = "E103" // comparison operator not supported
	ErrNonScalarValue    = "E104" // val is not a scalar, null or absent
	ErrNullOrderingValue = "E105" // ordering against null or undefined never matches

	// Connector errors (E110-E119)
	ErrUnknownConnective  = "E110" // connective is not && or ||
	ErrLeadingConnector   = "E111" // connector with no left operand
	ErrTrailingConnector  = "E112" // connector with no right operand
	ErrDuplicateConnector = "E113" // two connectors in a row

	// Group errors (E120-E129)
	ErrUnknownBracket = "E120" // bracket is not ( or )
	ErrUnmatchedClose = "E121" // ) without a matching (
	ErrUnclosedGroup  = "E122" // ( never closed
	ErrEmptyGroup     = "E123" // () with nothing inside
)

// ValidationError describes one problem in an expression.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Index   int    `json:"index"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// tokenKind tracks the previous significant token.
type tokenKind int

const (
	kindStart tokenKind = iota
	kindCondition
	kindConnector
	kindOpen
	kindClose
)

// Validate lints expr. It returns all problems found (does not fail-fast).
//
// Validation never affects compilation: every reported expression still
// compiles and evaluates (fail-closed) except for E104, which Compile
// rejects.
func Validate(expr ir.Expression) []ValidationError {
	v := &validator{}
	prev := kindStart
	var open []int // indexes of unclosed "("

	for i, tok := range expr {
		switch t := ir.Normalize(tok).(type) {
		case nil:
			continue

		case ir.Condition:
			v.validateCondition(i, t)
			prev = kindCondition

		case ir.Connector:
			if !t.Con.Valid() {
				v.add(i, "con", ErrUnknownConnective, "unknown connective %q: must be && or ||", t.Con)
			}
			switch prev {
			case kindStart, kindOpen:
				v.add(i, "con", ErrLeadingConnector, "connector %q has no left operand", t.Con)
			case kindConnector:
				v.add(i, "con", ErrDuplicateConnector, "connector %q follows another connector", t.Con)
			}
			prev = kindConnector

		case ir.Group:
			switch t.Grp {
			case ir.Open:
				open = append(open, i)
				prev = kindOpen
			case ir.Close:
				switch {
				case len(open) == 0:
					v.add(i, "grp", ErrUnmatchedClose, "\")\" has no matching \"(\"")
				case prev == kindOpen:
					v.add(i, "grp", ErrEmptyGroup, "group opened at token %d is empty", open[len(open)-1])
				case prev == kindConnector:
					v.add(i, "grp", ErrTrailingConnector, "connector before \")\" has no right operand")
				}
				if len(open) > 0 {
					open = open[:len(open)-1]
				}
				prev = kindClose
			default:
				v.add(i, "grp", ErrUnknownBracket, "unknown bracket %q: must be ( or ), token is ignored", t.Grp)
			}
		}
	}

	if prev == kindConnector {
		v.add(lastSignificant(expr), "con", ErrTrailingConnector, "expression ends with a connector")
	}
	for _, idx := range open {
		v.add(idx, "grp", ErrUnclosedGroup, "\"(\" is never closed")
	}

	return v.errs
}

type validator struct {
	errs []ValidationError
}

func (v *validator) add(index int, field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   fmt.Sprintf("[%d].%s", index, field),
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Index:   index,
	})
}

func (v *validator) validateCondition(i int, c ir.Condition) {
	// E101/E102: key shape
	if c.Key == "" {
		v.add(i, "key", ErrEmptyKey, "key is empty")
	} else if strings.Contains(c.Key, "..") || strings.HasPrefix(c.Key, ".") || strings.HasSuffix(c.Key, ".") {
		v.add(i, "key", ErrEmptyPathSegment, "key %q has an empty path segment", c.Key)
	}

	// E103: operator
	if !c.Op.Valid() {
		v.add(i, "op", ErrUnknownOperator, "unknown operator %q: condition is always false", c.Op)
	}

	// E104/E105: value
	literal, err := ir.Literal(c.Value)
	if err != nil {
		v.add(i, "val", ErrNonScalarValue, "%v", err)
		return
	}
	switch c.Op {
	case ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		if literal.IsNullish() {
			v.add(i, "val", ErrNullOrderingValue, "%q against %s never matches", c.Op, literal.Kind)
		}
	}
}

func lastSignificant(expr ir.Expression) int {
	for i := len(expr) - 1; i >= 0; i-- {
		if ir.Normalize(expr[i]) != nil {
			return i
		}
	}
	return 0
}
