package queryir

import (
	"fmt"
	"strings"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

// Instruction is one step of a compiled Program.
//
// This is a sealed interface - only types in this package implement it.
type Instruction interface {
	instruction() // Marker method - seals interface to this package
}

// Predicate tests one record.
type Predicate func(record any) bool

// Comparator is the resolved form of a comparison operator.
type Comparator uint8

// Comparators. CmpUnsupported is the zero value so that an unresolved
// operator is always false.
const (
	CmpUnsupported Comparator = iota
	CmpEq
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
	CmpContains
	CmpStartsWith
	CmpEndsWith
)

var comparatorSymbols = [...]string{
	CmpUnsupported: "?",
	CmpEq:          "=",
	CmpNe:          "!=",
	CmpLt:          "<",
	CmpLe:          "<=",
	CmpGt:          ">",
	CmpGe:          ">=",
	CmpContains:    "cont",
	CmpStartsWith:  "sw",
	CmpEndsWith:    "ew",
}

// String returns the operator symbol, "?" for CmpUnsupported.
func (c Comparator) String() string {
	if int(c) < len(comparatorSymbols) {
		return comparatorSymbols[c]
	}
	return fmt.Sprintf("Comparator(%d)", c)
}

// ComparatorFor resolves an operator symbol. Unknown symbols resolve to
// CmpUnsupported.
func ComparatorFor(op ir.Operator) Comparator {
	switch op {
	case ir.OpEq:
		return CmpEq
	case ir.OpNe:
		return CmpNe
	case ir.OpLt:
		return CmpLt
	case ir.OpLe:
		return CmpLe
	case ir.OpGt:
		return CmpGt
	case ir.OpGe:
		return CmpGe
	case ir.OpContains:
		return CmpContains
	case ir.OpStartsWith:
		return CmpStartsWith
	case ir.OpEndsWith:
		return CmpEndsWith
	default:
		return CmpUnsupported
	}
}

// Condition is a compiled comparison.
//
// Pred is the executable form. Key, Path, Op, Comparator and Literal describe
// it for listings and diagnostics; the evaluator only calls Pred.
type Condition struct {
	Key        string      // Dotted path as written
	Path       []string    // Key split on "."
	Op         ir.Operator // Operator symbol as written
	Comparator Comparator  // Resolved operator
	Literal    ir.Value    // Comparison literal
	Pred       Predicate
}

func (Condition) instruction() {}

// Eval runs the predicate. A Condition without a predicate is false.
func (c Condition) Eval(record any) bool {
	if c.Pred == nil {
		return false
	}
	return c.Pred(record)
}

func (c Condition) String() string {
	lit := c.Literal.String()
	if c.Literal.Kind == ir.KindString {
		lit = fmt.Sprintf("%q", lit)
	}
	return fmt.Sprintf("COND %s %s %s", c.Key, c.Op, lit)
}

// OperatorKind is a logical connective in resolved form.
type OperatorKind uint8

// Operator kinds. Unsupported stands for a connective the evaluator cannot
// apply; applying it makes the record false.
const (
	Unsupported OperatorKind = iota
	AND
	OR
)

func (k OperatorKind) String() string {
	switch k {
	case AND:
		return "AND"
	case OR:
		return "OR"
	default:
		return "UNSUPPORTED"
	}
}

// Operator is a binary logical connective.
type Operator struct {
	Kind   OperatorKind
	Symbol string // Connective as written; informational for Unsupported
}

func (Operator) instruction() {}

// Precedence returns the binding strength: AND 2, OR 1, Unsupported 0.
func (o Operator) Precedence() int {
	switch o.Kind {
	case AND:
		return 2
	case OR:
		return 1
	default:
		return 0
	}
}

func (o Operator) String() string {
	if o.Kind == Unsupported {
		return fmt.Sprintf("UNSUPPORTED %q", o.Symbol)
	}
	return o.Kind.String()
}

// OperatorFor resolves a connective symbol.
func OperatorFor(c ir.Connective) Operator {
	switch c {
	case ir.And:
		return Operator{Kind: AND, Symbol: string(c)}
	case ir.Or:
		return Operator{Kind: OR, Symbol: string(c)}
	default:
		return Operator{Kind: Unsupported, Symbol: string(c)}
	}
}

// Open starts a group.
type Open struct{}

func (Open) instruction() {}

func (Open) String() string { return "OPEN" }

// Close ends a group.
type Close struct{}

func (Close) instruction() {}

func (Close) String() string { return "CLOSE" }

// Program is an immutable compiled expression.
type Program struct {
	ID             string        // Unique per compilation
	ExpressionHash string        // Fingerprint of the source expression
	Instructions   []Instruction // Evaluation order
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Instructions)
}

// Empty reports whether the program has no instructions. An empty program
// matches every record.
func (p *Program) Empty() bool {
	return p.Len() == 0
}

// Conditions returns the number of Condition instructions.
func (p *Program) Conditions() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, in := range p.Instructions {
		if _, ok := in.(Condition); ok {
			n++
		}
	}
	return n
}

// String renders one instruction per line:
//
//	COND age > 20
//	AND
//	OPEN
//	...
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for i, in := range p.Instructions {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprint(&b, in)
	}
	return b.String()
}
