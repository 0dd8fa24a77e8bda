package jsonfilter

import (
	"github.com/Mika83AC/ad-hoc-json-filter/internal/compiler"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/engine"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

type (
	// Expression is a flat token sequence. Nil entries are skipped.
	Expression = ir.Expression
	// Token is one of Condition, Connector or Group.
	Token      = ir.Token
	Condition  = ir.Condition
	Connector  = ir.Connector
	Group      = ir.Group
	Operator   = ir.Operator
	Connective = ir.Connective
	Bracket    = ir.Bracket

	// Program is a compiled expression. It is immutable and may be shared.
	Program = queryir.Program

	// ValidationError is one finding of Validate.
	ValidationError = compiler.ValidationError
)

// Comparison operators.
const (
	OpEq         = ir.OpEq
	OpNe         = ir.OpNe
	OpLt         = ir.OpLt
	OpLe         = ir.OpLe
	OpGt         = ir.OpGt
	OpGe         = ir.OpGe
	OpContains   = ir.OpContains
	OpStartsWith = ir.OpStartsWith
	OpEndsWith   = ir.OpEndsWith
)

// Connectives and brackets.
const (
	And   = ir.And
	Or    = ir.Or
	Open  = ir.Open
	Close = ir.Close
)

// DefaultBatchSize is the chunk size FilterBatch uses for sizes below 1.
const DefaultBatchSize = engine.DefaultBatchSize

// Undefined is the absent value. A Condition whose Value is Undefined matches
// records where the key is missing; nil matches an explicit null.
var Undefined = ir.Undefined

// Cond builds a condition token.
func Cond(key string, op Operator, value any) Condition { return ir.Cond(key, op, value) }

// AndToken returns an && connector.
func AndToken() Connector { return ir.AndToken() }

// OrToken returns an || connector.
func OrToken() Connector { return ir.OrToken() }

// OpenToken returns a "(" group token.
func OpenToken() Group { return ir.OpenToken() }

// CloseToken returns a ")" group token.
func CloseToken() Group { return ir.CloseToken() }

// ParseExpression decodes a JSON expression document such as
// [{"key":"age","op":">","val":20},{"con":"&&"},{"grp":"("}].
// A condition without "val" compares against Undefined.
func ParseExpression(data []byte) (Expression, error) {
	return ir.ParseExpression(data)
}

// Filter returns the records of records that satisfy expr, in input order.
// An empty expression returns records unchanged.
func Filter[T any](records []T, expr Expression) []T {
	return engine.Filter(records, expr)
}

// FilterBatch is Filter processing records in chunks of batchSize. The
// result is identical to Filter for every batch size.
func FilterBatch[T any](records []T, expr Expression, batchSize int) []T {
	return engine.FilterBatch(records, expr, batchSize)
}

// Compile compiles expr once for repeated matching. It fails only when a
// condition's literal is not a scalar.
func Compile(expr Expression) (*Program, error) {
	return compiler.Compile(expr)
}

// Validate lints expr and returns every problem found. Findings do not stop
// an expression from compiling.
func Validate(expr Expression) []ValidationError {
	return compiler.Validate(expr)
}

// Matcher evaluates one compiled program. It is safe for concurrent use.
type Matcher struct {
	eval *engine.Evaluator
}

// NewMatcher compiles expr into a Matcher.
func NewMatcher(expr Expression) (*Matcher, error) {
	prog, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Matcher{eval: engine.NewEvaluator(prog)}, nil
}

// Match reports whether record satisfies the expression.
func (m *Matcher) Match(record any) bool {
	return m.eval.Match(record)
}

// Explain is Match with the reason a malformed expression excluded record.
func (m *Matcher) Explain(record any) (bool, error) {
	return m.eval.Explain(record)
}

// Program returns the compiled program.
func (m *Matcher) Program() *Program {
	return m.eval.Program()
}
