package compiler

import (
	"fmt"
	"log/slog"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// Compiler turns expressions into programs.
//
// Thread-safety: a Compiler is safe for concurrent use when its IDGenerator
// is.
type Compiler struct {
	cache *Cache
	ids   IDGenerator
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCache shares an accessor/comparison cache between compilers.
func WithCache(cache *Cache) Option {
	return func(c *Compiler) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithIDGenerator sets the program ID source. Defaults to UUIDv7Generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(c *Compiler) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// New creates a Compiler with its own cache unless WithCache is given.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		cache: NewCache(),
		ids:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the compiler's cache.
func (c *Compiler) Cache() *Cache {
	return c.cache
}

var defaultCompiler = New()

// Compile compiles expr with the package default compiler.
func Compile(expr ir.Expression) (*queryir.Program, error) {
	return defaultCompiler.Compile(expr)
}

// Compile translates expr into a Program.
//
// Implicit AND: a condition or "(" directly after a condition or ")" gets an
// AND inserted before it. Holes and unknown brackets are skipped. Unknown
// connectives compile to an Unsupported operator, unknown comparison
// operators to an always-false condition.
//
// Compile fails only when a condition value is not a scalar, null or
// undefined.
func (c *Compiler) Compile(expr ir.Expression) (*queryir.Program, error) {
	instrs := make([]queryir.Instruction, 0, len(expr)+len(expr)/2)
	lastWasCondition := false
	and := queryir.OperatorFor(ir.And)

	for i, tok := range expr {
		switch t := ir.Normalize(tok).(type) {
		case nil:
			continue

		case ir.Condition:
			cond, err := c.condition(i, t)
			if err != nil {
				return nil, err
			}
			if lastWasCondition {
				instrs = append(instrs, and)
			}
			instrs = append(instrs, cond)
			lastWasCondition = true

		case ir.Group:
			switch t.Grp {
			case ir.Open:
				if lastWasCondition {
					instrs = append(instrs, and)
				}
				instrs = append(instrs, queryir.Open{})
				lastWasCondition = false
			case ir.Close:
				instrs = append(instrs, queryir.Close{})
				lastWasCondition = true
			default:
				slog.Debug("skipping unknown bracket", "index", i, "grp", string(t.Grp))
			}

		case ir.Connector:
			op := queryir.OperatorFor(t.Con)
			if op.Kind == queryir.Unsupported {
				slog.Debug("unsupported connective", "index", i, "con", string(t.Con))
			}
			instrs = append(instrs, op)
			lastWasCondition = false
		}
	}

	prog := &queryir.Program{
		ID:           c.ids.Generate(),
		Instructions: instrs,
	}
	if hash, err := ir.ExpressionHash(expr); err == nil {
		prog.ExpressionHash = hash
	} else {
		slog.Debug("expression not hashable", "program_id", prog.ID, "error", err)
	}
	return prog, nil
}

// condition compiles one comparison token.
func (c *Compiler) condition(index int, t ir.Condition) (queryir.Condition, error) {
	literal, err := ir.Literal(t.Value)
	if err != nil {
		return queryir.Condition{}, &CompileError{
			Index:   index,
			Field:   "val",
			Message: fmt.Sprintf("condition on %q: %v", t.Key, err),
			Err:     err,
		}
	}

	path := SplitPath(t.Key)
	comparator := queryir.ComparatorFor(t.Op)
	if comparator == queryir.CmpUnsupported {
		slog.Debug("unsupported operator", "index", index, "key", t.Key, "op", string(t.Op))
	}

	return queryir.Condition{
		Key:        t.Key,
		Path:       path,
		Op:         t.Op,
		Comparator: comparator,
		Literal:    literal,
		Pred:       NewPredicate(c.cache.Accessor(path), c.cache.Comparison(comparator), literal),
	}, nil
}

// NewPredicate combines an accessor, a comparison and a literal into a
// record predicate. The record value is coerced toward the literal first.
func NewPredicate(acc Accessor, cmp Comparison, literal ir.Value) queryir.Predicate {
	if literal.Kind != ir.KindString {
		return func(record any) bool {
			return cmp(ir.ValueOf(acc(record)), literal)
		}
	}
	return func(record any) bool {
		return cmp(Coerce(ir.ValueOf(acc(record)), literal), literal)
	}
}
