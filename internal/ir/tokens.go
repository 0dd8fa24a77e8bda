package ir

// Token is a sealed interface for one element of a filter expression.
// Only Condition, Connector and Group implement it.
//
// The input is a flat sequence: there is no tree, and brackets may be
// unbalanced. Consumers must degrade gracefully rather than assume validity.
type Token interface {
	token() // Sealed - only these types implement it
}

// Expression is an ordered token sequence. Nil entries are holes.
type Expression []Token

// Operator is a comparison operator symbol as written in the expression.
// Unknown symbols are kept verbatim; they compile to an always-false
// condition.
type Operator string

// Supported comparison operators.
const (
	OpEq         Operator = "="
	OpNe         Operator = "!="
	OpLt         Operator = "<"
	OpLe         Operator = "<="
	OpGt         Operator = ">"
	OpGe         Operator = ">="
	OpContains   Operator = "cont"
	OpStartsWith Operator = "sw"
	OpEndsWith   Operator = "ew"
)

// Operators lists the supported comparison operators in documentation order.
var Operators = []Operator{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpContains, OpStartsWith, OpEndsWith}

// Valid reports whether op is one of the supported comparison operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpContains, OpStartsWith, OpEndsWith:
		return true
	default:
		return false
	}
}

// Connective is a logical connector symbol.
type Connective string

// Supported connectives.
const (
	And Connective = "&&"
	Or  Connective = "||"
)

// Valid reports whether c is && or ||.
func (c Connective) Valid() bool {
	return c == And || c == Or
}

// Bracket is a group marker symbol.
type Bracket string

// Supported brackets.
const (
	Open  Bracket = "("
	Close Bracket = ")"
)

// Valid reports whether b is ( or ).
func (b Bracket) Valid() bool {
	return b == Open || b == Close
}

// undefinedType is the type of Undefined.
type undefinedType struct{}

func (undefinedType) String() string { return "undefined" }

// Undefined marks an absent literal. It is distinct from nil, which is null.
//
//	Condition{Key: "x", Op: OpEq, Value: nil}       // x === null
//	Condition{Key: "x", Op: OpEq, Value: Undefined} // x === undefined
var Undefined = undefinedType{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedType)
	return ok
}

// Condition compares the value at a dotted field path with a literal.
//
// Value must be a string, bool, any Go numeric type, json.Number, nil (null)
// or Undefined. Other types make compilation fail.
type Condition struct {
	Key   string
	Op    Operator
	Value any
}

func (Condition) token() {}

// Connector joins two conditions or groups.
type Connector struct {
	Con Connective
}

func (Connector) token() {}

// Group opens or closes a parenthetical group.
type Group struct {
	Grp Bracket
}

func (Group) token() {}

// Cond is shorthand for a Condition token.
// Example: Cond("age", OpGt, 20)
func Cond(key string, op Operator, value any) Condition {
	return Condition{Key: key, Op: op, Value: value}
}

// AndToken returns an explicit && connector.
func AndToken() Connector { return Connector{Con: And} }

// OrToken returns an explicit || connector.
func OrToken() Connector { return Connector{Con: Or} }

// OpenToken returns a ( group marker.
func OpenToken() Group { return Group{Grp: Open} }

// CloseToken returns a ) group marker.
func CloseToken() Group { return Group{Grp: Close} }

// Normalize returns the value form of tok. Pointer tokens are dereferenced
// and nil pointers become holes (nil).
func Normalize(tok Token) Token {
	switch t := tok.(type) {
	case *Condition:
		if t == nil {
			return nil
		}
		return *t
	case *Connector:
		if t == nil {
			return nil
		}
		return *t
	case *Group:
		if t == nil {
			return nil
		}
		return *t
	default:
		return tok
	}
}
