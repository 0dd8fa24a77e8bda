package compiler

import (
	"strings"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// Comparison tests a (coerced) record value against a literal.
type Comparison func(data, literal ir.Value) bool

// newComparison returns the comparison for c. CmpUnsupported and unknown
// comparators are always false.
func newComparison(c queryir.Comparator) Comparison {
	switch c {
	case queryir.CmpEq:
		return ir.StrictEqual
	case queryir.CmpNe:
		return func(data, literal ir.Value) bool {
			return !ir.StrictEqual(data, literal)
		}
	case queryir.CmpLt:
		return ordered(func(cmp int) bool { return cmp < 0 })
	case queryir.CmpLe:
		return ordered(func(cmp int) bool { return cmp <= 0 })
	case queryir.CmpGt:
		return ordered(func(cmp int) bool { return cmp > 0 })
	case queryir.CmpGe:
		return ordered(func(cmp int) bool { return cmp >= 0 })
	case queryir.CmpContains:
		return contains
	case queryir.CmpStartsWith:
		return bothStrings(strings.HasPrefix)
	case queryir.CmpEndsWith:
		return bothStrings(strings.HasSuffix)
	default:
		return never
	}
}

// ordered guards against a null or undefined literal, then compares values
// of the same kind. Values of different kinds are never ordered.
func ordered(accept func(cmp int) bool) Comparison {
	return func(data, literal ir.Value) bool {
		if literal.IsNullish() {
			return false
		}
		cmp, ok := ir.Compare(data, literal)
		return ok && accept(cmp)
	}
}

// contains is element membership for arrays and substring search for
// strings.
func contains(data, literal ir.Value) bool {
	switch data.Kind {
	case ir.KindArray:
		for _, elem := range data.Elements() {
			if ir.StrictEqual(elem, literal) {
				return true
			}
		}
		return false
	case ir.KindString:
		return literal.Kind == ir.KindString && strings.Contains(data.Str, literal.Str)
	default:
		return false
	}
}

func bothStrings(test func(s, affix string) bool) Comparison {
	return func(data, literal ir.Value) bool {
		return data.Kind == ir.KindString && literal.Kind == ir.KindString && test(data.Str, literal.Str)
	}
}

func never(ir.Value, ir.Value) bool { return false }

// Coerce converts a record value for comparison with literal. Only a string
// literal triggers conversion, and only of null, numbers, booleans and
// dates; everything else is returned unchanged.
func Coerce(data, literal ir.Value) ir.Value {
	if data.Kind == literal.Kind || literal.Kind != ir.KindString {
		return data
	}
	switch data.Kind {
	case ir.KindNull, ir.KindNumber, ir.KindBool, ir.KindDate:
		return ir.StringValue(data.String())
	default:
		return data
	}
}
