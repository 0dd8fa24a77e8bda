package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
	"unicode/utf16"
)

// Kind classifies a runtime value at comparison time.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindDate
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindString:    "string",
	KindNumber:    "number",
	KindBool:      "boolean",
	KindDate:      "date",
	KindArray:     "array",
	KindObject:    "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is a record field or literal normalized for comparison.
// Only the field matching Kind is meaningful; Raw keeps arrays and objects.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
	Raw  any
}

// UndefinedValue is the value of a missing field.
var UndefinedValue = Value{Kind: KindUndefined}

// NullValue is the value of an explicit null.
var NullValue = Value{Kind: KindNull}

// StringValue creates a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue creates a number Value.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ValueOf classifies an arbitrary record value. It never fails: anything
// that is not a scalar, date or list is an object.
func ValueOf(v any) Value {
	switch val := v.(type) {
	case nil:
		return NullValue
	case undefinedType:
		return UndefinedValue
	case string:
		return StringValue(val)
	case bool:
		return BoolValue(val)
	case float64:
		return NumberValue(val)
	case int:
		return NumberValue(float64(val))
	case int64:
		return NumberValue(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return NumberValue(math.NaN())
		}
		return NumberValue(f)
	case time.Time:
		return Value{Kind: KindDate, Time: val}
	case *time.Time:
		if val == nil {
			return NullValue
		}
		return Value{Kind: KindDate, Time: *val}
	case []any:
		return Value{Kind: KindArray, Raw: val}
	case map[string]any:
		return Value{Kind: KindObject, Raw: val}
	}
	return valueOfReflect(reflect.ValueOf(v))
}

// valueOfReflect handles named and sized types the fast path misses.
func valueOfReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NullValue
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.String:
		return StringValue(rv.String())
	case reflect.Bool:
		return BoolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NumberValue(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return NumberValue(rv.Float())
	case reflect.Slice:
		if rv.IsNil() {
			return NullValue
		}
		return Value{Kind: KindArray, Raw: rv.Interface()}
	case reflect.Array:
		return Value{Kind: KindArray, Raw: rv.Interface()}
	case reflect.Map:
		if rv.IsNil() {
			return NullValue
		}
		return Value{Kind: KindObject, Raw: rv.Interface()}
	default:
		return Value{Kind: KindObject, Raw: rv.Interface()}
	}
}

// Literal converts a Condition value into a Value. Only scalars, null and
// Undefined are accepted.
func Literal(v any) (Value, error) {
	val := ValueOf(v)
	switch val.Kind {
	case KindUndefined, KindNull, KindString, KindNumber, KindBool:
		return val, nil
	default:
		return Value{}, fmt.Errorf("unsupported literal type %T: must be string, number, boolean, null or undefined", v)
	}
}

// Elements returns the elements of an array Value as Values.
// Returns nil for non-arrays.
func (v Value) Elements() []Value {
	if v.Kind != KindArray {
		return nil
	}
	if list, ok := v.Raw.([]any); ok {
		out := make([]Value, len(list))
		for i, elem := range list {
			out[i] = ValueOf(elem)
		}
		return out
	}
	rv := reflect.ValueOf(v.Raw)
	out := make([]Value, rv.Len())
	for i := range out {
		out[i] = ValueOf(rv.Index(i).Interface())
	}
	return out
}

// IsNullish reports whether v is null or undefined.
func (v Value) IsNullish() bool {
	return v.Kind == KindNull || v.Kind == KindUndefined
}

// String renders the value the way ECMAScript's String() would for
// scalars. Arrays and objects render with fmt.
func (v Value) String() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindString:
		return v.Str
	case KindNumber:
		return FormatNumber(v.Num)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindDate:
		return FormatDate(v.Time)
	default:
		return fmt.Sprint(v.Raw)
	}
}

// ISODateLayout is ECMAScript's Date.prototype.toISOString layout (UTC, ms).
const ISODateLayout = "2006-01-02T15:04:05.000Z"

// FormatDate renders t in ISODateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(ISODateLayout)
}

// StrictEqual is ECMAScript === restricted to the value model: same kind and
// same value. NaN is never equal to itself. Arrays and objects have identity
// semantics, which cannot be observed from a literal, so they never match.
func StrictEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUndefined, KindNull:
		return true
	case KindString:
		return a.Str == b.Str
	case KindNumber:
		return a.Num == b.Num
	case KindBool:
		return a.Bool == b.Bool
	case KindDate:
		return a.Time.Equal(b.Time)
	default:
		return false
	}
}

// Compare orders two values of the same kind. ok is false when the values
// are not comparable: different kinds, nullish, arrays, objects or NaN.
// Strings compare by UTF-16 code units, as ECMAScript does.
func Compare(a, b Value) (cmp int, ok bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case KindNumber:
		if math.IsNaN(a.Num) || math.IsNaN(b.Num) {
			return 0, false
		}
		switch {
		case a.Num < b.Num:
			return -1, true
		case a.Num > b.Num:
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		return CompareUTF16(a.Str, b.Str), true
	case KindBool:
		switch {
		case a.Bool == b.Bool:
			return 0, true
		case !a.Bool:
			return -1, true
		default:
			return 1, true
		}
	case KindDate:
		return a.Time.Compare(b.Time), true
	default:
		return 0, false
	}
}

// CompareUTF16 compares strings using UTF-16 code unit ordering.
// This is both ECMAScript's string ordering and RFC 8785 key ordering.
// Go's native string comparison uses UTF-8 which orders supplementary
// characters differently.
func CompareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}

	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// All compared units equal: shorter string first
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// UTF16Len returns the length of s in UTF-16 code units (ECMAScript's
// String.prototype.length).
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
