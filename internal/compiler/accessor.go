package compiler

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

// Accessor reads one dotted path from a record. It returns ir.Undefined when
// the path does not resolve.
type Accessor func(record any) any

// SplitPath splits a dotted key into segments. There is no escaping: a key
// containing a literal "." cannot be addressed.
func SplitPath(key string) []string {
	return strings.Split(key, ".")
}

// Resolve reads path from record the way a compiled condition does.
func Resolve(record any, path []string) any {
	return newAccessor(path)(record)
}

// newAccessor builds the accessor for path. Single-segment paths skip the
// loop.
func newAccessor(path []string) Accessor {
	if len(path) == 1 {
		key := path[0]
		return func(record any) any {
			return lookup(record, key)
		}
	}
	return func(record any) any {
		current := record
		for _, key := range path {
			current = lookup(current, key)
			if ir.IsUndefined(current) {
				return ir.Undefined
			}
		}
		return current
	}
}

// lookup reads one property. Null, undefined and values without properties
// yield ir.Undefined.
func lookup(current any, key string) any {
	switch v := current.(type) {
	case nil:
		return ir.Undefined
	case map[string]any:
		if val, ok := v[key]; ok {
			return val
		}
		return ir.Undefined
	case []any:
		if key == "length" {
			return len(v)
		}
		if i, ok := arrayIndex(key, len(v)); ok {
			return v[i]
		}
		return ir.Undefined
	case string:
		return stringProperty(v, key)
	case float64, bool, int, int64:
		return ir.Undefined
	}
	if ir.IsUndefined(current) {
		return ir.Undefined
	}
	return lookupReflect(reflect.ValueOf(current), key)
}

func lookupReflect(rv reflect.Value, key string) any {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ir.Undefined
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return ir.Undefined
		}
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return ir.Undefined
		}
		return val.Interface()
	case reflect.Slice, reflect.Array:
		if key == "length" {
			return rv.Len()
		}
		if i, ok := arrayIndex(key, rv.Len()); ok {
			return rv.Index(i).Interface()
		}
		return ir.Undefined
	case reflect.String:
		return stringProperty(rv.String(), key)
	case reflect.Struct:
		idx, ok := structFields(rv.Type())[key]
		if !ok {
			return ir.Undefined
		}
		return rv.FieldByIndex(idx).Interface()
	default:
		return ir.Undefined
	}
}

// arrayIndex parses key as a canonical array index ("0", "12"; not "01" or
// "-1") within bounds.
func arrayIndex(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= n || strconv.Itoa(i) != key {
		return 0, false
	}
	return i, true
}

// stringProperty supports "length" and indexing, both in UTF-16 code units.
func stringProperty(s, key string) any {
	if key == "length" {
		return ir.UTF16Len(s)
	}
	units := utf16.Encode([]rune(s))
	if i, ok := arrayIndex(key, len(units)); ok {
		return string(utf16.Decode(units[i : i+1]))
	}
	return ir.Undefined
}

var fieldCache sync.Map // reflect.Type -> map[string][]int

// structFields maps property names to field indexes: the json tag name when
// present, otherwise the Go field name. Unexported fields and fields tagged
// "-" are not addressable. Embedded struct fields are promoted.
func structFields(t reflect.Type) map[string][]int {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string][]int)
	}

	fields := make(map[string][]int)
	collectFields(t, nil, fields)
	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.(map[string][]int)
}

func collectFields(t reflect.Type, prefix []int, out map[string][]int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get("json") == "" {
			collectFields(f.Type, idx, out)
			continue
		}
		if !f.IsExported() {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		// Outer fields shadow promoted ones
		if _, exists := out[name]; exists && len(prefix) > 0 {
			continue
		}
		out[name] = idx
	}
}
