package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for records and
// expressions. It is the serialization used for expression fingerprints and
// for deterministic CLI and golden-file output.
//
// Key differences from standard json.Marshal:
// 1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
// 2. No HTML escaping (< > & are NOT escaped)
// 3. Strings are NFC normalized
// 4. Numbers use the ECMAScript number-to-string algorithm
// 5. NaN and Infinity are rejected
// 6. Undefined object members are omitted; undefined array elements are null
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case undefinedType:
		buf.WriteString("null")
		return nil
	case string:
		return writeCanonicalString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case float64:
		return writeCanonicalNumber(buf, val)
	case int:
		return writeCanonicalNumber(buf, float64(val))
	case int64:
		return writeCanonicalNumber(buf, float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", val, err)
		}
		return writeCanonicalNumber(buf, f)
	case time.Time:
		return writeCanonicalString(buf, FormatDate(val))
	case []any:
		return marshalCanonicalArray(buf, val)
	case map[string]any:
		return marshalCanonicalObject(buf, val)
	case Expression:
		list, err := val.ToAny()
		if err != nil {
			return err
		}
		return marshalCanonicalArray(buf, list)
	}
	return marshalCanonicalReflect(buf, v)
}

// marshalCanonicalReflect routes named types, typed slices and maps, and
// structs through the generic forms.
func marshalCanonicalReflect(buf *bytes.Buffer, v any) error {
	val := ValueOf(v)
	switch val.Kind {
	case KindNull:
		buf.WriteString("null")
		return nil
	case KindString:
		return writeCanonicalString(buf, val.Str)
	case KindNumber:
		return writeCanonicalNumber(buf, val.Num)
	case KindBool:
		return marshalCanonical(buf, val.Bool)
	case KindDate:
		return writeCanonicalString(buf, FormatDate(val.Time))
	case KindArray:
		rv := reflect.ValueOf(val.Raw)
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return marshalCanonicalArray(buf, list)
	}

	rv := reflect.ValueOf(val.Raw)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		obj := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = iter.Value().Interface()
		}
		return marshalCanonicalObject(buf, obj)
	}

	// Structs and everything else: take the encoding/json view of the value.
	data, err := json.Marshal(val.Raw)
	if err != nil {
		return fmt.Errorf("unsupported type for canonical JSON: %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("unsupported type for canonical JSON: %T: %w", v, err)
	}
	return marshalCanonical(buf, generic)
}

// writeCanonicalNumber writes f in ECMAScript form.
func writeCanonicalNumber(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("number %v is not representable in JSON", f)
	}
	buf.WriteString(FormatNumber(f))
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	data, err := marshalCanonicalString(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// marshalCanonicalString encodes s as an RFC 8785 JSON string: NFC
// normalized, no HTML escaping, U+2028/U+2029 left literal. Only control
// characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}

	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})

	// encoding/json escapes U+2028/U+2029 for JavaScript embedding; RFC 8785
	// does not.
	return unescapeU2028U2029(result), nil
}

// unescapeU2028U2029 turns \u2028 and \u2029 escapes back into literal
// characters, leaving escaped backslashes followed by "u2028" untouched.
// An escape is real when it is preceded by an even number of backslashes.
func unescapeU2028U2029(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	backslashes := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '\\' && backslashes%2 == 0 && i+6 <= len(data) &&
			data[i+1] == 'u' && data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			backslashes = 0
			continue
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		out = append(out, c)
	}
	return out
}

// marshalCanonicalArray marshals an array to canonical JSON.
func marshalCanonicalArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonical(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

// marshalCanonicalObject marshals an object to canonical JSON with RFC 8785
// key ordering. Undefined members are omitted.
func marshalCanonicalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k, v := range obj {
		if IsUndefined(v) {
			continue
		}
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshalCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}
