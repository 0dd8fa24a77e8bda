package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Wire field names of the three token shapes.
const (
	FieldKey   = "key"
	FieldOp    = "op"
	FieldValue = "val"
	FieldCon   = "con"
	FieldGrp   = "grp"
)

// UnmarshalJSON decodes a JSON array of token objects.
//
// A missing "val" decodes to Undefined, an explicit null to nil. An element
// that is null, or an object with none of key/con/grp, decodes to a hole.
func (e *Expression) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*e = nil
		return nil
	}

	expr, err := ExpressionFromAny(raw)
	if err != nil {
		return err
	}
	*e = expr
	return nil
}

// UnmarshalYAML decodes a YAML sequence of token mappings.
// Presence rules match UnmarshalJSON: `val: ~` is null, no val is Undefined.
func (e *Expression) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*e = nil
		return nil
	}

	expr, err := ExpressionFromAny(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*e = expr
	return nil
}

// ParseExpression decodes a JSON expression document.
func ParseExpression(data []byte) (Expression, error) {
	var expr Expression
	if err := json.Unmarshal(data, &expr); err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}
	return expr, nil
}

// ExpressionFromAny converts a generically decoded document ([]any of
// map[string]any, as produced by encoding/json, yaml.v3 or CUE) into an
// Expression.
func ExpressionFromAny(v any) (Expression, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expression must be a list of tokens, got %T", v)
	}

	expr := make(Expression, 0, len(list))
	for i, elem := range list {
		tok, err := tokenFromAny(elem)
		if err != nil {
			return nil, fmt.Errorf("token[%d]: %w", i, err)
		}
		expr = append(expr, tok)
	}
	return expr, nil
}

// tokenFromAny decodes a single token. Discrimination order is grp, con,
// key: the first field present decides the shape.
func tokenFromAny(v any) (Token, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("token must be an object, got %T", v)
	}

	if grp, ok := m[FieldGrp]; ok {
		s, err := symbol(grp, FieldGrp)
		if err != nil {
			return nil, err
		}
		return Group{Grp: Bracket(s)}, nil
	}

	if con, ok := m[FieldCon]; ok {
		s, err := symbol(con, FieldCon)
		if err != nil {
			return nil, err
		}
		return Connector{Con: Connective(s)}, nil
	}

	if key, ok := m[FieldKey]; ok {
		k, isString := key.(string)
		if !isString {
			return nil, fmt.Errorf("%s must be a string, got %T", FieldKey, key)
		}
		op, err := symbol(m[FieldOp], FieldOp)
		if err != nil {
			return nil, err
		}
		val, present := m[FieldValue]
		if !present {
			return Condition{Key: k, Op: Operator(op), Value: Undefined}, nil
		}
		return Condition{Key: k, Op: Operator(op), Value: normalizeDecoded(val)}, nil
	}

	return nil, nil
}

// symbol reads an operator/connective/bracket field. A missing or null
// field is the empty symbol, which is never valid and degrades later.
func symbol(v any, field string) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("%s must be a string, got %T", field, v)
	}
}

// normalizeDecoded turns json.Number into float64. Everything else is kept
// as decoded; non-scalar values are rejected at compile time.
func normalizeDecoded(v any) any {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

// MarshalJSON encodes the expression in the wire format. Holes encode as
// null and Undefined values are omitted.
func (e Expression) MarshalJSON() ([]byte, error) {
	list, err := e.ToAny()
	if err != nil {
		return nil, err
	}
	return json.Marshal(list)
}

// ToAny converts the expression into generic maps and slices, the inverse of
// ExpressionFromAny.
func (e Expression) ToAny() ([]any, error) {
	list := make([]any, len(e))
	for i, tok := range e {
		switch t := Normalize(tok).(type) {
		case nil:
			list[i] = nil
		case Condition:
			m := map[string]any{FieldKey: t.Key, FieldOp: string(t.Op)}
			if !IsUndefined(t.Value) {
				m[FieldValue] = t.Value
			}
			list[i] = m
		case Connector:
			list[i] = map[string]any{FieldCon: string(t.Con)}
		case Group:
			list[i] = map[string]any{FieldGrp: string(t.Grp)}
		default:
			return nil, fmt.Errorf("token[%d]: unknown token type %T", i, tok)
		}
	}
	return list, nil
}
