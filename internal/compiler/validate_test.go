package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	tests := []struct {
		name string
		expr ir.Expression
	}{
		{"empty", nil},
		{"single", ir.Expression{ir.Cond("a", ir.OpEq, 1)}},
		{"implicit and", ir.Expression{ir.Cond("a", ir.OpEq, 1), ir.Cond("b", ir.OpNe, nil)}},
		{"nested groups", ir.Expression{
			ir.OpenToken(), ir.Cond("a", ir.OpEq, 1), ir.OrToken(),
			ir.OpenToken(), ir.Cond("b", ir.OpGt, 2), ir.AndToken(), ir.Cond("c", ir.OpEq, false), ir.CloseToken(),
			ir.CloseToken(),
		}},
		{"holes", ir.Expression{nil, ir.Cond("a", ir.OpEq, ir.Undefined), nil}},
		{"nested key", ir.Expression{ir.Cond("user.profile.name", ir.OpStartsWith, "A")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Validate(tt.expr))
		})
	}
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		expr  ir.Expression
		codes []string
	}{
		{"empty key", ir.Expression{ir.Cond("", ir.OpEq, "")}, []string{ErrEmptyKey}},
		{"empty segment", ir.Expression{ir.Cond("a..b", ir.OpEq, 1)}, []string{ErrEmptyPathSegment}},
		{"trailing dot", ir.Expression{ir.Cond("a.", ir.OpEq, 1)}, []string{ErrEmptyPathSegment}},
		{"unknown operator", ir.Expression{ir.Cond("a", "like", "x")}, []string{ErrUnknownOperator}},
		{"non-scalar", ir.Expression{ir.Cond("a", ir.OpContains, []any{1})}, []string{ErrNonScalarValue}},
		{"null ordering", ir.Expression{ir.Cond("a", ir.OpGt, nil)}, []string{ErrNullOrderingValue}},
		{"unknown connective", ir.Expression{
			ir.Cond("a", ir.OpEq, 1), ir.Connector{Con: "^^"}, ir.Cond("b", ir.OpEq, 1),
		}, []string{ErrUnknownConnective}},
		{"leading connector", ir.Expression{ir.AndToken(), ir.Cond("a", ir.OpEq, 1)}, []string{ErrLeadingConnector}},
		{"connector after open", ir.Expression{
			ir.OpenToken(), ir.OrToken(), ir.Cond("a", ir.OpEq, 1), ir.CloseToken(),
		}, []string{ErrLeadingConnector}},
		{"trailing connector", ir.Expression{ir.Cond("a", ir.OpEq, 1), ir.OrToken()}, []string{ErrTrailingConnector}},
		{"connector before close", ir.Expression{
			ir.OpenToken(), ir.Cond("a", ir.OpEq, 1), ir.OrToken(), ir.CloseToken(),
		}, []string{ErrTrailingConnector}},
		{"duplicate connector", ir.Expression{
			ir.Cond("a", ir.OpEq, 1), ir.AndToken(), ir.OrToken(), ir.Cond("b", ir.OpEq, 1),
		}, []string{ErrDuplicateConnector}},
		{"unknown bracket", ir.Expression{ir.Group{Grp: "["}}, []string{ErrUnknownBracket}},
		{"unmatched close", ir.Expression{ir.Cond("a", ir.OpEq, 1), ir.CloseToken()}, []string{ErrUnmatchedClose}},
		{"unclosed group", ir.Expression{ir.OpenToken(), ir.Cond("a", ir.OpEq, 1)}, []string{ErrUnclosedGroup}},
		{"empty group", ir.Expression{ir.OpenToken(), ir.CloseToken()}, []string{ErrEmptyGroup}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.codes, codes(Validate(tt.expr)))
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	expr := ir.Expression{
		ir.OrToken(),                 // 0: leading
		ir.Cond("", "like", []any{}), // 1: empty key, unknown op, non-scalar
		ir.OpenToken(),               // 2: unclosed
		ir.Cond("b", ir.OpEq, 1),     // 3
		ir.AndToken(),                // 4: trailing
		nil,                          // 5: hole
	}

	errs := Validate(expr)
	assert.Equal(t, []string{
		ErrLeadingConnector,
		ErrEmptyKey,
		ErrUnknownOperator,
		ErrNonScalarValue,
		ErrTrailingConnector,
		ErrUnclosedGroup,
	}, codes(errs))

	require.Len(t, errs, 6)
	assert.Equal(t, 4, errs[4].Index, "trailing connector is reported at the connector, not the hole")
	assert.Equal(t, 2, errs[5].Index)
	assert.Equal(t, "[1].key", errs[1].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "[3].op", Message: `unknown operator "like"`, Code: ErrUnknownOperator, Index: 3}
	assert.Equal(t, `[E103] [3].op: unknown operator "like"`, err.Error())
}
