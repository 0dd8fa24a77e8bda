package jsonfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Name    string  `json:"name"`
	Age     int     `json:"age"`
	Premium *string `json:"premium"`
	Contact struct {
		City string `json:"city"`
	} `json:"contact"`
}

func ages() []any {
	return []any{
		map[string]any{"age": 10.0},
		map[string]any{"age": 25.0},
		map[string]any{"age": 41.0},
	}
}

func TestFilter(t *testing.T) {
	expr := Expression{
		Cond("age", OpGt, 20),
		AndToken(),
		OpenToken(),
		Cond("age", OpLt, 30),
		OrToken(),
		Cond("age", OpGt, 40),
		CloseToken(),
	}

	records := ages()
	got := Filter(records, expr)
	assert.Equal(t, []any{records[1], records[2]}, got)
	assert.Equal(t, got, FilterBatch(records, expr, 1))
}

func TestFilter_Structs(t *testing.T) {
	gold := "gold"
	accounts := []account{
		{Name: "Ingrid", Age: 41, Premium: &gold},
		{Name: "Ivo", Age: 10},
		{Name: "Nadine", Age: 25},
	}
	accounts[0].Contact.City = "Denver"
	accounts[2].Contact.City = "Boulder"

	got := Filter(accounts, Expression{Cond("premium", OpEq, nil), Cond("contact.city", OpStartsWith, "B")})
	require.Len(t, got, 1)
	assert.Equal(t, "Nadine", got[0].Name)

	got = Filter(accounts, Expression{Cond("age", OpGe, "25")})
	assert.Len(t, got, 2, "string literals compare against the number's string form")
}

func TestFilter_EmptyExpressionIsIdentity(t *testing.T) {
	records := ages()
	got := Filter(records, nil)
	assert.Same(t, &records[0], &got[0])
}

func TestParseExpression(t *testing.T) {
	expr, err := ParseExpression([]byte(`[{"key":"age","op":">","val":20},{"key":"nickname","op":"="}]`))
	require.NoError(t, err)

	records := []any{
		map[string]any{"age": 25.0},
		map[string]any{"age": 41.0, "nickname": nil},
	}
	assert.Equal(t, []any{records[0]}, Filter(records, expr), "absent val matches only a missing key")
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher(Expression{Cond("age", OpGt, 20), OrToken(), Cond("name", OpEndsWith, "o")})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Program().Len())

	assert.True(t, m.Match(map[string]any{"age": 30.0}))
	assert.True(t, m.Match(map[string]any{"name": "Ivo"}))
	assert.False(t, m.Match(map[string]any{"age": 5.0, "name": "Alma"}))
}

func TestMatcher_ExplainFailClosed(t *testing.T) {
	m, err := NewMatcher(Expression{Cond("age", OpGt, 20), CloseToken()})
	require.NoError(t, err)

	ok, err := m.Explain(map[string]any{"age": 30.0})
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNMATCHED_CLOSE")
}

func TestCompile_NonScalarLiteral(t *testing.T) {
	_, err := Compile(Expression{Cond("tags", OpContains, []any{"a"})})
	require.Error(t, err)

	_, err = NewMatcher(Expression{Cond("tags", OpContains, map[string]any{})})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(Expression{Cond("age", OpGt, 20)}))

	errs := Validate(Expression{OrToken(), Cond("age", OpGt, Undefined)})
	require.Len(t, errs, 2)
	assert.Equal(t, 0, errs[0].Index)
	assert.Equal(t, 1, errs[1].Index)
}
