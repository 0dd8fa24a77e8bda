package ir

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedString string

type profile struct {
	Name string
}

func TestValueOf_Kinds(t *testing.T) {
	now := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	var nilPtr *int
	var nilSlice []string
	n := 7

	tests := []struct {
		name string
		in   any
		kind Kind
	}{
		{"nil", nil, KindNull},
		{"undefined", Undefined, KindUndefined},
		{"string", "a", KindString},
		{"named string", namedString("a"), KindString},
		{"bool", true, KindBool},
		{"float64", 1.5, KindNumber},
		{"int", 3, KindNumber},
		{"uint8", uint8(3), KindNumber},
		{"float32", float32(1.5), KindNumber},
		{"json number", json.Number("12"), KindNumber},
		{"pointer to int", &n, KindNumber},
		{"nil pointer", nilPtr, KindNull},
		{"time", now, KindDate},
		{"time pointer", &now, KindDate},
		{"any slice", []any{1}, KindArray},
		{"typed slice", []string{"a"}, KindArray},
		{"nil slice", nilSlice, KindNull},
		{"array", [2]int{1, 2}, KindArray},
		{"map", map[string]any{}, KindObject},
		{"typed map", map[string]int{}, KindObject},
		{"struct", profile{Name: "x"}, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, ValueOf(tt.in).Kind)
		})
	}
}

func TestLiteral(t *testing.T) {
	for _, ok := range []any{nil, Undefined, "s", 1, 1.5, true, json.Number("3")} {
		_, err := Literal(ok)
		assert.NoError(t, err, "%T should be a valid literal", ok)
	}

	for _, bad := range []any{[]any{1}, map[string]any{}, profile{}, time.Now()} {
		_, err := Literal(bad)
		assert.Error(t, err, "%T should be rejected", bad)
	}
}

func TestStrictEqual(t *testing.T) {
	assert.True(t, StrictEqual(NullValue, NullValue))
	assert.True(t, StrictEqual(UndefinedValue, UndefinedValue))
	assert.False(t, StrictEqual(NullValue, UndefinedValue), "null !== undefined")

	assert.True(t, StrictEqual(StringValue("a"), StringValue("a")))
	assert.False(t, StrictEqual(StringValue("42"), NumberValue(42)), "no implicit conversion")
	assert.True(t, StrictEqual(NumberValue(42), ValueOf(42)))
	assert.False(t, StrictEqual(NumberValue(math.NaN()), NumberValue(math.NaN())))
	assert.True(t, StrictEqual(BoolValue(false), BoolValue(false)))

	arr := ValueOf([]any{1})
	assert.False(t, StrictEqual(arr, arr), "arrays have identity semantics")
}

func TestCompare(t *testing.T) {
	cmp, ok := Compare(NumberValue(1), NumberValue(2))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = Compare(StringValue("b"), StringValue("a"))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = Compare(BoolValue(false), BoolValue(true))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	early := ValueOf(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	late := ValueOf(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))
	cmp, ok = Compare(late, early)
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	_, ok = Compare(NumberValue(1), StringValue("1"))
	assert.False(t, ok, "mixed kinds are not ordered")

	_, ok = Compare(NullValue, NullValue)
	assert.False(t, ok)

	_, ok = Compare(NumberValue(math.NaN()), NumberValue(1))
	assert.False(t, ok)
}

func TestCompareUTF16(t *testing.T) {
	// U+FF61 is a single UTF-16 unit above the surrogate range; U+1F600 is a
	// surrogate pair starting with 0xD83D. UTF-16 order puts the emoji
	// first, UTF-8 byte order puts it last.
	assert.Equal(t, -1, CompareUTF16("😀", "｡"))
	assert.True(t, "😀" > "｡", "sanity: UTF-8 order differs")
	assert.Equal(t, 0, CompareUTF16("abc", "abc"))
	assert.Equal(t, -1, CompareUTF16("ab", "abc"))
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""))
	assert.Equal(t, 3, UTF16Len("abc"))
	assert.Equal(t, 2, UTF16Len("😀"))
	assert.Equal(t, 2, UTF16Len("你好"))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "undefined", UndefinedValue.String())
	assert.Equal(t, "null", NullValue.String())
	assert.Equal(t, "42", NumberValue(42).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, "2020-01-02T03:04:05.000Z",
		ValueOf(time.Date(2020, 1, 2, 4, 4, 5, 0, time.FixedZone("CET", 3600))).String())
}

func TestElements(t *testing.T) {
	elems := ValueOf([]any{1, "two", nil}).Elements()
	require.Len(t, elems, 3)
	assert.Equal(t, KindNumber, elems[0].Kind)
	assert.Equal(t, KindString, elems[1].Kind)
	assert.Equal(t, KindNull, elems[2].Kind)

	typed := ValueOf([]int{4, 5}).Elements()
	require.Len(t, typed, 2)
	assert.Equal(t, 5.0, typed[1].Num)

	assert.Nil(t, StringValue("x").Elements())
}
