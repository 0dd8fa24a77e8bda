package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"JSON", FormatJSON},
		{"jsonl", FormatNDJSON},
		{"ndjson", FormatNDJSON},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("people.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("people.JSON.gz"))
	assert.Equal(t, FormatNDJSON, FormatFromPath("log.jsonl.zst"))
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yml"))
	assert.Equal(t, FormatAuto, FormatFromPath("records"))
}

func TestDecodeJSON(t *testing.T) {
	records, err := DecodeJSON([]byte(`[
		{"name": "Ingrid", "age": 41, "tags": ["a", 1, null], "premium": null, "ok": true},
		{"name": "Ivo", "nested": {"deep": {"x": -1.5e2}}}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, map[string]any{
		"name":    "Ingrid",
		"age":     41.0,
		"tags":    []any{"a", 1.0, nil},
		"premium": nil,
		"ok":      true,
	}, records[0])
	assert.Equal(t, map[string]any{
		"name":   "Ivo",
		"nested": map[string]any{"deep": map[string]any{"x": -150.0}},
	}, records[1])
}

func TestDecodeJSON_SingleObjectAndEmpty(t *testing.T) {
	records, err := DecodeJSON([]byte(`{"a": "b"}`))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": "b"}}, records)

	records, err = DecodeJSON([]byte("  \n"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = DecodeJSON([]byte(`[{"a": }]`))
	assert.Error(t, err)
}

func TestDecodeJSON_StringsOutliveParser(t *testing.T) {
	records, err := DecodeJSON([]byte(`[{"s": "café 😀"}]`))
	require.NoError(t, err)

	_, err = DecodeJSON([]byte(`[{"s": "overwritten"}]`))
	require.NoError(t, err)

	assert.Equal(t, "café 😀", records[0].(map[string]any)["s"])
}

func TestDecodeNDJSON(t *testing.T) {
	input := "{\"n\": 1}\n\n  {\"n\": 2, \"s\": \"x\"}  \r\n{\"n\": 3}"
	records, err := DecodeNDJSON(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"n": 1.0},
		map[string]any{"n": 2.0, "s": "x"},
		map[string]any{"n": 3.0},
	}, records)

	_, err = DecodeNDJSON(strings.NewReader("{\"n\": 1}\n{oops}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecodeYAML(t *testing.T) {
	doc := `
- name: Ingrid
  age: 41
  score: 4.5
  premium: ~
  registration: 2019-03-14T09:12:00.000Z
  friends: [Nadine, Justus]
  address:
    city: Denver
- name: Ivo
  age: 10
`
	records, err := DecodeYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 2)

	ingrid := records[0].(map[string]any)
	assert.Equal(t, 41.0, ingrid["age"], "integers become float64")
	assert.Equal(t, 4.5, ingrid["score"])
	assert.Nil(t, ingrid["premium"])
	assert.Equal(t, "2019-03-14T09:12:00.000Z", ingrid["registration"], "timestamps stay strings")
	assert.Equal(t, []any{"Nadine", "Justus"}, ingrid["friends"])
	assert.Equal(t, map[string]any{"city": "Denver"}, ingrid["address"])
}

func TestDecodeYAML_Shapes(t *testing.T) {
	records, err := DecodeYAML(strings.NewReader("a: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": 1.0}}, records)

	records, err = DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = DecodeYAML(strings.NewReader("- {1: one, true: yes}\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"1": "one", "true": "yes"}}, records)

	_, err = DecodeYAML(strings.NewReader("- [unclosed\n"))
	assert.Error(t, err)
}

func TestDecode_Sniffing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []any
	}{
		{"json array", "\n  [{\"a\": 1}]", []any{map[string]any{"a": 1.0}}},
		{"ndjson", "{\"a\": 1}\n{\"a\": 2}\n", []any{map[string]any{"a": 1.0}, map[string]any{"a": 2.0}}},
		{"yaml", "- a: 1\n", []any{map[string]any{"a": 1.0}}},
		{"empty", "", []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), FormatAuto)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_ExplicitFormat(t *testing.T) {
	// A JSON array is valid YAML too
	got, err := Decode(strings.NewReader(`[{"a": 1}]`), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": 1.0}}, got)

	_, err = Decode(strings.NewReader(`[]`), Format("xml"))
	assert.Error(t, err)
}

func TestParseJSONValue(t *testing.T) {
	v, err := ParseJSONValue([]byte(`"x"`))
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = ParseJSONValue([]byte(`{`))
	assert.Error(t, err)
}
