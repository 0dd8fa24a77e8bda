package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fastjson"
	"gopkg.in/yaml.v3"
)

// Format identifies how a record document is encoded.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
)

// ParseFormat maps a user-supplied format name to a Format.
// "jsonl" and "yml" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatAuto, fmt.Errorf("unknown record format %q", name)
	}
}

// FormatFromPath guesses the format from a file extension, ignoring a
// trailing compression extension. Returns FormatAuto when unknown.
func FormatFromPath(path string) Format {
	p := strings.ToLower(path)
	for _, ext := range []string{".gz", ".zst", ".zstd"} {
		p = strings.TrimSuffix(p, ext)
	}
	switch {
	case strings.HasSuffix(p, ".json"):
		return FormatJSON
	case strings.HasSuffix(p, ".ndjson"), strings.HasSuffix(p, ".jsonl"):
		return FormatNDJSON
	case strings.HasSuffix(p, ".yaml"), strings.HasSuffix(p, ".yml"):
		return FormatYAML
	default:
		return FormatAuto
	}
}

// maxLine bounds a single NDJSON record.
const maxLine = 64 << 20

// Decode reads records from r. Compressed input is unwrapped first.
// FormatAuto sniffs the content: '[' starts a JSON array, '{' starts NDJSON,
// anything else is YAML.
func Decode(r io.Reader, format Format) ([]any, error) {
	rc, err := Decompress(r)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	br := bufio.NewReader(rc)

	if format == FormatAuto {
		format, err = sniff(br)
		if err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatJSON:
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		return DecodeJSON(data)
	case FormatNDJSON:
		return DecodeNDJSON(br)
	case FormatYAML:
		return DecodeYAML(br)
	default:
		return nil, fmt.Errorf("unknown record format %q", format)
	}
}

// sniff picks a format from the first non-space byte.
func sniff(br *bufio.Reader) (Format, error) {
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return FormatJSON, nil
		}
		if err != nil {
			return FormatAuto, fmt.Errorf("read records: %w", err)
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return FormatAuto, err
		}
		switch b {
		case '[':
			return FormatJSON, nil
		case '{':
			return FormatNDJSON, nil
		default:
			return FormatYAML, nil
		}
	}
}

// DecodeJSON parses a JSON document. An array yields its elements; any other
// value is a collection of one. Empty input yields no records.
func DecodeJSON(data []byte) ([]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []any{}, nil
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse JSON records: %w", err)
	}

	if v.Type() != fastjson.TypeArray {
		return []any{fromFastJSON(v)}, nil
	}
	elems, _ := v.Array()
	records := make([]any, len(elems))
	for i, e := range elems {
		records[i] = fromFastJSON(e)
	}
	return records, nil
}

// DecodeNDJSON parses one JSON value per line. Blank lines are skipped.
func DecodeNDJSON(r io.Reader) ([]any, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var p fastjson.Parser
	records := []any{}
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := p.ParseBytes(text)
		if err != nil {
			return nil, fmt.Errorf("parse NDJSON line %d: %w", line, err)
		}
		records = append(records, fromFastJSON(v))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read NDJSON: %w", err)
	}
	return records, nil
}

// ParseJSONValue parses a single JSON value into the decoded-JSON model.
func ParseJSONValue(data []byte) (any, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse JSON value: %w", err)
	}
	return fromFastJSON(v), nil
}

// fromFastJSON copies a parsed value out of the parser's arena.
func fromFastJSON(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeArray:
		elems := v.GetArray()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = fromFastJSON(e)
		}
		return out
	case fastjson.TypeObject:
		obj := v.GetObject()
		out := make(map[string]any, obj.Len())
		obj.Visit(func(key []byte, val *fastjson.Value) {
			out[string(key)] = fromFastJSON(val)
		})
		return out
	default:
		return nil
	}
}

// DecodeYAML parses a YAML sequence of records. A single mapping is a
// collection of one.
func DecodeYAML(r io.Reader) ([]any, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []any{}, nil
		}
		return nil, fmt.Errorf("parse YAML records: %w", err)
	}

	doc = Normalize(doc)
	if list, ok := doc.([]any); ok {
		return list, nil
	}
	if doc == nil {
		return []any{}, nil
	}
	return []any{doc}, nil
}

// Normalize converts yaml.v3 output to the decoded-JSON model: integer
// numbers become float64 and non-string keys are stringified.
func Normalize(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case []any:
		for i := range val {
			val[i] = Normalize(val[i])
		}
		return val
	case map[string]any:
		for k, e := range val {
			val[k] = Normalize(e)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	default:
		return v
	}
}
