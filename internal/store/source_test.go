package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_Files(t *testing.T) {
	ctx := context.Background()
	want := []any{map[string]any{"a": 1.0}}

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"json", "r.json", []byte(`[{"a": 1}]`)},
		{"ndjson by extension", "r.jsonl", []byte(`{"a": 1}`)},
		{"yaml", "r.yaml", []byte("- a: 1\n")},
		{"sniffed", "records", []byte("- a: 1\n")},
		{"gzip json", "r.json.gz", compressed(t, CompressionGzip, `[{"a": 1}]`)},
		{"zstd ndjson", "r.ndjson.zst", compressed(t, CompressionZstd, `{"a": 1}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(ctx, Source{Path: writeFile(t, tt.file, tt.data)})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoad_FormatOverride(t *testing.T) {
	path := writeFile(t, "r.txt", []byte(`{"a": 1}`+"\n"+`{"a": 2}`))
	got, err := Load(context.Background(), Source{Path: path, Format: FormatNDJSON})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLoad_Stdin(t *testing.T) {
	got, err := Load(context.Background(), Source{Path: "-", Stdin: strings.NewReader(`[{"a": 1}, {"a": 2}]`)})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLoad_SQLite(t *testing.T) {
	ctx := context.Background()

	single := createTestDB(t)
	got, err := Load(ctx, Source{Path: single})
	require.NoError(t, err)
	assert.Len(t, got, 2, "a lone table is picked automatically")

	multi := createTestDB(t,
		`CREATE TABLE a (v INTEGER)`,
		`CREATE TABLE b (v INTEGER)`,
		`INSERT INTO b VALUES (7)`,
	)
	_, err = Load(ctx, Source{Path: multi})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a, b")

	got, err = Load(ctx, Source{Path: multi, Table: "b"})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"v": 7.0}}, got)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, Source{Path: filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)

	_, err = Load(ctx, Source{Path: writeFile(t, "r.json", []byte(`[]`)), Table: "people"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a SQLite database")

	_, err = Load(ctx, Source{Path: writeFile(t, "bad.json", []byte(`[{`))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestIsSQLite(t *testing.T) {
	ok, err := IsSQLite(createTestDB(t))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsSQLite(writeFile(t, "short", []byte("SQL")))
	require.NoError(t, err)
	assert.False(t, ok)
}
