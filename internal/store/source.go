package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// sqliteMagic is the first 16 bytes of every SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// Source describes where records come from.
type Source struct {
	// Path is a file path; "-" reads Stdin.
	Path string

	// Table selects a SQLite table. Required when the database holds more
	// than one table.
	Table string

	// Format overrides detection for file sources.
	Format Format

	// Stdin is read when Path is "-". Defaults to os.Stdin.
	Stdin io.Reader
}

// Load reads all records from src.
func Load(ctx context.Context, src Source) ([]any, error) {
	if src.Path == "-" {
		in := src.Stdin
		if in == nil {
			in = os.Stdin
		}
		return Decode(in, src.Format)
	}

	isDB, err := IsSQLite(src.Path)
	if err != nil {
		return nil, err
	}
	if isDB {
		return loadTable(ctx, src.Path, src.Table)
	}
	if src.Table != "" {
		return nil, fmt.Errorf("%s is not a SQLite database; --table does not apply", src.Path)
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	format := src.Format
	if format == FormatAuto {
		format = FormatFromPath(src.Path)
	}
	records, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	return records, nil
}

// IsSQLite reports whether the file at path starts with the SQLite header.
func IsSQLite(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read header: %w", err)
	}
	return bytes.Equal(head[:n], sqliteMagic), nil
}

// loadTable reads table from the database at path. An empty table name is
// resolved when the database holds exactly one table.
func loadTable(ctx context.Context, path, table string) ([]any, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if table == "" {
		tables, err := s.Tables(ctx)
		if err != nil {
			return nil, err
		}
		if len(tables) != 1 {
			return nil, fmt.Errorf("%s has %d tables (%s); choose one with --table",
				path, len(tables), strings.Join(tables, ", "))
		}
		table = tables[0]
	}
	return s.ReadTable(ctx, table)
}
