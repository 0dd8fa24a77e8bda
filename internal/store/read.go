package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ReadTable returns every row of table as a record keyed by column name.
// Rows are ordered by rowid when the table has one, so results are
// deterministic across reads.
//
// Returns an empty slice (not nil) for an empty table.
func (s *Store) ReadTable(ctx context.Context, table string) ([]any, error) {
	ok, err := s.hasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}

	rows, err := s.queryOrdered(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types of %s: %w", table, err)
	}

	records := []any{}
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", table, len(records), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return records, nil
}

// queryOrdered selects all columns ordered by rowid, falling back to the
// natural order for views and WITHOUT ROWID tables.
func (s *Store) queryOrdered(ctx context.Context, table string) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" ORDER BY rowid ASC")
	if err == nil {
		return rows, nil
	}
	if !strings.Contains(err.Error(), "rowid") {
		return nil, err
	}
	return s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
}

// scanRecord converts the current row into a map[string]any.
func scanRecord(rows *sql.Rows, cols []*sql.ColumnType) (map[string]any, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	rec := make(map[string]any, len(cols))
	for i, col := range cols {
		v, err := columnValue(col, values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		rec[col.Name()] = v
	}
	return rec, nil
}

// columnValue maps a driver value onto the decoded-JSON value model.
func columnValue(col *sql.ColumnType, v any) (any, error) {
	switch val := v.(type) {
	case int64:
		return float64(val), nil
	case []byte:
		if isJSONColumn(col) {
			return ParseJSONValue(val)
		}
		return string(val), nil
	case string:
		if isJSONColumn(col) {
			return ParseJSONValue([]byte(val))
		}
		return val, nil
	default:
		// float64, bool, time.Time and nil pass through
		return val, nil
	}
}

func isJSONColumn(col *sql.ColumnType) bool {
	return strings.EqualFold(col.DatabaseTypeName(), "JSON")
}
