// Package store loads record collections for filtering.
//
// Records come back decoded-JSON shaped: []any of map[string]any with
// float64 numbers, so they compare exactly like records decoded by
// encoding/json. Supported sources:
//   - JSON arrays (a top-level object is a collection of one)
//   - NDJSON, one record per line
//   - YAML sequences
//   - SQLite tables, opened read-only
//
// File sources may be gzip or zstd compressed. Compression is detected from
// the leading magic bytes, not the file name.
//
// # Database Configuration
//
//   - mode=ro: the database file is never written
//   - query_only=ON: statements that would modify the database fail
//   - busy_timeout=5000: wait for writers' locks up to 5 seconds
//
// Columns declared JSON are parsed into nested values; BOOLEAN and
// DATETIME/TIMESTAMP columns arrive as bool and time.Time.
package store
