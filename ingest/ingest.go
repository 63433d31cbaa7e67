// Package ingest converts tabular records into graph triples. Readers
// extract raw tables from source files; the mapper turns rows into
// subject/predicate/object triples using column and value inference.
//
// Ingestion follows a poison-record policy: a row with an empty
// identifier cell is skipped and counted, and a file that cannot be
// read contributes nothing. Neither ever aborts the rest of a batch.
package ingest

import (
	"context"
	"fmt"
	"strings"
)

// Table is one rectangular block of records: a header row of column
// names and zero or more data rows. Short rows are padded on access.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Cell returns the value of the named column in a row, or "" when the
// row is shorter than the header.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Reader extracts tables from a specific source format.
type Reader interface {
	Read(ctx context.Context, path string) ([]Table, error)
	SupportedFormats() []string
}

// Registry maps file formats to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry returns a registry with the built-in readers registered.
func NewRegistry() *Registry {
	r := &Registry{readers: make(map[string]Reader)}
	for _, rd := range []Reader{&CSVReader{}, &XLSXReader{}} {
		for _, f := range rd.SupportedFormats() {
			r.readers[f] = rd
		}
	}
	return r
}

// Get returns the reader for a format.
func (r *Registry) Get(format string) (Reader, error) {
	rd, ok := r.readers[format]
	if !ok {
		return nil, fmt.Errorf("no reader for format: %s", format)
	}
	return rd, nil
}

// Register adds or replaces the reader for a format.
func (r *Registry) Register(format string, rd Reader) {
	r.readers[format] = rd
}
