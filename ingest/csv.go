package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// CSVReader reads comma-separated files. Input that is not valid UTF-8
// is decoded as Windows-1252, matching the most common legacy export
// encoding for this kind of data.
type CSVReader struct{}

func (r *CSVReader) SupportedFormats() []string { return []string{"csv"} }

func (r *CSVReader) Read(ctx context.Context, path string) ([]Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding CSV charset: %w", err)
		}
		raw = decoded
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1 // tolerate ragged rows; the mapper pads

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed record: skip it and keep going.
			continue
		}
		rows = append(rows, row)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []Table{{Name: name, Columns: columns, Rows: rows}}, nil
}
