package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads workbook files; each sheet with a header row becomes
// one table.
type XLSXReader struct{}

func (r *XLSXReader) SupportedFormats() []string { return []string{"xlsx", "xls"} }

func (r *XLSXReader) Read(ctx context.Context, path string) ([]Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	var tables []Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) == 0 {
			continue
		}

		columns := make([]string, len(rows[0]))
		for i, c := range rows[0] {
			columns[i] = strings.TrimSpace(c)
		}
		tables = append(tables, Table{
			Name:    sheet,
			Columns: columns,
			Rows:    rows[1:],
		})
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("no data found in XLSX")
	}
	return tables, nil
}
