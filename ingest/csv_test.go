package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestCSVRead(t *testing.T) {
	path := writeFile(t, "incidents.csv", []byte(
		"incident_id,title,priority\nIR_001,Login failure,P1\nIR_002,Slow search,P2\n"))

	tables, err := (&CSVReader{}).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	tab := tables[0]
	if tab.Name != "incidents" {
		t.Errorf("table name = %q", tab.Name)
	}
	if len(tab.Columns) != 3 || tab.Columns[1] != "title" {
		t.Errorf("columns = %v", tab.Columns)
	}
	if len(tab.Rows) != 2 || tab.Rows[1][1] != "Slow search" {
		t.Errorf("rows = %v", tab.Rows)
	}
}

func TestCSVReadWindows1252Fallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid UTF-8 on its own.
	path := writeFile(t, "latin.csv", []byte("customer_id,name\nC1,Caf\xe9 Corp\n"))

	tables, err := (&CSVReader{}).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("reading legacy charset CSV: %v", err)
	}
	if got := tables[0].Rows[0][1]; got != "Café Corp" {
		t.Fatalf("charset fallback failed: %q", got)
	}
}

func TestCSVReadRaggedRows(t *testing.T) {
	path := writeFile(t, "ragged.csv", []byte("incident_id,title,status\nIR_001,short\nIR_002,full,Open\n"))

	tables, err := (&CSVReader{}).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("reading ragged CSV: %v", err)
	}
	tab := tables[0]
	if len(tab.Rows) != 2 {
		t.Fatalf("ragged rows should be kept: %v", tab.Rows)
	}
	// The mapper pads short rows on access.
	if got := tab.Cell(tab.Rows[0], 2); got != "" {
		t.Fatalf("missing cell should read as empty, got %q", got)
	}
}

func TestCSVReadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)

	if _, err := (&CSVReader{}).Read(context.Background(), path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestRegistryFormats(t *testing.T) {
	reg := NewRegistry()
	for _, format := range []string{"csv", "xlsx", "xls"} {
		if _, err := reg.Get(format); err != nil {
			t.Errorf("missing reader for %s: %v", format, err)
		}
	}
	if _, err := reg.Get("pdf"); err == nil {
		t.Error("expected error for unregistered format")
	}
}
