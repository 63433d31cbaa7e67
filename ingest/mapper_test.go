package ingest

import (
	"testing"

	"github.com/brunobiangulo/graphnav/rdf"
)

const ns = "http://example.org/support#"

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	return NewMapper(rdf.NewVocabulary(ns))
}

func hasTriple(triples []rdf.Triple, want rdf.Triple) bool {
	for _, t := range triples {
		if t.Equal(want) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Identifier column detection
// ---------------------------------------------------------------------------

func TestIdentifierColumn(t *testing.T) {
	cases := []struct {
		columns []string
		want    int
	}{
		{[]string{"title", "incident_id", "status"}, 1},
		{[]string{"Title", "IR", "status"}, 1},
		{[]string{"enhancement", "title"}, 0},
		{[]string{"title", "status"}, 0}, // fallback: first column
	}
	for _, c := range cases {
		if got := identifierColumn(c.columns); got != c.want {
			t.Errorf("identifierColumn(%v) = %d, want %d", c.columns, got, c.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Row conversion
// ---------------------------------------------------------------------------

func TestMapBasicRow(t *testing.T) {
	m := newTestMapper(t)
	table := Table{
		Columns: []string{"incident_id", "title", "customer", "module", "priority", "created"},
		Rows: [][]string{
			{"IR_004", "Login failure", "Acme Corp", "Auth", "P1", "2024-03-12"},
		},
	}

	res := m.Map(table)
	if res.RowsConverted != 1 || res.RowsSkipped != 0 {
		t.Fatalf("rows converted=%d skipped=%d", res.RowsConverted, res.RowsSkipped)
	}

	subject := ns + "IR_004"
	wantTriples := []rdf.Triple{
		{Subject: subject, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "IncidentReport")},
		{Subject: subject, Predicate: rdf.RDFSLabel, Object: rdf.String("Login failure")},
		{Subject: subject, Predicate: ns + "belongsToCustomer", Object: rdf.IRI(ns + "Customer_Acme_Corp")},
		{Subject: subject, Predicate: ns + "mentionsFunction", Object: rdf.IRI(ns + "Module_Auth")},
		{Subject: subject, Predicate: ns + "priority", Object: rdf.String("P1")},
		{Subject: subject, Predicate: ns + "created", Object: rdf.Date("12-03-2024")},
		// Referenced entities are declared with class and label.
		{Subject: ns + "Customer_Acme_Corp", Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Customer")},
		{Subject: ns + "Customer_Acme_Corp", Predicate: rdf.RDFSLabel, Object: rdf.String("Acme Corp")},
		{Subject: ns + "Module_Auth", Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Module")},
		{Subject: ns + "Module_Auth", Predicate: rdf.RDFSLabel, Object: rdf.String("Auth")},
	}
	for _, w := range wantTriples {
		if !hasTriple(res.Triples, w) {
			t.Errorf("missing triple: %v", w)
		}
	}
}

func TestMapSkipsEmptyIdentifierRows(t *testing.T) {
	m := newTestMapper(t)
	table := Table{
		Columns: []string{"incident_id", "title"},
		Rows: [][]string{
			{"IR_001", "first"},
			{"", "no id"},
			{"   ", "blank id"},
			{"IR_002", "second"},
		},
	}

	res := m.Map(table)
	if res.RowsConverted != 2 {
		t.Errorf("rows converted = %d, want 2", res.RowsConverted)
	}
	if res.RowsSkipped != 2 {
		t.Errorf("rows skipped = %d, want 2", res.RowsSkipped)
	}
	// The poison rows contribute nothing.
	for _, tr := range res.Triples {
		if tr.Object.Kind == rdf.KindString && tr.Object.Value == "no id" {
			t.Fatalf("skipped row leaked a triple: %v", tr)
		}
	}
}

func TestMapMultiValueSimilarTo(t *testing.T) {
	m := newTestMapper(t)
	table := Table{
		Columns: []string{"incident_id", "similar_to"},
		Rows:    [][]string{{"IR_004", "IR_001, IR_002"}},
	}

	res := m.Map(table)
	for _, id := range []string{"IR_001", "IR_002"} {
		want := rdf.Triple{
			Subject:   ns + "IR_004",
			Predicate: ns + "isSimilarTo",
			Object:    rdf.IRI(ns + id),
		}
		if !hasTriple(res.Triples, want) {
			t.Errorf("missing similarity edge to %s", id)
		}
	}
}

func TestMapDeclaresReferencedEntityOnce(t *testing.T) {
	m := newTestMapper(t)
	table := Table{
		Columns: []string{"incident_id", "customer"},
		Rows: [][]string{
			{"IR_001", "Acme"},
			{"IR_002", "Acme"},
		},
	}

	res := m.Map(table)
	declarations := 0
	for _, tr := range res.Triples {
		if tr.Subject == ns+"Customer_Acme" && tr.Predicate == rdf.RDFType {
			declarations++
		}
	}
	if declarations != 1 {
		t.Fatalf("customer declared %d times, want 1", declarations)
	}
}

func TestMapSkipsEmptyCells(t *testing.T) {
	m := newTestMapper(t)
	table := Table{
		Columns: []string{"incident_id", "status", "module"},
		Rows:    [][]string{{"IR_001", "", ""}},
	}

	res := m.Map(table)
	// Only the class triple survives.
	if len(res.Triples) != 1 || res.Triples[0].Predicate != rdf.RDFType {
		t.Fatalf("empty cells should produce no triples: %+v", res.Triples)
	}
}

// ---------------------------------------------------------------------------
// Value typing
// ---------------------------------------------------------------------------

func TestLiteralTyping(t *testing.T) {
	cases := []struct {
		in   string
		want rdf.Kind
	}{
		{"42", rdf.KindInteger},
		{"1.5", rdf.KindFloat},
		{"2024-03-12", rdf.KindDate},
		{"12/03/2024", rdf.KindDate},
		{"P1", rdf.KindString},
		{"Open", rdf.KindString},
	}
	for _, c := range cases {
		if got := literal(c.in); got.Kind != c.want {
			t.Errorf("literal(%q).Kind = %v, want %v", c.in, got.Kind, c.want)
		}
	}
}

func TestDateNormalisation(t *testing.T) {
	// Every accepted layout normalises to DD-MM-YYYY.
	cases := []struct {
		in, want string
	}{
		{"2024-03-12", "12-03-2024"},
		{"12/03/2024", "12-03-2024"},
		{"12-03-2024", "12-03-2024"},
		{"2024/03/12", "12-03-2024"},
	}
	for _, c := range cases {
		got := literal(c.in)
		if got.Kind != rdf.KindDate || got.Value != c.want {
			t.Errorf("literal(%q) = %v, want date %q", c.in, got, c.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Acme Corp", "Acme_Corp"},
		{"Acme-Corp (EU)", "Acme_Corp__EU_"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := sanitize(c.in); got != c.want {
			t.Errorf("sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
