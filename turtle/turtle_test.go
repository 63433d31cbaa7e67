package turtle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brunobiangulo/graphnav/rdf"
)

const ns = "http://example.org/support#"

func testPrefixes(t *testing.T) *rdf.Prefixes {
	t.Helper()
	return rdf.NewPrefixes(map[string]string{
		"ex":   ns,
		"rdf":  rdf.RDFNamespace,
		"rdfs": rdf.RDFSNamespace,
		"xsd":  rdf.XSDNamespace,
	})
}

func sampleTriples() []rdf.Triple {
	return []rdf.Triple{
		{Subject: ns + "IR_004", Predicate: rdf.RDFType, Object: rdf.IRI(ns + "IncidentReport")},
		{Subject: ns + "IR_004", Predicate: rdf.RDFSLabel, Object: rdf.String("Login failure")},
		{Subject: ns + "IR_004", Predicate: ns + "priority", Object: rdf.String("P1")},
		{Subject: ns + "IR_004", Predicate: ns + "createdOn", Object: rdf.Date("12-03-2024")},
		{Subject: ns + "IR_004", Predicate: ns + "belongsToCustomer", Object: rdf.IRI(ns + "Customer_Acme")},
		{Subject: ns + "IR_004", Predicate: ns + "isSimilarTo", Object: rdf.IRI(ns + "IR_001")},
		{Subject: ns + "IR_004", Predicate: ns + "isSimilarTo", Object: rdf.IRI(ns + "IR_002")},
		{Subject: ns + "Customer_Acme", Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Customer")},
		{Subject: ns + "Customer_Acme", Predicate: rdf.RDFSLabel, Object: rdf.String(`Acme "The Best" Corp\`)},
		{Subject: ns + "Customer_Acme", Predicate: ns + "employees", Object: rdf.Integer(250)},
	}
}

// ---------------------------------------------------------------------------
// Encode
// ---------------------------------------------------------------------------

func TestEncodeShape(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, testPrefixes(t)).Encode(sampleTriples()); err != nil {
		t.Fatalf("encoding: %v", err)
	}
	text := buf.String()

	if !strings.Contains(text, "@prefix ex: <"+ns+"> .") {
		t.Error("missing ex prefix binding in preamble")
	}
	if !strings.Contains(text, "ex:IR_004 a ex:IncidentReport ;") {
		t.Error("type statement should open the block as \"a\"")
	}
	if !strings.Contains(text, "ex:isSimilarTo ex:IR_001, ex:IR_002 ;") {
		t.Error("repeated predicate should be comma-joined")
	}
	if !strings.Contains(text, `"12-03-2024"^^xsd:date`) {
		t.Error("date literal should carry xsd:date tag")
	}
	if !strings.Contains(text, `"250"^^xsd:integer .`) {
		t.Error("last statement line should end in \" .\"")
	}
}

func TestEncodeEscapesLiterals(t *testing.T) {
	var buf bytes.Buffer
	triples := []rdf.Triple{
		{Subject: ns + "X", Predicate: rdf.RDFSLabel, Object: rdf.String(`say "hi" \now`)},
	}
	if err := NewEncoder(&buf, testPrefixes(t)).Encode(triples); err != nil {
		t.Fatalf("encoding: %v", err)
	}
	if !strings.Contains(buf.String(), `"say \"hi\" \\now"`) {
		t.Fatalf("quotes and backslashes not escaped: %s", buf.String())
	}
}

// ---------------------------------------------------------------------------
// Decode
// ---------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	want := sampleTriples()

	var buf bytes.Buffer
	if err := NewEncoder(&buf, testPrefixes(t)).Encode(want); err != nil {
		t.Fatalf("encoding: %v", err)
	}

	doc, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if doc.BlocksSkipped != 0 {
		t.Fatalf("expected no skipped blocks, got %d", doc.BlocksSkipped)
	}
	if len(doc.Triples) != len(want) {
		t.Fatalf("expected %d triples, got %d", len(want), len(doc.Triples))
	}
	if doc.Bindings["ex"] != ns {
		t.Fatalf("ex binding not preserved: %q", doc.Bindings["ex"])
	}

	for _, w := range want {
		found := false
		for _, g := range doc.Triples {
			if g.Equal(w) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("triple lost in round trip: %v", w)
		}
	}
}

func TestDecodeSkipsMalformedBlock(t *testing.T) {
	text := `@prefix ex: <` + ns + `> .
@prefix rdfs: <` + rdf.RDFSNamespace + `> .

ex:IR_001 a ex:IncidentReport ;
    rdfs:label "first" .

this line has no terminator and no structure
garbage .

ex:IR_002 a ex:IncidentReport ;
    rdfs:label "second" .
`
	doc, err := Decode(strings.NewReader(text))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if doc.BlocksSkipped != 1 {
		t.Fatalf("expected 1 skipped block, got %d", doc.BlocksSkipped)
	}
	// Both well-formed blocks survive the poison block between them.
	if len(doc.Triples) != 4 {
		t.Fatalf("expected 4 triples, got %d: %v", len(doc.Triples), doc.Triples)
	}
}

func TestDecodeUnknownDatatypeDegradesToString(t *testing.T) {
	text := `@prefix ex: <` + ns + `> .
@prefix xsd: <` + rdf.XSDNamespace + `> .

ex:X ex:weight "1.5"^^xsd:decimal .
`
	doc, err := Decode(strings.NewReader(text))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(doc.Triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(doc.Triples))
	}
	if doc.Triples[0].Object.Kind != rdf.KindString {
		t.Fatalf("unknown datatype should decode as string, got %v", doc.Triples[0].Object.Kind)
	}
}

func TestDecodeAngleBracketIRI(t *testing.T) {
	text := `ex:X ex:seeAlso <http://elsewhere.example/doc> .
`
	// No @prefix lines: prefixed tokens pass through unexpanded, the
	// angle-bracket identifier is taken verbatim.
	doc, err := Decode(strings.NewReader(text))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(doc.Triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(doc.Triples))
	}
	if got := doc.Triples[0].Object; !got.IsIRI() || got.Value != "http://elsewhere.example/doc" {
		t.Fatalf("angle bracket identifier mangled: %v", got)
	}
}

func TestDecodeUnterminatedTrailingBlock(t *testing.T) {
	text := `ex:X ex:p "v" ;
`
	doc, err := Decode(strings.NewReader(text))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if doc.BlocksSkipped != 1 {
		t.Fatalf("unterminated block should be counted, got %d", doc.BlocksSkipped)
	}
}
