package rdf

import "testing"

func TestVocabularyTerms(t *testing.T) {
	v := NewVocabulary("http://example.org/support#")
	if got := v.IncidentReport(); got != "http://example.org/support#IncidentReport" {
		t.Fatalf("IncidentReport = %q", got)
	}
	if got := v.BelongsToCustomer(); got != "http://example.org/support#belongsToCustomer" {
		t.Fatalf("BelongsToCustomer = %q", got)
	}
}

func TestLabelPredicate(t *testing.T) {
	v := NewVocabulary("http://example.org/support#")
	if got := v.LabelPredicate(v.EnhancementRequest()); got != v.Description() {
		t.Fatalf("enhancement requests resolve on description, got %q", got)
	}
	if got := v.LabelPredicate(v.Customer()); got != RDFSLabel {
		t.Fatalf("customers resolve on rdfs:label, got %q", got)
	}
}

func TestClassifyLocalName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"IR_004", ClassIncidentReport},
		{"ER_201", ClassEnhancementRequest},
		{"Module_Billing", ClassModule},
		{"Customer_Acme", ClassCustomer},
		{"whatever", ""},
	}
	for _, c := range cases {
		if got := ClassifyLocalName(c.in); got != c.want {
			t.Errorf("ClassifyLocalName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLocalName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"http://example.org/support#IR_004", "IR_004"},
		{"http://example.org/path/Module_Billing", "Module_Billing"},
		{"bare", "bare"},
	}
	for _, c := range cases {
		if got := LocalName(c.in); got != c.want {
			t.Errorf("LocalName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
