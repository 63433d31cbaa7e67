package rdf

import "strings"

// Well-known namespace IRIs.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// Well-known property and datatype IRIs.
const (
	RDFType   = RDFNamespace + "type"
	RDFSLabel = RDFSNamespace + "label"

	XSDInteger = XSDNamespace + "integer"
	XSDFloat   = XSDNamespace + "float"
	XSDDate    = XSDNamespace + "date"
)

// Entity class local names. Types are a soft convention carried as a
// rdf:type triple; identifiers that follow no convention must still work.
const (
	ClassCustomer           = "Customer"
	ClassModule             = "Module"
	ClassIncidentReport     = "IncidentReport"
	ClassEnhancementRequest = "EnhancementRequest"
)

// Short-ID identifier prefixes used by the legacy naming convention
// (fallback classifier only; the rdf:type triple is authoritative).
const (
	ShortPrefixIncident    = "IR_"
	ShortPrefixEnhancement = "ER_"
	ShortPrefixModule      = "Module_"
	ShortPrefixCustomer    = "Customer_"
)

// Vocabulary resolves class and property local names against the
// configured data namespace.
type Vocabulary struct {
	Namespace string
}

// NewVocabulary builds a vocabulary rooted at the given namespace.
func NewVocabulary(namespace string) Vocabulary {
	return Vocabulary{Namespace: namespace}
}

// Term returns the fully qualified IRI for a local name.
func (v Vocabulary) Term(local string) string { return v.Namespace + local }

// Class IRIs.
func (v Vocabulary) Customer() string           { return v.Term(ClassCustomer) }
func (v Vocabulary) Module() string             { return v.Term(ClassModule) }
func (v Vocabulary) IncidentReport() string     { return v.Term(ClassIncidentReport) }
func (v Vocabulary) EnhancementRequest() string { return v.Term(ClassEnhancementRequest) }

// Property IRIs.
func (v Vocabulary) Description() string       { return v.Term("description") }
func (v Vocabulary) Status() string            { return v.Term("status") }
func (v Vocabulary) Severity() string          { return v.Term("severity") }
func (v Vocabulary) Priority() string          { return v.Term("priority") }
func (v Vocabulary) Product() string           { return v.Term("product") }
func (v Vocabulary) RequestType() string       { return v.Term("requestType") }
func (v Vocabulary) CreatedOn() string         { return v.Term("createdOn") }
func (v Vocabulary) Domain() string            { return v.Term("domain") }
func (v Vocabulary) BelongsToCustomer() string { return v.Term("belongsToCustomer") }
func (v Vocabulary) MentionsFunction() string  { return v.Term("mentionsFunction") }
func (v Vocabulary) IsSimilarTo() string       { return v.Term("isSimilarTo") }

// LabelPredicate returns the predicate that drives resolution for a
// class: EnhancementRequest nodes use description as their
// label-equivalent, everything else uses rdfs:label.
func (v Vocabulary) LabelPredicate(class string) string {
	if class == v.EnhancementRequest() {
		return v.Description()
	}
	return RDFSLabel
}

// ClassifyLocalName guesses an entity class local name from an
// identifier's naming convention. Returns "" when the identifier
// follows no known convention.
func ClassifyLocalName(name string) string {
	switch {
	case strings.HasPrefix(name, ShortPrefixIncident) || strings.HasPrefix(name, "IR"):
		return ClassIncidentReport
	case strings.HasPrefix(name, ShortPrefixEnhancement) || strings.HasPrefix(name, "ER"):
		return ClassEnhancementRequest
	case strings.HasPrefix(name, ShortPrefixModule) || strings.HasPrefix(name, "Module"):
		return ClassModule
	case strings.HasPrefix(name, ShortPrefixCustomer) || strings.HasPrefix(name, "Customer"):
		return ClassCustomer
	default:
		return ""
	}
}

// LocalName returns the part of an IRI after the last '#' or '/'.
func LocalName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
