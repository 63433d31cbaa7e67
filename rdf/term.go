package rdf

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies what a Term holds. Literals carry the datatype decided
// once at ingestion; it is never re-inferred at read time.
type Kind int

const (
	KindIRI Kind = iota
	KindString
	KindInteger
	KindFloat
	KindDate
)

// String returns the kind name used in storage and wire formats.
func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a kind name, with the same string fallback as
// KindFromString.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = KindFromString(s)
	return nil
}

// KindFromString parses a stored kind name. Unrecognised names fall back
// to string literals so foreign data degrades rather than fails.
func KindFromString(s string) Kind {
	switch s {
	case "iri":
		return KindIRI
	case "integer":
		return KindInteger
	case "float":
		return KindFloat
	case "date":
		return KindDate
	default:
		return KindString
	}
}

// Term is a node or value in the graph: either an IRI or a typed literal.
// Value holds the fully qualified IRI or the lexical form of the literal.
type Term struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// IRI constructs an identifier term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// String constructs a string literal term.
func String(v string) Term { return Term{Kind: KindString, Value: v} }

// Integer constructs an integer literal term.
func Integer(v int64) Term {
	return Term{Kind: KindInteger, Value: strconv.FormatInt(v, 10)}
}

// Float constructs a float literal term.
func Float(v float64) Term {
	return Term{Kind: KindFloat, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// Date constructs a date literal term from a DD-MM-YYYY lexical form.
func Date(v string) Term { return Term{Kind: KindDate, Value: v} }

// IsIRI reports whether the term is an identifier rather than a literal.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// String renders the term for display and logging.
func (t Term) String() string {
	if t.Kind == KindIRI {
		return t.Value
	}
	return fmt.Sprintf("%q^^%s", t.Value, t.Kind)
}

// Triple is a single (subject, predicate, object) fact. Subject and
// predicate are always fully qualified identifiers; the object may be an
// identifier or a typed literal. Duplicate triples are tolerated.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    Term   `json:"object"`
}

// Equal reports byte-equality of all three positions, including the
// object's datatype. Identifier equality is equality of fully qualified
// forms; callers expand prefixed names before comparing.
func (t Triple) Equal(o Triple) bool {
	return t.Subject == o.Subject && t.Predicate == o.Predicate && t.Object == o.Object
}
