package rdf

import (
	"context"
	"sort"
)

// Graph is the triple-store collaborator seam. Both the local SQLite
// store and the remote endpoint client implement it; the resolver and
// relationship finder are pure functions of (Graph, input).
//
// All operations are blocking reads. Implementations surface query
// failures verbatim; callers never retry.
type Graph interface {
	// Match returns all triples matching the pattern. A nil position is
	// a wildcard. Result order is store-defined.
	Match(ctx context.Context, s, p, o *Term) ([]Triple, error)

	// SearchLiteral returns the distinct subjects holding a string
	// literal under predicate that matches text case-insensitively:
	// by equality, or by containment when substring is true. Subjects
	// are returned in lexicographic order so ties resolve
	// deterministically.
	SearchLiteral(ctx context.Context, predicate, text string, substring bool) ([]string, error)
}

// MatchSubject is a convenience wildcard helper: triples with the given
// subject.
func MatchSubject(ctx context.Context, g Graph, subject string) ([]Triple, error) {
	s := IRI(subject)
	return g.Match(ctx, &s, nil, nil)
}

// MatchObject is a convenience wildcard helper: triples with the given
// identifier as object.
func MatchObject(ctx context.Context, g Graph, object string) ([]Triple, error) {
	o := IRI(object)
	return g.Match(ctx, nil, nil, &o)
}

// Contains reports whether an identifier appears in the graph as a
// subject or as an object of any triple.
func Contains(ctx context.Context, g Graph, iri string) (bool, error) {
	asSubject, err := MatchSubject(ctx, g, iri)
	if err != nil {
		return false, err
	}
	if len(asSubject) > 0 {
		return true, nil
	}
	asObject, err := MatchObject(ctx, g, iri)
	if err != nil {
		return false, err
	}
	return len(asObject) > 0, nil
}

// SubjectsOfType returns the distinct subjects carrying a rdf:type
// triple for the given class IRI, in lexicographic order.
func SubjectsOfType(ctx context.Context, g Graph, class string) ([]string, error) {
	p := IRI(RDFType)
	o := IRI(class)
	triples, err := g.Match(ctx, nil, &p, &o)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(triples))
	var subjects []string
	for _, t := range triples {
		if !seen[t.Subject] {
			seen[t.Subject] = true
			subjects = append(subjects, t.Subject)
		}
	}
	sort.Strings(subjects)
	return subjects, nil
}
