// Package resolve maps free-form user input (a full identifier, a
// prefixed identifier, label text, or a short record ID) to exactly
// one canonical identifier in the graph. Resolution failure is a
// first-class ErrNotFound outcome, never a panic and never retried;
// no resolution call mutates the store.
package resolve

import (
	"context"
	"errors"
	"strings"

	"github.com/brunobiangulo/graphnav/rdf"
)

// ErrNotFound is returned when no graph node matches the input.
var ErrNotFound = errors.New("resolve: resource not found")

// Resolver resolves user input against one graph using one set of
// namespace bindings. It is stateless beyond its configuration and safe
// for concurrent use.
type Resolver struct {
	graph    rdf.Graph
	prefixes *rdf.Prefixes
	vocab    rdf.Vocabulary

	// DefaultPrefix is prepended once when a short-ID lookup fails and
	// the input carries no prefix of its own.
	DefaultPrefix string
}

// New creates a resolver over the given graph.
func New(g rdf.Graph, prefixes *rdf.Prefixes, vocab rdf.Vocabulary) *Resolver {
	return &Resolver{graph: g, prefixes: prefixes, vocab: vocab, DefaultPrefix: "ex"}
}

// Resolve maps input to a canonical identifier.
//
// Precedence: exact identifier short-circuit; then case-insensitive
// label equality; then case-insensitive label containment. Label tiers
// consider, in order: any rdfs:label, then Customer, Module,
// IncidentReport, and EnhancementRequest nodes (the latter matched on
// description, their label-equivalent). Within a tier, the
// lexicographically smallest subject wins, so a given store always
// resolves the same input to the same identifier.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrNotFound
	}

	expanded := r.prefixes.Expand(input)
	if rdf.IsQualified(expanded) {
		present, err := rdf.Contains(ctx, r.graph, expanded)
		if err != nil {
			return "", err
		}
		if present {
			return expanded, nil
		}
	}

	if iri, err := r.resolveByLabel(ctx, input, false); err == nil {
		return iri, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	return r.resolveByLabel(ctx, input, true)
}

// resolveByLabel runs one equality or containment pass over the label
// precedence tiers.
func (r *Resolver) resolveByLabel(ctx context.Context, input string, substring bool) (string, error) {
	// Tier 1: any node with a matching rdfs:label, regardless of type.
	subjects, err := r.graph.SearchLiteral(ctx, rdf.RDFSLabel, input, substring)
	if err != nil {
		return "", err
	}
	if len(subjects) > 0 {
		return subjects[0], nil
	}

	// Typed tiers in fixed precedence. EnhancementRequest nodes are
	// matched on description, their label-equivalent.
	for _, class := range []string{
		r.vocab.Customer(),
		r.vocab.Module(),
		r.vocab.IncidentReport(),
		r.vocab.EnhancementRequest(),
	} {
		candidates, err := r.graph.SearchLiteral(ctx, r.vocab.LabelPredicate(class), input, substring)
		if err != nil {
			return "", err
		}
		for _, subj := range candidates {
			typed, err := r.hasType(ctx, subj, class)
			if err != nil {
				return "", err
			}
			if typed {
				return subj, nil
			}
		}
	}
	return "", ErrNotFound
}

// ResolveShortID maps an incident/enhancement short code such as
// "IR_004" to its canonical identifier. It tries the exact-identifier
// short-circuit, then an identifier-suffix match over IncidentReport
// and EnhancementRequest nodes, and finally retries once with the
// default prefix prepended when the input has none.
func (r *Resolver) ResolveShortID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrNotFound
	}

	expanded := r.prefixes.Expand(id)
	if rdf.IsQualified(expanded) {
		present, err := rdf.Contains(ctx, r.graph, expanded)
		if err != nil {
			return "", err
		}
		if present {
			return expanded, nil
		}
	}

	for _, class := range []string{r.vocab.IncidentReport(), r.vocab.EnhancementRequest()} {
		subjects, err := rdf.SubjectsOfType(ctx, r.graph, class)
		if err != nil {
			return "", err
		}
		for _, subj := range subjects {
			if strings.HasSuffix(subj, id) {
				return subj, nil
			}
		}
	}

	if !strings.Contains(id, ":") && r.DefaultPrefix != "" {
		return r.ResolveShortID(ctx, r.DefaultPrefix+":"+id)
	}
	return "", ErrNotFound
}

// Describe returns a display annotation for a node:
// "{label}: {description}" when both exist, the description alone when
// there is no label, the label alone when there is no description, and
// "" when the node carries neither.
func (r *Resolver) Describe(ctx context.Context, node string) (string, error) {
	label, err := r.firstLiteral(ctx, node, rdf.RDFSLabel)
	if err != nil {
		return "", err
	}
	description, err := r.firstLiteral(ctx, node, r.vocab.Description())
	if err != nil {
		return "", err
	}

	switch {
	case label != "" && description != "":
		return label + ": " + description, nil
	case description != "":
		return description, nil
	default:
		return label, nil
	}
}

func (r *Resolver) hasType(ctx context.Context, subject, class string) (bool, error) {
	s, p, o := rdf.IRI(subject), rdf.IRI(rdf.RDFType), rdf.IRI(class)
	triples, err := r.graph.Match(ctx, &s, &p, &o)
	if err != nil {
		return false, err
	}
	return len(triples) > 0, nil
}

func (r *Resolver) firstLiteral(ctx context.Context, subject, predicate string) (string, error) {
	s, p := rdf.IRI(subject), rdf.IRI(predicate)
	triples, err := r.graph.Match(ctx, &s, &p, nil)
	if err != nil {
		return "", err
	}
	for _, t := range triples {
		if !t.Object.IsIRI() {
			return t.Object.Value, nil
		}
	}
	return "", nil
}
