// Package graph discovers relationship patterns between graph nodes:
// direct edges, two-hop paths, and shared-neighbour patterns. All
// operations are read-only.
package graph

import (
	"context"
	"sort"

	"github.com/brunobiangulo/graphnav/rdf"
)

// Connection kinds, ordered lexicographically in results.
const (
	KindTwoHop        = "2-hop"
	KindDirect        = "direct"
	KindInverseShared = "inverse_shared"
	KindShared        = "shared"
)

// Connection directions.
const (
	DirForward       = "forward"
	DirReverse       = "reverse"
	DirBidirectional = "bidirectional"
)

// Connection is one relationship pattern between two nodes.
//
// For direct connections Path is the predicate and Intermediate is
// empty. For 2-hop connections Path is "P1 -> P2" and Intermediate is
// the node between the endpoints. For shared and inverse_shared
// connections Path is the single predicate both edges carry and
// Intermediate is the common neighbour; for shared patterns that
// neighbour may be a literal value, such as a status both records
// carry.
type Connection struct {
	Kind         string `json:"kind"`
	Direction    string `json:"direction"`
	Path         string `json:"path"`
	Intermediate string `json:"intermediate,omitempty"`
}

// FindConnections enumerates every relationship pattern between two
// already-resolved identifiers. Endpoints absent from the store yield
// an empty result, not an error.
//
// Results are deduplicated and fully ordered: by kind (lexicographic),
// then direction, then path, then intermediate, so repeated calls over
// an unchanged store return identical output.
func FindConnections(ctx context.Context, g rdf.Graph, a, b string) ([]Connection, error) {
	if a == "" || b == "" || a == b {
		return nil, nil
	}

	outA, err := rdf.MatchSubject(ctx, g, a)
	if err != nil {
		return nil, err
	}
	outB, err := rdf.MatchSubject(ctx, g, b)
	if err != nil {
		return nil, err
	}
	inA, err := rdf.MatchObject(ctx, g, a)
	if err != nil {
		return nil, err
	}
	inB, err := rdf.MatchObject(ctx, g, b)
	if err != nil {
		return nil, err
	}

	seen := make(map[Connection]bool)
	var conns []Connection
	add := func(c Connection) {
		if !seen[c] {
			seen[c] = true
			conns = append(conns, c)
		}
	}

	// Direct edges in either direction.
	for _, t := range outA {
		if t.Object.IsIRI() && t.Object.Value == b {
			add(Connection{Kind: KindDirect, Direction: DirForward, Path: t.Predicate})
		}
	}
	for _, t := range outB {
		if t.Object.IsIRI() && t.Object.Value == a {
			add(Connection{Kind: KindDirect, Direction: DirReverse, Path: t.Predicate})
		}
	}

	// Two-hop paths: A -> X -> B and the mirror starting from B.
	if err := twoHop(ctx, g, outA, a, b, DirForward, add); err != nil {
		return nil, err
	}
	if err := twoHop(ctx, g, outB, b, a, DirReverse, add); err != nil {
		return nil, err
	}

	// Shared: both endpoints point at the same object via the SAME
	// predicate. The object may be an identifier or a literal value.
	// A shared object reached via two different predicates does not
	// count.
	sharedNeighbours(outA, outB, a, b, outgoingKey, func(pred, x string) {
		add(Connection{Kind: KindShared, Direction: DirBidirectional, Path: pred, Intermediate: x})
	})

	// Inverse shared: one common source points at both endpoints via
	// the same predicate.
	sharedNeighbours(inA, inB, a, b, incomingKey, func(pred, x string) {
		add(Connection{Kind: KindInverseShared, Direction: DirBidirectional, Path: pred, Intermediate: x})
	})

	sort.Slice(conns, func(i, j int) bool {
		ci, cj := conns[i], conns[j]
		if ci.Kind != cj.Kind {
			return ci.Kind < cj.Kind
		}
		if ci.Direction != cj.Direction {
			return ci.Direction < cj.Direction
		}
		if ci.Path != cj.Path {
			return ci.Path < cj.Path
		}
		return ci.Intermediate < cj.Intermediate
	})
	return conns, nil
}

// twoHop emits one connection for every pair of edges
// (from, p1, X), (X, p2, to) where X is an identifier distinct from
// both endpoints.
func twoHop(ctx context.Context, g rdf.Graph, outFrom []rdf.Triple, from, to, direction string, add func(Connection)) error {
	hopped := make(map[string][]rdf.Triple)
	for _, t := range outFrom {
		x := t.Object
		if !x.IsIRI() || x.Value == from || x.Value == to {
			continue
		}
		second, ok := hopped[x.Value]
		if !ok {
			var err error
			o := rdf.IRI(to)
			s := x
			second, err = g.Match(ctx, &s, nil, &o)
			if err != nil {
				return err
			}
			hopped[x.Value] = second
		}
		for _, t2 := range second {
			add(Connection{
				Kind:         KindTwoHop,
				Direction:    direction,
				Path:         t.Predicate + " -> " + t2.Predicate,
				Intermediate: x.Value,
			})
		}
	}
	return nil
}

type edgeKey struct {
	predicate string
	node      string
	kind      rdf.Kind
}

// isEndpoint reports whether the key's node is one of the endpoints.
// Only identifiers can coincide with an endpoint; a literal whose
// lexical form happens to equal an endpoint IRI is a different value.
func (k edgeKey) isEndpoint(a, b string) bool {
	return k.kind == rdf.KindIRI && (k.node == a || k.node == b)
}

func outgoingKey(t rdf.Triple) edgeKey {
	return edgeKey{predicate: t.Predicate, node: t.Object.Value, kind: t.Object.Kind}
}

func incomingKey(t rdf.Triple) edgeKey {
	return edgeKey{predicate: t.Predicate, node: t.Subject, kind: rdf.KindIRI}
}

// sharedNeighbours finds (predicate, node) pairs present in both edge
// sets where the node is distinct from both endpoints. Predicate
// equality is part of the key: matching on the node alone is not a
// shared pattern. The object's datatype is part of the key too, so an
// integer literal and a string literal with the same lexical form do
// not pair up.
func sharedNeighbours(edgesA, edgesB []rdf.Triple, a, b string, key func(rdf.Triple) edgeKey, emit func(pred, node string)) {
	fromA := make(map[edgeKey]bool)
	for _, t := range edgesA {
		if k := key(t); !k.isEndpoint(a, b) {
			fromA[k] = true
		}
	}
	emitted := make(map[edgeKey]bool)
	for _, t := range edgesB {
		k := key(t)
		if k.isEndpoint(a, b) {
			continue
		}
		if fromA[k] && !emitted[k] {
			emitted[k] = true
			emit(k.predicate, k.node)
		}
	}
}
