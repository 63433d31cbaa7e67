package graph

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/brunobiangulo/graphnav/rdf"
)

const ns = "http://example.org/support#"

// memGraph is an in-memory rdf.Graph for traversal tests.
type memGraph struct {
	triples []rdf.Triple
}

func (g *memGraph) Match(_ context.Context, s, p, o *rdf.Term) ([]rdf.Triple, error) {
	var out []rdf.Triple
	for _, t := range g.triples {
		if s != nil && t.Subject != s.Value {
			continue
		}
		if p != nil && t.Predicate != p.Value {
			continue
		}
		if o != nil && t.Object != *o {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (g *memGraph) SearchLiteral(_ context.Context, predicate, text string, substring bool) ([]string, error) {
	lt := strings.ToLower(text)
	seen := make(map[string]bool)
	var subjects []string
	for _, t := range g.triples {
		if t.Predicate != predicate || t.Object.Kind != rdf.KindString {
			continue
		}
		lv := strings.ToLower(t.Object.Value)
		match := lv == lt
		if substring {
			match = strings.Contains(lv, lt)
		}
		if match && !seen[t.Subject] {
			seen[t.Subject] = true
			subjects = append(subjects, t.Subject)
		}
	}
	sort.Strings(subjects)
	return subjects, nil
}

func edge(s, p, o string) rdf.Triple {
	return rdf.Triple{Subject: ns + s, Predicate: ns + p, Object: rdf.IRI(ns + o)}
}

// ---------------------------------------------------------------------------
// Direct
// ---------------------------------------------------------------------------

func TestDirectConnections(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		edge("IR_1", "isSimilarTo", "ER_2"),
		edge("ER_2", "references", "IR_1"),
	}}

	conns, err := FindConnections(context.Background(), g, ns+"IR_1", ns+"ER_2")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}
	want := []Connection{
		{Kind: KindDirect, Direction: DirForward, Path: ns + "isSimilarTo"},
		{Kind: KindDirect, Direction: DirReverse, Path: ns + "references"},
	}
	if !reflect.DeepEqual(conns, want) {
		t.Fatalf("got %+v, want %+v", conns, want)
	}
}

func TestLiteralObjectsAreNotDirectEdges(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		{Subject: ns + "A", Predicate: ns + "note", Object: rdf.String(ns + "B")},
	}}

	conns, err := FindConnections(context.Background(), g, ns+"A", ns+"B")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}
	if len(conns) != 0 {
		t.Fatalf("a literal that looks like an identifier is not a direct edge: %+v", conns)
	}
}

// ---------------------------------------------------------------------------
// Two-hop
// ---------------------------------------------------------------------------

func TestTwoHopConnections(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		edge("IR_1", "mentionsFunction", "Module_Billing"),
		edge("Module_Billing", "partOf", "Product_X"),
	}}

	conns, err := FindConnections(context.Background(), g, ns+"IR_1", ns+"Product_X")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}
	want := []Connection{{
		Kind:         KindTwoHop,
		Direction:    DirForward,
		Path:         ns + "mentionsFunction" + " -> " + ns + "partOf",
		Intermediate: ns + "Module_Billing",
	}}
	if !reflect.DeepEqual(conns, want) {
		t.Fatalf("got %+v, want %+v", conns, want)
	}
}

func TestTwoHopReverseDirection(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		edge("B", "p1", "X"),
		edge("X", "p2", "A"),
	}}

	conns, err := FindConnections(context.Background(), g, ns+"A", ns+"B")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}
	if len(conns) != 1 || conns[0].Direction != DirReverse {
		t.Fatalf("expected one reverse 2-hop, got %+v", conns)
	}
}

// ---------------------------------------------------------------------------
// Shared / inverse shared
// ---------------------------------------------------------------------------

func TestSharedRequiresSamePredicate(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		edge("IR_1", "belongsToCustomer", "Customer_Acme"),
		edge("ER_2", "belongsToCustomer", "Customer_Acme"),
		// Same neighbour via different predicates: not shared.
		edge("IR_1", "mentionsFunction", "Module_Core"),
		edge("ER_2", "touches", "Module_Core"),
	}}

	conns, err := FindConnections(context.Background(), g, ns+"IR_1", ns+"ER_2")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}

	var shared []Connection
	for _, c := range conns {
		if c.Kind == KindShared {
			shared = append(shared, c)
		}
	}
	want := []Connection{{
		Kind:         KindShared,
		Direction:    DirBidirectional,
		Path:         ns + "belongsToCustomer",
		Intermediate: ns + "Customer_Acme",
	}}
	if !reflect.DeepEqual(shared, want) {
		t.Fatalf("got %+v, want %+v", shared, want)
	}
}

func TestSharedLiteralValue(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		{Subject: ns + "IR_1", Predicate: ns + "status", Object: rdf.String("Open")},
		{Subject: ns + "IR_2", Predicate: ns + "status", Object: rdf.String("Open")},
		// Same value via different predicates: not shared.
		{Subject: ns + "IR_1", Predicate: ns + "priority", Object: rdf.String("P2")},
		{Subject: ns + "IR_2", Predicate: ns + "escalation", Object: rdf.String("P2")},
		// Same lexical form, different datatypes: not shared.
		{Subject: ns + "IR_1", Predicate: ns + "revision", Object: rdf.Integer(5)},
		{Subject: ns + "IR_2", Predicate: ns + "revision", Object: rdf.String("5")},
	}}

	conns, err := FindConnections(context.Background(), g, ns+"IR_1", ns+"IR_2")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}
	want := []Connection{{
		Kind:         KindShared,
		Direction:    DirBidirectional,
		Path:         ns + "status",
		Intermediate: "Open",
	}}
	if !reflect.DeepEqual(conns, want) {
		t.Fatalf("got %+v, want %+v", conns, want)
	}
}

func TestInverseShared(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		edge("Customer_Acme", "reported", "IR_1"),
		edge("Customer_Acme", "reported", "ER_2"),
	}}

	conns, err := FindConnections(context.Background(), g, ns+"IR_1", ns+"ER_2")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}
	want := []Connection{{
		Kind:         KindInverseShared,
		Direction:    DirBidirectional,
		Path:         ns + "reported",
		Intermediate: ns + "Customer_Acme",
	}}
	if !reflect.DeepEqual(conns, want) {
		t.Fatalf("got %+v, want %+v", conns, want)
	}
}

// ---------------------------------------------------------------------------
// Ordering / edge cases
// ---------------------------------------------------------------------------

func TestConnectionsAreOrderedAndDeduplicated(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{
		edge("A", "knows", "B"),
		edge("A", "knows", "B"), // duplicate statement
		edge("A", "rel", "X"),
		edge("X", "rel2", "B"),
		edge("A", "via", "Y"),
		edge("B", "via", "Y"),
	}}
	ctx := context.Background()

	first, err := FindConnections(ctx, g, ns+"A", ns+"B")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}

	// Duplicate statements collapse to one connection.
	direct := 0
	for _, c := range first {
		if c.Kind == KindDirect {
			direct++
		}
	}
	if direct != 1 {
		t.Fatalf("expected 1 direct connection, got %d: %+v", direct, first)
	}

	// Kinds come back in lexicographic order.
	for i := 1; i < len(first); i++ {
		if first[i-1].Kind > first[i].Kind {
			t.Fatalf("kinds out of order: %+v", first)
		}
	}

	// Repeated calls return identical output.
	second, err := FindConnections(ctx, g, ns+"A", ns+"B")
	if err != nil {
		t.Fatalf("finding connections again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestSameNodeYieldsNoConnections(t *testing.T) {
	g := &memGraph{triples: []rdf.Triple{edge("A", "knows", "A")}}

	conns, err := FindConnections(context.Background(), g, ns+"A", ns+"A")
	if err != nil {
		t.Fatalf("finding connections: %v", err)
	}
	if conns != nil {
		t.Fatalf("identical endpoints should yield nil, got %+v", conns)
	}
}

func TestAbsentNodesYieldNoConnections(t *testing.T) {
	g := &memGraph{}

	conns, err := FindConnections(context.Background(), g, ns+"A", ns+"B")
	if err != nil {
		t.Fatalf("absent endpoints must not be an error: %v", err)
	}
	if len(conns) != 0 {
		t.Fatalf("got %+v", conns)
	}
}
