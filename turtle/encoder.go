package turtle

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/brunobiangulo/graphnav/rdf"
)

// Encoder writes triples in the triple-block format. Triples are
// grouped by subject; within a block the rdf:type statement is written
// first (as "a"), repeated predicates are comma-joined, and the block
// is terminated by " ." instead of " ;".
type Encoder struct {
	w        io.Writer
	prefixes *rdf.Prefixes
}

// NewEncoder returns an encoder that shortens identifiers against the
// given bindings and emits them as the @prefix preamble.
func NewEncoder(w io.Writer, prefixes *rdf.Prefixes) *Encoder {
	return &Encoder{w: w, prefixes: prefixes}
}

// Encode writes the preamble and all triples.
func (e *Encoder) Encode(triples []rdf.Triple) error {
	if err := e.writePreamble(); err != nil {
		return err
	}

	// Group by subject, preserving first-seen subject order.
	var order []string
	bySubject := make(map[string][]rdf.Triple)
	for _, t := range triples {
		if _, ok := bySubject[t.Subject]; !ok {
			order = append(order, t.Subject)
		}
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}

	for _, subj := range order {
		if err := e.writeBlock(subj, bySubject[subj]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writePreamble() error {
	bindings := e.prefixes.All()
	prefixes := make([]string, 0, len(bindings))
	for p := range bindings {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		if _, err := fmt.Fprintf(e.w, "@prefix %s: <%s> .\n", p, bindings[p]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(e.w)
	return err
}

func (e *Encoder) writeBlock(subject string, triples []rdf.Triple) error {
	// Statement lines: rdf:type first as "a", then remaining predicates
	// in first-seen order with repeated predicates comma-joined.
	var predOrder []string
	objects := make(map[string][]string)
	for _, t := range triples {
		rendered := e.renderObject(t.Object)
		if _, ok := objects[t.Predicate]; !ok {
			predOrder = append(predOrder, t.Predicate)
		}
		objects[t.Predicate] = append(objects[t.Predicate], rendered)
	}

	var lines []string
	if vals, ok := objects[rdf.RDFType]; ok {
		lines = append(lines, fmt.Sprintf("%s a %s",
			e.prefixes.Shorten(subject), strings.Join(vals, ", ")))
	} else {
		// Typeless subjects still get a block; the first statement line
		// carries the subject.
		lines = append(lines, e.prefixes.Shorten(subject)+" "+
			e.prefixes.Shorten(predOrder[0])+" "+strings.Join(objects[predOrder[0]], ", "))
		predOrder = predOrder[1:]
	}

	for _, pred := range predOrder {
		if pred == rdf.RDFType {
			continue
		}
		lines = append(lines, "    "+e.prefixes.Shorten(pred)+" "+
			strings.Join(objects[pred], ", "))
	}

	for i, line := range lines {
		terminator := " ;"
		if i == len(lines)-1 {
			terminator = " ."
		}
		if _, err := fmt.Fprintln(e.w, line+terminator); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(e.w)
	return err
}

func (e *Encoder) renderObject(o rdf.Term) string {
	switch o.Kind {
	case rdf.KindIRI:
		short := e.prefixes.Shorten(o.Value)
		if short == o.Value && rdf.IsQualified(o.Value) {
			return "<" + o.Value + ">"
		}
		return short
	case rdf.KindInteger:
		return fmt.Sprintf("%q^^%s", o.Value, e.prefixes.Shorten(rdf.XSDInteger))
	case rdf.KindFloat:
		return fmt.Sprintf("%q^^%s", o.Value, e.prefixes.Shorten(rdf.XSDFloat))
	case rdf.KindDate:
		return fmt.Sprintf("%q^^%s", o.Value, e.prefixes.Shorten(rdf.XSDDate))
	default:
		return `"` + escape(o.Value) + `"`
	}
}
