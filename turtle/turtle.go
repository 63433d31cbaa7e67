// Package turtle reads and writes the line-oriented triple-block text
// format used to exchange graph data with the triple store: a preamble
// of @prefix bindings followed by per-subject blocks of the form
//
//	ex:IR_IR004 a ex:IncidentReport ;
//	    rdfs:label "Login failure" ;
//	    ex:createdOn "12-03-2024"^^xsd:date .
//
// Statement lines end in " ;" except the last line of a block, which
// ends in " .". Repeated predicates may be comma-joined on one line.
// This is a deliberate subset of Turtle: no blank nodes, no collections,
// no multi-line literals.
package turtle

import "github.com/brunobiangulo/graphnav/rdf"

// Document is a decoded graph text: the namespace bindings from the
// preamble plus the triples from the entity blocks.
type Document struct {
	Bindings map[string]string
	Triples  []rdf.Triple

	// BlocksSkipped counts entity blocks dropped because they could not
	// be parsed. Decoding continues past them.
	BlocksSkipped int
}

func escape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			out = append(out, '\\', '\\')
		case '"':
			out = append(out, '\\', '"')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

func unescape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			out = append(out, s[i])
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
