package turtle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/brunobiangulo/graphnav/rdf"
)

// Decode parses a graph text into bindings and triples. Entity blocks
// that cannot be parsed are skipped and counted; one malformed block
// never aborts the rest of the document.
func Decode(r io.Reader) (*Document, error) {
	doc := &Document{Bindings: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var block []string
	flush := func() {
		if len(block) == 0 {
			return
		}
		prefixes := rdf.NewPrefixes(doc.Bindings)
		triples, err := decodeBlock(block, prefixes)
		if err != nil {
			doc.BlocksSkipped++
		} else {
			doc.Triples = append(doc.Triples, triples...)
		}
		block = block[:0]
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "@prefix") && len(block) == 0 {
			if prefix, ns, ok := parsePrefixLine(trimmed); ok {
				doc.Bindings[prefix] = ns
			}
			continue
		}

		block = append(block, line)
		if strings.HasSuffix(trimmed, ".") {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading graph text: %w", err)
	}
	if len(block) > 0 {
		// Unterminated trailing block.
		doc.BlocksSkipped++
	}
	return doc, nil
}

// parsePrefixLine parses `@prefix ex: <http://...#> .`
func parsePrefixLine(line string) (prefix, namespace string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "@prefix"))
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", "", false
	}
	prefix = strings.TrimSpace(rest[:colon])
	rest = strings.TrimSpace(rest[colon+1:])
	open := strings.Index(rest, "<")
	close := strings.Index(rest, ">")
	if open < 0 || close < open {
		return "", "", false
	}
	return prefix, rest[open+1 : close], true
}

// decodeBlock parses one entity block into triples.
func decodeBlock(lines []string, prefixes *rdf.Prefixes) ([]rdf.Triple, error) {
	var triples []rdf.Triple
	var subject string

	for i, raw := range lines {
		stmt := strings.TrimSpace(raw)
		switch {
		case strings.HasSuffix(stmt, " ;"):
			stmt = strings.TrimSuffix(stmt, " ;")
		case strings.HasSuffix(stmt, " ."):
			stmt = strings.TrimSuffix(stmt, " .")
		case stmt == ".":
			continue
		default:
			return nil, fmt.Errorf("line %d: missing statement terminator", i+1)
		}
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		var predToken, objectList string
		if i == 0 {
			subjToken, rest, ok := splitToken(stmt)
			if !ok {
				return nil, fmt.Errorf("line 1: missing subject")
			}
			subject = expandIRIToken(subjToken, prefixes)
			predToken, objectList, ok = splitToken(rest)
			if !ok {
				return nil, fmt.Errorf("line 1: missing predicate")
			}
		} else {
			var ok bool
			predToken, objectList, ok = splitToken(stmt)
			if !ok {
				return nil, fmt.Errorf("line %d: missing predicate", i+1)
			}
		}

		predicate := rdf.RDFType
		if predToken != "a" {
			predicate = expandIRIToken(predToken, prefixes)
		}

		objects, err := parseObjectList(objectList, prefixes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		for _, o := range objects {
			triples = append(triples, rdf.Triple{Subject: subject, Predicate: predicate, Object: o})
		}
	}
	if subject == "" {
		return nil, fmt.Errorf("empty block")
	}
	return triples, nil
}

// splitToken cuts the first whitespace-delimited token off a statement.
func splitToken(s string) (token, rest string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:]), true
	}
	return s, "", true
}

// parseObjectList parses a comma-separated object list, honouring quoted
// strings with backslash escapes and <> delimited identifiers.
func parseObjectList(s string, prefixes *rdf.Prefixes) ([]rdf.Term, error) {
	var terms []rdf.Term
	for _, item := range splitObjects(s) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		term, err := parseObject(item, prefixes)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty object list")
	}
	return terms, nil
}

// splitObjects splits on top-level commas (outside quotes and <>).
func splitObjects(s string) []string {
	var parts []string
	var start int
	inQuote, inAngle := false, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case inQuote:
			if c == '\\' {
				i++
			} else if c == '"' {
				inQuote = false
			}
		case inAngle:
			if c == '>' {
				inAngle = false
			}
		case c == '"':
			inQuote = true
		case c == '<':
			inAngle = true
		case c == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// parseObject parses a single object token into a term.
func parseObject(s string, prefixes *rdf.Prefixes) (rdf.Term, error) {
	switch {
	case strings.HasPrefix(s, `"`):
		end := closingQuote(s)
		if end < 0 {
			return rdf.Term{}, fmt.Errorf("unterminated string literal")
		}
		value := unescape(s[1:end])
		rest := s[end+1:]
		if strings.HasPrefix(rest, "^^") {
			datatype := expandIRIToken(strings.TrimSpace(rest[2:]), prefixes)
			switch datatype {
			case rdf.XSDInteger:
				return rdf.Term{Kind: rdf.KindInteger, Value: value}, nil
			case rdf.XSDFloat:
				return rdf.Term{Kind: rdf.KindFloat, Value: value}, nil
			case rdf.XSDDate:
				return rdf.Term{Kind: rdf.KindDate, Value: value}, nil
			default:
				// Unknown datatype tags degrade to plain strings.
				return rdf.String(value), nil
			}
		}
		return rdf.String(value), nil
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.IRI(s[1 : len(s)-1]), nil
	default:
		return rdf.IRI(expandIRIToken(s, prefixes)), nil
	}
}

// closingQuote finds the index of the unescaped closing quote.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// expandIRIToken expands a prefixed or <> wrapped identifier token.
func expandIRIToken(token string, prefixes *rdf.Prefixes) string {
	if strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">") {
		return token[1 : len(token)-1]
	}
	return prefixes.Expand(token)
}
