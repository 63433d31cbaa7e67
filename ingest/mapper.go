package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/brunobiangulo/graphnav/rdf"
)

// Mapper converts tables into triples against a vocabulary namespace.
type Mapper struct {
	vocab rdf.Vocabulary
}

// NewMapper returns a mapper emitting terms in the vocabulary's namespace.
func NewMapper(v rdf.Vocabulary) *Mapper {
	return &Mapper{vocab: v}
}

// Result reports what one conversion produced.
type Result struct {
	Triples       []rdf.Triple
	RowsConverted int
	RowsSkipped   int
}

// Date layouts accepted in source cells, tried in order. All dates are
// normalised to DD-MM-YYYY on output.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// Column names recognised as row identifiers, after the *_id suffix rule.
var idColumnNames = []string{"er", "ir", "incident", "enhancement"}

// Map converts every row of a table into triples. Rows whose identifier
// cell is empty are skipped and counted; they never abort the rest of
// the table.
func (m *Mapper) Map(table Table) Result {
	var res Result
	if len(table.Columns) == 0 {
		return res
	}

	idCol := identifierColumn(table.Columns)
	typed := make(map[string]bool) // subjects already given a class triple

	for _, row := range table.Rows {
		id := table.Cell(row, idCol)
		if id == "" {
			res.RowsSkipped++
			continue
		}
		subject := m.vocab.Term(sanitize(id))
		res.Triples = append(res.Triples, m.rowTriples(table, row, subject, id, idCol, typed)...)
		res.RowsConverted++
	}
	return res
}

func (m *Mapper) rowTriples(table Table, row []string, subject, id string, idCol int, typed map[string]bool) []rdf.Triple {
	var out []rdf.Triple

	if class := rdf.ClassifyLocalName(id); class != "" && !typed[subject] {
		typed[subject] = true
		out = append(out, rdf.Triple{
			Subject:   subject,
			Predicate: rdf.RDFType,
			Object:    rdf.IRI(m.vocab.Term(class)),
		})
	}

	for i, col := range table.Columns {
		if i == idCol {
			continue
		}
		value := table.Cell(row, i)
		if value == "" {
			continue
		}

		switch normalizeColumn(col) {
		case "title", "label":
			out = append(out, rdf.Triple{
				Subject:   subject,
				Predicate: rdf.RDFSLabel,
				Object:    rdf.String(value),
			})
		case "customer":
			ref := m.vocab.Term(rdf.ShortPrefixCustomer + sanitize(value))
			out = append(out, rdf.Triple{
				Subject:   subject,
				Predicate: m.vocab.BelongsToCustomer(),
				Object:    rdf.IRI(ref),
			})
			out = append(out, m.declare(ref, m.vocab.Customer(), value, typed)...)
		case "module":
			ref := m.vocab.Term(rdf.ShortPrefixModule + sanitize(value))
			out = append(out, rdf.Triple{
				Subject:   subject,
				Predicate: m.vocab.MentionsFunction(),
				Object:    rdf.IRI(ref),
			})
			out = append(out, m.declare(ref, m.vocab.Module(), value, typed)...)
		case "similar_to":
			for _, part := range strings.Split(value, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				out = append(out, rdf.Triple{
					Subject:   subject,
					Predicate: m.vocab.IsSimilarTo(),
					Object:    rdf.IRI(m.vocab.Term(sanitize(part))),
				})
			}
		default:
			out = append(out, rdf.Triple{
				Subject:   subject,
				Predicate: m.vocab.Term(propertyName(col)),
				Object:    literal(value),
			})
		}
	}
	return out
}

// declare emits the class and label triples for a referenced entity the
// first time it is seen.
func (m *Mapper) declare(iri, class, label string, typed map[string]bool) []rdf.Triple {
	if typed[iri] {
		return nil
	}
	typed[iri] = true
	return []rdf.Triple{
		{Subject: iri, Predicate: rdf.RDFType, Object: rdf.IRI(class)},
		{Subject: iri, Predicate: rdf.RDFSLabel, Object: rdf.String(label)},
	}
}

// identifierColumn picks the column holding row identifiers: the first
// column whose name ends in _id, then one of the well-known identifier
// names, then the first column.
func identifierColumn(columns []string) int {
	for i, col := range columns {
		if strings.HasSuffix(normalizeColumn(col), "_id") {
			return i
		}
	}
	for i, col := range columns {
		norm := normalizeColumn(col)
		for _, name := range idColumnNames {
			if norm == name {
				return i
			}
		}
	}
	return 0
}

func normalizeColumn(col string) string {
	return strings.ToLower(strings.TrimSpace(col))
}

// propertyName turns a column name into a property local name:
// lowercased with runs of non-alphanumerics collapsed to underscores.
func propertyName(col string) string {
	return sanitize(normalizeColumn(col))
}

// sanitize rewrites a raw value into an identifier-safe local name.
// Every character outside [A-Za-z0-9] becomes an underscore.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// literal types a cell value: integer, then float, then date, then
// plain string. The decision is made once here; readers never re-infer.
func literal(value string) rdf.Term {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return rdf.Integer(n)
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return rdf.Term{Kind: rdf.KindFloat, Value: value}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return rdf.Date(t.Format("02-01-2006"))
		}
	}
	return rdf.String(value)
}
