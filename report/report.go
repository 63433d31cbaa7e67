// Package report provides the canned analyses offered alongside
// ad-hoc navigation: customer status, similar-request discovery,
// high-priority incident listing, per-module risk assessment,
// severity breakdown by customer domain, and per-product performance.
// Every function is a pure read over the graph.
package report

import (
	"context"
	"sort"
	"strings"

	"github.com/brunobiangulo/graphnav/rdf"
)

// CustomerItem is one incident or enhancement belonging to a customer.
type CustomerItem struct {
	Item        string `json:"item"`
	Type        string `json:"type"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// CustomerStatus lists every item that belongs to the given customer,
// with its type and whatever status, description, and severity it
// carries. Items are sorted by type then identifier.
func CustomerStatus(ctx context.Context, g rdf.Graph, v rdf.Vocabulary, customer string) ([]CustomerItem, error) {
	p, o := rdf.IRI(v.BelongsToCustomer()), rdf.IRI(customer)
	owned, err := g.Match(ctx, nil, &p, &o)
	if err != nil {
		return nil, err
	}

	var items []CustomerItem
	seen := make(map[string]bool)
	for _, t := range owned {
		if seen[t.Subject] {
			continue
		}
		seen[t.Subject] = true
		props, err := properties(ctx, g, t.Subject)
		if err != nil {
			return nil, err
		}
		items = append(items, CustomerItem{
			Item:        t.Subject,
			Type:        props.iri(rdf.RDFType),
			Status:      props.literal(v.Status()),
			Description: props.literal(v.Description()),
			Severity:    props.literal(v.Severity()),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		return items[i].Item < items[j].Item
	})
	return items, nil
}

// SimilarRequest is one item mentioning a function area of interest.
type SimilarRequest struct {
	Customer    string `json:"customer"`
	Item        string `json:"item"`
	Description string `json:"description,omitempty"`
	Domain      string `json:"domain"`
}

// SimilarRequests finds items whose mentioned function matches the
// filter: an exact identifier match, or a case-insensitive keyword
// match against the identifier with underscores treated as spaces.
// Results are sorted by customer then item.
func SimilarRequests(ctx context.Context, g rdf.Graph, v rdf.Vocabulary, filter string) ([]SimilarRequest, error) {
	p := rdf.IRI(v.MentionsFunction())
	mentions, err := g.Match(ctx, nil, &p, nil)
	if err != nil {
		return nil, err
	}

	var out []SimilarRequest
	for _, t := range mentions {
		if !t.Object.IsIRI() || !domainMatches(t.Object.Value, filter) {
			continue
		}
		props, err := properties(ctx, g, t.Subject)
		if err != nil {
			return nil, err
		}
		customer := props.iri(v.BelongsToCustomer())
		if customer == "" {
			continue
		}
		out = append(out, SimilarRequest{
			Customer:    customer,
			Item:        t.Subject,
			Description: props.literal(v.Description()),
			Domain:      t.Object.Value,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Customer != out[j].Customer {
			return out[i].Customer < out[j].Customer
		}
		return out[i].Item < out[j].Item
	})
	return out, nil
}

// domainMatches reports whether a function identifier matches the user
// filter: exact identifier equality, a substring of the identifier, or
// a substring of the identifier's local name with underscores treated
// as spaces.
func domainMatches(domain, filter string) bool {
	if domain == filter {
		return true
	}
	lf := strings.ToLower(filter)
	ld := strings.ToLower(domain)
	if strings.Contains(ld, lf) {
		return true
	}
	spaced := strings.ReplaceAll(ld, "_", " ")
	if strings.Contains(spaced, lf) {
		return true
	}
	local := strings.ReplaceAll(strings.ToLower(rdf.LocalName(domain)), "_", " ")
	return strings.Contains(local, lf)
}

// Incident is one incident report with its triage attributes.
type Incident struct {
	Incident string `json:"incident"`
	Label    string `json:"label,omitempty"`
	Customer string `json:"customer,omitempty"`
	Severity string `json:"severity,omitempty"`
	Priority string `json:"priority,omitempty"`
	Module   string `json:"module,omitempty"`
	Status   string `json:"status,omitempty"`
}

// HighPriorityIncidents lists incidents with priority P0 or P1, sorted
// by priority then severity then identifier.
func HighPriorityIncidents(ctx context.Context, g rdf.Graph, v rdf.Vocabulary) ([]Incident, error) {
	subjects, err := rdf.SubjectsOfType(ctx, g, v.IncidentReport())
	if err != nil {
		return nil, err
	}

	var out []Incident
	for _, subj := range subjects {
		props, err := properties(ctx, g, subj)
		if err != nil {
			return nil, err
		}
		priority := props.literal(v.Priority())
		if priority != "P0" && priority != "P1" {
			continue
		}
		out = append(out, Incident{
			Incident: subj,
			Label:    props.literal(rdf.RDFSLabel),
			Customer: props.iri(v.BelongsToCustomer()),
			Severity: props.literal(v.Severity()),
			Priority: priority,
			Module:   props.iri(v.MentionsFunction()),
			Status:   props.literal(v.Status()),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		if out[i].Severity != out[j].Severity {
			return out[i].Severity < out[j].Severity
		}
		return out[i].Incident < out[j].Incident
	})
	return out, nil
}

// ModuleRisk is the incident load of one module.
type ModuleRisk struct {
	Module    string `json:"module"`
	Label     string `json:"label,omitempty"`
	Incidents int    `json:"incidents"`
	Critical  int    `json:"critical"` // priority P0
	High      int    `json:"high"`     // priority P1
	Open      int    `json:"open"`
	RiskScore int    `json:"risk_score"`
}

// ModuleRiskAssessment aggregates incident counts per mentioned module.
// Risk score weights criticals at 3, highs at 2, and open issues at 1.
// Results are sorted by risk score descending, then module identifier.
func ModuleRiskAssessment(ctx context.Context, g rdf.Graph, v rdf.Vocabulary) ([]ModuleRisk, error) {
	subjects, err := rdf.SubjectsOfType(ctx, g, v.IncidentReport())
	if err != nil {
		return nil, err
	}

	byModule := make(map[string]*ModuleRisk)
	for _, subj := range subjects {
		props, err := properties(ctx, g, subj)
		if err != nil {
			return nil, err
		}
		module := props.iri(v.MentionsFunction())
		if module == "" {
			continue
		}
		risk, ok := byModule[module]
		if !ok {
			risk = &ModuleRisk{Module: module}
			byModule[module] = risk
		}
		risk.Incidents++
		switch props.literal(v.Priority()) {
		case "P0":
			risk.Critical++
		case "P1":
			risk.High++
		}
		if props.literal(v.Status()) == "Open" {
			risk.Open++
		}
	}

	out := make([]ModuleRisk, 0, len(byModule))
	for module, risk := range byModule {
		risk.RiskScore = risk.Critical*3 + risk.High*2 + risk.Open
		label, err := firstLiteral(ctx, g, module, rdf.RDFSLabel)
		if err != nil {
			return nil, err
		}
		risk.Label = label
		out = append(out, *risk)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		return out[i].Module < out[j].Module
	})
	return out, nil
}

// DomainSeverity is the incident count for one (customer domain,
// severity) pair.
type DomainSeverity struct {
	Domain    string `json:"domain"`
	Severity  string `json:"severity"`
	Incidents int    `json:"incidents"`
}

// SeverityByDomain counts incidents per customer domain and severity.
// Incidents without a severity, a customer, or a customer domain are
// left out. Results are sorted by domain then severity.
func SeverityByDomain(ctx context.Context, g rdf.Graph, v rdf.Vocabulary) ([]DomainSeverity, error) {
	subjects, err := rdf.SubjectsOfType(ctx, g, v.IncidentReport())
	if err != nil {
		return nil, err
	}

	domains := make(map[string]string)
	counts := make(map[DomainSeverity]int)
	for _, subj := range subjects {
		props, err := properties(ctx, g, subj)
		if err != nil {
			return nil, err
		}
		severity := props.literal(v.Severity())
		customer := props.iri(v.BelongsToCustomer())
		if severity == "" || customer == "" {
			continue
		}
		domain, ok := domains[customer]
		if !ok {
			domain, err = firstLiteral(ctx, g, customer, v.Domain())
			if err != nil {
				return nil, err
			}
			domains[customer] = domain
		}
		if domain == "" {
			continue
		}
		counts[DomainSeverity{Domain: domain, Severity: severity}]++
	}

	out := make([]DomainSeverity, 0, len(counts))
	for key, n := range counts {
		key.Incidents = n
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Severity < out[j].Severity
	})
	return out, nil
}

// ModuleIssues is the issue load one module carries within a product.
type ModuleIssues struct {
	Module       string `json:"module"`
	Label        string `json:"label,omitempty"`
	Incidents    int    `json:"incidents"`
	Enhancements int    `json:"enhancements"`
}

// ProductIssues is the combined issue load of one product.
type ProductIssues struct {
	Product      string         `json:"product"`
	Incidents    int            `json:"incidents"`
	Enhancements int            `json:"enhancements"`
	TotalIssues  int            `json:"total_issues"`
	RequestTypes map[string]int `json:"request_types,omitempty"`
	TopModule    *ModuleIssues  `json:"top_module,omitempty"`
}

// ProductPerformance aggregates incidents and enhancement requests per
// product: total counts, the enhancement-request type breakdown, and
// the module with the most issues for that product. Items without a
// product attribute are left out. Results are sorted by total issues
// descending, then product.
func ProductPerformance(ctx context.Context, g rdf.Graph, v rdf.Vocabulary) ([]ProductIssues, error) {
	incidents, err := rdf.SubjectsOfType(ctx, g, v.IncidentReport())
	if err != nil {
		return nil, err
	}
	enhancements, err := rdf.SubjectsOfType(ctx, g, v.EnhancementRequest())
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*ProductIssues)
	modules := make(map[string]map[string]*ModuleIssues)
	product := func(name string) *ProductIssues {
		p, ok := byProduct[name]
		if !ok {
			p = &ProductIssues{Product: name}
			byProduct[name] = p
			modules[name] = make(map[string]*ModuleIssues)
		}
		return p
	}
	for _, subj := range incidents {
		props, err := properties(ctx, g, subj)
		if err != nil {
			return nil, err
		}
		name := props.literal(v.Product())
		if name == "" {
			continue
		}
		p := product(name)
		p.Incidents++
		if module := props.iri(v.MentionsFunction()); module != "" {
			m, ok := modules[name][module]
			if !ok {
				m = &ModuleIssues{Module: module}
				modules[name][module] = m
			}
			m.Incidents++
		}
	}
	for _, subj := range enhancements {
		props, err := properties(ctx, g, subj)
		if err != nil {
			return nil, err
		}
		name := props.literal(v.Product())
		if name == "" {
			continue
		}
		p := product(name)
		p.Enhancements++
		if rt := props.literal(v.RequestType()); rt != "" {
			if p.RequestTypes == nil {
				p.RequestTypes = make(map[string]int)
			}
			p.RequestTypes[rt]++
		}
		if module := props.iri(v.MentionsFunction()); module != "" {
			m, ok := modules[name][module]
			if !ok {
				m = &ModuleIssues{Module: module}
				modules[name][module] = m
			}
			m.Enhancements++
		}
	}

	out := make([]ProductIssues, 0, len(byProduct))
	for name, p := range byProduct {
		p.TotalIssues = p.Incidents + p.Enhancements
		top := topModule(modules[name])
		if top != nil {
			label, err := firstLiteral(ctx, g, top.Module, rdf.RDFSLabel)
			if err != nil {
				return nil, err
			}
			top.Label = label
			p.TopModule = top
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalIssues != out[j].TotalIssues {
			return out[i].TotalIssues > out[j].TotalIssues
		}
		return out[i].Product < out[j].Product
	})
	return out, nil
}

// topModule picks the module with the most combined issues; ties go to
// the lexicographically smallest identifier.
func topModule(candidates map[string]*ModuleIssues) *ModuleIssues {
	var best *ModuleIssues
	for _, m := range candidates {
		if best == nil {
			best = m
			continue
		}
		mt, bt := m.Incidents+m.Enhancements, best.Incidents+best.Enhancements
		if mt > bt || (mt == bt && m.Module < best.Module) {
			best = m
		}
	}
	return best
}

// props caches one subject's outgoing triples for attribute lookup.
type props []rdf.Triple

func properties(ctx context.Context, g rdf.Graph, subject string) (props, error) {
	triples, err := rdf.MatchSubject(ctx, g, subject)
	if err != nil {
		return nil, err
	}
	return props(triples), nil
}

func (p props) literal(predicate string) string {
	for _, t := range p {
		if t.Predicate == predicate && !t.Object.IsIRI() {
			return t.Object.Value
		}
	}
	return ""
}

func (p props) iri(predicate string) string {
	for _, t := range p {
		if t.Predicate == predicate && t.Object.IsIRI() {
			return t.Object.Value
		}
	}
	return ""
}

func firstLiteral(ctx context.Context, g rdf.Graph, subject, predicate string) (string, error) {
	s, p := rdf.IRI(subject), rdf.IRI(predicate)
	triples, err := g.Match(ctx, &s, &p, nil)
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
