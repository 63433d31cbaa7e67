// Package remote is a thin client for a Fuseki-style triple-store
// endpoint: pattern queries against <base>/sparql, updates against
// <base>/update, and bulk graph-text transfer against <base>/data.
//
// The client implements rdf.Graph by generating pattern SELECTs, so the
// resolver and relationship finder work identically against a remote
// store and the local one. Endpoint failures surface verbatim as
// rdf.QueryError and are never retried.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/brunobiangulo/graphnav/rdf"
)

// Client talks to one triple-store dataset.
type Client struct {
	queryURL  string
	updateURL string
	dataURL   string
	http      *http.Client
}

// New creates a client for the dataset at baseURL (e.g.
// "http://localhost:3030/ds").
func New(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		queryURL:  base + "/sparql",
		updateURL: base + "/update",
		dataURL:   base + "/data",
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

// Binding is one variable binding row from a SELECT result.
type Binding map[string]rdf.Term

// Query executes a SELECT query and returns its bindings.
func (c *Client) Query(ctx context.Context, query string) ([]Binding, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading query response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &rdf.QueryError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var parsed selectResults
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}

	bindings := make([]Binding, 0, len(parsed.Results.Bindings))
	for _, row := range parsed.Results.Bindings {
		b := make(Binding, len(row))
		for name, v := range row {
			b[name] = v.term()
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Update executes a SPARQL update statement.
func (c *Client) Update(ctx context.Context, update string) error {
	form := url.Values{"update": {update}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updateURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &rdf.QueryError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return nil
}

// Clear removes all data from the dataset.
func (c *Client) Clear(ctx context.Context) error {
	return c.Update(ctx, "CLEAR ALL")
}

// Upload posts graph text to the data endpoint.
func (c *Client) Upload(ctx context.Context, turtleText string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dataURL,
		strings.NewReader(turtleText))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/turtle")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return &rdf.QueryError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
}

// Fetch retrieves the full triple set as graph text.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dataURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/turtle")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading fetch response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &rdf.QueryError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return string(body), nil
}

// --- rdf.Graph ---

// Match implements rdf.Graph by generating a pattern SELECT over the
// unbound positions.
func (c *Client) Match(ctx context.Context, s, p, o *rdf.Term) ([]rdf.Triple, error) {
	sTok, pTok, oTok := "?s", "?p", "?o"
	var vars []string
	if s != nil {
		sTok = sparqlTerm(*s)
	} else {
		vars = append(vars, "?s")
	}
	if p != nil {
		pTok = sparqlTerm(*p)
	} else {
		vars = append(vars, "?p")
	}
	if o != nil {
		oTok = sparqlTerm(*o)
	} else {
		vars = append(vars, "?o")
	}

	selectList := strings.Join(vars, " ")
	if selectList == "" {
		selectList = "*"
	}
	query := fmt.Sprintf("SELECT %s WHERE { %s %s %s }", selectList, sTok, pTok, oTok)

	bindings, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	triples := make([]rdf.Triple, 0, len(bindings))
	for _, b := range bindings {
		t := rdf.Triple{}
		if s != nil {
			t.Subject = s.Value
		} else {
			t.Subject = b["s"].Value
		}
		if p != nil {
			t.Predicate = p.Value
		} else {
			t.Predicate = b["p"].Value
		}
		if o != nil {
			t.Object = *o
		} else {
			t.Object = b["o"]
		}
		triples = append(triples, t)
	}
	return triples, nil
}

// SearchLiteral implements rdf.Graph with a FILTER query. Subjects come
// back sorted so ties resolve deterministically.
func (c *Client) SearchLiteral(ctx context.Context, predicate, text string, substring bool) ([]string, error) {
	filter := fmt.Sprintf(`LCASE(STR(?v)) = LCASE(%s)`, sparqlString(text))
	if substring {
		filter = fmt.Sprintf(`CONTAINS(LCASE(STR(?v)), LCASE(%s))`, sparqlString(text))
	}
	query := fmt.Sprintf(
		"SELECT DISTINCT ?s WHERE { ?s <%s> ?v . FILTER(isLiteral(?v) && %s) } ORDER BY ?s",
		predicate, filter)

	bindings, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(bindings))
	for _, b := range bindings {
		subjects = append(subjects, b["s"].Value)
	}
	// ORDER BY is advisory for some stores; sort again locally.
	sort.Strings(subjects)
	return subjects, nil
}

// --- SPARQL rendering ---

func sparqlTerm(t rdf.Term) string {
	switch t.Kind {
	case rdf.KindIRI:
		return "<" + t.Value + ">"
	case rdf.KindInteger:
		return sparqlString(t.Value) + "^^<" + rdf.XSDInteger + ">"
	case rdf.KindFloat:
		return sparqlString(t.Value) + "^^<" + rdf.XSDFloat + ">"
	case rdf.KindDate:
		return sparqlString(t.Value) + "^^<" + rdf.XSDDate + ">"
	default:
		return sparqlString(t.Value)
	}
}

func sparqlString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// --- wire format ---

type selectResults struct {
	Results struct {
		Bindings []map[string]resultValue `json:"bindings"`
	} `json:"results"`
}

type resultValue struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
}

func (v resultValue) term() rdf.Term {
	if v.Type == "uri" {
		return rdf.IRI(v.Value)
	}
	switch v.Datatype {
	case rdf.XSDInteger:
		return rdf.Term{Kind: rdf.KindInteger, Value: v.Value}
	case rdf.XSDFloat:
		return rdf.Term{Kind: rdf.KindFloat, Value: v.Value}
	case rdf.XSDDate:
		return rdf.Term{Kind: rdf.KindDate, Value: v.Value}
	default:
		return rdf.String(v.Value)
	}
}
