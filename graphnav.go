// Package graphnav is a navigator for support-record knowledge graphs.
// It resolves free-form references to canonical identifiers, discovers
// relationship patterns between records, ingests tabular exports into
// triples, and answers canned analytical reports. The graph lives either
// in a local SQLite store or behind a remote SPARQL endpoint; every
// read path works identically against both.
package graphnav

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brunobiangulo/graphnav/graph"
	"github.com/brunobiangulo/graphnav/ingest"
	"github.com/brunobiangulo/graphnav/rdf"
	"github.com/brunobiangulo/graphnav/remote"
	"github.com/brunobiangulo/graphnav/report"
	"github.com/brunobiangulo/graphnav/resolve"
	"github.com/brunobiangulo/graphnav/store"
	"github.com/brunobiangulo/graphnav/turtle"
)

// Navigator is the main entry point.
type Navigator interface {
	// Ingest converts a tabular source file into triples and stores them.
	Ingest(ctx context.Context, path string, opts ...IngestOption) (*IngestReport, error)

	// Resolve maps free-form input (identifier, prefixed name, or label
	// text) to a canonical identifier. Returns ErrNotFound when nothing
	// matches.
	Resolve(ctx context.Context, input string) (string, error)

	// ResolveShortID maps a record short code like "IR_004" to its
	// canonical identifier.
	ResolveShortID(ctx context.Context, id string) (string, error)

	// Describe returns the display annotation for a node, or "" when the
	// node carries no label or description.
	Describe(ctx context.Context, node string) (string, error)

	// Connections enumerates relationship patterns between two resolved
	// identifiers.
	Connections(ctx context.Context, a, b string) ([]graph.Connection, error)

	// Triples returns every statement mentioning the node, as subject
	// first and then as object.
	Triples(ctx context.Context, node string) ([]rdf.Triple, error)

	// Resources lists every identifier in the graph, sorted.
	Resources(ctx context.Context) ([]string, error)

	// Stats summarises the graph's size.
	Stats(ctx context.Context) (*Stats, error)

	// LoadTurtle reads graph text and stores its triples and bindings.
	LoadTurtle(ctx context.Context, r io.Reader) (int, error)

	// Export writes the full graph as graph text.
	Export(ctx context.Context, w io.Writer) error

	// Clear removes all triples.
	Clear(ctx context.Context) error

	// Query runs an ad-hoc SELECT against the remote endpoint. The
	// local backend returns ErrQueryUnsupported.
	Query(ctx context.Context, query string) ([]remote.Binding, error)

	// Shorten and Expand translate between full and prefixed identifiers.
	Shorten(iri string) string
	Expand(token string) string

	// Canned reports.
	CustomerStatus(ctx context.Context, customer string) ([]report.CustomerItem, error)
	SimilarRequests(ctx context.Context, filter string) ([]report.SimilarRequest, error)
	HighPriorityIncidents(ctx context.Context) ([]report.Incident, error)
	ModuleRiskAssessment(ctx context.Context) ([]report.ModuleRisk, error)
	SeverityByDomain(ctx context.Context) ([]report.DomainSeverity, error)
	ProductPerformance(ctx context.Context) ([]report.ProductIssues, error)

	// Close cleanly shuts down the navigator.
	Close() error
}

// Stats summarises graph size.
type Stats struct {
	Triples    int `json:"triples"`
	Resources  int `json:"resources"`
	Predicates int `json:"predicates"`
}

// IngestReport is the outcome of one source-file ingestion.
type IngestReport struct {
	Path          string `json:"path"`
	Format        string `json:"format"`
	Tables        int    `json:"tables"`
	Triples       int    `json:"triples"`
	RowsConverted int    `json:"rows_converted"`
	RowsSkipped   int    `json:"rows_skipped"`
}

// IngestOption configures ingestion behavior.
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	format string
}

// WithFormat overrides format detection from the file extension.
func WithFormat(format string) IngestOption {
	return func(o *ingestOptions) { o.format = format }
}

// backend is the write-and-bulk surface a graph store must provide on
// top of the shared read interface.
type backend interface {
	rdf.Graph
	Insert(ctx context.Context, triples []rdf.Triple) error
	Clear(ctx context.Context) error
	LoadTurtle(ctx context.Context, r io.Reader) (int, error)
	ExportTurtle(ctx context.Context, w io.Writer) error
	Resources(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// navigator is the concrete implementation of Navigator.
type navigator struct {
	cfg      Config
	backend  backend
	prefixes *rdf.Prefixes
	vocab    rdf.Vocabulary
	resolver *resolve.Resolver
	readers  *ingest.Registry
	mapper   *ingest.Mapper
}

// New creates a navigator with the given configuration.
func New(cfg Config) (Navigator, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	bindings := map[string]string{
		cfg.Prefix: cfg.Namespace,
		"rdf":      rdf.RDFNamespace,
		"rdfs":     rdf.RDFSNamespace,
		"xsd":      rdf.XSDNamespace,
	}

	var b backend
	switch cfg.Backend {
	case BackendLocal, "":
		s, err := store.Open(cfg.resolveDBPath())
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		// Bindings persisted by earlier sessions extend the defaults.
		stored, err := s.Bindings(context.Background())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("reading bindings: %w", err)
		}
		for prefix, ns := range stored {
			bindings[prefix] = ns
		}
		if err := s.SetBindings(context.Background(), bindings); err != nil {
			s.Close()
			return nil, fmt.Errorf("storing bindings: %w", err)
		}
		b = &localBackend{Store: s}
	case BackendRemote:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("%w: remote backend needs an endpoint", ErrInvalidConfig)
		}
		prefixes := rdf.NewPrefixes(bindings)
		b = &remoteBackend{client: remote.New(cfg.Endpoint), prefixes: prefixes}
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Backend)
	}

	prefixes := rdf.NewPrefixes(bindings)
	vocab := rdf.NewVocabulary(cfg.Namespace)
	resolver := resolve.New(b, prefixes, vocab)
	resolver.DefaultPrefix = cfg.Prefix

	return &navigator{
		cfg:      cfg,
		backend:  b,
		prefixes: prefixes,
		vocab:    vocab,
		resolver: resolver,
		readers:  ingest.NewRegistry(),
		mapper:   ingest.NewMapper(vocab),
	}, nil
}

// Ingest reads one tabular source and stores the resulting triples.
func (n *navigator) Ingest(ctx context.Context, path string, opts ...IngestOption) (*IngestReport, error) {
	options := &ingestOptions{}
	for _, o := range opts {
		o(options)
	}

	format := options.format
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}

	reader, err := n.readers.Get(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	start := time.Now()
	tables, err := reader.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	rep := &IngestReport{Path: path, Format: format, Tables: len(tables)}
	var triples []rdf.Triple
	for _, table := range tables {
		res := n.mapper.Map(table)
		triples = append(triples, res.Triples...)
		rep.RowsConverted += res.RowsConverted
		rep.RowsSkipped += res.RowsSkipped
	}
	rep.Triples = len(triples)

	if err := n.backend.Insert(ctx, triples); err != nil {
		return nil, fmt.Errorf("storing triples: %w", err)
	}

	slog.Info("ingest: source stored",
		"path", path, "format", format, "tables", rep.Tables,
		"triples", rep.Triples, "rows", rep.RowsConverted, "skipped", rep.RowsSkipped,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return rep, nil
}

func (n *navigator) Resolve(ctx context.Context, input string) (string, error) {
	return n.resolver.Resolve(ctx, input)
}

func (n *navigator) ResolveShortID(ctx context.Context, id string) (string, error) {
	return n.resolver.ResolveShortID(ctx, id)
}

func (n *navigator) Describe(ctx context.Context, node string) (string, error) {
	return n.resolver.Describe(ctx, n.prefixes.Expand(node))
}

func (n *navigator) Connections(ctx context.Context, a, b string) ([]graph.Connection, error) {
	return graph.FindConnections(ctx, n.backend, n.prefixes.Expand(a), n.prefixes.Expand(b))
}

func (n *navigator) Triples(ctx context.Context, node string) ([]rdf.Triple, error) {
	iri := n.prefixes.Expand(node)
	out, err := rdf.MatchSubject(ctx, n.backend, iri)
	if err != nil {
		return nil, err
	}
	incoming, err := rdf.MatchObject(ctx, n.backend, iri)
	if err != nil {
		return nil, err
	}
	return append(out, incoming...), nil
}

func (n *navigator) Resources(ctx context.Context) ([]string, error) {
	return n.backend.Resources(ctx)
}

func (n *navigator) Stats(ctx context.Context) (*Stats, error) {
	return n.backend.Stats(ctx)
}

func (n *navigator) LoadTurtle(ctx context.Context, r io.Reader) (int, error) {
	return n.backend.LoadTurtle(ctx, r)
}

func (n *navigator) Export(ctx context.Context, w io.Writer) error {
	return n.backend.ExportTurtle(ctx, w)
}

func (n *navigator) Clear(ctx context.Context) error {
	return n.backend.Clear(ctx)
}

func (n *navigator) Query(ctx context.Context, query string) ([]remote.Binding, error) {
	rb, ok := n.backend.(*remoteBackend)
	if !ok {
		return nil, ErrQueryUnsupported
	}
	return rb.client.Query(ctx, query)
}

func (n *navigator) Shorten(iri string) string { return n.prefixes.Shorten(iri) }
func (n *navigator) Expand(token string) string { return n.prefixes.Expand(token) }

func (n *navigator) CustomerStatus(ctx context.Context, customer string) ([]report.CustomerItem, error) {
	iri, err := n.resolver.Resolve(ctx, customer)
	if err != nil {
		return nil, err
	}
	return report.CustomerStatus(ctx, n.backend, n.vocab, iri)
}

func (n *navigator) SimilarRequests(ctx context.Context, filter string) ([]report.SimilarRequest, error) {
	return report.SimilarRequests(ctx, n.backend, n.vocab, filter)
}

func (n *navigator) HighPriorityIncidents(ctx context.Context) ([]report.Incident, error) {
	return report.HighPriorityIncidents(ctx, n.backend, n.vocab)
}

func (n *navigator) ModuleRiskAssessment(ctx context.Context) ([]report.ModuleRisk, error) {
	return report.ModuleRiskAssessment(ctx, n.backend, n.vocab)
}

func (n *navigator) SeverityByDomain(ctx context.Context) ([]report.DomainSeverity, error) {
	return report.SeverityByDomain(ctx, n.backend, n.vocab)
}

func (n *navigator) ProductPerformance(ctx context.Context) ([]report.ProductIssues, error) {
	return report.ProductPerformance(ctx, n.backend, n.vocab)
}

func (n *navigator) Close() error {
	return n.backend.Close()
}

// --- local backend ---

// localBackend adapts store.Store to the backend interface; only Stats
// needs glue.
type localBackend struct {
	*store.Store
}

func (l *localBackend) Stats(ctx context.Context) (*Stats, error) {
	triples, err := l.Count(ctx)
	if err != nil {
		return nil, err
	}
	resources, err := l.Store.Resources(ctx)
	if err != nil {
		return nil, err
	}
	predicates, err := l.Predicates(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Triples: triples, Resources: len(resources), Predicates: predicates}, nil
}

// --- remote backend ---

// remoteBackend adapts remote.Client to the backend interface. Writes go
// through the bulk graph-text endpoint; reads use the client's pattern
// queries directly.
type remoteBackend struct {
	client   *remote.Client
	prefixes *rdf.Prefixes
}

func (r *remoteBackend) Match(ctx context.Context, s, p, o *rdf.Term) ([]rdf.Triple, error) {
	return r.client.Match(ctx, s, p, o)
}

func (r *remoteBackend) SearchLiteral(ctx context.Context, predicate, text string, substring bool) ([]string, error) {
	return r.client.SearchLiteral(ctx, predicate, text, substring)
}

func (r *remoteBackend) Insert(ctx context.Context, triples []rdf.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := turtle.NewEncoder(&buf, r.prefixes).Encode(triples); err != nil {
		return fmt.Errorf("encoding triples: %w", err)
	}
	return r.client.Upload(ctx, buf.String())
}

func (r *remoteBackend) Clear(ctx context.Context) error {
	return r.client.Clear(ctx)
}

func (r *remoteBackend) LoadTurtle(ctx context.Context, reader io.Reader) (int, error) {
	doc, err := turtle.Decode(reader)
	if err != nil {
		return 0, fmt.Errorf("decoding graph text: %w", err)
	}
	if err := r.Insert(ctx, doc.Triples); err != nil {
		return 0, err
	}
	return len(doc.Triples), nil
}

func (r *remoteBackend) ExportTurtle(ctx context.Context, w io.Writer) error {
	text, err := r.client.Fetch(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

func (r *remoteBackend) Resources(ctx context.Context) ([]string, error) {
	all, err := r.client.Match(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range all {
		if !seen[t.Subject] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
		if t.Object.IsIRI() && !seen[t.Object.Value] {
			seen[t.Object.Value] = true
			out = append(out, t.Object.Value)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *remoteBackend) Stats(ctx context.Context) (*Stats, error) {
	all, err := r.client.Match(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	resources, err := r.Resources(ctx)
	if err != nil {
		return nil, err
	}
	predicates := make(map[string]bool)
	for _, t := range all {
		predicates[t.Predicate] = true
	}
	return &Stats{Triples: len(all), Resources: len(resources), Predicates: len(predicates)}, nil
}

func (r *remoteBackend) Close() error { return nil }
