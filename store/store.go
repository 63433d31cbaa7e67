// Package store provides the local SQLite-backed triple store. It
// implements rdf.Graph for the resolver and relationship finder, plus
// the bulk write surface used by ingestion: insert, clear-all, and
// graph-text load/export.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brunobiangulo/graphnav/rdf"
	"github.com/brunobiangulo/graphnav/turtle"
)

// Store wraps the SQLite database holding the triple graph.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at the given path and
// initialises the schema.
func Open(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Write operations ---

// Insert adds triples in a single transaction. The whole batch is one
// write; it is not transactional with respect to concurrent readers of
// earlier batches.
func (s *Store) Insert(ctx context.Context, triples []rdf.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO triples (subject, predicate, object, object_kind) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range triples {
		if _, err := stmt.ExecContext(ctx, t.Subject, t.Predicate, t.Object.Value, t.Object.Kind.String()); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting triple: %w", err)
		}
	}
	return tx.Commit()
}

// Clear removes all triples and namespace bindings. A reader querying
// concurrently may observe a partially cleared graph.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM triples"); err != nil {
		return fmt.Errorf("clearing triples: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM namespaces"); err != nil {
		return fmt.Errorf("clearing namespaces: %w", err)
	}
	return nil
}

// SetBindings replaces the stored namespace bindings.
func (s *Store) SetBindings(ctx context.Context, bindings map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bindings update: %w", err)
	}
	for prefix, ns := range bindings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO namespaces (prefix, namespace) VALUES (?, ?)
			ON CONFLICT(prefix) DO UPDATE SET namespace = excluded.namespace
		`, prefix, ns); err != nil {
			tx.Rollback()
			return fmt.Errorf("storing binding %s: %w", prefix, err)
		}
	}
	return tx.Commit()
}

// Bindings returns the stored namespace bindings.
func (s *Store) Bindings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT prefix, namespace FROM namespaces")
	if err != nil {
		return nil, fmt.Errorf("reading bindings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var prefix, ns string
		if err := rows.Scan(&prefix, &ns); err != nil {
			return nil, err
		}
		out[prefix] = ns
	}
	return out, rows.Err()
}

// LoadTurtle decodes a graph text and inserts its triples and bindings.
// Returns the number of triples loaded.
func (s *Store) LoadTurtle(ctx context.Context, r io.Reader) (int, error) {
	doc, err := turtle.Decode(r)
	if err != nil {
		return 0, fmt.Errorf("decoding graph text: %w", err)
	}
	if len(doc.Bindings) > 0 {
		if err := s.SetBindings(ctx, doc.Bindings); err != nil {
			return 0, err
		}
	}
	if err := s.Insert(ctx, doc.Triples); err != nil {
		return 0, err
	}
	return len(doc.Triples), nil
}

// ExportTurtle writes the full triple set as graph text.
func (s *Store) ExportTurtle(ctx context.Context, w io.Writer) error {
	bindings, err := s.Bindings(ctx)
	if err != nil {
		return err
	}
	triples, err := s.Match(ctx, nil, nil, nil)
	if err != nil {
		return err
	}
	return turtle.NewEncoder(w, rdf.NewPrefixes(bindings)).Encode(triples)
}

// --- Read operations (rdf.Graph) ---

// Match returns all triples matching the pattern; nil positions are
// wildcards. Results come back in insertion order.
func (s *Store) Match(ctx context.Context, sub, pred, obj *rdf.Term) ([]rdf.Triple, error) {
	query := "SELECT subject, predicate, object, object_kind FROM triples"
	var conds []string
	var args []any
	if sub != nil {
		conds = append(conds, "subject = ?")
		args = append(args, sub.Value)
	}
	if pred != nil {
		conds = append(conds, "predicate = ?")
		args = append(args, pred.Value)
	}
	if obj != nil {
		conds = append(conds, "object = ?", "object_kind = ?")
		args = append(args, obj.Value, obj.Kind.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("matching triples: %w", err)
	}
	defer rows.Close()

	var out []rdf.Triple
	for rows.Next() {
		var t rdf.Triple
		var kind string
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object.Value, &kind); err != nil {
			return nil, err
		}
		t.Object.Kind = rdf.KindFromString(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// SearchLiteral returns the distinct subjects whose string literal under
// predicate matches text case-insensitively: equality by default,
// containment when substring is true. Subjects come back sorted so ties
// resolve deterministically.
func (s *Store) SearchLiteral(ctx context.Context, predicate, text string, substring bool) ([]string, error) {
	var query string
	var arg string
	if substring {
		query = `SELECT DISTINCT subject FROM triples
			WHERE predicate = ? AND object_kind = 'string'
			AND instr(lower(object), lower(?)) > 0
			ORDER BY subject`
		arg = text
	} else {
		query = `SELECT DISTINCT subject FROM triples
			WHERE predicate = ? AND object_kind = 'string'
			AND lower(object) = lower(?)
			ORDER BY subject`
		arg = text
	}

	rows, err := s.db.QueryContext(ctx, query, predicate, arg)
	if err != nil {
		return nil, fmt.Errorf("searching literals: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subj string
		if err := rows.Scan(&subj); err != nil {
			return nil, err
		}
		subjects = append(subjects, subj)
	}
	return subjects, rows.Err()
}

// --- Statistics ---

// Count returns the total number of triples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triples").Scan(&n)
	return n, err
}

// Resources returns all distinct identifiers appearing as a subject or
// as an identifier object, sorted.
func (s *Store) Resources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject AS r FROM triples
		UNION
		SELECT object FROM triples WHERE object_kind = 'iri'
		ORDER BY r`)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Predicates returns the number of distinct predicates.
func (s *Store) Predicates(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT predicate) FROM triples").Scan(&n)
	return n, err
}
