package store

// schemaSQL is the DDL for the triple table. Duplicate triples are
// tolerated by the data model, so there is no uniqueness constraint.
const schemaSQL = `
-- Triple facts. object_kind carries the datatype decided at ingestion
-- (iri, string, integer, float, date); it is never re-inferred on read.
CREATE TABLE IF NOT EXISTS triples (
    id INTEGER PRIMARY KEY,
    subject TEXT NOT NULL,
    predicate TEXT NOT NULL,
    object TEXT NOT NULL,
    object_kind TEXT NOT NULL DEFAULT 'string',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Namespace bindings captured from loaded graph texts. Loaded once per
-- graph; read-only afterwards within a session.
CREATE TABLE IF NOT EXISTS namespaces (
    prefix TEXT PRIMARY KEY,
    namespace TEXT NOT NULL
);

-- Indexes covering the three pattern-match access paths.
CREATE INDEX IF NOT EXISTS idx_triples_spo ON triples(subject, predicate, object);
CREATE INDEX IF NOT EXISTS idx_triples_pos ON triples(predicate, object, subject);
CREATE INDEX IF NOT EXISTS idx_triples_osp ON triples(object, subject, predicate);
`
