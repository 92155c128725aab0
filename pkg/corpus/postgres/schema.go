// Package postgres provides a PostgreSQL-backed corpus store with a pgvector
// HNSW index for semantic term retrieval.
//
// The pgvector extension must be available in the target database; [Migrate]
// installs it automatically via CREATE EXTENSION IF NOT EXISTS.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn, embedder)
//	if err != nil { … }
//	defer store.Close()
//
//	_ = store.SaveTerms(ctx, sessionID, extracted)
//	hits, _ := store.Search(ctx, sessionID, "container orchestration", 5)
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ddlReferenceTerms returns the corpus DDL with the embedding dimension
// substituted. The vector dimension is baked into the column type at schema
// creation time; changing the embedding model afterwards requires a manual
// schema update.
func ddlReferenceTerms(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS reference_terms (
    session_id      TEXT         NOT NULL,
    normalized      TEXT         NOT NULL,
    term            TEXT         NOT NULL,
    context         TEXT         NOT NULL DEFAULT '',
    source_id       TEXT         NOT NULL DEFAULT '',
    phonetic_code   TEXT         NOT NULL DEFAULT '',
    frequency       INTEGER      NOT NULL DEFAULT 1,
    is_proper_noun  BOOLEAN      NOT NULL DEFAULT FALSE,
    category        TEXT         NOT NULL DEFAULT 'general',
    embedding       vector(%d),
    updated_at      TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (session_id, normalized)
);

CREATE INDEX IF NOT EXISTS idx_reference_terms_session
    ON reference_terms (session_id);

CREATE INDEX IF NOT EXISTS idx_reference_terms_phonetic
    ON reference_terms (session_id, phonetic_code);

CREATE INDEX IF NOT EXISTS idx_reference_terms_embedding
    ON reference_terms USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

// Migrate creates or ensures the corpus table, indexes, and the pgvector
// extension exist. It is idempotent and safe to call on every start.
//
// embeddingDimensions must match the vector model configured for the
// deployment (e.g., 1536 for OpenAI text-embedding-3-small, 768 for
// nomic-embed-text).
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if _, err := pool.Exec(ctx, ddlReferenceTerms(embeddingDimensions)); err != nil {
		return fmt.Errorf("corpus migrate: %w", err)
	}
	return nil
}
