package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/islamborghini/livecaps/pkg/corpus"
	"github.com/islamborghini/livecaps/pkg/provider/embeddings"
	"github.com/islamborghini/livecaps/pkg/types"
)

// Compile-time interface checks.
var (
	_ corpus.Store            = (*Store)(nil)
	_ corpus.SemanticSearcher = (*Store)(nil)
)

// Store is a PostgreSQL-backed corpus store. Terms are embedded at save time
// via the configured embeddings provider so that [Store.Search] can rank them
// by cosine similarity against a query embedding.
//
// All operations are safe for concurrent use.
type Store struct {
	pool     *pgxpool.Pool
	embedder embeddings.Provider
}

// NewStore creates a Store, establishes a connection pool to the PostgreSQL
// database at dsn, registers pgvector types on every connection, and runs
// [Migrate] with the embedder's dimension to ensure the schema exists.
func NewStore(ctx context.Context, dsn string, embedder embeddings.Provider) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("corpus store: embedder must not be nil")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("corpus store: parse dsn: %w", err)
	}

	// Register pgvector types on every new connection so that vector columns
	// can be scanned into and inserted from pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("corpus store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("corpus store: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embedder.Dimensions()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("corpus store: migrate: %w", err)
	}

	return &Store{pool: pool, embedder: embedder}, nil
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SaveTerms implements [corpus.Store]. Terms are batch-embedded over their
// surface form and context, then upserted; a term with the same normalized
// form as an existing row replaces it.
func (s *Store) SaveTerms(ctx context.Context, sessionID string, terms []types.ReferenceTerm) error {
	if sessionID == "" {
		return corpus.ErrEmptySessionID
	}
	if len(terms) == 0 {
		return nil
	}

	texts := make([]string, len(terms))
	for i, t := range terms {
		texts[i] = embeddingText(t)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("corpus store: embed terms: %w", err)
	}
	if len(vectors) != len(terms) {
		return fmt.Errorf("corpus store: expected %d embeddings, got %d", len(terms), len(vectors))
	}

	const q = `
		INSERT INTO reference_terms
		    (session_id, normalized, term, context, source_id, phonetic_code,
		     frequency, is_proper_noun, category, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (session_id, normalized) DO UPDATE SET
		    term           = EXCLUDED.term,
		    context        = EXCLUDED.context,
		    source_id      = EXCLUDED.source_id,
		    phonetic_code  = EXCLUDED.phonetic_code,
		    frequency      = EXCLUDED.frequency,
		    is_proper_noun = EXCLUDED.is_proper_noun,
		    category       = EXCLUDED.category,
		    embedding      = EXCLUDED.embedding,
		    updated_at     = now()`

	batch := &pgx.Batch{}
	for i, t := range terms {
		batch.Queue(q,
			sessionID,
			t.NormalizedTerm,
			t.Term,
			t.Context,
			t.SourceID,
			t.PhoneticCode,
			t.Frequency,
			t.IsProperNoun,
			string(t.Category),
			pgvector.NewVector(vectors[i]),
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("corpus store: save terms: %w", err)
	}
	return nil
}

// Terms implements [corpus.Store].
func (s *Store) Terms(ctx context.Context, sessionID string) ([]types.ReferenceTerm, error) {
	const q = `
		SELECT term, normalized, context, source_id, phonetic_code,
		       frequency, is_proper_noun, category
		FROM   reference_terms
		WHERE  session_id = $1
		ORDER  BY frequency DESC, normalized`

	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("corpus store: load terms: %w", err)
	}

	terms, err := pgx.CollectRows(rows, scanTerm)
	if err != nil {
		return nil, fmt.Errorf("corpus store: scan terms: %w", err)
	}
	if terms == nil {
		terms = []types.ReferenceTerm{}
	}
	return terms, nil
}

// DeleteSession implements [corpus.Store].
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM reference_terms WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("corpus store: delete session: %w", err)
	}
	return nil
}

// Search implements [corpus.SemanticSearcher]. The query is embedded once and
// matched against stored term embeddings by cosine distance; scores are
// reported as 1 − distance so that higher means more relevant.
func (s *Store) Search(ctx context.Context, sessionID, query string, topK int) ([]corpus.SemanticHit, error) {
	if topK <= 0 {
		return []corpus.SemanticHit{}, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("corpus store: embed query: %w", err)
	}

	const q = `
		SELECT term, normalized, context, source_id, phonetic_code,
		       frequency, is_proper_noun, category,
		       embedding <=> $2 AS distance
		FROM   reference_terms
		WHERE  session_id = $1
		  AND  embedding IS NOT NULL
		ORDER  BY distance
		LIMIT  $3`

	rows, err := s.pool.Query(ctx, q, sessionID, pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, fmt.Errorf("corpus store: semantic search: %w", err)
	}

	hits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (corpus.SemanticHit, error) {
		var (
			hit      corpus.SemanticHit
			category string
			distance float64
		)
		if err := row.Scan(
			&hit.Term.Term,
			&hit.Term.NormalizedTerm,
			&hit.Term.Context,
			&hit.Term.SourceID,
			&hit.Term.PhoneticCode,
			&hit.Term.Frequency,
			&hit.Term.IsProperNoun,
			&category,
			&distance,
		); err != nil {
			return corpus.SemanticHit{}, err
		}
		hit.Term.Category = types.TermCategory(category)
		hit.Score = clampScore(1 - distance)
		return hit, nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus store: scan hits: %w", err)
	}
	if hits == nil {
		hits = []corpus.SemanticHit{}
	}
	return hits, nil
}

// scanTerm maps one reference_terms row to a [types.ReferenceTerm].
func scanTerm(row pgx.CollectableRow) (types.ReferenceTerm, error) {
	var (
		t        types.ReferenceTerm
		category string
	)
	if err := row.Scan(
		&t.Term,
		&t.NormalizedTerm,
		&t.Context,
		&t.SourceID,
		&t.PhoneticCode,
		&t.Frequency,
		&t.IsProperNoun,
		&category,
	); err != nil {
		return types.ReferenceTerm{}, err
	}
	t.Category = types.TermCategory(category)
	return t, nil
}

// embeddingText builds the text embedded for a term: the surface form plus
// its context snippet, which anchors short terms in their document meaning.
func embeddingText(t types.ReferenceTerm) string {
	if t.Context == "" {
		return t.Term
	}
	return t.Term + ". " + t.Context
}

// clampScore keeps cosine-derived scores inside [0, 1].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
