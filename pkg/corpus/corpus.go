// Package corpus defines the storage interfaces for reference-term corpora.
//
// A corpus holds the terms extracted from a session's reference documents
// (slide decks, agendas, glossaries). The correction pipeline reads the corpus
// on every transcript, so implementations should make Terms cheap; writes
// happen only when a document is ingested.
//
// Two capabilities are split into separate interfaces: every backend
// implements [Store], and backends with a vector index additionally implement
// [SemanticSearcher]. The correction pipeline type-asserts for the latter and
// degrades to phonetic-only retrieval when it is absent.
//
// All implementations must be safe for concurrent use.
package corpus

import (
	"context"
	"errors"

	"github.com/islamborghini/livecaps/pkg/types"
)

// ErrEmptySessionID is returned by write operations called without a session.
var ErrEmptySessionID = errors.New("corpus: session id must not be empty")

// Store persists per-session reference terms.
type Store interface {
	// SaveTerms upserts terms into the corpus for the given session.
	// A term with the same normalized form as an existing one replaces it.
	// sessionID must be non-empty.
	SaveTerms(ctx context.Context, sessionID string, terms []types.ReferenceTerm) error

	// Terms returns every term stored for the given session.
	// Returns an empty (non-nil) slice for an unknown session.
	Terms(ctx context.Context, sessionID string) ([]types.ReferenceTerm, error)

	// DeleteSession removes all terms for the given session. Deleting an
	// unknown session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error
}

// SemanticHit pairs a retrieved term with its semantic relevance to a query.
type SemanticHit struct {
	// Term is the retrieved reference term.
	Term types.ReferenceTerm

	// Score is the relevance in [0, 1], higher is more relevant.
	Score float64
}

// SemanticSearcher is the optional vector-search capability of a corpus
// backend.
type SemanticSearcher interface {
	// Search returns up to topK terms from the session's corpus ranked by
	// semantic similarity to query, most similar first.
	// Returns an empty (non-nil) slice when the session has no terms.
	Search(ctx context.Context, sessionID, query string, topK int) ([]SemanticHit, error)
}
