// Package mock provides configurable test doubles for the corpus interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/islamborghini/livecaps/pkg/corpus"
	"github.com/islamborghini/livecaps/pkg/types"
)

// Compile-time interface checks.
var (
	_ corpus.Store            = (*Store)(nil)
	_ corpus.SemanticSearcher = (*Searcher)(nil)
)

// Store is a configurable test double for [corpus.Store].
// All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	// TermsResult is returned by Terms.
	TermsResult []types.ReferenceTerm

	// TermsErr, when non-nil, is returned by Terms.
	TermsErr error

	// SaveErr, when non-nil, is returned by SaveTerms.
	SaveErr error

	// DeleteErr, when non-nil, is returned by DeleteSession.
	DeleteErr error

	// Saved records every SaveTerms call.
	Saved []SaveCall

	// TermsCalls counts Terms invocations.
	TermsCalls int

	// Deleted records the session IDs passed to DeleteSession.
	Deleted []string
}

// SaveCall records one SaveTerms invocation.
type SaveCall struct {
	SessionID string
	Terms     []types.ReferenceTerm
}

// SaveTerms records the call and returns the configured error.
func (s *Store) SaveTerms(_ context.Context, sessionID string, terms []types.ReferenceTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved = append(s.Saved, SaveCall{SessionID: sessionID, Terms: terms})
	return s.SaveErr
}

// Terms records the call and returns the configured result.
func (s *Store) Terms(_ context.Context, _ string) ([]types.ReferenceTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TermsCalls++
	if s.TermsErr != nil {
		return nil, s.TermsErr
	}
	return s.TermsResult, nil
}

// DeleteSession records the call and returns the configured error.
func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, sessionID)
	return s.DeleteErr
}

// Searcher is a configurable test double for [corpus.SemanticSearcher].
// All methods are safe for concurrent use.
type Searcher struct {
	mu sync.Mutex

	// SearchResult is returned by Search.
	SearchResult []corpus.SemanticHit

	// SearchErr, when non-nil, is returned by Search.
	SearchErr error

	// Queries records every query passed to Search.
	Queries []string
}

// Search records the call and returns the configured result.
func (s *Searcher) Search(_ context.Context, _ string, query string, _ int) ([]corpus.SemanticHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, query)
	if s.SearchErr != nil {
		return nil, s.SearchErr
	}
	return s.SearchResult, nil
}
