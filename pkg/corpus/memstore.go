package corpus

import (
	"context"
	"strings"
	"sync"

	"github.com/islamborghini/livecaps/pkg/types"
)

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory [Store] keyed by session ID. It is the default
// backend when no database is configured and the backend used in tests.
//
// MemStore does not implement [SemanticSearcher]; the correction pipeline
// falls back to phonetic-only retrieval when running on it.
//
// All methods are safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]types.ReferenceTerm
}

// NewMemStore returns an empty in-memory corpus store.
func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[string]map[string]types.ReferenceTerm),
	}
}

// SaveTerms implements [Store].
func (s *MemStore) SaveTerms(_ context.Context, sessionID string, terms []types.ReferenceTerm) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		session = make(map[string]types.ReferenceTerm, len(terms))
		s.sessions[sessionID] = session
	}
	for _, t := range terms {
		key := t.NormalizedTerm
		if key == "" {
			key = strings.ToLower(t.Term)
		}
		if key == "" {
			continue
		}
		session[key] = t
	}
	return nil
}

// Terms implements [Store].
func (s *MemStore) Terms(_ context.Context, sessionID string) ([]types.ReferenceTerm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session := s.sessions[sessionID]
	terms := make([]types.ReferenceTerm, 0, len(session))
	for _, t := range session {
		terms = append(terms, t)
	}
	return terms, nil
}

// DeleteSession implements [Store].
func (s *MemStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
