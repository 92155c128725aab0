package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/islamborghini/livecaps/internal/correction"
	"github.com/islamborghini/livecaps/internal/observe"
	"github.com/islamborghini/livecaps/internal/terms"
	"github.com/islamborghini/livecaps/pkg/types"
)

const (
	// maxCorrectionBody caps the correction request payload.
	maxCorrectionBody = 1 << 20 // 1 MiB

	// maxDocumentBody caps uploaded reference documents.
	maxDocumentBody = 16 << 20 // 16 MiB
)

// errorResponse is the uniform error body for all endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// ingestResponse is the body returned by the document ingestion endpoint.
type ingestResponse struct {
	SourceID   string                `json:"sourceId"`
	TermCount  int                   `json:"termCount"`
	CorpusSize int                   `json:"corpusSize"`
	Terms      []types.ReferenceTerm `json:"terms"`
}

// sessionTermsResponse is the body returned by the term listing endpoint.
type sessionTermsResponse struct {
	SessionID string                `json:"sessionId"`
	Terms     []types.ReferenceTerm `json:"terms"`
}

// handleCorrect corrects a single transcript. An unreadable or undecodable
// body is the only 4xx path; a decodable request that fails validation is
// echoed back unmodified with a warning, like any other degraded pipeline run.
func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCorrectionBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	req, err := correction.ParseRequest(body)
	if req == nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		observe.Logger(r.Context()).Warn("invalid correction request passed through",
			"session_id", req.SessionID, "error", err)
		writeJSON(w, http.StatusOK, correction.PassThrough(req, err))
		return
	}

	res := s.orchestrator.Correct(r.Context(), req)
	writeJSON(w, http.StatusOK, res)
}

// handleIngestDocument extracts reference terms from an uploaded document and
// stores them under the session's corpus. The document format is negotiated
// from the Content-Type header.
func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	start := time.Now()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read document: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "document is empty")
		return
	}

	text, err := s.docText.ExtractText(r.Context(), data, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	sourceID := uuid.NewString()
	extracted := s.extractor.Extract(text, sourceID)

	// Merge with the session's existing corpus so repeat mentions across
	// documents accumulate frequency instead of overwriting each other.
	existing, err := s.store.Terms(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load existing terms: "+err.Error())
		return
	}
	merged := terms.Merge(existing, extracted)

	if err := s.store.SaveTerms(r.Context(), sessionID, merged); err != nil {
		observe.Logger(r.Context()).Error("save terms failed",
			"session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "save terms: "+err.Error())
		return
	}

	s.metrics.RecordIngest(r.Context(), time.Since(start), len(extracted))
	observe.Logger(r.Context()).Info("document ingested",
		"session_id", sessionID,
		"source_id", sourceID,
		"terms", len(extracted))

	writeJSON(w, http.StatusCreated, ingestResponse{
		SourceID:   sourceID,
		TermCount:  len(extracted),
		CorpusSize: len(merged),
		Terms:      extracted,
	})
}

// handleSessionTerms lists all reference terms stored for a session, in rank
// order as persisted.
func (s *Server) handleSessionTerms(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	stored, err := s.store.Terms(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load terms: "+err.Error())
		return
	}
	if stored == nil {
		stored = []types.ReferenceTerm{}
	}

	writeJSON(w, http.StatusOK, sessionTermsResponse{
		SessionID: sessionID,
		Terms:     stored,
	})
}

// handleDeleteSession drops a session's entire corpus. Deleting a session that
// was never populated succeeds.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := s.store.DeleteSession(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, "delete session: "+err.Error())
		return
	}

	observe.Logger(r.Context()).Info("session deleted", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handleStats returns the orchestrator's running statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Stats().Snapshot())
}

// handleStatsReset zeroes the statistics counters.
func (s *Server) handleStatsReset(w http.ResponseWriter, _ *http.Request) {
	s.orchestrator.Stats().Reset()
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON encodes v with the given status. Encoding failures are logged but
// cannot be signalled to the client once the header is written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the uniform error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
