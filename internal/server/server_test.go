package server_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/islamborghini/livecaps/internal/correction"
	"github.com/islamborghini/livecaps/internal/server"
	corpusmock "github.com/islamborghini/livecaps/pkg/corpus/mock"
	"github.com/islamborghini/livecaps/pkg/types"
)

// newTestServer wires a server around a mock store and a phonetic-only
// orchestrator, returning both for assertions.
func newTestServer(t *testing.T, store *corpusmock.Store) (*httptest.Server, *corpusmock.Store) {
	t.Helper()
	o := correction.New(store, correction.WithMode(correction.ModePhonetic))
	srv := server.New(o, store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func kubernetesCorpus() []types.ReferenceTerm {
	return []types.ReferenceTerm{
		{
			Term:           "Kubernetes",
			NormalizedTerm: "kubernetes",
			Category:       types.CategoryTechnical,
			Frequency:      3,
		},
	}
}

func correctionBody() string {
	return `{
		"transcript": "My presentation covers cooper netties",
		"sessionId": "sess-1",
		"confidenceThreshold": 0.7,
		"wordConfidences": [
			{"word": "My", "confidence": 0.99},
			{"word": "presentation", "confidence": 0.98},
			{"word": "covers", "confidence": 0.97},
			{"word": "cooper", "confidence": 0.35},
			{"word": "netties", "confidence": 0.28}
		]
	}`
}

func TestCorrections_AppliesPhoneticFix(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{TermsResult: kubernetesCorpus()})

	resp, err := http.Post(ts.URL+"/v1/corrections", "application/json", strings.NewReader(correctionBody()))
	if err != nil {
		t.Fatalf("POST /v1/corrections: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var res types.CorrectionResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.WasModified {
		t.Fatal("correction did not modify the transcript")
	}
	if !strings.Contains(res.CorrectedTranscript, "Kubernetes") {
		t.Errorf("corrected = %q, want it to contain Kubernetes", res.CorrectedTranscript)
	}
	if res.SessionID != "sess-1" {
		t.Errorf("sessionId = %q, want sess-1", res.SessionID)
	}
}

func TestCorrections_InvalidBodyIsRejected(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{})

	resp, err := http.Post(ts.URL+"/v1/corrections", "application/json", strings.NewReader(`{"transcript": 42`))
	if err != nil {
		t.Fatalf("POST /v1/corrections: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error == "" {
		t.Error("error body is empty")
	}
}

func TestCorrections_InvalidRequestPassesThrough(t *testing.T) {
	store := &corpusmock.Store{TermsResult: kubernetesCorpus()}
	ts, _ := newTestServer(t, store)

	// Decodable but invalid: no sessionId. The transcript comes back
	// unmodified with a warning instead of an error status.
	body := `{"transcript": "hello cooper netties", "wordConfidences": [{"word": "hello", "confidence": 0.9}]}`
	resp, err := http.Post(ts.URL+"/v1/corrections", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/corrections: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var res types.CorrectionResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.WasModified {
		t.Error("invalid request was corrected, want pass-through")
	}
	if res.CorrectedTranscript != "hello cooper netties" {
		t.Errorf("corrected = %q, want the transcript echoed back", res.CorrectedTranscript)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "sessionId") {
		t.Errorf("warnings = %v, want the validation failure surfaced", res.Warnings)
	}
	if store.TermsCalls != 0 {
		t.Errorf("store.Terms called %d times, want 0 for an invalid request", store.TermsCalls)
	}
}

func TestIngestDocument_ExtractsAndStoresTerms(t *testing.T) {
	ts, store := newTestServer(t, &corpusmock.Store{})

	doc := "# Kubernetes Overview\n" +
		"Kubernetes is a container orchestrator. Kubernetes clusters run anywhere.\n" +
		"Terraform Cloud provisions the clusters.\n"

	resp, err := http.Post(ts.URL+"/v1/sessions/sess-9/documents", "text/markdown", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("POST document: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		SourceID  string                `json:"sourceId"`
		TermCount int                   `json:"termCount"`
		Terms     []types.ReferenceTerm `json:"terms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.SourceID == "" {
		t.Error("sourceId is empty")
	}
	if body.TermCount == 0 || len(body.Terms) != body.TermCount {
		t.Fatalf("termCount = %d with %d terms", body.TermCount, len(body.Terms))
	}

	found := false
	for _, term := range body.Terms {
		if term.NormalizedTerm == "kubernetes" {
			found = true
			if term.SourceID != body.SourceID {
				t.Errorf("term sourceId = %q, want %q", term.SourceID, body.SourceID)
			}
		}
	}
	if !found {
		t.Error("extracted terms do not include kubernetes")
	}

	if len(store.Saved) != 1 {
		t.Fatalf("store received %d save calls, want 1", len(store.Saved))
	}
	if store.Saved[0].SessionID != "sess-9" {
		t.Errorf("saved under session %q, want sess-9", store.Saved[0].SessionID)
	}
}

func TestIngestDocument_MergesWithExistingCorpus(t *testing.T) {
	existing := []types.ReferenceTerm{
		{
			Term:           "Kubernetes",
			NormalizedTerm: "kubernetes",
			SourceID:       "doc-1",
			Category:       types.CategoryTechnical,
			Frequency:      3,
		},
	}
	ts, store := newTestServer(t, &corpusmock.Store{TermsResult: existing})

	doc := "Kubernetes upgrades. Kubernetes rollbacks. Prometheus scrapes both clusters. Prometheus alerts too."
	resp, err := http.Post(ts.URL+"/v1/sessions/sess-9/documents", "text/plain", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("POST document: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	if len(store.Saved) != 1 {
		t.Fatalf("store received %d save calls, want 1", len(store.Saved))
	}
	var kube *types.ReferenceTerm
	for i := range store.Saved[0].Terms {
		if store.Saved[0].Terms[i].NormalizedTerm == "kubernetes" {
			kube = &store.Saved[0].Terms[i]
		}
	}
	if kube == nil {
		t.Fatal("merged corpus is missing kubernetes")
	}
	if kube.Frequency != 5 {
		t.Errorf("merged frequency = %d, want 5 (3 existing + 2 new)", kube.Frequency)
	}
	if kube.SourceID != "doc-1" {
		t.Errorf("merged sourceId = %q, want the original doc-1", kube.SourceID)
	}

	var body struct {
		TermCount  int `json:"termCount"`
		CorpusSize int `json:"corpusSize"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.CorpusSize < body.TermCount {
		t.Errorf("corpusSize = %d < termCount = %d", body.CorpusSize, body.TermCount)
	}
}

func TestIngestDocument_RejectsBinaryContentType(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{})

	resp, err := http.Post(ts.URL+"/v1/sessions/sess-9/documents", "application/pdf", strings.NewReader("%PDF-1.7"))
	if err != nil {
		t.Fatalf("POST document: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", resp.StatusCode)
	}
}

func TestIngestDocument_RejectsEmptyBody(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{})

	resp, err := http.Post(ts.URL+"/v1/sessions/sess-9/documents", "text/plain", strings.NewReader(""))
	if err != nil {
		t.Fatalf("POST document: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIngestDocument_StoreFailure(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{SaveErr: errors.New("connection refused")})

	resp, err := http.Post(ts.URL+"/v1/sessions/sess-9/documents", "text/plain", strings.NewReader("Kubernetes everywhere. Kubernetes always."))
	if err != nil {
		t.Fatalf("POST document: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestSessionTerms_ReturnsStoredTerms(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{TermsResult: kubernetesCorpus()})

	resp, err := http.Get(ts.URL + "/v1/sessions/sess-1/terms")
	if err != nil {
		t.Fatalf("GET terms: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		SessionID string                `json:"sessionId"`
		Terms     []types.ReferenceTerm `json:"terms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.SessionID != "sess-1" {
		t.Errorf("sessionId = %q, want sess-1", body.SessionID)
	}
	if len(body.Terms) != 1 || body.Terms[0].Term != "Kubernetes" {
		t.Errorf("terms = %+v, want the Kubernetes corpus", body.Terms)
	}
}

func TestSessionTerms_EmptySessionYieldsEmptyList(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{})

	resp, err := http.Get(ts.URL + "/v1/sessions/nobody/terms")
	if err != nil {
		t.Fatalf("GET terms: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Terms []types.ReferenceTerm `json:"terms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Terms == nil {
		t.Error("terms is null, want an empty list")
	}
}

func TestDeleteSession(t *testing.T) {
	ts, store := newTestServer(t, &corpusmock.Store{})

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/sessions/sess-1", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE session: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if len(store.Deleted) != 1 || store.Deleted[0] != "sess-1" {
		t.Errorf("deleted sessions = %v, want [sess-1]", store.Deleted)
	}
}

func TestStats_ReflectCorrections(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{TermsResult: kubernetesCorpus()})

	resp, err := http.Post(ts.URL+"/v1/corrections", "application/json", strings.NewReader(correctionBody()))
	if err != nil {
		t.Fatalf("POST /v1/corrections: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	defer resp.Body.Close()

	var snap correction.StatsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if snap.Requests != 1 {
		t.Errorf("requests = %d, want 1", snap.Requests)
	}
	if snap.Corrections == 0 {
		t.Error("corrections = 0, want at least one")
	}
}

func TestStatsReset(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{TermsResult: kubernetesCorpus()})

	resp, err := http.Post(ts.URL+"/v1/corrections", "application/json", strings.NewReader(correctionBody()))
	if err != nil {
		t.Fatalf("POST /v1/corrections: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/v1/stats/reset", "", nil)
	if err != nil {
		t.Fatalf("POST /v1/stats/reset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	defer resp.Body.Close()

	var snap correction.StatsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if snap.Requests != 0 {
		t.Errorf("requests after reset = %d, want 0", snap.Requests)
	}
}

func TestHealthEndpointsAreRegistered(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestCorrelationIDHeaderIsSet(t *testing.T) {
	ts, _ := newTestServer(t, &corpusmock.Store{})

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	resp.Body.Close()

	if resp.Header.Get("X-Correlation-ID") == "" {
		t.Error("response is missing the X-Correlation-ID header")
	}
}
