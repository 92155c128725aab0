package correction

import (
	"sync"
	"time"
)

// Stats accumulates correction pipeline counters for the stats endpoint.
// All methods are safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	requests       int64
	corrections    int64
	errors         int64
	avgLatencyMs   float64
	avgCandidates  float64
	lastCorrection time.Time
}

// NewStats returns a zeroed stats accumulator.
func NewStats() *Stats {
	return &Stats{}
}

// StatsSnapshot is a point-in-time copy of the pipeline counters.
type StatsSnapshot struct {
	// Requests is the number of correction requests processed.
	Requests int64 `json:"requests"`

	// Corrections is the total number of replacements applied.
	Corrections int64 `json:"corrections"`

	// Errors counts requests in which at least one stage failed and a
	// fallback fired.
	Errors int64 `json:"errors"`

	// AvgProcessingMs is the mean request latency in milliseconds.
	AvgProcessingMs float64 `json:"avgProcessingMs"`

	// AvgCandidates is the mean number of candidates retrieved per request.
	AvgCandidates float64 `json:"avgCandidates"`

	// LastCorrection is when a replacement was last applied. Zero until the
	// first correction.
	LastCorrection time.Time `json:"lastCorrection,omitzero"`
}

// Record folds one completed request into the counters.
func (s *Stats) Record(latency time.Duration, candidates, corrections int, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	n := float64(s.requests)
	s.avgLatencyMs += (float64(latency.Microseconds())/1000 - s.avgLatencyMs) / n
	s.avgCandidates += (float64(candidates) - s.avgCandidates) / n
	s.corrections += int64(corrections)
	if corrections > 0 {
		s.lastCorrection = time.Now()
	}
	if failed {
		s.errors++
	}
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Requests:        s.requests,
		Corrections:     s.corrections,
		Errors:          s.errors,
		AvgProcessingMs: s.avgLatencyMs,
		AvgCandidates:   s.avgCandidates,
		LastCorrection:  s.lastCorrection,
	}
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = 0
	s.corrections = 0
	s.errors = 0
	s.avgLatencyMs = 0
	s.avgCandidates = 0
	s.lastCorrection = time.Time{}
}
