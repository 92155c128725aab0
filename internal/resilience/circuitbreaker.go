// Package resilience shields the correction pipeline from flaky external
// backends (LLM completion and text-embedding APIs).
//
// [CircuitBreaker] is a three-state breaker (closed, open, half-open) that
// stops hammering a backend once it fails repeatedly. [FallbackGroup] chains
// several backends of one provider type behind per-backend breakers so a dead
// primary is bypassed in favour of whichever fallback is still healthy.
// [LLMFallback] and [EmbeddingsFallback] are the two compositions the server
// actually runs.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] while the breaker
// rejects calls, i.e. it is open and the reset timeout has not elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker defaults applied by [NewCircuitBreaker] for zero config fields.
const (
	defaultMaxFailures  = 5
	defaultResetTimeout = 30 * time.Second
	defaultHalfOpenMax  = 3
)

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards every call; the backend is considered healthy.
	StateClosed State = iota

	// StateOpen rejects every call with [ErrCircuitOpen]; the backend failed
	// too many times in a row and gets a cool-down.
	StateOpen

	// StateHalfOpen lets a bounded number of probe calls through after the
	// cool-down. Clean probes close the breaker, a failed probe reopens it.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreakerConfig tunes one [CircuitBreaker].
type CircuitBreakerConfig struct {
	// Name labels the breaker in log output, typically the backend name.
	Name string

	// MaxFailures is how many consecutive failures open the breaker.
	// Default 5.
	MaxFailures int

	// ResetTimeout is the cool-down before the breaker probes the backend
	// again. Default 30s.
	ResetTimeout time.Duration

	// HalfOpenMax is how many probe calls the half-open state admits, and
	// equally how many must succeed before the breaker closes. Default 3.
	HalfOpenMax int
}

// CircuitBreaker cuts calls to a backend after repeated consecutive failures
// and probes for recovery after a cool-down.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probes      int
}

// NewCircuitBreaker builds a closed breaker from cfg, substituting defaults
// for zero fields.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = defaultHalfOpenMax
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
	}
}

// Execute runs fn unless the breaker rejects the call, and folds fn's outcome
// into the breaker state. The error from fn is returned unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probe, err := cb.admit()
	if err != nil {
		return err
	}
	err = fn()
	cb.settle(err, probe)
	return err
}

// admit decides whether a call may proceed and whether it counts as a
// half-open probe.
func (cb *CircuitBreaker) admit() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.resetTimeout {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probes = 0
		slog.Info("circuit half-open, probing backend", "breaker", cb.name)

	case StateHalfOpen:
		if cb.probes >= cb.halfOpenMax {
			// Probe budget spent, wait for the in-flight probes to settle.
			return false, ErrCircuitOpen
		}
	}

	if cb.state == StateHalfOpen {
		cb.probes++
		return true, nil
	}
	return false, nil
}

// settle records the outcome of an admitted call.
func (cb *CircuitBreaker) settle(err error, probe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if probe && cb.state == StateHalfOpen && cb.probes >= cb.halfOpenMax {
			cb.state = StateClosed
			cb.failures = 0
			cb.probes = 0
			slog.Info("circuit closed, backend recovered", "breaker", cb.name)
		} else if !probe {
			cb.failures = 0
		}
		return
	}

	cb.lastFailure = time.Now()
	if probe {
		// One failed probe sends the breaker straight back to open.
		cb.state = StateOpen
		slog.Warn("circuit reopened, probe failed", "breaker", cb.name)
		return
	}
	cb.failures++
	if cb.state == StateClosed && cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		slog.Warn("circuit opened, backend failing",
			"breaker", cb.name, "consecutive_failures", cb.failures)
	}
}

// State reports the breaker's current state. An open breaker whose cool-down
// has elapsed reports half-open; the stored state flips on the next
// [CircuitBreaker.Execute].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.probes = 0
	slog.Info("circuit reset", "breaker", cb.name)
}
