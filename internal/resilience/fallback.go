package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when no backend in a [FallbackGroup] produced a
// result: every one either failed or had an open breaker.
var ErrAllFailed = errors.New("all backends failed")

// FallbackConfig is applied to the circuit breaker minted for each backend
// registered in a [FallbackGroup].
type FallbackConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// backend pairs one registered provider with its own circuit breaker.
type backend[T any] struct {
	label   string
	impl    T
	breaker *CircuitBreaker
}

// FallbackGroup chains a primary and any number of fallback backends of the
// same provider type. Calls go to the first backend whose breaker admits them
// and that returns without error, in registration order.
//
// FallbackGroup is safe for concurrent use once registration is done; register
// all fallbacks before serving traffic.
type FallbackGroup[T any] struct {
	backends []backend[T]
	cfg      FallbackConfig
}

// NewFallbackGroup starts a group with primary as the preferred backend.
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	fg := &FallbackGroup[T]{cfg: cfg}
	fg.register(primaryName, primary)
	return fg
}

// AddFallback appends a backend tried after every previously registered one.
func (fg *FallbackGroup[T]) AddFallback(name string, fallback T) {
	fg.register(name, fallback)
}

func (fg *FallbackGroup[T]) register(name string, impl T) {
	cbCfg := fg.cfg.CircuitBreaker
	cbCfg.Name = name
	fg.backends = append(fg.backends, backend[T]{
		label:   name,
		impl:    impl,
		breaker: NewCircuitBreaker(cbCfg),
	})
}

// Primary returns the first registered backend, which owns the group's static
// metadata (model IDs, vector dimensions).
func (fg *FallbackGroup[T]) Primary() T {
	return fg.backends[0].impl
}

// Execute runs fn against backends in order until one succeeds. Backends with
// an open breaker are skipped. When none succeeds the last error is wrapped in
// [ErrAllFailed].
func (fg *FallbackGroup[T]) Execute(fn func(T) error) error {
	var lastErr error
	for i := range fg.backends {
		b := &fg.backends[i]
		err := b.breaker.Execute(func() error { return fn(b.impl) })
		if err == nil {
			return nil
		}
		lastErr = err
		logFailover(b.label, err)
	}
	return fmt.Errorf("%w: last error: %w", ErrAllFailed, lastErr)
}

// ExecuteWithResult is [FallbackGroup.Execute] for calls that produce a value.
// It is a package-level function because methods cannot introduce the result
// type parameter.
func ExecuteWithResult[T, R any](fg *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var lastErr error
	for i := range fg.backends {
		b := &fg.backends[i]
		var res R
		err := b.breaker.Execute(func() error {
			var callErr error
			res, callErr = fn(b.impl)
			return callErr
		})
		if err == nil {
			return res, nil
		}
		lastErr = err
		logFailover(b.label, err)
	}
	var zero R
	return zero, fmt.Errorf("%w: last error: %w", ErrAllFailed, lastErr)
}

func logFailover(label string, err error) {
	if errors.Is(err, ErrCircuitOpen) {
		slog.Debug("backend circuit open, skipping", "backend", label)
		return
	}
	slog.Warn("backend failed, failing over", "backend", label, "error", err)
}
