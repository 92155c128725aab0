// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider to return scripted completions without a live model and to
// assert on the prompts the system under test submits.
package mock

import (
	"context"
	"sync"

	"github.com/islamborghini/livecaps/pkg/provider/llm"
)

var _ llm.Provider = (*Provider)(nil)

// Provider is a configurable test double for [llm.Provider].
// All methods are safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// CompleteResponse is returned by Complete when CompleteFunc is nil.
	CompleteResponse *llm.CompletionResponse

	// CompleteErr, when non-nil, is returned by Complete.
	CompleteErr error

	// CompleteFunc, when non-nil, overrides the canned response entirely.
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)

	// ModelIDValue is returned by ModelID.
	ModelIDValue string

	// Requests records every request passed to Complete, in order.
	Requests []llm.CompletionRequest
}

// Complete records the request and returns the scripted response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	fn := p.CompleteFunc
	resp, err := p.CompleteResponse, p.CompleteErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &llm.CompletionResponse{}, nil
	}
	return resp, nil
}

// ModelID returns the configured model identifier.
func (p *Provider) ModelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ModelIDValue == "" {
		return "mock-model"
	}
	return p.ModelIDValue
}

// CallCount returns how many times Complete was invoked.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}
