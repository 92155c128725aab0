// Package mock provides a test double for the doctext.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/islamborghini/livecaps/pkg/provider/doctext"
)

var _ doctext.Provider = (*Provider)(nil)

// Provider is a configurable test double for [doctext.Provider].
// All methods are safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// ExtractResult is returned by ExtractText.
	ExtractResult string

	// ExtractErr, when non-nil, is returned by ExtractText.
	ExtractErr error

	// ContentTypes records every content type passed to ExtractText.
	ContentTypes []string
}

// ExtractText records the call and returns the configured result.
func (p *Provider) ExtractText(_ context.Context, _ []byte, contentType string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ContentTypes = append(p.ContentTypes, contentType)
	if p.ExtractErr != nil {
		return "", p.ExtractErr
	}
	return p.ExtractResult, nil
}
