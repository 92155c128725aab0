// Package mock provides a test double for the embeddings.Provider interface.
//
// Use Provider to return pre-canned embedding vectors without a live model
// and to verify which texts were submitted for embedding.
package mock

import (
	"context"
	"sync"

	"github.com/islamborghini/livecaps/pkg/provider/embeddings"
)

var _ embeddings.Provider = (*Provider)(nil)

// Provider is a configurable test double for [embeddings.Provider].
// All methods are safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// EmbedResult is returned by Embed. Nil yields a zero-length vector.
	EmbedResult []float32

	// EmbedErr, when non-nil, is returned by Embed.
	EmbedErr error

	// EmbedBatchResult is returned by EmbedBatch. Nil yields one nil vector
	// per input text.
	EmbedBatchResult [][]float32

	// EmbedBatchErr, when non-nil, is returned by EmbedBatch.
	EmbedBatchErr error

	// DimensionsValue is returned by Dimensions.
	DimensionsValue int

	// ModelIDValue is returned by ModelID.
	ModelIDValue string

	// EmbedTexts records every text passed to Embed, in order.
	EmbedTexts []string

	// EmbedBatchTexts records every slice passed to EmbedBatch, in order.
	EmbedBatchTexts [][]string
}

// Embed records the call and returns the configured result.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EmbedTexts = append(p.EmbedTexts, text)
	if p.EmbedErr != nil {
		return nil, p.EmbedErr
	}
	return p.EmbedResult, nil
}

// EmbedBatch records the call and returns the configured result.
func (p *Provider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]string, len(texts))
	copy(cp, texts)
	p.EmbedBatchTexts = append(p.EmbedBatchTexts, cp)
	if p.EmbedBatchErr != nil {
		return nil, p.EmbedBatchErr
	}
	if p.EmbedBatchResult != nil {
		return p.EmbedBatchResult, nil
	}
	return make([][]float32, len(texts)), nil
}

// Dimensions returns the configured dimension.
func (p *Provider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.DimensionsValue
}

// ModelID returns the configured model identifier.
func (p *Provider) ModelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ModelIDValue
}
