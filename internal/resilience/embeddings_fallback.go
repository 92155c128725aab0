package resilience

import (
	"context"

	"github.com/islamborghini/livecaps/pkg/provider/embeddings"
)

// EmbeddingsFallback implements [embeddings.Provider] with automatic failover
// across multiple embedding backends, e.g. a hosted API with a local Ollama
// model as the fallback.
//
// Vector spaces are model-specific, so mixing backends mid-corpus would make
// similarity scores meaningless. Only add fallbacks that serve the same model,
// or accept that semantic retrieval quality degrades until the corpus is
// re-embedded.
type EmbeddingsFallback struct {
	group *FallbackGroup[embeddings.Provider]
}

// Compile-time interface assertion.
var _ embeddings.Provider = (*EmbeddingsFallback)(nil)

// NewEmbeddingsFallback creates an [EmbeddingsFallback] with primary as the
// preferred backend.
func NewEmbeddingsFallback(primary embeddings.Provider, primaryName string, cfg FallbackConfig) *EmbeddingsFallback {
	return &EmbeddingsFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional embeddings provider as a fallback.
func (f *EmbeddingsFallback) AddFallback(name string, provider embeddings.Provider) {
	f.group.AddFallback(name, provider)
}

// Embed computes the embedding using the first healthy provider.
func (f *EmbeddingsFallback) Embed(ctx context.Context, text string) ([]float32, error) {
	return ExecuteWithResult(f.group, func(p embeddings.Provider) ([]float32, error) {
		return p.Embed(ctx, text)
	})
}

// EmbedBatch computes the batch of embeddings using the first healthy provider.
func (f *EmbeddingsFallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return ExecuteWithResult(f.group, func(p embeddings.Provider) ([][]float32, error) {
		return p.EmbedBatch(ctx, texts)
	})
}

// Dimensions returns the vector dimensionality of the primary backend. Static
// metadata, not subject to failover.
func (f *EmbeddingsFallback) Dimensions() int {
	return f.group.Primary().Dimensions()
}

// ModelID returns the model identifier of the primary backend.
func (f *EmbeddingsFallback) ModelID() string {
	return f.group.Primary().ModelID()
}
