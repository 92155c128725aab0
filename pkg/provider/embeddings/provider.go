// Package embeddings defines the Provider interface for vector embedding
// backends.
//
// An embeddings provider maps text to dense float32 vectors. The corpus layer
// embeds reference terms at ingestion time and transcript queries at
// correction time, and ranks terms by vector similarity for semantic
// retrieval.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the dimensionality
// reported by Dimensions. Vectors from different Provider instances must not
// be compared unless both use the same model.
type Provider interface {
	// Embed computes the embedding vector for a single text string. The text
	// is passed to the backend verbatim; any model-specific prompt formatting
	// is the caller's responsibility.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for texts in a single backend
	// call. The returned slice has the same length and order as texts.
	// Partial results are not returned; on error the entire slice is nil.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider. Constant for the lifetime of the instance.
	Dimensions() int

	// ModelID returns the provider-specific model identifier, for logging
	// and for verifying consistent model usage across a corpus.
	ModelID() string
}
