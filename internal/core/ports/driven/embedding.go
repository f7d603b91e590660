package driven

import "context"

// EmbeddingService turns text into vectors for similarity ranking.
// Implementations must be safe for concurrent use; one instance is
// shared by every session.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in one request where the provider allows,
	// returning vectors in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length.
	Dimensions() int

	ModelName() string

	// Ping checks the provider is reachable without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
