package driven

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// CorpusReader reads plain-text documents from corpus partitions.
// A partition is a directory; relative partitions resolve against Root.
type CorpusReader interface {
	// ReadPartition returns the partition's documents in a stable order.
	// Files that cannot be read are reported as issues, not errors.
	// Returns an error wrapping domain.ErrNotFound if the partition does not exist.
	ReadPartition(ctx context.Context, partition string) ([]domain.Document, []domain.Issue, error)

	// Stat summarises a partition without reading file contents.
	// A missing partition is reported with Exists false, not as an error.
	Stat(partition string) (domain.PartitionStats, error)

	// Root returns the corpus root directory.
	Root() string
}

// CorpusWatcher reports changes to the corpus.
type CorpusWatcher interface {
	// Watch starts watching and returns a channel of changed paths.
	// The channel is closed when the context is cancelled or Stop is called.
	Watch(ctx context.Context) (<-chan string, error)

	// Stop ends watching.
	Stop() error
}
