// Package embedding provides a local zero-shot classifier that scores labels
// by their embedding similarity to the text.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.ZeroShotClassifier = (*Classifier)(nil)

// DefaultTemperature sharpens the softmax over cosine similarities, which
// otherwise sit in a narrow band and spread probability almost evenly.
const DefaultTemperature = 0.05

// Classifier turns an embedding model into a zero-shot classifier.
type Classifier struct {
	embedder    driven.EmbeddingService
	temperature float64
}

// NewClassifier wraps an embedding service. A non-positive temperature
// uses DefaultTemperature.
func NewClassifier(embedder driven.EmbeddingService, temperature float64) (*Classifier, error) {
	if embedder == nil {
		return nil, errors.New("embedding classifier: embedding service is required")
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Classifier{embedder: embedder, temperature: temperature}, nil
}

// Classify embeds the text and labels in one batch and returns a softmax of
// their cosine similarities, highest first.
func (c *Classifier) Classify(ctx context.Context, text string, labels []string) (driven.Classification, error) {
	if len(labels) == 0 {
		return driven.Classification{}, nil
	}

	inputs := make([]string, 0, len(labels)+1)
	inputs = append(inputs, text)
	inputs = append(inputs, labels...)

	vecs, err := c.embedder.EmbedBatch(ctx, inputs)
	if err != nil {
		return driven.Classification{}, fmt.Errorf("embedding classifier: %w", err)
	}
	if len(vecs) != len(inputs) {
		return driven.Classification{}, fmt.Errorf("embedding classifier: got %d embeddings for %d inputs",
			len(vecs), len(inputs))
	}

	logits := make([]float64, len(labels))
	for i := range labels {
		logits[i] = domain.CosineSimilarity(vecs[0], vecs[i+1]) / c.temperature
	}
	probs := softmax(logits)

	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return probs[idx[a]] > probs[idx[b]] })

	out := driven.Classification{
		Labels: make([]string, len(idx)),
		Scores: make([]float64, len(idx)),
	}
	for i, j := range idx {
		out.Labels[i] = labels[j]
		out.Scores[i] = probs[j]
	}
	return out, nil
}

func softmax(logits []float64) []float64 {
	highest := math.Inf(-1)
	for _, l := range logits {
		highest = math.Max(highest, l)
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - highest)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// ModelName reports the underlying embedding model.
func (c *Classifier) ModelName() string {
	return "embedding:" + c.embedder.ModelName()
}

// Ping checks the embedding service.
func (c *Classifier) Ping(ctx context.Context) error {
	return c.embedder.Ping(ctx)
}

// Close is a no-op; the embedding service is owned by the caller.
func (c *Classifier) Close() error {
	return nil
}
