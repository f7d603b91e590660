package ai

import (
	"context"
	"math"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure decorators implement their interfaces.
var (
	_ driven.EmbeddingService   = (*LimitedEmbedding)(nil)
	_ driven.LLMService         = (*LimitedLLM)(nil)
	_ driven.ZeroShotClassifier = (*LimitedClassifier)(nil)
)

// Limiter bounds calls to one backend: at most n in flight, and optionally
// a steady request rate. It is shared by every session using the backend.
type Limiter struct {
	sem  *semaphore.Weighted
	rate *rate.Limiter
}

// NewLimiter builds a limiter from settings. Non-positive MaxConcurrent
// means one call at a time; zero RequestsPerSecond disables rate limiting.
func NewLimiter(settings domain.LimitSettings) *Limiter {
	n := int64(settings.MaxConcurrent)
	if n <= 0 {
		n = 1
	}
	l := &Limiter{sem: semaphore.NewWeighted(n)}
	if settings.RequestsPerSecond > 0 {
		burst := int(math.Ceil(settings.RequestsPerSecond))
		l.rate = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
	}
	return l
}

// Acquire waits for a slot. The returned release must be called when the
// call completes. It fails only when ctx ends first.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if l.rate != nil {
		if err := l.rate.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { l.sem.Release(1) }, nil
}

// LimitedEmbedding applies a Limiter to an embedding service.
type LimitedEmbedding struct {
	driven.EmbeddingService
	limiter *Limiter
}

// NewLimitedEmbedding wraps svc.
func NewLimitedEmbedding(svc driven.EmbeddingService, limiter *Limiter) *LimitedEmbedding {
	return &LimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

// Embed embeds text once a slot is free.
func (e *LimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	release, err := e.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return e.EmbeddingService.Embed(ctx, text)
}

// EmbedBatch embeds texts as one call once a slot is free.
func (e *LimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	release, err := e.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return e.EmbeddingService.EmbedBatch(ctx, texts)
}

// LimitedLLM applies a Limiter to an LLM service.
type LimitedLLM struct {
	driven.LLMService
	limiter *Limiter
}

// NewLimitedLLM wraps svc.
func NewLimitedLLM(svc driven.LLMService, limiter *Limiter) *LimitedLLM {
	return &LimitedLLM{LLMService: svc, limiter: limiter}
}

// Generate generates once a slot is free.
func (g *LimitedLLM) Generate(
	ctx context.Context, prompt string, docs []string, history []domain.Entry, opts driven.GenerateOptions,
) (string, error) {
	release, err := g.limiter.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	return g.LLMService.Generate(ctx, prompt, docs, history, opts)
}

// LimitedClassifier applies a Limiter to a zero-shot classifier.
type LimitedClassifier struct {
	driven.ZeroShotClassifier
	limiter *Limiter
}

// NewLimitedClassifier wraps svc.
func NewLimitedClassifier(svc driven.ZeroShotClassifier, limiter *Limiter) *LimitedClassifier {
	return &LimitedClassifier{ZeroShotClassifier: svc, limiter: limiter}
}

// Classify classifies once a slot is free.
func (c *LimitedClassifier) Classify(ctx context.Context, text string, labels []string) (driven.Classification, error) {
	release, err := c.limiter.Acquire(ctx)
	if err != nil {
		return driven.Classification{}, err
	}
	defer release()
	return c.ZeroShotClassifier.Classify(ctx, text, labels)
}
