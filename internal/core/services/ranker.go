package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Ensure RankerService implements the interface.
var _ driving.DocumentRanker = (*RankerService)(nil)

// defaultConcurrency bounds parallel document embedding when unset.
const defaultConcurrency = 4

// RankerService ranks corpus documents by embedding similarity.
// Documents are re-read and re-embedded on every call; any caching is the
// embedding service's concern.
type RankerService struct {
	reader        driven.CorpusReader
	embedder      driven.EmbeddingService
	topK          int
	minSimilarity float64
	concurrency   int
	metrics       driven.Metrics
}

// NewRankerService creates a new ranker.
// The embedder parameter is optional (can be nil); without it nothing is ranked.
func NewRankerService(
	reader driven.CorpusReader,
	embedder driven.EmbeddingService,
	settings domain.RetrievalSettings,
) *RankerService {
	concurrency := settings.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &RankerService{
		reader:        reader,
		embedder:      embedder,
		topK:          settings.TopK,
		minSimilarity: settings.MinSimilarity,
		concurrency:   concurrency,
	}
}

// SetMetrics sets the metrics recorder.
func (s *RankerService) SetMetrics(m driven.Metrics) {
	s.metrics = m
}

// Rank ranks documents using the configured topK and threshold.
func (s *RankerService) Rank(
	ctx context.Context, utterance string, partitions []string,
) ([]domain.RankedDocument, []domain.Issue, error) {
	return s.RankWith(ctx, utterance, partitions, s.topK, s.minSimilarity)
}

// RankWith ranks documents in the given partitions against the utterance.
// Missing or empty partitions contribute nothing. Unreadable files are
// returned as issues and skipped, as are documents that fail to embed.
// Only a failure to embed the utterance is an error.
func (s *RankerService) RankWith(
	ctx context.Context, utterance string, partitions []string, topK int, minSimilarity float64,
) ([]domain.RankedDocument, []domain.Issue, error) {
	logger.Section("Document Ranking")
	logger.Debug("Partitions: %v, topK: %d, min similarity: %.2f", partitions, topK, minSimilarity)
	start := time.Now()

	docs, issues := s.collect(ctx, partitions)
	if err := ctx.Err(); err != nil {
		return nil, issues, err
	}
	if len(docs) == 0 {
		logger.Debug("No documents in partitions")
		s.observe(0, len(issues), start)
		return nil, issues, nil
	}

	if s.embedder == nil {
		logger.Debug("No embedding service configured, skipping ranking")
		s.observe(0, len(issues), start)
		return nil, issues, nil
	}

	query, err := s.embedder.Embed(ctx, utterance)
	if err != nil {
		return nil, issues, fmt.Errorf("embed utterance: %w", err)
	}

	scores, embedIssues, err := s.score(ctx, query, docs)
	issues = append(issues, embedIssues...)
	if err != nil {
		return nil, issues, err
	}

	ranked := make([]domain.RankedDocument, 0, len(docs))
	for i, doc := range docs {
		if scores[i] >= minSimilarity {
			logger.Debug("  %s/%s: %.3f", doc.Partition, doc.ID, scores[i])
			ranked = append(ranked, domain.RankedDocument{Document: doc, Score: scores[i]})
		} else {
			logger.Debug("  %s/%s: %.3f (below threshold)", doc.Partition, doc.ID, scores[i])
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if topK >= 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	logger.Info("Ranked %d of %d documents (%d issues)", len(ranked), len(docs), len(issues))
	s.observe(len(ranked), len(issues), start)
	return ranked, issues, nil
}

// collect reads every partition in order, merging documents and issues.
func (s *RankerService) collect(ctx context.Context, partitions []string) ([]domain.Document, []domain.Issue) {
	var (
		docs   []domain.Document
		issues []domain.Issue
	)
	for _, partition := range partitions {
		if ctx.Err() != nil {
			break
		}
		found, partIssues, err := s.reader.ReadPartition(ctx, partition)
		issues = append(issues, partIssues...)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Partition not found: %s", partition)
				continue
			}
			issues = append(issues, domain.Issue{
				Path: partition,
				Err:  fmt.Errorf("%w: %w", domain.ErrRankingIO, err),
			})
			continue
		}
		logger.Debug("Searching %s: %d documents", partition, len(found))
		for _, doc := range found {
			if strings.TrimSpace(doc.Content) == "" {
				continue
			}
			docs = append(docs, doc)
		}
	}
	return docs, issues
}

// score embeds each document's comparison text in parallel and returns
// similarities in document order. A document whose embedding fails is
// reported as an issue and scored below any threshold. Only cancellation
// aborts scoring.
func (s *RankerService) score(
	ctx context.Context, query []float32, docs []domain.Document,
) ([]float64, []domain.Issue, error) {
	scores := make([]float64, len(docs))

	var (
		mu     sync.Mutex
		issues []domain.Issue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, doc.ComparisonText())
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("Skipping %s/%s: %v", doc.Partition, doc.ID, err)
				scores[i] = math.Inf(-1)
				mu.Lock()
				issues = append(issues, domain.Issue{
					Path: doc.Path,
					Err:  fmt.Errorf("%w: embed %s: %w", domain.ErrRankingIO, doc.ID, err),
				})
				mu.Unlock()
				return nil
			}
			scores[i] = domain.CosineSimilarity(query, vec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, issues, err
	}
	return scores, issues, nil
}

func (s *RankerService) observe(returned, issues int, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRanking(returned, issues, time.Since(start))
	}
}
