package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/logger"
)

// scoreEpsilon absorbs float rounding when comparing score gaps to the margin.
const scoreEpsilon = 1e-9

// Ensure IntentService implements the interface.
var _ driving.IntentDetector = (*IntentService)(nil)

// IntentService detects which categories an utterance is about.
// A keyword pass runs first; the zero-shot classifier is only consulted
// when no keyword matches.
type IntentService struct {
	catalogue     *domain.Catalogue
	classifier    driven.ZeroShotClassifier
	minConfidence float64
	scoreMargin   float64
	timeout       time.Duration
	metrics       driven.Metrics
}

// NewIntentService creates a new intent service.
// The classifier parameter is optional (can be nil).
func NewIntentService(
	catalogue *domain.Catalogue,
	classifier driven.ZeroShotClassifier,
	settings domain.IntentSettings,
) *IntentService {
	return &IntentService{
		catalogue:     catalogue,
		classifier:    classifier,
		minConfidence: settings.MinConfidence,
		scoreMargin:   settings.ScoreMargin,
	}
}

// SetTimeout bounds each classifier call. Zero means no bound beyond the caller's context.
func (s *IntentService) SetTimeout(d time.Duration) {
	s.timeout = d
}

// SetMetrics sets the metrics recorder.
func (s *IntentService) SetMetrics(m driven.Metrics) {
	s.metrics = m
}

// Detect classifies an utterance using the configured thresholds.
func (s *IntentService) Detect(ctx context.Context, utterance string) domain.IntentResult {
	return s.DetectWith(ctx, utterance, s.minConfidence, s.scoreMargin)
}

// DetectWith classifies an utterance with explicit thresholds. It never fails:
// classifier errors produce the fallback intent.
func (s *IntentService) DetectWith(
	ctx context.Context, utterance string, minConfidence, scoreMargin float64,
) domain.IntentResult {
	logger.Section("Intent Detection")
	logger.Debug("Utterance: %q", utterance)

	result := s.detect(ctx, utterance, minConfidence, scoreMargin)

	logger.Info("Intent: method=%s categories=%v confidence=%.3f",
		result.Method, result.Categories, result.Confidence)
	if s.metrics != nil {
		s.metrics.ObserveIntent(result.Method)
	}
	return result
}

func (s *IntentService) detect(
	ctx context.Context, utterance string, minConfidence, scoreMargin float64,
) domain.IntentResult {
	if matches := s.MatchKeywords(utterance); len(matches) > 0 {
		categories := make([]string, len(matches))
		for i, m := range matches {
			categories[i] = m.Category
			logger.Debug("Keyword match: %s (keyword: %q)", m.Category, m.Keyword)
		}
		return domain.IntentResult{
			Method:     domain.MethodKeyword,
			Categories: categories,
			Confidence: 1.0,
			Details:    matches,
		}
	}

	if strings.TrimSpace(utterance) == "" {
		logger.Debug("Blank utterance, using fallback intent")
		return domain.FallbackIntent()
	}

	result, err := s.classify(ctx, utterance, minConfidence, scoreMargin)
	if err != nil {
		logger.Warn("Classifier failed, using fallback intent: %v", err)
		return domain.FallbackIntent()
	}
	return result
}

// MatchKeywords runs the keyword pass alone. Categories are visited in
// configured order and each contributes at most its first matching keyword.
func (s *IntentService) MatchKeywords(utterance string) []domain.IntentDetail {
	lower := strings.ToLower(utterance)
	var matches []domain.IntentDetail

	for _, cat := range s.catalogue.Categories() {
		for _, kw := range cat.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				matches = append(matches, domain.IntentDetail{Category: cat.Name, Keyword: kw})
				break
			}
		}
	}

	return matches
}

// classify runs the zero-shot pass and applies the confidence and margin filters.
func (s *IntentService) classify(
	ctx context.Context, utterance string, minConfidence, scoreMargin float64,
) (domain.IntentResult, error) {
	if s.classifier == nil {
		return domain.IntentResult{}, fmt.Errorf("%w: no classifier configured", domain.ErrClassificationUnavailable)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger.Debug("Running zero-shot classifier (%s) over %d labels",
		s.classifier.ModelName(), s.catalogue.Len())

	out, err := s.classifier.Classify(ctx, utterance, s.catalogue.Names())
	if err != nil {
		return domain.IntentResult{}, fmt.Errorf("%w: %w", domain.ErrClassificationUnavailable, err)
	}

	type scored struct {
		label string
		score float64
	}
	seen := make(map[string]bool, out.Len())
	candidates := make([]scored, 0, out.Len())
	for i := 0; i < out.Len(); i++ {
		label := out.Labels[i]
		if _, ok := s.catalogue.Get(label); !ok || seen[label] {
			continue
		}
		seen[label] = true
		candidates = append(candidates, scored{label: label, score: out.Scores[i]})
	}
	if len(candidates) == 0 {
		return domain.IntentResult{}, fmt.Errorf("%w: classifier returned no known labels",
			domain.ErrClassificationUnavailable)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	top := candidates[0].score

	var (
		categories []string
		details    []domain.IntentDetail
	)
	for _, c := range candidates {
		logger.Debug("  %s: %.3f", c.label, c.score)
		if c.score >= minConfidence && top-c.score <= scoreMargin+scoreEpsilon {
			categories = append(categories, c.label)
			details = append(details, domain.IntentDetail{Category: c.label, Score: c.score})
		}
	}

	if len(categories) == 0 {
		logger.Debug("No category passed min confidence %.2f (top %.3f)", minConfidence, top)
		return domain.FallbackIntent(), nil
	}

	return domain.IntentResult{
		Method:     domain.MethodML,
		Categories: categories,
		Confidence: top,
		Details:    details,
	}, nil
}
