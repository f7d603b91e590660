package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

const (
	// minDocumentLength is the shortest document worth retrieving, in characters.
	minDocumentLength = 50

	// summaryLength caps document summaries, in characters.
	summaryLength = 200
)

// CorpusService inspects the partitions named by the catalogue.
type CorpusService struct {
	catalogue *domain.Catalogue
	reader    driven.CorpusReader
}

// NewCorpusService creates a new corpus service.
func NewCorpusService(catalogue *domain.Catalogue, reader driven.CorpusReader) *CorpusService {
	return &CorpusService{catalogue: catalogue, reader: reader}
}

// Stats summarises every category's partition.
func (s *CorpusService) Stats() ([]domain.PartitionStats, error) {
	categories := s.catalogue.Categories()
	out := make([]domain.PartitionStats, 0, len(categories))
	for _, c := range categories {
		st, err := s.reader.Stat(c.Partition)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", c.Partition, err)
		}
		st.Category = c.Name
		out = append(out, st)
	}
	return out, nil
}

// Validate reads every partition and reports missing partitions, empty
// partitions and documents too short or without text to be useful.
func (s *CorpusService) Validate(ctx context.Context) ([]domain.Problem, error) {
	logger.Section("Corpus Validation")

	var problems []domain.Problem
	for _, partition := range s.partitions() {
		docs, issues, err := s.reader.ReadPartition(ctx, partition)
		if errors.Is(err, domain.ErrNotFound) {
			problems = append(problems, domain.Problem{
				Kind:    domain.ProblemMissingPartition,
				Path:    partition,
				Message: "partition does not exist",
			})
			continue
		}
		if err != nil {
			return problems, fmt.Errorf("read %s: %w", partition, err)
		}

		for _, issue := range issues {
			msg := "file could not be read"
			if issue.Err != nil {
				msg = issue.Err.Error()
			}
			problems = append(problems, domain.Problem{
				Kind:    domain.ProblemUnreadable,
				Path:    issue.Path,
				Message: msg,
			})
		}
		if len(docs) == 0 && len(issues) == 0 {
			problems = append(problems, domain.Problem{
				Kind:    domain.ProblemEmptyPartition,
				Path:    partition,
				Message: "partition has no documents",
			})
		}
		for _, doc := range docs {
			if p, ok := checkDocument(doc); ok {
				problems = append(problems, p)
			}
		}
		logger.Debug("%s: %d documents checked", partition, len(docs))
	}

	logger.Info("Corpus validation found %d problems", len(problems))
	return problems, nil
}

// SearchKeywords returns documents containing any of the words, most relevant first.
// Relevance is the share of words found.
func (s *CorpusService) SearchKeywords(ctx context.Context, words []string) ([]domain.KeywordHit, error) {
	var needles []string
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			needles = append(needles, w)
		}
	}
	if len(needles) == 0 {
		return nil, fmt.Errorf("%w: no keywords", domain.ErrInvalidInput)
	}

	var hits []domain.KeywordHit
	for _, partition := range s.partitions() {
		docs, _, err := s.reader.ReadPartition(ctx, partition)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", partition, err)
		}
		for _, doc := range docs {
			content := strings.ToLower(doc.Content)
			matches := 0
			for _, n := range needles {
				if strings.Contains(content, n) {
					matches++
				}
			}
			if matches > 0 {
				hits = append(hits, domain.KeywordHit{
					Document:  doc,
					Matches:   matches,
					Relevance: float64(matches) / float64(len(needles)),
				})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Relevance > hits[j].Relevance
	})
	return hits, nil
}

// Summary returns whole leading sentences up to 200 characters, or the
// first 200 characters followed by an ellipsis when the first sentence is longer.
func (s *CorpusService) Summary(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= summaryLength {
		return content
	}

	var b strings.Builder
	for _, sentence := range splitSentences(content) {
		next := sentence
		if b.Len() > 0 {
			next = " " + sentence
		}
		if utf8.RuneCountInString(b.String()+next) > summaryLength {
			break
		}
		b.WriteString(next)
	}
	if b.Len() > 0 {
		return b.String()
	}
	return domain.Prefix(content, summaryLength) + "..."
}

// partitions returns every category's partition once, in catalogue order.
func (s *CorpusService) partitions() []string {
	return s.catalogue.Partitions(s.catalogue.Names())
}

func checkDocument(doc domain.Document) (domain.Problem, bool) {
	text := strings.TrimSpace(doc.Content)
	switch {
	case utf8.RuneCountInString(text) < minDocumentLength:
		return domain.Problem{
			Kind:    domain.ProblemTooShort,
			Path:    doc.Path,
			Message: fmt.Sprintf("document has %d characters, want at least %d", utf8.RuneCountInString(text), minDocumentLength),
		}, true
	case strings.IndexFunc(text, unicode.IsLetter) < 0:
		return domain.Problem{
			Kind:    domain.ProblemNoText,
			Path:    doc.Path,
			Message: "document has no alphabetic text",
		}, true
	}
	return domain.Problem{}, false
}

// splitSentences splits on '.', '!' and '?' followed by a space, keeping the punctuation.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' {
				out = append(out, strings.TrimSpace(text[start:i+1]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
