// Package huggingface provides a zero-shot classifier backed by the
// Hugging Face inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.ZeroShotClassifier = (*Classifier)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Hugging Face classifier.
type Config struct {
	// APIKey is the Hugging Face access token (required).
	APIKey string

	// BaseURL is the models endpoint; the model name is appended to it.
	BaseURL string

	// Model is the NLI model (default: valhalla/distilbart-mnli-12-1).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Classifier scores text against candidate labels with a remote NLI model.
type Classifier struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// legacyResponse is the api-inference shape: parallel label and score lists.
type legacyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// labelScore is one entry of the router shape: a list of label/score pairs.
type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClassifier creates a new Hugging Face zero-shot classifier.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("huggingface: API token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = domain.DefaultClassifierModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Classifier{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/" + cfg.Model,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
	}, nil
}

// Classify scores text against every label. Scores are a softmax over the
// candidate labels and are returned in descending order.
func (c *Classifier) Classify(ctx context.Context, text string, labels []string) (driven.Classification, error) {
	if len(labels) == 0 {
		return driven.Classification{}, nil
	}

	body, status, err := c.post(ctx, classifyRequest{
		Inputs:     text,
		Parameters: classifyParameters{CandidateLabels: labels},
	})
	if err != nil {
		return driven.Classification{}, err
	}
	if status != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return driven.Classification{}, fmt.Errorf("huggingface: %s", apiErr.Error)
		}
		return driven.Classification{}, fmt.Errorf("huggingface: API returned status %d: %s", status, string(body))
	}

	result, err := decodeClassification(body)
	if err != nil {
		return driven.Classification{}, err
	}
	if result.Len() == 0 {
		return driven.Classification{}, errors.New("huggingface: empty classification returned")
	}
	sortDescending(&result)
	return result, nil
}

func (c *Classifier) post(ctx context.Context, payload classifyRequest) ([]byte, int, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("huggingface: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, fmt.Errorf("huggingface: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("huggingface: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("huggingface: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// decodeClassification accepts both response shapes the inference API uses.
func decodeClassification(body []byte) (driven.Classification, error) {
	var pairs []labelScore
	if err := json.Unmarshal(body, &pairs); err == nil {
		out := driven.Classification{
			Labels: make([]string, len(pairs)),
			Scores: make([]float64, len(pairs)),
		}
		for i, p := range pairs {
			out.Labels[i] = p.Label
			out.Scores[i] = p.Score
		}
		return out, nil
	}

	var legacy legacyResponse
	if err := json.Unmarshal(body, &legacy); err != nil {
		return driven.Classification{}, fmt.Errorf("huggingface: decode response: %w", err)
	}
	if len(legacy.Labels) != len(legacy.Scores) {
		return driven.Classification{}, fmt.Errorf("huggingface: %d labels but %d scores",
			len(legacy.Labels), len(legacy.Scores))
	}
	return driven.Classification{Labels: legacy.Labels, Scores: legacy.Scores}, nil
}

func sortDescending(c *driven.Classification) {
	idx := make([]int, c.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return c.Scores[idx[a]] > c.Scores[idx[b]] })

	labels := make([]string, len(idx))
	scores := make([]float64, len(idx))
	for i, j := range idx {
		labels[i] = c.Labels[j]
		scores[i] = c.Scores[j]
	}
	c.Labels, c.Scores = labels, scores
}

// ModelName returns the name of the classification model.
func (c *Classifier) ModelName() string {
	return c.model
}

// Ping runs a minimal classification to verify the token and model.
func (c *Classifier) Ping(ctx context.Context) error {
	if _, err := c.Classify(ctx, "ping", []string{"ping"}); err != nil {
		return fmt.Errorf("huggingface: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (c *Classifier) Close() error {
	return nil
}
