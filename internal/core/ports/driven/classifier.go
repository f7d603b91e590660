package driven

import "context"

// ZeroShotClassifier scores text against labels it was not trained on.
// Implementations must be safe for concurrent use.
type ZeroShotClassifier interface {
	// Classify scores text against every candidate label.
	Classify(ctx context.Context, text string, labels []string) (Classification, error)

	// ModelName returns the name of the classification model.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Classification is the result of zero-shot classification.
// Labels are ordered by descending score; Scores is parallel to Labels.
type Classification struct {
	Labels []string
	Scores []float64
}

// Len returns the number of scored labels.
func (c Classification) Len() int {
	if len(c.Scores) < len(c.Labels) {
		return len(c.Scores)
	}
	return len(c.Labels)
}
