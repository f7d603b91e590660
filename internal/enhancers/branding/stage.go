// Package branding appends the company tagline and credibility statement.
package branding

import (
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// DefaultProbability is the chance the tagline is appended.
const DefaultProbability = 0.3

// Stage appends branding lines. It implements driven.EnhancementStage.
type Stage struct {
	probability float64
}

// Option configures the stage.
type Option func(*Stage)

// WithProbability sets the chance of appending the tagline.
func WithProbability(p float64) Option {
	return func(s *Stage) {
		if p >= 0 && p <= 1 {
			s.probability = p
		}
	}
}

// New creates a branding stage.
func New(opts ...Option) *Stage {
	s := &Stage{probability: DefaultProbability}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return domain.StageBranding
}

// Apply appends the tagline with the configured probability, then a
// credibility statement when any detected category is service related.
func (s *Stage) Apply(reply string, ec *driven.EnhancementContext) string {
	if ec == nil {
		return reply
	}
	c := ec.Company

	if c.Tagline != "" && ec.Selector != nil && ec.Selector.Float64() < s.probability {
		reply += "\n\n*" + c.Name + ": " + c.Tagline + "*"
	}

	if ec.Intent != nil && ec.Intent.HasFamily(domain.FamilyService) {
		reply += "\n\n💡 *" + Credibility(c) + "*"
	}
	return reply
}

// Credibility returns the company's credibility statement.
func Credibility(c domain.Company) string {
	if s := strings.TrimSpace(c.Credibility); s != "" {
		return s
	}
	return "With 8+ years of digital transformation expertise, " + c.Name + " has helped 100+ businesses achieve their goals."
}
