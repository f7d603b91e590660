package enhancers

import (
	"fmt"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/enhancers/branding"
	"github.com/custodia-labs/concierge/internal/enhancers/cta"
	"github.com/custodia-labs/concierge/internal/enhancers/format"
	"github.com/custodia-labs/concierge/internal/enhancers/personalise"
	"github.com/custodia-labs/concierge/internal/enhancers/socialproof"
	"github.com/custodia-labs/concierge/internal/enhancers/urgency"
)

// RegisterDefaults registers all built-in stages with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(domain.StagePersonalise, func(map[string]any) (driven.EnhancementStage, error) {
		return personalise.New(), nil
	})
	r.Register(domain.StageCTA, func(cfg map[string]any) (driven.EnhancementStage, error) {
		var opts []cta.Option
		if n := getIntFromConfig(cfg, "candidates"); n > 0 {
			opts = append(opts, cta.WithCandidates(n))
		}
		return cta.New(opts...), nil
	})
	r.Register(domain.StageBranding, buildBranding)
	r.Register(domain.StageFormat, func(map[string]any) (driven.EnhancementStage, error) {
		return format.New(), nil
	})
	r.Register(domain.StageSocialProof, func(map[string]any) (driven.EnhancementStage, error) {
		return socialproof.New(), nil
	})
	r.Register(domain.StageUrgency, func(map[string]any) (driven.EnhancementStage, error) {
		return urgency.New(), nil
	})
}

// buildBranding creates the branding stage.
// Supported config keys:
//   - probability (float): chance of appending the tagline (default: 0.3)
func buildBranding(cfg map[string]any) (driven.EnhancementStage, error) {
	var opts []branding.Option
	if p, ok := getFloatFromConfig(cfg, "probability"); ok {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("branding probability must be within [0, 1], got %v", p)
		}
		opts = append(opts, branding.WithProbability(p))
	}
	return branding.New(opts...), nil
}

// BuildPipeline assembles the configured stages in order.
func BuildPipeline(
	r *Registry, settings domain.EnhancerSettings, company domain.Company, selector driven.Selector,
) (*Pipeline, error) {
	if selector == nil {
		selector = NewSelector(settings.Seed)
	}

	configs := map[string]map[string]any{
		domain.StageBranding: {"probability": settings.BrandingProbability},
	}

	p := NewPipeline(company, selector)
	for _, name := range settings.Stages {
		stage, err := r.Build(name, configs[name])
		if err != nil {
			return nil, err
		}
		p.Add(stage)
	}
	return p, nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64 and float64 as decoded from TOML or JSON.
func getIntFromConfig(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig extracts a float from a generic config map.
func getFloatFromConfig(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
