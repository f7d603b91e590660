// Package enhancers provides the response enhancement pipeline and its stages.
package enhancers

import (
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.ResponseEnhancer = (*Pipeline)(nil)

// Pipeline chains enhancement stages and runs them in order.
type Pipeline struct {
	stages   []driven.EnhancementStage
	company  domain.Company
	selector driven.Selector
}

// NewPipeline creates a pipeline that runs the stages in the order provided.
// A nil selector uses a clock-seeded generator.
func NewPipeline(company domain.Company, selector driven.Selector, stages ...driven.EnhancementStage) *Pipeline {
	if selector == nil {
		selector = NewSelector(0)
	}
	return &Pipeline{
		stages:   stages,
		company:  company,
		selector: selector,
	}
}

// Enhance runs every stage over the reply. A blank reply only goes through
// the format stage so nothing is added to an answer that has no content.
func (p *Pipeline) Enhance(reply string, intent *domain.IntentResult, profile *domain.UserProfile) string {
	ec := &driven.EnhancementContext{
		Intent:   intent,
		Profile:  profile,
		Company:  p.company,
		Selector: p.selector,
	}

	blank := strings.TrimSpace(reply) == ""
	for _, stage := range p.stages {
		if blank && stage.Name() != domain.StageFormat {
			continue
		}
		before := len(reply)
		reply = stage.Apply(reply, ec)
		logger.Debug("Enhancer %s: %d -> %d bytes", stage.Name(), before, len(reply))
	}
	return reply
}

// Add appends a stage to the pipeline.
func (p *Pipeline) Add(stage driven.EnhancementStage) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names returns the stage names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
