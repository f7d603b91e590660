package driven

import "github.com/custodia-labs/concierge/internal/core/domain"

// EnhancementStage transforms a generated reply.
// Stages are chained in a pipeline (personalisation, calls-to-action, branding, formatting).
// A stage may append text or substitute a greeting but must never remove content.
type EnhancementStage interface {
	// Name returns the stage name for logging and configuration.
	Name() string

	// Apply returns the transformed reply.
	Apply(reply string, ec *EnhancementContext) string
}

// EnhancementContext carries everything a stage may consult.
// Intent and Profile are optional.
type EnhancementContext struct {
	Intent   *domain.IntentResult
	Profile  *domain.UserProfile
	Company  domain.Company
	Selector Selector
}

// Selector chooses between variants.
// Production uses a seeded generator; tests inject fixed choices.
type Selector interface {
	// Intn returns a value in [0, n). n must be positive.
	Intn(n int) int

	// Float64 returns a value in [0, 1).
	Float64() float64
}
