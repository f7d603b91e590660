// Package socialproof appends a credibility line chosen by the detected topic family.
package socialproof

import (
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Stage appends social proof. It implements driven.EnhancementStage.
type Stage struct{}

// New creates a social proof stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return domain.StageSocialProof
}

// Apply appends one line for the first category in the service, career or
// company family. Case studies and unknown families get nothing.
func (s *Stage) Apply(reply string, ec *driven.EnhancementContext) string {
	if ec == nil || ec.Intent == nil {
		return reply
	}

	for _, c := range ec.Intent.Categories {
		lines := Lines(domain.FamilyOf(c))
		if lines == nil {
			continue
		}
		i := 0
		if ec.Selector != nil {
			i = ec.Selector.Intn(len(lines))
		}
		return reply + "\n\n" + lines[i]
	}
	return reply
}

// Lines returns the social proof variants for a family.
func Lines(f domain.Family) []string {
	switch f {
	case domain.FamilyService:
		return []string{
			"✨ *Trusted by 100+ businesses across various industries*",
			"🏆 *Award-winning digital transformation partner*",
			"📈 *Average 40% efficiency improvement for our clients*",
		}
	case domain.FamilyCareer:
		return []string{
			"🌟 *Rated as 'Great Place to Work' by our employees*",
			"📚 *Comprehensive training and career development programs*",
			"🤝 *Collaborative and inclusive work environment*",
		}
	case domain.FamilyCompany:
		return []string{
			"🚀 *8+ years of digital innovation excellence*",
			"🌍 *Serving clients globally with local expertise*",
			"💡 *Leading digital transformation thought leadership*",
		}
	default:
		return nil
	}
}
