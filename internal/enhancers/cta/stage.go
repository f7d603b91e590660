// Package cta appends one call-to-action chosen by the detected topic family.
package cta

import (
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// DefaultCandidates is how many of a family's actions are eligible for selection.
const DefaultCandidates = 2

// Separator goes between the reply and the call-to-action.
const Separator = "\n\n---\n\n"

// Stage appends calls-to-action. It implements driven.EnhancementStage.
type Stage struct {
	candidates int
}

// Option configures the stage.
type Option func(*Stage)

// WithCandidates limits selection to the first n actions of a family.
func WithCandidates(n int) Option {
	return func(s *Stage) {
		if n > 0 {
			s.candidates = n
		}
	}
}

// New creates a call-to-action stage.
func New(opts ...Option) *Stage {
	s := &Stage{candidates: DefaultCandidates}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return domain.StageCTA
}

// Apply appends one action for the first category that belongs to the
// service, career or case-study family. Other families get nothing.
func (s *Stage) Apply(reply string, ec *driven.EnhancementContext) string {
	if ec == nil || ec.Intent == nil {
		return reply
	}

	var actions []string
	for _, c := range ec.Intent.Categories {
		if actions = Actions(domain.FamilyOf(c), ec.Company); actions != nil {
			break
		}
	}
	if actions == nil {
		return reply
	}

	n := min(s.candidates, len(actions))
	i := 0
	if ec.Selector != nil {
		i = ec.Selector.Intn(n)
	}
	return reply + Separator + actions[i]
}

// Actions returns a family's calls-to-action, most relevant first.
func Actions(f domain.Family, company domain.Company) []string {
	switch f {
	case domain.FamilyService:
		return []string{
			"📞 **Ready to discuss your project?** Contact our sales team at " + company.Contacts.SalesEmail,
			"📋 **Want to see similar projects?** Check out our case studies",
			"💬 **Need a custom solution?** Let's schedule a consultation",
		}
	case domain.FamilyCareer:
		return []string{
			"💼 **Ready to apply?** Send your resume to " + company.CareersEmail(),
			"🌟 **Learn about our culture:** Visit our careers page",
			"📝 **Current openings:** Check our latest job postings",
		}
	case domain.FamilyCase:
		return []string{
			"🎯 **Interested in similar results?** Let's discuss your requirements",
			"📈 **Want to see more examples?** Browse our complete case studies",
			"💡 **Have a similar challenge?** Get a free consultation",
		}
	default:
		return nil
	}
}
