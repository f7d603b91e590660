package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Ensure PromptService implements the interface.
var _ driving.PromptAssembler = (*PromptService)(nil)

// DefaultPersonaPrompt opens every grounding prompt.
// Placeholders: {bot_name}, {company}.
const DefaultPersonaPrompt = `You are {bot_name}, a professional business assistant at {company}.

Your role:
- Answer user questions clearly, concisely, and accurately using company-provided data
- Maintain a helpful, professional, and business-appropriate tone
- If unsure about specific details, acknowledge limitations and offer to connect with human experts
- Always include relevant resource links when available
- Focus on providing value to the user`

// DefaultCompanyContextPrompt describes the company to the model.
// Placeholders: {company}, {description}, {tagline}, {services}, {sales_email}, {support_email}.
const DefaultCompanyContextPrompt = `Company Context:
- {company}: {description}
- Tagline: {tagline}
- Services: {services}
- Contact: {sales_email} for sales, {support_email} for support`

// responseInstruction closes every grounding prompt.
const responseInstruction = "Provide a helpful, accurate response:"

// PromptService assembles grounding prompts for the generative backend.
type PromptService struct {
	company     domain.Company
	promptStore driven.PromptStore
}

// NewPromptService creates a new prompt assembler.
func NewPromptService(company domain.Company) *PromptService {
	return &PromptService{company: company}
}

// SetPromptStore sets the prompt store for loading customisable templates.
// If not set, the built-in templates are used.
func (s *PromptService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Build concatenates, in fixed order: persona, company context, user context
// (if a profile is given), detected intent (if given), and the question.
func (s *PromptService) Build(utterance string, profile *domain.UserProfile, intent *domain.IntentResult) string {
	var b strings.Builder

	b.WriteString(s.render(driven.PromptPersona, DefaultPersonaPrompt))
	b.WriteString("\n\n")
	b.WriteString(s.render(driven.PromptCompanyContext, DefaultCompanyContextPrompt))

	if profile != nil {
		b.WriteString("\n\nUser Context:\n")
		b.WriteString(UserContext(*profile))
	}

	if intent != nil {
		b.WriteString("\n\nDetected Intent:\n")
		b.WriteString(IntentContext(*intent))
	}

	b.WriteString("\n\nUser Question: ")
	b.WriteString(utterance)
	b.WriteString("\n\n")
	b.WriteString(responseInstruction)

	return b.String()
}

// UserContext renders the profile fields that are present, one per line.
func UserContext(p domain.UserProfile) string {
	var lines []string
	if p.Name != "" {
		lines = append(lines, "- User name: "+p.Name)
	}
	if p.Email != "" {
		lines = append(lines, "- Email domain: "+p.EmailDomain())
	}
	if p.UserType != "" {
		lines = append(lines, "- User type: "+p.UserType.String())
	}
	if p.CompanySize != "" {
		lines = append(lines, "- Company size: "+p.CompanySize)
	}
	if p.Interest != "" {
		lines = append(lines, "- Interested in: "+p.Interest)
	}
	if len(lines) == 0 {
		return "- New user interaction"
	}
	return strings.Join(lines, "\n")
}

// IntentContext renders the top two categories, the method and the confidence.
func IntentContext(r domain.IntentResult) string {
	var lines []string
	if top := r.Top(2); len(top) > 0 {
		lines = append(lines, "- Primary topics: "+strings.Join(top, ", "))
	}
	if r.Method != "" {
		lines = append(lines, "- Detection method: "+r.Method.String())
	}
	lines = append(lines, fmt.Sprintf("- Confidence: %.2f", r.RoundedConfidence()))
	return strings.Join(lines, "\n")
}

// render loads a template and fills in company placeholders.
func (s *PromptService) render(name, fallback string) string {
	tmpl := fallback
	if s.promptStore != nil {
		if loaded, err := s.promptStore.Load(name); err == nil && loaded != "" {
			tmpl = loaded
		}
	}

	c := s.company
	r := strings.NewReplacer(
		"{bot_name}", c.BotName,
		"{company}", c.Name,
		"{description}", c.Description,
		"{tagline}", c.Tagline,
		"{services}", strings.Join(c.Services, ", "),
		"{sales_email}", c.Contacts.SalesEmail,
		"{support_email}", c.Contacts.SupportEmail,
	)
	return r.Replace(tmpl)
}

// DefaultPrompts returns the built-in templates keyed by prompt name,
// used to seed user-editable prompt files.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptPersona:        DefaultPersonaPrompt,
		driven.PromptCompanyContext: DefaultCompanyContextPrompt,
	}
}
