package driven

// PromptStore loads prompt templates by name.
// Callers fall back to a built-in template when Load fails.
type PromptStore interface {
	Load(name string) (string, error)

	// Reload drops cached templates so edited files are read again.
	Reload()
}

// Prompt names.
const (
	// PromptPersona opens every grounding prompt.
	// Placeholders: {bot_name}, {company}.
	PromptPersona = "persona"

	// PromptCompanyContext describes the company to the model.
	// Placeholders: {company}, {description}, {tagline}, {services},
	// {sales_email}, {support_email}.
	PromptCompanyContext = "company_context"
)
