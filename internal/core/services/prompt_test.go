package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

func TestPromptService_Build_IsDeterministic(t *testing.T) {
	svc := NewPromptService(testCompany())
	profile := &domain.UserProfile{Name: "Asha", Email: "asha@acme.io", UserType: domain.UserTypePotentialClient}
	intent := &domain.IntentResult{Method: domain.MethodKeyword, Categories: []string{catServices}, Confidence: 1}

	first := svc.Build("What do you offer?", profile, intent)
	second := svc.Build("What do you offer?", profile, intent)

	assert.Equal(t, first, second)
}

func TestPromptService_Build_SectionOrder(t *testing.T) {
	svc := NewPromptService(testCompany())
	profile := &domain.UserProfile{Name: "Asha"}
	intent := &domain.IntentResult{Method: domain.MethodML, Categories: []string{catCases}, Confidence: 0.623}

	prompt := svc.Build("Show me your work", profile, intent)

	markers := []string{
		"You are Chetan, a professional business assistant at Sundew Solutions.",
		"Company Context:",
		"User Context:\n- User name: Asha",
		"Detected Intent:\n- Primary topics: " + catCases,
		"- Detection method: ml",
		"- Confidence: 0.62",
		"User Question: Show me your work",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(prompt, m)
		assert.Greater(t, idx, last, "marker %q out of order", m)
		last = idx
	}
	assert.True(t, strings.HasSuffix(prompt, "Provide a helpful, accurate response:"))
}

func TestPromptService_Build_OmitsAbsentSections(t *testing.T) {
	svc := NewPromptService(testCompany())

	prompt := svc.Build("Hello", nil, nil)

	assert.NotContains(t, prompt, "User Context:")
	assert.NotContains(t, prompt, "Detected Intent:")
	assert.Contains(t, prompt, "User Question: Hello")
}

func TestPromptService_Build_CompanyPlaceholders(t *testing.T) {
	svc := NewPromptService(testCompany())

	prompt := svc.Build("q", nil, nil)

	assert.Contains(t, prompt, "- Sundew Solutions: Digital transformation company")
	assert.Contains(t, prompt, "- Tagline: Digital First. Digital Fast.")
	assert.Contains(t, prompt, "- Services: AI/Automation, Custom Development")
	assert.Contains(t, prompt, "sales@sundewsolutions.com for sales, support@sundewsolutions.com for support")
	assert.NotContains(t, prompt, "{")
}

func TestPromptService_Build_UsesPromptStore(t *testing.T) {
	svc := NewPromptService(testCompany())
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptPersona: "I am {bot_name} from {company}.",
	}})

	prompt := svc.Build("q", nil, nil)

	assert.True(t, strings.HasPrefix(prompt, "I am Chetan from Sundew Solutions.\n\nCompany Context:"))
}

func TestPromptService_Build_EmptyStoredPromptUsesDefault(t *testing.T) {
	svc := NewPromptService(testCompany())
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{driven.PromptPersona: ""}})

	prompt := svc.Build("q", nil, nil)

	assert.Contains(t, prompt, "You are Chetan")
}

func TestUserContext(t *testing.T) {
	tests := []struct {
		name    string
		profile domain.UserProfile
		want    string
	}{
		{"empty", domain.UserProfile{}, "- New user interaction"},
		{"name only", domain.UserProfile{Name: "Ravi"}, "- User name: Ravi"},
		{
			"email shows domain only",
			domain.UserProfile{Email: "ravi@bank.com"},
			"- Email domain: bank.com",
		},
		{
			"all fields",
			domain.UserProfile{
				Name: "Ravi", Email: "ravi@bank.com", UserType: domain.UserTypeJobSeeker,
				CompanySize: "50-200", Interest: "AI",
			},
			"- User name: Ravi\n- Email domain: bank.com\n- User type: job_seeker\n" +
				"- Company size: 50-200\n- Interested in: AI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserContext(tt.profile))
		})
	}
}

func TestIntentContext_TopTwoCategories(t *testing.T) {
	intent := domain.IntentResult{
		Method:     domain.MethodKeyword,
		Categories: []string{catCareers, catServices, catBlog},
		Confidence: 1,
	}

	got := IntentContext(intent)

	assert.Equal(t, "- Primary topics: "+catCareers+", "+catServices+
		"\n- Detection method: keyword\n- Confidence: 1.00", got)
}

func TestDefaultPrompts(t *testing.T) {
	prompts := DefaultPrompts()

	assert.Equal(t, DefaultPersonaPrompt, prompts[driven.PromptPersona])
	assert.Equal(t, DefaultCompanyContextPrompt, prompts[driven.PromptCompanyContext])
}
