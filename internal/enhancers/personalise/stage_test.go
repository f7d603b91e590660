package personalise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

func apply(reply string, p *domain.UserProfile) string {
	return New().Apply(reply, &driven.EnhancementContext{Profile: p})
}

func TestStage_Name(t *testing.T) {
	assert.Equal(t, "personalise", New().Name())
}

func TestStage_NoProfile(t *testing.T) {
	assert.Equal(t, "Hello there.", apply("Hello there.", nil))
	assert.Equal(t, "Hello there.", New().Apply("Hello there.", nil))
}

func TestStage_Greeting(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"splices after Hello", "Hello, we build chatbots.", "Hello Priya, we build chatbots."},
		{"splices after Hi", "Hi! We build chatbots.", "Hi Priya! We build chatbots."},
		{"prepends otherwise", "We build chatbots.", "Hi Priya! We build chatbots."},
		{"word starting with Hi is not a greeting", "Hiring is open.", "Hi Priya! Hiring is open."},
		{"name already present", "Thanks priya, we build chatbots.", "Thanks priya, we build chatbots."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apply(tt.reply, &domain.UserProfile{Name: "Priya"}))
		})
	}
}

func TestStage_Framing(t *testing.T) {
	tests := []struct {
		name     string
		userType domain.UserType
		reply    string
		contains string
		absent   bool
	}{
		{"client", domain.UserTypePotentialClient, "We build chatbots.", "help your company grow", false},
		{"client keyword present", domain.UserTypePotentialClient, "Your business needs chatbots.", "help your company grow", true},
		{"job seeker", domain.UserTypeJobSeeker, "We are hiring.", "career opportunities", false},
		{"job seeker keyword present", domain.UserTypeJobSeeker, "Our Career page lists roles.", "current openings", true},
		{"information seeker", domain.UserTypeInformationSeeker, "We were founded in 2016.", "learn more", false},
		{"general", domain.UserTypeGeneral, "We build chatbots.", "\n\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.reply, &domain.UserProfile{UserType: tt.userType})
			assert.Contains(t, got, tt.reply)
			if tt.absent {
				assert.NotContains(t, got, tt.contains)
			} else {
				assert.Contains(t, got, tt.contains)
			}
		})
	}
}

func TestStage_NeverShortens(t *testing.T) {
	reply := "Hello, here is what we offer."
	got := apply(reply, &domain.UserProfile{Name: "Sam", UserType: domain.UserTypePotentialClient})

	assert.GreaterOrEqual(t, len(got), len(reply))
	assert.Contains(t, got, ", here is what we offer.")
}
