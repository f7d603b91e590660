package urgency

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

func TestStage_Name(t *testing.T) {
	assert.Equal(t, domain.StageUrgency, New().Name())
}

func TestStage_Apply(t *testing.T) {
	client := domain.UserTypePotentialClient
	tests := []struct {
		name    string
		reply   string
		profile *domain.UserProfile
		want    string
	}{
		{"urgent timeline", "Answer.", &domain.UserProfile{UserType: client, Timeline: "ASAP please"},
			"Answer.\n\n" + FastTrack},
		{"urgent wording", "Answer.", &domain.UserProfile{UserType: client, Timeline: "it's urgent"},
			"Answer.\n\n" + FastTrack},
		{"offer in reply", "We have a Discount this month.", &domain.UserProfile{UserType: client},
			"We have a Discount this month.\n\n" + ActNow},
		{"relaxed client", "Answer.", &domain.UserProfile{UserType: client, Timeline: "next quarter"}, "Answer."},
		{"job seeker", "Answer.", &domain.UserProfile{UserType: domain.UserTypeJobSeeker, Timeline: "asap"}, "Answer."},
		{"no profile", "Answer.", nil, "Answer."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().Apply(tt.reply, &driven.EnhancementContext{Profile: tt.profile})
			assert.Equal(t, tt.want, got)
		})
	}
}
