// Package urgency nudges prospective clients who are in a hurry.
package urgency

import (
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Lines appended by the stage.
const (
	FastTrack = "⚡ **Fast-track available:** We can prioritize your project for immediate start."
	ActNow    = "🎯 **Act now:** This consultation offer is available for a limited time."
)

var (
	urgentTimelines = []string{"asap", "urgent"}
	offerPhrases    = []string{"limited time", "offer", "discount"}
)

// Stage appends urgency lines for potential clients. It implements
// driven.EnhancementStage.
type Stage struct{}

// New creates an urgency stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return domain.StageUrgency
}

// Apply appends FastTrack when the visitor is a potential client with an
// urgent timeline, or ActNow when the reply already mentions an offer.
func (s *Stage) Apply(reply string, ec *driven.EnhancementContext) string {
	if ec == nil || ec.Profile == nil || ec.Profile.UserType != domain.UserTypePotentialClient {
		return reply
	}

	timeline := strings.ToLower(ec.Profile.Timeline)
	if containsAny(timeline, urgentTimelines) {
		return reply + "\n\n" + FastTrack
	}
	if containsAny(strings.ToLower(reply), offerPhrases) {
		return reply + "\n\n" + ActNow
	}
	return reply
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
