package httpapi

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

type mockSessionService struct {
	session *domain.Session
	stats   *domain.SessionStats
	turn    *domain.Turn
	turns   []domain.Turn
	err     error

	profile   domain.UserProfile
	utterance string
	ended     string
}

func (m *mockSessionService) Start(_ context.Context, profile domain.UserProfile) (*domain.Session, error) {
	m.profile = profile
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockSessionService) Get(_ string) (*domain.Session, error) {
	if m.session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return m.session, nil
}

func (m *mockSessionService) Ask(_ context.Context, _, utterance string) (*domain.Turn, error) {
	m.utterance = utterance
	return m.turn, m.err
}

func (m *mockSessionService) UpdateProfile(_ string, _ domain.UserProfile) error {
	return m.err
}

func (m *mockSessionService) Stats(_ context.Context, _ string) (*domain.SessionStats, error) {
	return m.stats, m.err
}

func (m *mockSessionService) Transcript(_ context.Context, _ string) ([]domain.Turn, error) {
	return m.turns, m.err
}

func (m *mockSessionService) End(_ context.Context, id string) error {
	m.ended = id
	return m.err
}

type mockIntentDetector struct {
	result domain.IntentResult
}

func (m *mockIntentDetector) Detect(_ context.Context, _ string) domain.IntentResult {
	return m.result
}

type mockRanker struct {
	docs       []domain.RankedDocument
	err        error
	partitions []string
}

func (m *mockRanker) Rank(
	_ context.Context, _ string, partitions []string,
) ([]domain.RankedDocument, []domain.Issue, error) {
	m.partitions = partitions
	return m.docs, nil, m.err
}

type mockInsights struct{}

func (mockInsights) AnalyzeJourney(intents []domain.IntentResult) domain.Journey {
	return domain.Journey{TotalIntents: len(intents)}
}

func (mockInsights) SuggestFollowups(_ domain.IntentResult) []string {
	return []string{"What industries do you serve?"}
}

func (mockInsights) ClassifyUserType(profile domain.UserProfile, utterances []string) domain.UserType {
	if profile.UserType != "" {
		return profile.UserType
	}
	if len(utterances) > 0 {
		return domain.UserTypeJobSeeker
	}
	return domain.UserTypeGeneral
}

func (mockInsights) ConversationStarter(_ domain.UserProfile) string { return "Hello!" }

func (mockInsights) SuggestNextQuestions(utterances []string) []string {
	return []string{"Next after: " + utterances[len(utterances)-1]}
}

type fixedActive int

func (f fixedActive) Active() int { return int(f) }
