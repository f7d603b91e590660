package mcp

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	session *domain.Session
	turn    *domain.Turn
	turns   []domain.Turn
	err     error

	started   int
	askedWith string
}

func (m *mockSessionService) Start(_ context.Context, _ domain.UserProfile) (*domain.Session, error) {
	m.started++
	return m.session, m.err
}

func (m *mockSessionService) Get(_ string) (*domain.Session, error) {
	return m.session, m.err
}

func (m *mockSessionService) Ask(_ context.Context, id, _ string) (*domain.Turn, error) {
	m.askedWith = id
	return m.turn, m.err
}

func (m *mockSessionService) UpdateProfile(_ string, _ domain.UserProfile) error {
	return m.err
}

func (m *mockSessionService) Stats(_ context.Context, _ string) (*domain.SessionStats, error) {
	return nil, m.err
}

func (m *mockSessionService) Transcript(_ context.Context, _ string) ([]domain.Turn, error) {
	return m.turns, m.err
}

func (m *mockSessionService) End(_ context.Context, _ string) error {
	return m.err
}

// mockIntentDetector is a mock implementation of driving.IntentDetector.
type mockIntentDetector struct {
	result domain.IntentResult
}

func (m *mockIntentDetector) Detect(_ context.Context, _ string) domain.IntentResult {
	return m.result
}

// mockRanker is a mock implementation of driving.DocumentRanker.
type mockRanker struct {
	docs       []domain.RankedDocument
	issues     []domain.Issue
	err        error
	partitions []string
}

func (m *mockRanker) Rank(
	_ context.Context, _ string, partitions []string,
) ([]domain.RankedDocument, []domain.Issue, error) {
	m.partitions = partitions
	return m.docs, m.issues, m.err
}

// mockInsightService is a mock implementation of driving.InsightService.
type mockInsightService struct {
	followups []string
}

func (m *mockInsightService) AnalyzeJourney(_ []domain.IntentResult) domain.Journey {
	return domain.Journey{}
}

func (m *mockInsightService) SuggestFollowups(_ domain.IntentResult) []string {
	return m.followups
}

func (m *mockInsightService) ClassifyUserType(_ domain.UserProfile, _ []string) domain.UserType {
	return domain.UserTypeGeneral
}

func (m *mockInsightService) ConversationStarter(_ domain.UserProfile) string {
	return ""
}

func (m *mockInsightService) SuggestNextQuestions(_ []string) []string {
	return nil
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	stats []domain.PartitionStats
	err   error
}

func (m *mockCorpusService) Stats() ([]domain.PartitionStats, error) {
	return m.stats, m.err
}

func (m *mockCorpusService) Validate(_ context.Context) ([]domain.Problem, error) {
	return nil, m.err
}

func (m *mockCorpusService) SearchKeywords(_ context.Context, _ []string) ([]domain.KeywordHit, error) {
	return nil, m.err
}

func (m *mockCorpusService) Summary(content string) string {
	return content
}

func testCatalogue() *domain.Catalogue {
	c, err := domain.NewCatalogue([]domain.Category{
		{Name: "ai_services", Partition: "ai_services", Keywords: []string{"ai", "machine learning"}},
		{Name: "careers", Partition: "careers", Keywords: []string{"job", "hiring"}},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func testPorts() *Ports {
	return &Ports{
		Sessions: &mockSessionService{},
		Intents:  &mockIntentDetector{},
	}
}
