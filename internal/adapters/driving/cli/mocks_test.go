package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// Mock implementations for CLI tests

type mockSessionService struct {
	mu       sync.Mutex
	started  []domain.UserProfile
	asked    []string
	ended    []string
	askErr   error
	startErr error
	// limit makes Ask fail with ErrSessionLimit after this many turns.
	limit int
}

func (m *mockSessionService) Start(_ context.Context, profile domain.UserProfile) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.started = append(m.started, profile)
	return &domain.Session{ID: "session-1", Profile: profile, Status: domain.SessionActive}, nil
}

func (m *mockSessionService) Get(id string) (*domain.Session, error) {
	return &domain.Session{ID: id, Status: domain.SessionActive}, nil
}

func (m *mockSessionService) Ask(_ context.Context, id, utterance string) (*domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.askErr != nil {
		return nil, m.askErr
	}
	if m.limit > 0 && len(m.asked) >= m.limit {
		return nil, domain.ErrSessionLimit
	}
	m.asked = append(m.asked, utterance)
	return &domain.Turn{
		SessionID: id,
		Number:    len(m.asked),
		Utterance: utterance,
		Reply:     "We build AI systems for startups.",
		Source:    domain.ReplyGenerated,
		Intent: domain.IntentResult{
			Method:     domain.MethodKeyword,
			Categories: []string{"ai_services"},
			Confidence: 1,
		},
		Documents: []string{"ai_services/overview"},
		Duration:  120 * time.Millisecond,
	}, nil
}

func (m *mockSessionService) UpdateProfile(string, domain.UserProfile) error { return nil }

func (m *mockSessionService) Stats(_ context.Context, id string) (*domain.SessionStats, error) {
	return &domain.SessionStats{SessionID: id}, nil
}

func (m *mockSessionService) Transcript(context.Context, string) ([]domain.Turn, error) {
	return nil, nil
}

func (m *mockSessionService) End(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = append(m.ended, id)
	return nil
}

type mockIntentDetector struct {
	result domain.IntentResult
}

func (m *mockIntentDetector) Detect(context.Context, string) domain.IntentResult {
	return m.result
}

type mockRanker struct {
	partitions []string
	docs       []domain.RankedDocument
	issues     []domain.Issue
	err        error
}

func (m *mockRanker) Rank(_ context.Context, _ string, partitions []string) ([]domain.RankedDocument, []domain.Issue, error) {
	m.partitions = partitions
	return m.docs, m.issues, m.err
}

type mockInsightService struct{}

func (m *mockInsightService) AnalyzeJourney([]domain.IntentResult) domain.Journey {
	return domain.Journey{}
}

func (m *mockInsightService) SuggestFollowups(domain.IntentResult) []string {
	return []string{"What industries do you work with?"}
}

func (m *mockInsightService) ClassifyUserType(domain.UserProfile, []string) domain.UserType {
	return domain.UserTypeGeneral
}

func (m *mockInsightService) ConversationStarter(domain.UserProfile) string {
	return "Hi, how can I help?"
}

func (m *mockInsightService) SuggestNextQuestions([]string) []string { return nil }

type mockCorpusService struct {
	stats    []domain.PartitionStats
	problems []domain.Problem
	hits     []domain.KeywordHit
	err      error
}

func (m *mockCorpusService) Stats() ([]domain.PartitionStats, error) {
	return m.stats, m.err
}

func (m *mockCorpusService) Validate(context.Context) ([]domain.Problem, error) {
	return m.problems, m.err
}

func (m *mockCorpusService) SearchKeywords(context.Context, []string) ([]domain.KeywordHit, error) {
	return m.hits, m.err
}

func (m *mockCorpusService) Summary(content string) string {
	if len(content) > 20 {
		return content[:20] + "..."
	}
	return content
}

type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]any
	validateErr error
	pingErr     error
	embedding   []string
	llm         []string
	classifier  []string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetClassifierProvider(provider domain.AIProvider, model, apiKey string) error {
	m.classifier = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	if m.set == nil {
		m.set = make(map[string]any)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateClassifierConfig() error { return m.pingErr }

type mockActive struct{ n int }

func (m mockActive) Active() int { return m.n }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	sessions *mockSessionService
	intents  *mockIntentDetector
	ranker   *mockRanker
	corpus   *mockCorpusService
	settings *mockSettingsService
}

func testCatalogue() *domain.Catalogue {
	c, err := domain.NewCatalogue([]domain.Category{
		{Name: "ai_services", Partition: "ai_services", Keywords: []string{"ai"}},
		{Name: "careers", Partition: "careers", Keywords: []string{"job"}},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// setupTestServices installs mock services and returns a restore function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		sessions: &mockSessionService{},
		intents: &mockIntentDetector{result: domain.IntentResult{
			Method:     domain.MethodKeyword,
			Categories: []string{"ai_services"},
			Confidence: 1,
			Details:    []domain.IntentDetail{{Category: "ai_services", Keyword: "ai"}},
		}},
		ranker: &mockRanker{docs: []domain.RankedDocument{{
			Document: domain.Document{ID: "overview", Partition: "ai_services", Content: "We build AI systems for startups."},
			Score:    0.82,
		}}},
		corpus:   &mockCorpusService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}

	SetServices(&Services{
		Sessions:  ts.sessions,
		Intents:   ts.intents,
		Ranker:    ts.ranker,
		Insights:  &mockInsightService{},
		Corpus:    ts.corpus,
		Settings:  ts.settings,
		Catalogue: testCatalogue(),
		Company: domain.Company{BotName: "Ava", Name: "Acme", Offerings: []domain.Offering{
			{Name: "AI & Automation", Description: "Chatbots and RPA", Keywords: []string{"ai", "chatbot"}},
			{Name: "Cloud & DevOps", Keywords: []string{"cloud"}},
		}},
		Active:    mockActive{n: 1},
	})
	oldTerminal := isTerminal
	isTerminal = func() bool { return false }

	return ts, func() {
		SetServices(&Services{})
		isTerminal = oldTerminal
	}
}

// resetFlags restores command flag variables between executions.
func resetFlags() {
	verbose = false
	chatPlain = false
	chatProfile.reset()
	askJSON = false
	askProfile.reset()
	intentJSON = false
	rankCategories = nil
	rankLimit = 0
	rankJSON = false
	corpusJSON = false
	serveAddr = ""
	mcpAddr = ""
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

var errBoom = errors.New("boom")
