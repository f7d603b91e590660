package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// --- Fixtures ---

const (
	catGeneral  = "general information about the company"
	catCareers  = "career opportunities, vacancies, and recruitment"
	catServices = "services offered by the company"
	catCases    = "case studies of past projects"
	catBlog     = "company blog posts"
)

func testCatalogue() *domain.Catalogue {
	c, err := domain.NewCatalogue([]domain.Category{
		{Name: catGeneral, Partition: "General", Keywords: []string{"about the company", "mission"}},
		{Name: catBlog, Partition: "Blog", Keywords: []string{"blog"}},
		{Name: catCareers, Partition: "Careers", Keywords: []string{"vacancy", "job opening", "hiring"}},
		{Name: catCases, Partition: "Case Studies", Keywords: []string{"case study"}},
		{Name: catServices, Partition: "Services", Keywords: []string{"services", "solutions"}},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func testCompany() domain.Company {
	return domain.Company{
		Name:        "Sundew Solutions",
		Tagline:     "Digital First. Digital Fast.",
		BotName:     "Chetan",
		Description: "Digital transformation company",
		Services:    []string{"AI/Automation", "Custom Development"},
		Contacts: domain.Contacts{
			SalesEmail:   "sales@sundewsolutions.com",
			SupportEmail: "support@sundewsolutions.com",
			CareersEmail: "careers@sundewsolutions.com",
		},
	}
}

// unit returns a 2D unit vector whose cosine with [1, 0] is s.
func unit(s float64) []float32 {
	return []float32{float32(s), float32(math.Sqrt(1 - s*s))}
}

// --- Mock implementations ---

// mockClassifier implements driven.ZeroShotClassifier for testing.
type mockClassifier struct {
	scores map[string]float64
	err    error
	block  bool
	panics bool

	mu     sync.Mutex
	calls  int
	labels []string
}

func (m *mockClassifier) Classify(ctx context.Context, prompt string, labels []string) (driven.Classification, error) {
	m.mu.Lock()
	m.calls++
	m.labels = labels
	m.mu.Unlock()

	if m.panics {
		var broken map[string]int
		broken[prompt]++
	}
	if m.block {
		<-ctx.Done()
		return driven.Classification{}, ctx.Err()
	}
	if m.err != nil {
		return driven.Classification{}, m.err
	}

	out := driven.Classification{}
	for label, score := range m.scores {
		out.Labels = append(out.Labels, label)
		out.Scores = append(out.Scores, score)
	}
	sort.Sort(byScore(out))
	return out, nil
}

func (m *mockClassifier) ModelName() string            { return "mock-nli" }
func (m *mockClassifier) Ping(_ context.Context) error { return m.err }
func (m *mockClassifier) Close() error                 { return nil }

type byScore driven.Classification

func (b byScore) Len() int { return len(b.Labels) }
func (b byScore) Less(i, j int) bool {
	if b.Scores[i] == b.Scores[j] {
		return b.Labels[i] < b.Labels[j]
	}
	return b.Scores[i] > b.Scores[j]
}
func (b byScore) Swap(i, j int) {
	b.Labels[i], b.Labels[j] = b.Labels[j], b.Labels[i]
	b.Scores[i], b.Scores[j] = b.Scores[j], b.Scores[i]
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts starting with a key in vectors get that vector; anything else gets query.
type mockEmbeddingService struct {
	query   []float32
	vectors map[string][]float32
	err     error
	errFor  string

	mu    sync.Mutex
	texts []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.errFor != "" && strings.HasPrefix(text, m.errFor) {
		return nil, fmt.Errorf("embedding failed for %s", m.errFor)
	}
	for prefix, v := range m.vectors {
		if strings.HasPrefix(text, prefix) {
			return v, nil
		}
	}
	if m.query != nil {
		return m.query, nil
	}
	return []float32{1, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return 2 }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error                 { return nil }

func (m *mockEmbeddingService) embedded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// mockCorpusReader implements driven.CorpusReader for testing.
// Partitions absent from docs do not exist.
type mockCorpusReader struct {
	docs   map[string][]domain.Document
	issues map[string][]domain.Issue
	errs   map[string]error
	stats  map[string]domain.PartitionStats

	mu    sync.Mutex
	reads []string
}

func (m *mockCorpusReader) ReadPartition(_ context.Context, partition string) ([]domain.Document, []domain.Issue, error) {
	m.mu.Lock()
	m.reads = append(m.reads, partition)
	m.mu.Unlock()

	if err := m.errs[partition]; err != nil {
		return nil, nil, err
	}
	docs, ok := m.docs[partition]
	if !ok {
		return nil, nil, fmt.Errorf("%w: partition %s", domain.ErrNotFound, partition)
	}
	return docs, m.issues[partition], nil
}

func (m *mockCorpusReader) Stat(partition string) (domain.PartitionStats, error) {
	if err := m.errs[partition]; err != nil {
		return domain.PartitionStats{}, err
	}
	if st, ok := m.stats[partition]; ok {
		return st, nil
	}
	return domain.PartitionStats{Partition: partition}, nil
}

func (m *mockCorpusReader) Root() string { return "data" }

func (m *mockCorpusReader) partitionsRead() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reads...)
}

func doc(partition, id, content string) domain.Document {
	return domain.Document{ID: id, Partition: partition, Path: partition + "/" + id, Content: content}
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	reply  string
	err    error
	block  bool
	panics bool

	mu      sync.Mutex
	calls   int
	prompt  string
	docs    []string
	history []domain.Entry
	opts    driven.GenerateOptions
}

func (m *mockLLMService) Generate(
	ctx context.Context, prompt string, docs []string, history []domain.Entry, opts driven.GenerateOptions,
) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompt = prompt
	m.docs = docs
	m.history = history
	m.opts = opts
	m.mu.Unlock()

	if m.panics {
		var broken map[string]int
		broken[prompt]++
	}
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return m.err }
func (m *mockLLMService) Close() error                 { return nil }

// mockMetrics implements driven.Metrics for testing.
type mockMetrics struct {
	mu       sync.Mutex
	intents  []domain.DetectionMethod
	rankings []int
	turns    []domain.ReplySource
}

func (m *mockMetrics) ObserveIntent(method domain.DetectionMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents = append(m.intents, method)
}

func (m *mockMetrics) ObserveRanking(returned, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankings = append(m.rankings, returned)
}

func (m *mockMetrics) ObserveTurn(source domain.ReplySource, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, source)
}

// passthroughEnhancer implements driving.ResponseEnhancer and tags replies.
type passthroughEnhancer struct {
	calls int
}

func (e *passthroughEnhancer) Enhance(reply string, _ *domain.IntentResult, _ *domain.UserProfile) string {
	e.calls++
	return reply + " [enhanced]"
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %s not found", name)
}

func (m *mockPromptStore) Reload() {}

// mockTranscriptStore implements driven.TranscriptStore for testing.
type mockTranscriptStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	turns    map[string][]domain.Turn
	saveErr  error
}

func newMockTranscriptStore() *mockTranscriptStore {
	return &mockTranscriptStore{
		sessions: make(map[string]domain.Session),
		turns:    make(map[string][]domain.Turn),
	}
}

func (m *mockTranscriptStore) SaveSession(_ context.Context, s *domain.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *mockTranscriptStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockTranscriptStore) ListSessions(_ context.Context, _ int) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockTranscriptStore) AppendTurn(_ context.Context, t *domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[t.SessionID] = append(m.turns[t.SessionID], *t)
	return nil
}

func (m *mockTranscriptStore) ListTurns(_ context.Context, id string) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Turn(nil), m.turns[id]...), nil
}

func (m *mockTranscriptStore) Close() error { return nil }

func (m *mockTranscriptStore) session(id string) domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// mockSessionStore implements driven.SessionStore for testing.
// Sessions only expire when expire is called.
type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	onExpire func(*domain.Session)
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionStore) Put(s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *mockSessionStore) Get(id string) (*domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *mockSessionStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *mockSessionStore) OnExpire(fn func(*domain.Session)) { m.onExpire = fn }

func (m *mockSessionStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *mockSessionStore) expire(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok && m.onExpire != nil {
		m.onExpire(s)
	}
}

// mockCorpusWatcher implements driven.CorpusWatcher for testing.
type mockCorpusWatcher struct {
	events  chan string
	err     error
	stopped bool
}

func (m *mockCorpusWatcher) Watch(_ context.Context) (<-chan string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockCorpusWatcher) Stop() error {
	m.stopped = true
	return nil
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	values map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return ":memory:" }

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	err error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error   { return m.err }
func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error               { return m.err }
func (m *mockAIValidator) ValidateClassifier(_ *domain.ClassifierSettings) error { return m.err }
