package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ErrTurnCancelled indicates the caller cancelled a turn before it finished.
// Nothing is recorded for a cancelled turn.
var ErrTurnCancelled = errors.New("turn cancelled")

// conversation is the per-session state owned by the orchestrator.
type conversation struct {
	turnMu sync.Mutex // serialises turns within the session
	memory *ConversationMemory

	stateMu sync.RWMutex
	state   domain.TurnState
}

func (c *conversation) setState(s domain.TurnState) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

func (c *conversation) getState() domain.TurnState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// ChatService orchestrates one turn: detect, rank, generate, enhance, remember.
// Turns within a session run one at a time; sessions run concurrently and
// share only the injected services.
type ChatService struct {
	catalogue   *domain.Catalogue
	company     domain.Company
	intents     driving.IntentDetector
	ranker      driving.DocumentRanker
	prompts     driving.PromptAssembler
	enhancer    driving.ResponseEnhancer
	llmService  driven.LLMService
	genOpts     driven.GenerateOptions
	turnTimeout time.Duration
	metrics     driven.Metrics

	mu            sync.Mutex
	conversations map[string]*conversation
}

// NewChatService creates a new orchestrator.
// The llmService parameter is optional (can be nil); without it every turn
// gets the deterministic fallback reply.
func NewChatService(
	catalogue *domain.Catalogue,
	company domain.Company,
	intents driving.IntentDetector,
	ranker driving.DocumentRanker,
	prompts driving.PromptAssembler,
	enhancer driving.ResponseEnhancer,
	llmService driven.LLMService,
) *ChatService {
	return &ChatService{
		catalogue:     catalogue,
		company:       company,
		intents:       intents,
		ranker:        ranker,
		prompts:       prompts,
		enhancer:      enhancer,
		llmService:    llmService,
		conversations: make(map[string]*conversation),
	}
}

// SetTurnTimeout bounds each turn. A turn that runs out of time gets the apology reply.
func (s *ChatService) SetTurnTimeout(d time.Duration) {
	s.turnTimeout = d
}

// SetGenerateOptions sets the options passed to the generative backend.
func (s *ChatService) SetGenerateOptions(opts driven.GenerateOptions) {
	s.genOpts = opts
}

// SetMetrics sets the metrics recorder.
func (s *ChatService) SetMetrics(m driven.Metrics) {
	s.metrics = m
}

// ProcessTurn answers one utterance. It always returns displayable text.
func (s *ChatService) ProcessTurn(
	ctx context.Context, sessionID, utterance string, profile *domain.UserProfile,
) string {
	turn, err := s.RunTurn(ctx, sessionID, utterance, profile)
	if err != nil {
		return ApologyReply
	}
	return turn.Reply
}

// RunTurn answers one utterance and returns the full turn record.
// The only error is ErrTurnCancelled, when ctx was cancelled mid-turn;
// the turn is then discarded and memory is left untouched.
func (s *ChatService) RunTurn(
	ctx context.Context, sessionID, utterance string, profile *domain.UserProfile,
) (*domain.Turn, error) {
	conv := s.conversation(sessionID)
	conv.turnMu.Lock()
	defer conv.turnMu.Unlock()
	defer conv.setState(domain.StateAwaitingInput)

	logger.Section("Turn")
	start := time.Now()

	turnCtx := ctx
	if s.turnTimeout > 0 {
		var cancel context.CancelFunc
		turnCtx, cancel = context.WithTimeout(ctx, s.turnTimeout)
		defer cancel()
	}

	utterance = SanitizeInput(utterance)
	turn := &domain.Turn{
		SessionID: sessionID,
		Utterance: utterance,
		CreatedAt: start,
	}

	reply, source, err := s.safeAnswer(turnCtx, conv, turn, profile)

	if ctx.Err() != nil {
		logger.Warn("Turn cancelled, discarding: %v", ctx.Err())
		return nil, fmt.Errorf("%w: %w", ErrTurnCancelled, ctx.Err())
	}
	if err != nil {
		logger.Error("Turn failed: %v", err)
		reply, source = ApologyReply, domain.ReplyApology
	}

	conv.memory.Append(utterance, reply)

	turn.Reply = reply
	turn.Source = source
	turn.Number = conv.memory.Turns()
	turn.Duration = time.Since(start)

	logger.Info("Turn %d answered via %s in %s", turn.Number, source, turn.Duration)
	if s.metrics != nil {
		s.metrics.ObserveTurn(source, turn.Duration)
	}
	return turn, nil
}

// safeAnswer runs answer and turns a panic in any collaborator into an error,
// so the session still gets the apology reply.
func (s *ChatService) safeAnswer(
	ctx context.Context, conv *conversation, turn *domain.Turn, profile *domain.UserProfile,
) (reply string, source domain.ReplySource, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic in turn: %v\n%s", r, debug.Stack())
			reply, source = "", ""
			err = fmt.Errorf("%w: panic: %v", domain.ErrGenerationFailure, r)
		}
	}()
	return s.answer(ctx, conv, turn, profile)
}

// answer runs the pipeline and fills in turn.Intent and turn.Documents.
func (s *ChatService) answer(
	ctx context.Context, conv *conversation, turn *domain.Turn, profile *domain.UserProfile,
) (string, domain.ReplySource, error) {
	conv.setState(domain.StateRetrieving)

	intent := s.intents.Detect(ctx, turn.Utterance)
	turn.Intent = intent

	partitions := s.catalogue.Partitions(intent.Categories)
	docs, issues, err := s.ranker.Rank(ctx, turn.Utterance, partitions)
	for _, issue := range issues {
		logger.Warn("Skipped document: %v", issue)
	}
	if err != nil {
		return "", "", fmt.Errorf("rank documents: %w", err)
	}
	for _, d := range docs {
		turn.Documents = append(turn.Documents, d.Partition+"/"+d.ID)
	}

	if len(docs) == 0 || s.llmService == nil {
		logger.Debug("Using fallback reply (documents: %d, llm: %t)", len(docs), s.llmService != nil)
		return FallbackReply(s.company, intent), domain.ReplyFallback, nil
	}

	conv.setState(domain.StateGenerating)
	prompt := s.prompts.Build(turn.Utterance, profile, &intent)
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	logger.Debug("Generating with %s (%d documents, %d history entries)",
		s.llmService.ModelName(), len(texts), conv.memory.Turns()*2)
	raw, err := s.llmService.Generate(ctx, prompt, texts, conv.memory.Entries(), s.genOpts)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}

	conv.setState(domain.StateEnhancing)
	return s.enhancer.Enhance(raw, &intent, profile), domain.ReplyGenerated, nil
}

// History returns the session's conversation memory.
func (s *ChatService) History(sessionID string) []domain.Entry {
	s.mu.Lock()
	conv, ok := s.conversations[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return conv.memory.Entries()
}

// State returns where the session is within its current turn.
func (s *ChatService) State(sessionID string) domain.TurnState {
	s.mu.Lock()
	conv, ok := s.conversations[sessionID]
	s.mu.Unlock()
	if !ok {
		return domain.StateAwaitingInput
	}
	return conv.getState()
}

// Forget drops a session's memory.
func (s *ChatService) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.conversations, sessionID)
	s.mu.Unlock()
}

// conversation returns the session's state, creating it on first use.
func (s *ChatService) conversation(sessionID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[sessionID]
	if !ok {
		conv = &conversation{
			memory: NewConversationMemory(),
			state:  domain.StateAwaitingInput,
		}
		s.conversations[sessionID] = conv
	}
	return conv
}
