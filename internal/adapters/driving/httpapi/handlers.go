package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/core/services"
	"github.com/custodia-labs/concierge/internal/logger"
)

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("httpapi: session service is required")

// ErrMissingIntentDetector is returned when the intent detector is not provided.
var ErrMissingIntentDetector = errors.New("httpapi: intent detector is required")

// ActiveCounter reports the number of live sessions.
type ActiveCounter interface {
	Active() int
}

// Ports aggregates the services the HTTP API drives.
type Ports struct {
	Sessions  driving.SessionService
	Intents   driving.IntentDetector
	Ranker    driving.DocumentRanker
	Insights  driving.InsightService
	Catalogue *domain.Catalogue

	// Active reports live sessions for /healthz. Optional.
	Active ActiveCounter

	// Metrics serves /metrics. Optional.
	Metrics http.Handler

	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	if p.Intents == nil {
		return ErrMissingIntentDetector
	}
	return nil
}

// Handlers contains the HTTP handlers for the concierge API.
type Handlers struct {
	ports *Ports
}

// NewHandlers creates handlers for the given ports.
func NewHandlers(ports *Ports) (*Handlers, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	return &Handlers{ports: ports}, nil
}

// HandleStartSession handles POST /v1/sessions.
func (h *Handlers) HandleStartSession(c *gin.Context) {
	var req StartSessionRequest
	// An empty body starts an anonymous session.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	session, err := h.ports.Sessions.Start(c.Request.Context(), req.Profile)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := SessionResponse{Session: *session}
	if h.ports.Insights != nil {
		resp.Starter = h.ports.Insights.ConversationStarter(session.Profile)
	}
	c.JSON(http.StatusCreated, resp)
}

// HandleGetSession handles GET /v1/sessions/:id.
func (h *Handlers) HandleGetSession(c *gin.Context) {
	id := c.Param("id")
	stats, err := h.ports.Sessions.Stats(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := SessionResponse{Stats: stats}
	if session, err := h.ports.Sessions.Get(id); err == nil {
		resp.Session = *session
	} else {
		resp.Session = domain.Session{ID: id, Status: stats.Status, TurnCount: stats.TurnCount}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleJourney handles GET /v1/sessions/:id/journey.
func (h *Handlers) HandleJourney(c *gin.Context) {
	if h.ports.Insights == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "journey insights are not configured",
			Code:  "INSIGHTS_UNAVAILABLE",
		})
		return
	}

	id := c.Param("id")
	turns, err := h.ports.Sessions.Transcript(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	intents := make([]domain.IntentResult, len(turns))
	utterances := make([]string, len(turns))
	for i := range turns {
		intents[i] = turns[i].Intent
		utterances[i] = turns[i].Utterance
	}

	var profile domain.UserProfile
	if session, err := h.ports.Sessions.Get(id); err == nil {
		profile = session.Profile
	}

	resp := JourneyResponse{
		SessionID: id,
		Journey:   h.ports.Insights.AnalyzeJourney(intents),
		UserType:  h.ports.Insights.ClassifyUserType(profile, utterances),
	}
	if len(utterances) > 0 {
		resp.NextQuestions = h.ports.Insights.SuggestNextQuestions(utterances)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleEndSession handles DELETE /v1/sessions/:id.
func (h *Handlers) HandleEndSession(c *gin.Context) {
	if err := h.ports.Sessions.End(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleTurn handles POST /v1/sessions/:id/turns.
func (h *Handlers) HandleTurn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	turn, err := h.ports.Sessions.Ask(c.Request.Context(), c.Param("id"), req.Utterance)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := TurnResponse{
		SessionID:  turn.SessionID,
		Number:     turn.Number,
		Reply:      turn.Reply,
		Source:     turn.Source,
		Intent:     turn.Intent,
		Documents:  turn.Documents,
		DurationMS: turn.Duration.Milliseconds(),
	}
	if h.ports.Insights != nil {
		resp.Followups = h.ports.Insights.SuggestFollowups(turn.Intent)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleIntent handles POST /v1/intent.
func (h *Handlers) HandleIntent(c *gin.Context) {
	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ports.Intents.Detect(c.Request.Context(), services.SanitizeInput(req.Utterance)))
}

// HandleRank handles POST /v1/rank.
func (h *Handlers) HandleRank(c *gin.Context) {
	if h.ports.Ranker == nil || h.ports.Catalogue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "document ranking is not configured",
			Code:  "RANKING_UNAVAILABLE",
		})
		return
	}

	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	utterance := services.SanitizeInput(req.Utterance)
	categories := req.Categories
	if len(categories) == 0 {
		categories = h.ports.Intents.Detect(ctx, utterance).Categories
	}

	docs, issues, err := h.ports.Ranker.Rank(ctx, utterance, h.ports.Catalogue.Partitions(categories))
	if err != nil {
		writeError(c, err)
		return
	}
	if req.TopK > 0 && len(docs) > req.TopK {
		docs = docs[:req.TopK]
	}

	resp := RankResponse{Categories: categories, Documents: docs}
	for _, issue := range issues {
		resp.Issues = append(resp.Issues, issue.Error())
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.ports.Version,
		Time:    time.Now().UTC(),
	}
	if h.ports.Active != nil {
		resp.ActiveSessions = h.ports.Active.Active()
	}
	c.JSON(http.StatusOK, resp)
}

func badRequest(c *gin.Context, err error) {
	logger.Debug("Invalid request body: %v", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

// writeError maps domain errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, domain.ErrSessionLimit):
		status, code = http.StatusTooManyRequests, "TURN_LIMIT"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, services.ErrTurnCancelled):
		status, code = http.StatusRequestTimeout, "CANCELLED"
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		status, code = http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"
	}

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		msg = serverErrorMessages[code]
	}
	c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

// serverErrorMessages replace error details for 5xx responses; details stay in the log.
var serverErrorMessages = map[string]string{
	"INTERNAL":            "internal error",
	"BACKEND_UNAVAILABLE": "a required AI backend is unavailable",
}
