package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// ErrEmptyUtterance is returned when a tool receives no text to work on.
var ErrEmptyUtterance = errors.New("mcp: utterance is required")

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the visitor's question"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session to continue; a new session is started when empty"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	SessionID  string   `json:"session_id"`
	Turn       int      `json:"turn"`
	Reply      string   `json:"reply"`
	Source     string   `json:"source"`
	Categories []string `json:"categories"`
	Documents  []string `json:"documents,omitempty"`
}

// UtteranceInput is the input schema for tools that work on a single utterance.
type UtteranceInput struct {
	Utterance string `json:"utterance" jsonschema:"the text to analyse"`
}

// IntentOutput is the output schema for the detect_intent tool.
type IntentOutput struct {
	Method     string                `json:"method"`
	Categories []string              `json:"categories"`
	Confidence float64               `json:"confidence"`
	Details    []domain.IntentDetail `json:"details,omitempty"`
}

// RankInput is the input schema for the rank_documents tool.
type RankInput struct {
	Utterance  string   `json:"utterance" jsonschema:"the text to rank documents against"`
	Categories []string `json:"categories,omitempty" jsonschema:"categories to search; detected from the utterance when empty"`
}

// RankOutput is the output schema for the rank_documents tool.
type RankOutput struct {
	Categories []string         `json:"categories"`
	Documents  []RankedDocument `json:"documents"`
	Count      int              `json:"count"`
	Issues     []string         `json:"issues,omitempty"`
}

// RankedDocument represents a single ranked document.
type RankedDocument struct {
	ID        string  `json:"id"`
	Partition string  `json:"partition"`
	Score     float64 `json:"score"`
	Content   string  `json:"content"`
}

// FollowupsOutput is the output schema for the suggest_followups tool.
type FollowupsOutput struct {
	Categories []string `json:"categories"`
	Questions  []string `json:"questions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the concierge a question and get a grounded reply",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_intent",
		Description: "Classify an utterance into the configured categories",
	}, s.handleDetectIntent)

	if s.ports.Ranker != nil && s.ports.Catalogue != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "rank_documents",
			Description: "Rank corpus documents by similarity to an utterance",
		}, s.handleRankDocuments)
	}

	if s.ports.Insights != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "suggest_followups",
			Description: "Suggest follow-up questions for an utterance",
		}, s.handleSuggestFollowups)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, ErrEmptyUtterance
	}

	sessionID := input.SessionID
	if sessionID == "" {
		session, err := s.ports.Sessions.Start(ctx, domain.UserProfile{})
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("starting session: %w", err)
		}
		sessionID = session.ID
	}

	turn, err := s.ports.Sessions.Ask(ctx, sessionID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		SessionID:  sessionID,
		Turn:       turn.Number,
		Reply:      turn.Reply,
		Source:     string(turn.Source),
		Categories: turn.Intent.Categories,
		Documents:  turn.Documents,
	}, nil
}

// handleDetectIntent handles the detect_intent tool invocation.
func (s *Server) handleDetectIntent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UtteranceInput,
) (*mcp.CallToolResult, IntentOutput, error) {
	if strings.TrimSpace(input.Utterance) == "" {
		return nil, IntentOutput{}, ErrEmptyUtterance
	}

	result := s.ports.Intents.Detect(ctx, input.Utterance)
	return nil, IntentOutput{
		Method:     result.Method.String(),
		Categories: result.Categories,
		Confidence: result.RoundedConfidence(),
		Details:    result.Details,
	}, nil
}

// handleRankDocuments handles the rank_documents tool invocation.
func (s *Server) handleRankDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RankInput,
) (*mcp.CallToolResult, RankOutput, error) {
	if strings.TrimSpace(input.Utterance) == "" {
		return nil, RankOutput{}, ErrEmptyUtterance
	}

	categories := input.Categories
	if len(categories) == 0 {
		categories = s.ports.Intents.Detect(ctx, input.Utterance).Categories
	}

	docs, issues, err := s.ports.Ranker.Rank(ctx, input.Utterance, s.ports.Catalogue.Partitions(categories))
	if err != nil {
		return nil, RankOutput{}, err
	}

	output := RankOutput{
		Categories: categories,
		Documents:  make([]RankedDocument, len(docs)),
		Count:      len(docs),
	}
	for i := range docs {
		output.Documents[i] = RankedDocument{
			ID:        docs[i].ID,
			Partition: docs[i].Partition,
			Score:     docs[i].Score,
			Content:   docs[i].Content,
		}
	}
	for _, issue := range issues {
		output.Issues = append(output.Issues, issue.Error())
	}

	return nil, output, nil
}

// handleSuggestFollowups handles the suggest_followups tool invocation.
func (s *Server) handleSuggestFollowups(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UtteranceInput,
) (*mcp.CallToolResult, FollowupsOutput, error) {
	if strings.TrimSpace(input.Utterance) == "" {
		return nil, FollowupsOutput{}, ErrEmptyUtterance
	}

	intent := s.ports.Intents.Detect(ctx, input.Utterance)
	return nil, FollowupsOutput{
		Categories: intent.Categories,
		Questions:  s.ports.Insights.SuggestFollowups(intent),
	}, nil
}
