package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Concierge resources.
	uriScheme = "concierge://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Catalogue != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "categories",
			Name:        "categories",
			Description: "Configured intent categories with their partitions and keywords",
			MIMEType:    "application/json",
		}, s.handleCategoriesResource)
	}

	if s.ports.Corpus != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "corpus/stats",
			Name:        "corpus-stats",
			Description: "Document counts and sizes per corpus partition",
			MIMEType:    "application/json",
		}, s.handleCorpusStatsResource)
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/transcript",
		Name:        "session-transcript",
		Description: "Recorded turns of a visitor session",
		MIMEType:    "application/json",
	}, s.handleTranscriptResource)
}

// handleCategoriesResource returns the configured categories.
func (s *Server) handleCategoriesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type categoryInfo struct {
		Name      string   `json:"name"`
		Partition string   `json:"partition"`
		Keywords  []string `json:"keywords"`
	}

	categories := s.ports.Catalogue.Categories()
	infos := make([]categoryInfo, len(categories))
	for i, c := range categories {
		infos[i] = categoryInfo{Name: c.Name, Partition: c.Partition, Keywords: c.Keywords}
	}

	return jsonResult(req.Params.URI, infos, "categories")
}

// handleCorpusStatsResource returns per-partition corpus statistics.
func (s *Server) handleCorpusStatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Corpus.Stats()
	if err != nil {
		return nil, fmt.Errorf("reading corpus stats: %w", err)
	}
	return jsonResult(req.Params.URI, stats, "corpus stats")
}

// handleTranscriptResource returns the turns recorded for a session.
func (s *Server) handleTranscriptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract sessionId from URI: concierge://sessions/{sessionId}/transcript
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	turns, err := s.ports.Sessions.Transcript(ctx, sessionID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, turns, "transcript")
}

func jsonResult(uri string, v any, what string) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", what, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like concierge://sessions/{sessionId}/transcript.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"
	const suffix = "/transcript"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
