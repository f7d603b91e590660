package mcp

import (
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sessions answers questions within visitor sessions.
	Sessions driving.SessionService

	// Intents classifies utterances.
	Intents driving.IntentDetector

	// Ranker ranks corpus documents. Optional.
	Ranker driving.DocumentRanker

	// Insights proposes follow-up questions. Optional.
	Insights driving.InsightService

	// Corpus summarises the document corpus. Optional.
	Corpus driving.CorpusService

	// Catalogue maps categories to partitions. Required with Ranker.
	Catalogue *domain.Catalogue
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	if p.Intents == nil {
		return ErrMissingIntentDetector
	}
	return nil
}
