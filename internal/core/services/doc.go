// Package services implements the Concierge core.
//
// Each service implements a driving port and depends only on driven ports,
// so every model and store is injected at construction time. Optional
// dependencies may be nil; services degrade instead of failing:
//
//   - IntentService falls back to the default category without a classifier
//   - RankerService returns no documents without an embedding service
//   - ChatService answers with the category fallback text without an LLM
//
// SessionManager wraps ChatService with session lifecycle and transcripts.
// InsightService, CorpusService and CorpusMonitor serve the operator tools.
package services
