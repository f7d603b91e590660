package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Replies fall back to the deterministic category text.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Document ranking returns nothing without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrClassificationUnavailable indicates the zero-shot classifier could not be reached
	// or failed. Intent detection recovers by returning the fallback category.
	ErrClassificationUnavailable = errors.New("classification unavailable")

	// ErrRankingIO indicates a corpus file could not be read.
	// The ranker skips the document and records an issue.
	ErrRankingIO = errors.New("ranking I/O error")

	// ErrGenerationFailure indicates the generative backend failed or timed out.
	// The orchestrator replies with an apology.
	ErrGenerationFailure = errors.New("generation failure")

	// Session Errors.

	// ErrSessionNotFound indicates the session expired or never existed.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionLimit indicates the session reached its maximum number of turns.
	ErrSessionLimit = errors.New("session turn limit reached")
)
