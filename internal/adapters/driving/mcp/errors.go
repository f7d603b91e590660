// Package mcp provides an MCP (Model Context Protocol) server adapter for Concierge.
// It lets AI assistants put visitor questions to the concierge, inspect intents
// and rank corpus documents.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

// ErrMissingIntentDetector is returned when the intent detector is not provided.
var ErrMissingIntentDetector = errors.New("mcp: intent detector is required")
