// Package llm holds what the generative backend adapters share.
//
// Every backend receives the same conversation: an optional system message
// carrying the retrieved documents, the session history in order, then the
// assembled prompt as the final user message.
package llm

import (
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// Chat roles understood by every supported backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// documentSeparator divides documents inside the system message.
const documentSeparator = "\n\n---\n\n"

// Message is one backend-neutral chat message.
type Message struct {
	Role    string
	Content string
}

// SystemContext renders retrieved documents for the system message.
// It returns an empty string when there are no non-blank documents.
func SystemContext(docs []string) string {
	var parts []string
	for _, d := range docs {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, d)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Answer using the following company information. " +
		"If it does not cover the question, say so.\n\n" +
		strings.Join(parts, documentSeparator)
}

// BuildMessages lays out the conversation sent to a backend.
func BuildMessages(prompt string, docs []string, history []domain.Entry) []Message {
	msgs := make([]Message, 0, len(history)+2)
	if sys := SystemContext(docs); sys != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: sys})
	}
	for _, e := range history {
		role := RoleUser
		if e.Role == domain.RoleAssistant {
			role = RoleAssistant
		}
		msgs = append(msgs, Message{Role: role, Content: e.Text})
	}
	return append(msgs, Message{Role: RoleUser, Content: prompt})
}

// SplitSystem separates the system message for APIs that take it as a
// top-level field instead of a chat message.
func SplitSystem(msgs []Message) (system string, rest []Message) {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
