package services

import (
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// ApologyReply is returned when a turn fails. It never carries error details.
const ApologyReply = "I apologize, but I encountered an error. Please try rephrasing your question."

// FallbackReply is the deterministic answer used when nothing was retrieved
// or no generative backend is configured. The guidance sentence depends on
// the top detected category.
func FallbackReply(company domain.Company, intent domain.IntentResult) string {
	var b strings.Builder
	b.WriteString("I'd be happy to help you with information about ")
	b.WriteString(company.Name)
	b.WriteString("! ")

	category := strings.ToLower(intent.Primary())
	switch {
	case strings.Contains(category, "service"):
		b.WriteString("We offer comprehensive digital transformation services including AI chatbots, " +
			"custom web development, and automation solutions. ")
	case strings.Contains(category, "career"):
		b.WriteString("We're always looking for talented individuals! Check out our careers page for current openings. ")
	case strings.Contains(category, "case"):
		b.WriteString("Our case studies showcase successful projects across various industries. ")
	}

	b.WriteString("For specific information, please contact our team at ")
	b.WriteString(company.Contacts.SalesEmail)
	b.WriteString(" or visit our website.")
	return b.String()
}
