// Package personalise greets visitors by name and frames replies for their user type.
package personalise

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// framing is the sentence appended for a user type unless its keyword already appears.
type framing struct {
	keyword  string
	sentence string
}

var framings = map[domain.UserType]framing{
	domain.UserTypePotentialClient: {
		keyword:  "business",
		sentence: "As a business looking for solutions, I'd be happy to discuss how we can specifically help your company grow.",
	},
	domain.UserTypeJobSeeker: {
		keyword:  "career",
		sentence: "Since you're interested in career opportunities, I can also share information about our company culture and current openings.",
	},
	domain.UserTypeInformationSeeker: {
		keyword:  "learn",
		sentence: "If you'd like to learn more, I can tell you about our story, our team and the industries we serve.",
	},
}

var greetings = []string{"Hello", "Hi"}

// Stage personalises replies. It implements driven.EnhancementStage.
type Stage struct{}

// New creates a personalisation stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return domain.StagePersonalise
}

// Apply adds the visitor's name to the greeting and appends user-type framing.
func (s *Stage) Apply(reply string, ec *driven.EnhancementContext) string {
	if ec == nil || ec.Profile == nil {
		return reply
	}
	p := ec.Profile

	if name := strings.TrimSpace(p.Name); name != "" && !strings.Contains(strings.ToLower(reply), strings.ToLower(name)) {
		reply = greet(reply, name)
	}

	if f, ok := framings[p.UserType]; ok && !strings.Contains(strings.ToLower(reply), f.keyword) {
		reply += "\n\n" + f.sentence
	}
	return reply
}

// greet splices the name after a leading greeting word, or prepends one.
func greet(reply, name string) string {
	for _, g := range greetings {
		if !strings.HasPrefix(reply, g) {
			continue
		}
		rest := reply[len(g):]
		if r, _ := utf8.DecodeRuneInString(rest); rest != "" && unicode.IsLetter(r) {
			continue
		}
		return g + " " + name + rest
	}
	return "Hi " + name + "! " + reply
}
