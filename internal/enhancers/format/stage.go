// Package format normalises spacing in generated replies.
package format

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

type rule struct {
	pattern *regexp.Regexp
	replace string
}

// rules run in order; the last collapses the blank lines the others may add.
var rules = []rule{
	{regexp.MustCompile(`\n(#{1,6}\s)`), "\n\n$1"},
	{regexp.MustCompile(`\n-\s`), "\n\n- "},
	{regexp.MustCompile(`\n\*\s`), "\n\n* "},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Stage normalises formatting. It implements driven.EnhancementStage.
type Stage struct{}

// New creates a formatting stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return domain.StageFormat
}

// Apply puts a blank line before headers and list items, collapses runs
// of blank lines and trims the ends.
func (s *Stage) Apply(reply string, _ *driven.EnhancementContext) string {
	return Normalise(reply)
}

// Normalise applies the formatting rules to text.
func Normalise(text string) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllString(text, r.replace)
	}
	return strings.TrimSpace(text)
}
