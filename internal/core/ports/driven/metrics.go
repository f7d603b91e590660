package driven

import (
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// Metrics records pipeline outcomes for monitoring.
type Metrics interface {
	// ObserveIntent records how an utterance was classified.
	ObserveIntent(method domain.DetectionMethod)

	// ObserveRanking records how many documents a ranking returned and skipped.
	ObserveRanking(returned, issues int, elapsed time.Duration)

	// ObserveTurn records which path produced a reply and how long the turn took.
	ObserveTurn(source domain.ReplySource, elapsed time.Duration)
}
