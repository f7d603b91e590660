// Package domain defines the core business entities for Concierge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Category: A named corpus partition with trigger keywords
//   - IntentResult: The categories detected for one utterance
//   - Document: A read-only snapshot of a corpus file
//   - UserProfile: Optional facts about the person being served
//   - Entry: One line of conversation memory
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
