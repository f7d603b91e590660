// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CorpusReader: Reads partitioned plain-text documents
//   - ConfigStore: Application configuration
//   - PromptStore: Persona and company-context templates
//   - EnhancementStage: One step of reply post-processing
//   - Selector: Variant selection for calls-to-action and branding
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, ranking returns nothing.
//   - ZeroShotClassifier: Scores categories. Without it, intent falls back after the keyword pass.
//   - LLMService: Generates replies. Without it, every turn uses the category fallback text.
//   - TranscriptStore: Persists turns. Without it, sessions live in memory only.
//   - Metrics: Records turn outcomes. Without it, nothing is exported.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
