package types

// =============================================================================
// Minimal Cross-Package Contracts
// =============================================================================
// The types package is the lowest-level package with no internal dependencies,
// so the small interfaces shared between the agent core and the domain layer
// live here to avoid circular imports.
// =============================================================================

// Summarizer renders shared session facts into a deterministic, model-readable
// snapshot. The agent core injects this snapshot into an agent's context on
// every handoff; it is the only fact channel that does not depend on dialogue
// history surviving a transfer.
type Summarizer interface {
	// Summarize returns a stable serialization of the collected facts.
	// Calling it twice without intervening mutation must yield identical
	// output.
	Summarize() string
}
