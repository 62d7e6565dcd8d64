package personalization

// Confidence thresholds used by the scoring cascades. A signal acts on
// its own above HighConfidence; between SupportingConfidence and
// HighConfidence it acts only when corroborated by an independent signal.
const (
	HighConfidence       = 0.4
	SupportingConfidence = 0.25

	// FallbackConfidence is the aggregate floor below which all computed
	// overrides are discarded in favor of recipe defaults.
	FallbackConfidence = 0.5

	// ConflictConfidence is the per-signal floor for two signals to count
	// as genuinely contradictory rather than noise.
	ConflictConfidence = 0.5
)

// FallbackReason explains why the guardrail replaced overrides with defaults.
type FallbackReason string

const (
	ReasonConflictGovernanceVsFast FallbackReason = "conflict_governance_vs_fast"
	ReasonConflictSoloVsTeam       FallbackReason = "conflict_solo_vs_team"
	ReasonInsufficientConfidence   FallbackReason = "insufficient_confidence"
)
