package signal

// Source records which extraction path produced a signal value.
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceLLM     Source = "llm"
	SourceMerge   Source = "merge"
)

// Metadata carries the provenance of a signal value.
type Metadata struct {
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`
}

// Signal is a single confidence-scored attribute about a user's intent.
// Signals are immutable once produced; merging builds new ones.
type Signal[T any] struct {
	Value T        `json:"value"`
	Meta  Metadata `json:"metadata"`
}

// New builds a signal with confidence clamped into [0,1].
func New[T any](value T, source Source, confidence float64, notes string) Signal[T] {
	return Signal[T]{
		Value: value,
		Meta: Metadata{
			Source:     source,
			Confidence: clamp01(confidence),
			Notes:      notes,
		},
	}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// TeamBracket buckets a declared team size.
type TeamBracket string

const (
	BracketUnknown TeamBracket = "unknown"
	BracketSolo    TeamBracket = "solo"
	Bracket1To9    TeamBracket = "1-9"
	Bracket10To24  TeamBracket = "10-24"
	Bracket25Plus  TeamBracket = "25+"
)

// BracketForCount maps a headcount to its bracket.
func BracketForCount(n int) TeamBracket {
	switch {
	case n <= 0:
		return BracketUnknown
	case n == 1:
		return BracketSolo
	case n <= 9:
		return Bracket1To9
	case n <= 24:
		return Bracket10To24
	default:
		return Bracket25Plus
	}
}

// ApprovalDepth describes how many approval layers the user mentioned.
type ApprovalDepth string

const (
	DepthUnknown ApprovalDepth = "unknown"
	DepthSingle  ApprovalDepth = "single"
	DepthDual    ApprovalDepth = "dual"
	DepthMulti   ApprovalDepth = "multi"
)

// Criticality describes how essential tool integrations are.
type Criticality string

const (
	CriticalityUnknown     Criticality = "unknown"
	CriticalityMustHave    Criticality = "must-have"
	CriticalityNiceToHave  Criticality = "nice-to-have"
	CriticalityExploratory Criticality = "exploratory"
)

// Tone is the voice the user's prompt suggests for generated copy.
type Tone string

const (
	ToneNeutral        Tone = "neutral"
	ToneFastPaced      Tone = "fast-paced"
	ToneMeticulous     Tone = "meticulous"
	ToneTrustedAdvisor Tone = "trusted-advisor"
	ToneOnboarding     Tone = "onboarding"
	ToneMigration      Tone = "migration"
)

// Objective is the primary goal extracted from the prompt.
type Objective string

const (
	ObjectiveUnknown  Objective = "unknown"
	ObjectiveLaunch   Objective = "launch"
	ObjectiveMigrate  Objective = "migrate"
	ObjectiveOrganize Objective = "organize"
	ObjectiveScale    Objective = "scale"
)

// Constraint tags scheduling or budget pressure found in the prompt.
const (
	ConstraintRushTimeline     = "rush-timeline"
	ConstraintFlexibleTimeline = "flexible-timeline"
	ConstraintTightBudget      = "tight-budget"
)

// Signals is the full, resolved set of the eleven prompt signals.
// Every field is always populated; unresolved categories carry their
// default value with confidence 0 and source merge.
type Signals struct {
	TeamSizeBracket        Signal[TeamBracket]   `json:"teamSizeBracket"`
	DecisionMakers         Signal[[]string]      `json:"decisionMakers"`
	ApprovalChainDepth     Signal[ApprovalDepth] `json:"approvalChainDepth"`
	ToolsUsed              Signal[[]string]      `json:"toolsUsed"`
	IntegrationCriticality Signal[Criticality]   `json:"integrationCriticality"`
	ComplianceTags         Signal[[]string]      `json:"complianceTags"`
	CopyTone               Signal[Tone]          `json:"copyTone"`
	Industry               Signal[string]        `json:"industry"`
	PrimaryObjective       Signal[Objective]     `json:"primaryObjective"`
	Constraints            Signal[[]string]      `json:"constraints"`
	OperatingRegion        Signal[string]        `json:"operatingRegion"`
}

// Partial is a sparse signal set produced by one extraction path.
// Nil fields mean the category was not detected.
type Partial struct {
	TeamSizeBracket        *Signal[TeamBracket]   `json:"teamSizeBracket,omitempty"`
	DecisionMakers         *Signal[[]string]      `json:"decisionMakers,omitempty"`
	ApprovalChainDepth     *Signal[ApprovalDepth] `json:"approvalChainDepth,omitempty"`
	ToolsUsed              *Signal[[]string]      `json:"toolsUsed,omitempty"`
	IntegrationCriticality *Signal[Criticality]   `json:"integrationCriticality,omitempty"`
	ComplianceTags         *Signal[[]string]      `json:"complianceTags,omitempty"`
	CopyTone               *Signal[Tone]          `json:"copyTone,omitempty"`
	Industry               *Signal[string]        `json:"industry,omitempty"`
	PrimaryObjective       *Signal[Objective]     `json:"primaryObjective,omitempty"`
	Constraints            *Signal[[]string]      `json:"constraints,omitempty"`
	OperatingRegion        *Signal[string]        `json:"operatingRegion,omitempty"`
}

// IsEmpty reports whether no category was detected.
func (p Partial) IsEmpty() bool {
	return p.TeamSizeBracket == nil && p.DecisionMakers == nil &&
		p.ApprovalChainDepth == nil && p.ToolsUsed == nil &&
		p.IntegrationCriticality == nil && p.ComplianceTags == nil &&
		p.CopyTone == nil && p.Industry == nil && p.PrimaryObjective == nil &&
		p.Constraints == nil && p.OperatingRegion == nil
}

// Defaults returns the system default for every category: zero confidence,
// source merge.
func Defaults() Signals {
	def := func() Metadata { return Metadata{Source: SourceMerge, Confidence: 0} }
	return Signals{
		TeamSizeBracket:        Signal[TeamBracket]{Value: BracketUnknown, Meta: def()},
		DecisionMakers:         Signal[[]string]{Value: nil, Meta: def()},
		ApprovalChainDepth:     Signal[ApprovalDepth]{Value: DepthUnknown, Meta: def()},
		ToolsUsed:              Signal[[]string]{Value: nil, Meta: def()},
		IntegrationCriticality: Signal[Criticality]{Value: CriticalityUnknown, Meta: def()},
		ComplianceTags:         Signal[[]string]{Value: nil, Meta: def()},
		CopyTone:               Signal[Tone]{Value: ToneNeutral, Meta: def()},
		Industry:               Signal[string]{Value: "", Meta: def()},
		PrimaryObjective:       Signal[Objective]{Value: ObjectiveUnknown, Meta: def()},
		Constraints:            Signal[[]string]{Value: nil, Meta: def()},
		OperatingRegion:        Signal[string]{Value: "", Meta: def()},
	}
}
