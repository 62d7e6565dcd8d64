package signal

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alexanderramin/promptcanvas/internal/llm"
)

const signalsSystemPrompt = `You extract structured onboarding signals from a user's free-text description of what they want to build.

Respond with a single JSON object. Include only the categories you can actually infer; omit the rest. Every included category is an object with "value", "confidence" (0.0-1.0), and optional short "notes".

Categories and allowed values:
- "team_size_bracket": one of "solo", "1-9", "10-24", "25+"
- "decision_makers": array of role slugs, e.g. ["founder","it-admin"]
- "approval_chain_depth": one of "single", "dual", "multi"
- "tools_used": array of tool slugs, e.g. ["slack","jira"]
- "integration_criticality": one of "must-have", "nice-to-have", "exploratory"
- "compliance_tags": array of tags, e.g. ["hipaa","soc2"]
- "copy_tone": one of "fast-paced", "meticulous", "trusted-advisor", "onboarding", "migration"
- "industry": short lowercase slug, e.g. "healthcare"
- "primary_objective": one of "launch", "migrate", "organize", "scale"
- "constraints": array from ["rush-timeline","flexible-timeline","tight-budget"]
- "operating_region": one of "us", "eu", "uk", "apac", "global"

Confidence reflects how directly the text supports the value. Do not guess categories the text never hints at. Output JSON only, no prose.`

// Fetcher extracts signals from a prompt via the LLM.
type Fetcher struct {
	client llm.Client
	log    *zap.Logger
}

// NewFetcher creates a Fetcher backed by client.
func NewFetcher(client llm.Client, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{client: client, log: log}
}

type wireField[T any] struct {
	Value      T       `json:"value"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

type wireSignals struct {
	TeamSizeBracket        *wireField[string]   `json:"team_size_bracket"`
	DecisionMakers         *wireField[[]string] `json:"decision_makers"`
	ApprovalChainDepth     *wireField[string]   `json:"approval_chain_depth"`
	ToolsUsed              *wireField[[]string] `json:"tools_used"`
	IntegrationCriticality *wireField[string]   `json:"integration_criticality"`
	ComplianceTags         *wireField[[]string] `json:"compliance_tags"`
	CopyTone               *wireField[string]   `json:"copy_tone"`
	Industry               *wireField[string]   `json:"industry"`
	PrimaryObjective       *wireField[string]   `json:"primary_objective"`
	Constraints            *wireField[[]string] `json:"constraints"`
	OperatingRegion        *wireField[string]   `json:"operating_region"`
}

// Fetch asks the LLM for signals. Returns an empty Partial without error
// when the client is not configured; callers treat any error as a soft
// failure and continue with keyword signals alone.
func (f *Fetcher) Fetch(ctx context.Context, prompt string) (Partial, error) {
	if f.client == nil || !f.client.Configured() {
		return Partial{}, nil
	}

	resp, err := f.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSignals,
		SystemPrompt: signalsSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return Partial{}, fmt.Errorf("fetch signals: %w", err)
	}

	wire, err := llm.ExtractJSON[wireSignals](resp.Text, nil)
	if err != nil {
		return Partial{}, fmt.Errorf("fetch signals: %w", err)
	}

	return f.convert(wire), nil
}

// convert validates enum values field by field. A field with a value
// outside its enum is dropped, not errored: one bad category should not
// discard the rest.
func (f *Fetcher) convert(w wireSignals) Partial {
	var out Partial

	if w.TeamSizeBracket != nil {
		if v, ok := parseBracket(w.TeamSizeBracket.Value); ok {
			s := New(v, SourceLLM, w.TeamSizeBracket.Confidence, w.TeamSizeBracket.Notes)
			out.TeamSizeBracket = &s
		} else {
			f.dropField("team_size_bracket", w.TeamSizeBracket.Value)
		}
	}
	if w.DecisionMakers != nil {
		if v := cleanSlugs(w.DecisionMakers.Value); len(v) > 0 {
			s := New(v, SourceLLM, w.DecisionMakers.Confidence, w.DecisionMakers.Notes)
			out.DecisionMakers = &s
		}
	}
	if w.ApprovalChainDepth != nil {
		if v, ok := parseDepth(w.ApprovalChainDepth.Value); ok {
			s := New(v, SourceLLM, w.ApprovalChainDepth.Confidence, w.ApprovalChainDepth.Notes)
			out.ApprovalChainDepth = &s
		} else {
			f.dropField("approval_chain_depth", w.ApprovalChainDepth.Value)
		}
	}
	if w.ToolsUsed != nil {
		if v := cleanSlugs(w.ToolsUsed.Value); len(v) > 0 {
			s := New(v, SourceLLM, w.ToolsUsed.Confidence, w.ToolsUsed.Notes)
			out.ToolsUsed = &s
		}
	}
	if w.IntegrationCriticality != nil {
		if v, ok := parseCriticality(w.IntegrationCriticality.Value); ok {
			s := New(v, SourceLLM, w.IntegrationCriticality.Confidence, w.IntegrationCriticality.Notes)
			out.IntegrationCriticality = &s
		} else {
			f.dropField("integration_criticality", w.IntegrationCriticality.Value)
		}
	}
	if w.ComplianceTags != nil {
		if v := cleanSlugs(w.ComplianceTags.Value); len(v) > 0 {
			s := New(v, SourceLLM, w.ComplianceTags.Confidence, w.ComplianceTags.Notes)
			out.ComplianceTags = &s
		}
	}
	if w.CopyTone != nil {
		if v, ok := parseTone(w.CopyTone.Value); ok {
			s := New(v, SourceLLM, w.CopyTone.Confidence, w.CopyTone.Notes)
			out.CopyTone = &s
		} else {
			f.dropField("copy_tone", w.CopyTone.Value)
		}
	}
	if w.Industry != nil {
		if v := strings.TrimSpace(strings.ToLower(w.Industry.Value)); v != "" {
			s := New(v, SourceLLM, w.Industry.Confidence, w.Industry.Notes)
			out.Industry = &s
		}
	}
	if w.PrimaryObjective != nil {
		if v, ok := parseObjective(w.PrimaryObjective.Value); ok {
			s := New(v, SourceLLM, w.PrimaryObjective.Confidence, w.PrimaryObjective.Notes)
			out.PrimaryObjective = &s
		} else {
			f.dropField("primary_objective", w.PrimaryObjective.Value)
		}
	}
	if w.Constraints != nil {
		if v := cleanSlugs(w.Constraints.Value); len(v) > 0 {
			s := New(v, SourceLLM, w.Constraints.Confidence, w.Constraints.Notes)
			out.Constraints = &s
		}
	}
	if w.OperatingRegion != nil {
		if v := strings.TrimSpace(strings.ToLower(w.OperatingRegion.Value)); v != "" {
			s := New(v, SourceLLM, w.OperatingRegion.Confidence, w.OperatingRegion.Notes)
			out.OperatingRegion = &s
		}
	}

	return out
}

func (f *Fetcher) dropField(name, value string) {
	f.log.Debug("dropping llm signal with invalid enum value",
		zap.String("field", name), zap.String("value", value))
}

func parseBracket(s string) (TeamBracket, bool) {
	switch TeamBracket(strings.TrimSpace(strings.ToLower(s))) {
	case BracketSolo:
		return BracketSolo, true
	case Bracket1To9:
		return Bracket1To9, true
	case Bracket10To24:
		return Bracket10To24, true
	case Bracket25Plus:
		return Bracket25Plus, true
	}
	return BracketUnknown, false
}

func parseDepth(s string) (ApprovalDepth, bool) {
	switch ApprovalDepth(strings.TrimSpace(strings.ToLower(s))) {
	case DepthSingle:
		return DepthSingle, true
	case DepthDual:
		return DepthDual, true
	case DepthMulti:
		return DepthMulti, true
	}
	return DepthUnknown, false
}

func parseCriticality(s string) (Criticality, bool) {
	switch Criticality(strings.TrimSpace(strings.ToLower(s))) {
	case CriticalityMustHave:
		return CriticalityMustHave, true
	case CriticalityNiceToHave:
		return CriticalityNiceToHave, true
	case CriticalityExploratory:
		return CriticalityExploratory, true
	}
	return CriticalityUnknown, false
}

func parseTone(s string) (Tone, bool) {
	switch Tone(strings.TrimSpace(strings.ToLower(s))) {
	case ToneFastPaced:
		return ToneFastPaced, true
	case ToneMeticulous:
		return ToneMeticulous, true
	case ToneTrustedAdvisor:
		return ToneTrustedAdvisor, true
	case ToneOnboarding:
		return ToneOnboarding, true
	case ToneMigration:
		return ToneMigration, true
	}
	return ToneNeutral, false
}

func parseObjective(s string) (Objective, bool) {
	switch Objective(strings.TrimSpace(strings.ToLower(s))) {
	case ObjectiveLaunch:
		return ObjectiveLaunch, true
	case ObjectiveMigrate:
		return ObjectiveMigrate, true
	case ObjectiveOrganize:
		return ObjectiveOrganize, true
	case ObjectiveScale:
		return ObjectiveScale, true
	}
	return ObjectiveUnknown, false
}

func cleanSlugs(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(strings.ToLower(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
