package personalization

import (
	"fmt"

	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

// approvalDepthCount maps a stated approval depth to a chain length.
var approvalDepthCount = map[signal.ApprovalDepth]float64{
	signal.DepthSingle: 0,
	signal.DepthDual:   1,
	signal.DepthMulti:  2,
}

// approvalChainRules layer floors onto the depth mapping rather than
// competing with it: compliance evidence forces at least two layers and
// locks, multiple corroborated decision-makers force at least one.
func approvalChainRules() []knobRule {
	return []knobRule{
		{
			when: func(c *scoringContext) bool {
				depth := c.signals.ApprovalChainDepth
				_, mapped := approvalDepthCount[depth.Value]
				return mapped && c.usable(depth.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				depth := c.signals.ApprovalChainDepth
				c.register(depth.Meta.Confidence)
				e.set(approvalDepthCount[depth.Value],
					fmt.Sprintf("approval depth %q mapped to chain length", depth.Value), false)
			},
		},
		{
			when: func(c *scoringContext) bool { return c.complianceUsable() },
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.ComplianceTags.Meta.Confidence)
				cur, _ := toFloat(e.value)
				if cur < 2 {
					cur = 2
				}
				e.set(cur, "compliance requirements force at least two approval layers", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				makers := c.signals.DecisionMakers
				return len(makers.Value) >= 2 && c.usable(makers.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.DecisionMakers.Meta.Confidence)
				cur, _ := toFloat(e.value)
				if cur < 1 {
					cur = 1
				}
				e.set(cur, "multiple decision-makers need at least one approval layer", false)
			},
		},
	}
}

func integrationModeRules() []knobRule {
	return []knobRule{
		{
			when: func(c *scoringContext) bool { return c.complianceUsable() },
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.ComplianceTags.Meta.Confidence)
				e.set(recipe.IntegrationGoverned, "compliance requirements demand governed connections", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				tools := c.signals.ToolsUsed
				if len(tools.Value) >= 2 && c.usable(tools.Meta.Confidence) {
					return true
				}
				crit := c.signals.IntegrationCriticality
				return crit.Value == signal.CriticalityMustHave && c.usable(crit.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				tools := c.signals.ToolsUsed
				crit := c.signals.IntegrationCriticality
				if len(tools.Value) >= 2 && c.usable(tools.Meta.Confidence) {
					c.register(tools.Meta.Confidence)
				}
				if crit.Value == signal.CriticalityMustHave && c.usable(crit.Meta.Confidence) {
					c.register(crit.Meta.Confidence)
				}
				e.set(recipe.IntegrationMultiTool, "existing tool stack calls for multi-tool integration", true)
			},
		},
		{
			when: func(c *scoringContext) bool { return c.recipe.ID == recipe.ClientPortal },
			apply: func(c *scoringContext, e *knobEval) {
				e.set(recipe.IntegrationClientPortal, "client portal recipes default to portal integration", false)
			},
		},
	}
}

// toneForSignal is the fixed lookup from extracted prompt tone to copy
// tone option. Neutral prompts carry no tone preference.
var toneForSignal = map[signal.Tone]string{
	signal.ToneFastPaced:      recipe.ToneFriendly,
	signal.ToneOnboarding:     recipe.ToneFriendly,
	signal.ToneMeticulous:     recipe.ToneCompliance,
	signal.ToneTrustedAdvisor: recipe.ToneClientReady,
	signal.ToneMigration:      recipe.ToneClientReady,
}

func copyToneRules() []knobRule {
	return []knobRule{
		{
			when: func(c *scoringContext) bool { return c.complianceUsable() },
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.ComplianceTags.Meta.Confidence)
				e.set(recipe.ToneCompliance, "compliance requirements demand compliance-first copy", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				tone := c.signals.CopyTone
				_, mapped := toneForSignal[tone.Value]
				return mapped && c.usable(tone.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				tone := c.signals.CopyTone
				c.register(tone.Meta.Confidence)
				e.set(toneForSignal[tone.Value],
					fmt.Sprintf("prompt tone %q mapped to copy tone", tone.Value), false)
			},
		},
	}
}

func inviteStrategyRules() []knobRule {
	return []knobRule{
		{
			when: func(c *scoringContext) bool { return c.complianceUsable() },
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.ComplianceTags.Meta.Confidence)
				e.set(recipe.InviteStaged, "compliance requirements call for a staged rollout", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				bracket := c.signals.TeamSizeBracket
				return bracket.Value == signal.BracketSolo && c.usable(bracket.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.TeamSizeBracket.Meta.Confidence)
				e.set(recipe.InviteSelfServe, "solo users invite on their own terms", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				depth := c.signals.ApprovalChainDepth
				if (depth.Value == signal.DepthDual || depth.Value == signal.DepthMulti) && c.usable(depth.Meta.Confidence) {
					return true
				}
				makers := c.signals.DecisionMakers
				return len(makers.Value) >= 2 && c.usable(makers.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				depth := c.signals.ApprovalChainDepth
				if (depth.Value == signal.DepthDual || depth.Value == signal.DepthMulti) && c.usable(depth.Meta.Confidence) {
					c.register(depth.Meta.Confidence)
				}
				makers := c.signals.DecisionMakers
				if len(makers.Value) >= 2 && c.usable(makers.Meta.Confidence) {
					c.register(makers.Meta.Confidence)
				}
				e.set(recipe.InviteStaged, "multiple approvers call for a staged rollout", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				bracket := c.signals.TeamSizeBracket
				return bracket.Value != signal.BracketUnknown && bracket.Value != signal.BracketSolo &&
					c.usable(bracket.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.TeamSizeBracket.Meta.Confidence)
				e.set(recipe.InviteImmediate, "known team size invites teammates right away", true)
			},
		},
		{
			when: func(c *scoringContext) bool { return c.recipe.ID == recipe.ClientPortal },
			apply: func(c *scoringContext, e *knobEval) {
				e.set(recipe.InviteStakeholderFirst, "client portal recipes invite stakeholders first", false)
			},
		},
	}
}

// cadenceForBracket maps team size to notification volume tolerance.
var cadenceForBracket = map[signal.TeamBracket]string{
	signal.BracketSolo:   recipe.CadenceNone,
	signal.Bracket1To9:   recipe.CadenceWeekly,
	signal.Bracket10To24: recipe.CadenceDaily,
	signal.Bracket25Plus: recipe.CadenceRealTime,
}

func notificationCadenceRules() []knobRule {
	return []knobRule{
		{
			when: func(c *scoringContext) bool { return c.complianceUsable() },
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.ComplianceTags.Meta.Confidence)
				e.set(recipe.CadenceRealTime, "compliance requirements demand real-time notifications", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				cons := c.signals.Constraints
				return hasConstraint(cons.Value, signal.ConstraintRushTimeline) && c.usable(cons.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.Constraints.Meta.Confidence)
				e.set(recipe.CadenceRealTime, "rush timeline wants real-time notifications", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				cons := c.signals.Constraints
				return hasConstraint(cons.Value, signal.ConstraintFlexibleTimeline) && c.usable(cons.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				c.register(c.signals.Constraints.Meta.Confidence)
				e.set(recipe.CadenceWeekly, "flexible timeline tolerates a weekly digest", true)
			},
		},
		{
			when: func(c *scoringContext) bool {
				bracket := c.signals.TeamSizeBracket
				_, mapped := cadenceForBracket[bracket.Value]
				return mapped && c.usable(bracket.Meta.Confidence)
			},
			apply: func(c *scoringContext, e *knobEval) {
				bracket := c.signals.TeamSizeBracket
				c.register(bracket.Meta.Confidence)
				e.set(cadenceForBracket[bracket.Value],
					fmt.Sprintf("team size %q sets notification volume", bracket.Value), false)
			},
		},
	}
}

func hasConstraint(constraints []string, want string) bool {
	for _, c := range constraints {
		if c == want {
			return true
		}
	}
	return false
}

// cascadesByKnob wires each knob id to its rule list.
var cascadesByKnob = map[string]func() []knobRule{
	recipe.KnobApprovalChainLength: approvalChainRules,
	recipe.KnobIntegrationMode:     integrationModeRules,
	recipe.KnobCopyTone:            copyToneRules,
	recipe.KnobInviteStrategy:      inviteStrategyRules,
	recipe.KnobNotificationCadence: notificationCadenceRules,
}
