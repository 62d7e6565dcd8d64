package personalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(recipe.NewRegistry(), nil)
}

func withSignals(mutate func(*signal.Signals)) signal.Signals {
	s := signal.Defaults()
	mutate(&s)
	return s
}

func TestScore_TeamWithToolsKeepsMultiToolDefault(t *testing.T) {
	eng := newTestEngine(t)
	signals := withSignals(func(s *signal.Signals) {
		s.TeamSizeBracket = signal.New(signal.Bracket10To24, signal.SourceKeyword, 1.0, "")
		s.ToolsUsed = signal.New([]string{"slack", "jira"}, signal.SourceKeyword, 1.0, "")
	})

	res, err := eng.Score(recipe.TeamWorkspace, signals)
	require.NoError(t, err)
	assert.False(t, res.Fallback.Applied)

	mode := res.Overrides[recipe.KnobIntegrationMode]
	assert.Equal(t, recipe.IntegrationMultiTool, mode.Value)
	assert.False(t, mode.ChangedFromDefault, "scored value equals the recipe default")

	cadence := res.Overrides[recipe.KnobNotificationCadence]
	assert.Equal(t, recipe.CadenceDaily, cadence.Value)

	invite := res.Overrides[recipe.KnobInviteStrategy]
	assert.Equal(t, recipe.InviteImmediate, invite.Value)
}

func TestScore_ComplianceDrivesEveryKnob(t *testing.T) {
	eng := newTestEngine(t)
	signals := withSignals(func(s *signal.Signals) {
		s.ComplianceTags = signal.New([]string{"hipaa"}, signal.SourceKeyword, 1.0, "")
	})

	res, err := eng.Score(recipe.TeamWorkspace, signals)
	require.NoError(t, err)
	assert.False(t, res.Fallback.Applied)

	assert.Equal(t, 2.0, res.Overrides[recipe.KnobApprovalChainLength].Value)
	assert.True(t, res.Overrides[recipe.KnobApprovalChainLength].ChangedFromDefault)
	assert.Equal(t, recipe.IntegrationGoverned, res.Overrides[recipe.KnobIntegrationMode].Value)
	assert.Equal(t, recipe.ToneCompliance, res.Overrides[recipe.KnobCopyTone].Value)
	assert.Equal(t, recipe.InviteStaged, res.Overrides[recipe.KnobInviteStrategy].Value)
	assert.Equal(t, recipe.CadenceRealTime, res.Overrides[recipe.KnobNotificationCadence].Value)
}

func TestScore_GovernanceVsFastConflict(t *testing.T) {
	eng := newTestEngine(t)
	signals := withSignals(func(s *signal.Signals) {
		s.ComplianceTags = signal.New([]string{"hipaa"}, signal.SourceKeyword, 1.0, "")
		s.CopyTone = signal.New(signal.ToneFastPaced, signal.SourceKeyword, 1.0, "")
	})

	res, err := eng.Score(recipe.GovernedRollout, signals)
	require.NoError(t, err)

	assert.True(t, res.Fallback.Applied)
	assert.Contains(t, res.Fallback.Reasons, ReasonConflictGovernanceVsFast)

	rec, _ := recipe.NewRegistry().Get(recipe.GovernedRollout)
	for _, knob := range rec.Knobs {
		assert.Equal(t, knob.Default, res.Overrides[knob.ID].Value, "knob %s", knob.ID)
		assert.False(t, res.Overrides[knob.ID].ChangedFromDefault)
	}
}

func TestScore_SoloVsTeamConflict(t *testing.T) {
	eng := newTestEngine(t)
	signals := withSignals(func(s *signal.Signals) {
		s.TeamSizeBracket = signal.New(signal.BracketSolo, signal.SourceKeyword, 1.0, "")
		s.DecisionMakers = signal.New([]string{"founder", "cto"}, signal.SourceKeyword, 1.0, "")
	})

	res, err := eng.Score(recipe.SoloStarter, signals)
	require.NoError(t, err)

	assert.True(t, res.Fallback.Applied)
	assert.Contains(t, res.Fallback.Reasons, ReasonConflictSoloVsTeam)
}

func TestScore_LowAggregateConfidenceFallsBack(t *testing.T) {
	eng := newTestEngine(t)
	signals := withSignals(func(s *signal.Signals) {
		s.TeamSizeBracket = signal.New(signal.Bracket10To24, signal.SourceLLM, 0.45, "")
	})

	res, err := eng.Score(recipe.TeamWorkspace, signals)
	require.NoError(t, err)

	assert.True(t, res.Fallback.Applied)
	assert.Contains(t, res.Fallback.Reasons, ReasonInsufficientConfidence)
	assert.InDelta(t, 0.45, res.Fallback.AggregateConfidence, 1e-9)
	assert.Equal(t, recipe.CadenceDaily, res.Overrides[recipe.KnobNotificationCadence].Value,
		"fallback keeps the recipe default")
}

func TestScore_NoSignalsKeepsDefaultsWithoutFallback(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Score(recipe.SoloStarter, signal.Defaults())
	require.NoError(t, err)

	assert.False(t, res.Fallback.Applied)
	for id, o := range res.Overrides {
		assert.False(t, o.ChangedFromDefault, "knob %s", id)
	}
}

func TestScore_ApprovalDepthMapping(t *testing.T) {
	eng := newTestEngine(t)
	cases := map[signal.ApprovalDepth]float64{
		signal.DepthSingle: 0,
		signal.DepthDual:   1,
		signal.DepthMulti:  2,
	}

	for depth, want := range cases {
		signals := withSignals(func(s *signal.Signals) {
			s.ApprovalChainDepth = signal.New(depth, signal.SourceKeyword, 1.0, "")
		})
		res, err := eng.Score(recipe.SoloStarter, signals)
		require.NoError(t, err)
		assert.Equal(t, want, res.Overrides[recipe.KnobApprovalChainLength].Value, "depth %s", depth)
	}
}

func TestScore_SupportingConfidenceNeedsCorroboration(t *testing.T) {
	eng := newTestEngine(t)

	// 0.3 alone is below the high bar: no rule may act on it
	weak := withSignals(func(s *signal.Signals) {
		s.ApprovalChainDepth = signal.New(signal.DepthMulti, signal.SourceLLM, 0.3, "")
	})
	res, err := eng.Score(recipe.SoloStarter, weak)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Overrides[recipe.KnobApprovalChainLength].Value)
	assert.False(t, res.Overrides[recipe.KnobApprovalChainLength].ChangedFromDefault)

	// the same 0.3 with compliance corroboration clears the supporting bar
	corroborated := withSignals(func(s *signal.Signals) {
		s.ApprovalChainDepth = signal.New(signal.DepthMulti, signal.SourceLLM, 0.3, "")
		s.ComplianceTags = signal.New([]string{"soc2"}, signal.SourceKeyword, 1.0, "")
	})
	res, err = eng.Score(recipe.SoloStarter, corroborated)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Overrides[recipe.KnobApprovalChainLength].Value)
}

func TestScore_ClientPortalDefaults(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Score(recipe.ClientPortal, signal.Defaults())
	require.NoError(t, err)

	assert.Equal(t, recipe.IntegrationClientPortal, res.Overrides[recipe.KnobIntegrationMode].Value)
	assert.Equal(t, recipe.InviteStakeholderFirst, res.Overrides[recipe.KnobInviteStrategy].Value)
	assert.False(t, res.Overrides[recipe.KnobIntegrationMode].ChangedFromDefault)
}

func TestScore_UnknownRecipe(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Score("R7", signal.Defaults())
	require.Error(t, err)
}

func TestScore_ApprovalRationaleTrail(t *testing.T) {
	eng := newTestEngine(t)
	signals := withSignals(func(s *signal.Signals) {
		s.ApprovalChainDepth = signal.New(signal.DepthDual, signal.SourceKeyword, 1.0, "")
		s.ComplianceTags = signal.New([]string{"soc2"}, signal.SourceKeyword, 1.0, "")
	})

	res, err := eng.Score(recipe.TeamWorkspace, signals)
	require.NoError(t, err)

	chain := res.Overrides[recipe.KnobApprovalChainLength]
	assert.Equal(t, 2.0, chain.Value)
	assert.Contains(t, chain.Rationale, "mapped to chain length")
	assert.Contains(t, chain.Rationale, "at least two approval layers")
}

func TestScore_ToneMapping(t *testing.T) {
	// Team workspace defaults to friendly copy, so the friendly-mapped
	// tones land on the default and report no change.
	cases := []struct {
		tone    signal.Tone
		want    string
		changed bool
	}{
		{signal.ToneFastPaced, recipe.ToneFriendly, false},
		{signal.ToneOnboarding, recipe.ToneFriendly, false},
		{signal.ToneMeticulous, recipe.ToneCompliance, true},
		{signal.ToneTrustedAdvisor, recipe.ToneClientReady, true},
		{signal.ToneMigration, recipe.ToneClientReady, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.tone), func(t *testing.T) {
			eng := newTestEngine(t)
			signals := withSignals(func(s *signal.Signals) {
				s.CopyTone = signal.New(tc.tone, signal.SourceKeyword, 1.0, "")
			})

			res, err := eng.Score(recipe.TeamWorkspace, signals)
			require.NoError(t, err)

			tone := res.Overrides[recipe.KnobCopyTone]
			assert.Equal(t, tc.want, tone.Value)
			assert.Equal(t, tc.changed, tone.ChangedFromDefault)
		})
	}
}
