package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywordSignals_TeamAndTools(t *testing.T) {
	got := ExtractKeywordSignals("We're a team of 10 and we live in Slack and Jira all day")

	require.NotNil(t, got.TeamSizeBracket)
	assert.Equal(t, Bracket10To24, got.TeamSizeBracket.Value)
	assert.Equal(t, SourceKeyword, got.TeamSizeBracket.Meta.Source)
	assert.Equal(t, 1.0, got.TeamSizeBracket.Meta.Confidence)

	require.NotNil(t, got.ToolsUsed)
	assert.ElementsMatch(t, []string{"slack", "jira"}, got.ToolsUsed.Value)
}

func TestExtractKeywordSignals_SoloBeatsDigits(t *testing.T) {
	got := ExtractKeywordSignals("It's just me managing 3 client projects")

	require.NotNil(t, got.TeamSizeBracket)
	assert.Equal(t, BracketSolo, got.TeamSizeBracket.Value)
}

func TestExtractKeywordSignals_RangeAveraged(t *testing.T) {
	got := ExtractKeywordSignals("somewhere between 10-24 people will use this")

	require.NotNil(t, got.TeamSizeBracket)
	assert.Equal(t, Bracket10To24, got.TeamSizeBracket.Value)
	assert.Contains(t, got.TeamSizeBracket.Meta.Notes, "averaged to 17")
}

func TestExtractKeywordSignals_RangeShadowsLooseDigits(t *testing.T) {
	// the range phrasing must win even though "5" alone would bracket to 1-9
	got := ExtractKeywordSignals("we have 5 to 30 people depending on the season")

	require.NotNil(t, got.TeamSizeBracket)
	assert.Equal(t, Bracket10To24, got.TeamSizeBracket.Value)
}

func TestExtractKeywordSignals_BareDigitsIgnored(t *testing.T) {
	got := ExtractKeywordSignals("we want to ship version 3 by Q4")

	assert.Nil(t, got.TeamSizeBracket)
}

func TestExtractKeywordSignals_Compliance(t *testing.T) {
	got := ExtractKeywordSignals("We handle patient data so HIPAA and SOC 2 matter")

	require.NotNil(t, got.ComplianceTags)
	assert.ElementsMatch(t, []string{"hipaa", "soc2"}, got.ComplianceTags.Value)

	require.NotNil(t, got.Industry)
	assert.Equal(t, "healthcare", got.Industry.Value)
}

func TestExtractKeywordSignals_ApprovalDepthPriority(t *testing.T) {
	// legal review outranks manager sign-off when both appear
	got := ExtractKeywordSignals("needs manager sign-off and then legal review")

	require.NotNil(t, got.ApprovalChainDepth)
	assert.Equal(t, DepthMulti, got.ApprovalChainDepth.Value)
}

func TestExtractKeywordSignals_ToneAndConstraints(t *testing.T) {
	got := ExtractKeywordSignals("We need to move fast, launch ASAP for our startup")

	require.NotNil(t, got.CopyTone)
	assert.Equal(t, ToneFastPaced, got.CopyTone.Value)

	require.NotNil(t, got.Constraints)
	assert.Contains(t, got.Constraints.Value, ConstraintRushTimeline)

	require.NotNil(t, got.PrimaryObjective)
	assert.Equal(t, ObjectiveLaunch, got.PrimaryObjective.Value)
}

func TestExtractKeywordSignals_EmptyPrompt(t *testing.T) {
	got := ExtractKeywordSignals("")
	assert.True(t, got.IsEmpty())
}

func TestExtractKeywordSignals_Deterministic(t *testing.T) {
	prompt := "founder and CTO both sign off, we use Notion, Slack, GitHub and Figma"
	first := ExtractKeywordSignals(prompt)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ExtractKeywordSignals(prompt))
	}
}

func TestBracketForCount(t *testing.T) {
	cases := map[int]TeamBracket{
		0:   BracketUnknown,
		1:   BracketSolo,
		2:   Bracket1To9,
		9:   Bracket1To9,
		10:  Bracket10To24,
		24:  Bracket10To24,
		25:  Bracket25Plus,
		400: Bracket25Plus,
	}
	for n, want := range cases {
		assert.Equal(t, want, BracketForCount(n), "count %d", n)
	}
}
