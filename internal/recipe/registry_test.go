package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetKnown(t *testing.T) {
	reg := NewRegistry()

	for _, id := range []ID{SoloStarter, TeamWorkspace, ClientPortal, GovernedRollout} {
		rec, err := reg.Get(id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.Len(t, rec.Knobs, 5, "recipe %s", id)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("R9")
	require.Error(t, err)

	var unknown *UnknownRecipeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, ID("R9"), unknown.ID)
}

func TestRegistry_EveryRecipeHasAllKnobs(t *testing.T) {
	reg := NewRegistry()
	want := []string{
		KnobApprovalChainLength,
		KnobIntegrationMode,
		KnobCopyTone,
		KnobInviteStrategy,
		KnobNotificationCadence,
	}

	for _, rec := range reg.List() {
		for _, id := range want {
			knob, ok := rec.Knob(id)
			require.True(t, ok, "recipe %s missing knob %s", rec.ID, id)
			assert.True(t, knob.Allows(knob.Default), "recipe %s knob %s default not allowed", rec.ID, id)
		}
	}
}

func TestKnobDefinition_Allows(t *testing.T) {
	approval := approvalKnob(1)
	assert.True(t, approval.Allows(0.0))
	assert.True(t, approval.Allows(3))
	assert.False(t, approval.Allows(4.0))
	assert.False(t, approval.Allows("two"))

	tone := toneKnob(ToneFriendly)
	assert.True(t, tone.Allows(ToneCompliance))
	assert.False(t, tone.Allows("sarcastic"))
	assert.False(t, tone.Allows(2))
}

func TestRecipe_DefaultsMatchPersona(t *testing.T) {
	reg := NewRegistry()

	team, err := reg.Get(TeamWorkspace)
	require.NoError(t, err)
	mode, _ := team.Knob(KnobIntegrationMode)
	assert.Equal(t, IntegrationMultiTool, mode.Default)

	governed, err := reg.Get(GovernedRollout)
	require.NoError(t, err)
	approval, _ := governed.Knob(KnobApprovalChainLength)
	assert.Equal(t, 2.0, approval.Default)
	tone, _ := governed.Knob(KnobCopyTone)
	assert.Equal(t, ToneCompliance, tone.Default)
}

func TestRecipe_FieldsForStep(t *testing.T) {
	reg := NewRegistry()
	team, err := reg.Get(TeamWorkspace)
	require.NoError(t, err)

	fields := team.FieldsForStep(StepTeamSetup)
	require.Len(t, fields, 2)
	assert.Equal(t, "team_size", fields[0].ID)
	assert.Equal(t, "invite_emails", fields[1].ID)

	assert.Empty(t, team.FieldsForStep("nonexistent"))
}
