package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
)

func getRecipe(t *testing.T, id recipe.ID) *recipe.CanvasRecipe {
	t.Helper()
	rec, err := recipe.NewRegistry().Get(id)
	require.NoError(t, err)
	return rec
}

func TestNextPlan_FreshSessionStartsAtFirstStep(t *testing.T) {
	rec := getRecipe(t, recipe.TeamWorkspace)

	got := NextPlan(rec, &session.Session{Values: map[string]any{}})

	require.Equal(t, KindRenderStep, got.Kind)
	require.NotNil(t, got.Step)
	assert.Equal(t, recipe.StepWorkspaceBasics, got.Step.ID)
	assert.Equal(t, SourceRules, got.Source)

	require.NotEmpty(t, got.Stepper)
	assert.Equal(t, StatusCurrent, got.Stepper[0].Status)
	assert.Equal(t, StatusUpcoming, got.Stepper[1].Status)
}

func TestNextPlan_AdvancesPastCompletedSteps(t *testing.T) {
	rec := getRecipe(t, recipe.TeamWorkspace)
	sess := &session.Session{
		Values:         map[string]any{"workspace_name": "Acme"},
		CompletedSteps: []string{recipe.StepWorkspaceBasics},
	}

	got := NextPlan(rec, sess)

	require.Equal(t, KindRenderStep, got.Kind)
	assert.Equal(t, recipe.StepTeamSetup, got.Step.ID)
	assert.Equal(t, StatusComplete, got.Stepper[0].Status)
}

func TestNextPlan_ExplorerSkipsPreferences(t *testing.T) {
	rec := getRecipe(t, recipe.SoloStarter)
	sess := &session.Session{
		Values:         map[string]any{},
		CompletedSteps: []string{recipe.StepWorkspaceBasics},
	}

	got := NextPlan(rec, sess)

	require.Equal(t, KindReview, got.Kind, "explorer jumps straight to review")
	for _, item := range got.Stepper {
		if item.ID == recipe.StepPreferences {
			assert.Equal(t, StatusSkipped, item.Status)
		}
	}
}

func TestNextPlan_ExplorerRendersCompletedPreferencesNormally(t *testing.T) {
	rec := getRecipe(t, recipe.SoloStarter)
	sess := &session.Session{
		Values:         map[string]any{},
		CompletedSteps: []string{recipe.StepWorkspaceBasics, recipe.StepPreferences},
	}

	got := NextPlan(rec, sess)

	require.Equal(t, KindReview, got.Kind)
	for _, item := range got.Stepper {
		if item.ID == recipe.StepPreferences {
			assert.Equal(t, StatusComplete, item.Status)
		}
	}
}

func TestNextPlan_ReviewShowsCapturedValues(t *testing.T) {
	rec := getRecipe(t, recipe.TeamWorkspace)
	sess := &session.Session{
		Values: map[string]any{
			"workspace_name": "Acme",
			"team_size":      "10-24",
		},
		CompletedSteps: []string{
			recipe.StepWorkspaceBasics, recipe.StepTeamSetup, recipe.StepIntegrations,
		},
	}

	got := NextPlan(rec, sess)

	require.Equal(t, KindReview, got.Kind)
	require.Len(t, got.Review, 2)
	labels := []string{got.Review[0].Label, got.Review[1].Label}
	assert.Contains(t, labels, "Workspace name")
	assert.Contains(t, labels, "Team size")
}

func TestNextPlan_AllDoneIsSuccess(t *testing.T) {
	rec := getRecipe(t, recipe.TeamWorkspace)
	sess := &session.Session{
		Values: map[string]any{},
		CompletedSteps: []string{
			recipe.StepWorkspaceBasics, recipe.StepTeamSetup,
			recipe.StepIntegrations, recipe.StepReview,
		},
	}

	got := NextPlan(rec, sess)

	assert.Equal(t, KindSuccess, got.Kind)
	assert.NotEmpty(t, got.Message)
}

func TestNextPlan_FillsSessionValuesIntoFields(t *testing.T) {
	rec := getRecipe(t, recipe.TeamWorkspace)
	sess := &session.Session{Values: map[string]any{"workspace_name": "Acme"}}

	got := NextPlan(rec, sess)

	require.Equal(t, KindRenderStep, got.Kind)
	require.NotEmpty(t, got.Step.Fields)
	assert.Equal(t, "Acme", got.Step.Fields[0].Value)
}

func TestNextPlan_NilSession(t *testing.T) {
	rec := getRecipe(t, recipe.SoloStarter)

	got := NextPlan(rec, nil)

	require.Equal(t, KindRenderStep, got.Kind)
	assert.Equal(t, recipe.StepWorkspaceBasics, got.Step.ID)
}

func TestErrorPlan(t *testing.T) {
	got := ErrorPlan("We could not personalize this canvas. Try again.")

	require.Equal(t, KindError, got.Kind)
	assert.Equal(t, "We could not personalize this canvas. Try again.", got.Message)
	assert.Equal(t, SourceRules, got.Source)
	assert.Nil(t, got.Step)
}
