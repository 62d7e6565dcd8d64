package plan

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/promptcanvas/internal/recipe"
)

func teamRecipe(t *testing.T) *recipe.CanvasRecipe {
	t.Helper()
	rec, err := recipe.NewRegistry().Get(recipe.TeamWorkspace)
	require.NoError(t, err)
	return rec
}

func TestRepair_PersonaSynonyms(t *testing.T) {
	rec := teamRecipe(t)
	cases := map[string]string{
		"business":   "team",
		"Enterprise": "governed",
		"agency":     "client",
		"solo":       "explorer",
		"":           "team",
		"galactic":   "team", // unknown falls back to the recipe persona
	}

	for in, want := range cases {
		p := &Payload{StepID: "team-setup", Title: "t", Persona: in,
			Fields: []FieldPayload{{ID: "team_size", Label: "Team size", Kind: "select"}}}
		Repair(p, rec)
		assert.Equal(t, want, p.Persona, "persona %q", in)
	}
}

func TestRepair_FieldKindRemap(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{
		StepID: "integrations",
		Title:  "Connect tools",
		Fields: []FieldPayload{
			{ID: "compliance_ack", Label: "Acknowledge", Kind: "toggle"},
			{ID: "integration_select", Label: "Tools", Kind: "dropdown"},
			{ID: "workspace_name", Label: "Name", Kind: "hologram"},
		},
	}

	Repair(p, rec)

	kinds := map[string]string{}
	for _, f := range p.Fields {
		kinds[f.ID] = f.Kind
	}
	assert.Equal(t, "checkbox", kinds["compliance_ack"])
	assert.Equal(t, "select", kinds["integration_select"])
	assert.Equal(t, "text", kinds["workspace_name"], "unknown kinds default to text")
}

func TestRepair_FieldIDAliasesAndDropUnknown(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{
		StepID: "team-setup",
		Title:  "Team",
		Fields: []FieldPayload{
			{ID: "teammate_invite", Label: "Invite", Kind: "email_list"},
			{ID: "integration_picker", Label: "Tools", Kind: "select"},
			{ID: "favorite_color", Label: "Color", Kind: "text"},
		},
	}

	Repair(p, rec)

	var ids []string
	for _, f := range p.Fields {
		ids = append(ids, f.ID)
	}
	assert.Contains(t, ids, "invite_emails")
	assert.Contains(t, ids, "integration_select")
	assert.NotContains(t, ids, "favorite_color")
}

func TestRepair_DuplicateFieldsCollapse(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{
		StepID: "workspace-basics",
		Title:  "Basics",
		Fields: []FieldPayload{
			{ID: "workspace_name", Label: "Name", Kind: "text"},
			{ID: "workspaceName", Label: "Name again", Kind: "text"},
		},
	}

	Repair(p, rec)

	count := 0
	for _, f := range p.Fields {
		if f.ID == "workspace_name" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRepair_CTADefaulting(t *testing.T) {
	rec := teamRecipe(t)

	p := &Payload{StepID: "workspace-basics", Title: "Basics",
		Fields: []FieldPayload{{ID: "workspace_name", Label: "Name", Kind: "text"}}}
	Repair(p, rec)
	require.NotNil(t, p.PrimaryCTA)
	assert.Equal(t, "Continue", p.PrimaryCTA.Label)
	assert.Equal(t, ActionNextStep, p.PrimaryCTA.Action)

	p = &Payload{StepID: "workspace-basics", Title: "Basics",
		Fields:     []FieldPayload{{ID: "workspace_name", Label: "Name", Kind: "text"}},
		PrimaryCTA: &CTAPayload{Label: "Go", Action: "teleport"}}
	Repair(p, rec)
	assert.Equal(t, "Go", p.PrimaryCTA.Label)
	assert.Equal(t, ActionNextStep, p.PrimaryCTA.Action, "unknown actions reset to next_step")
}

func TestRepair_TruncatesLongCopy(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{
		StepID:      "workspace-basics",
		Title:       strings.Repeat("t", 100),
		Description: strings.Repeat("d", 300),
		Reasoning:   strings.Repeat("r", 200),
		Fields: []FieldPayload{
			{ID: "workspace_name", Label: strings.Repeat("l", 90), Kind: "text"},
		},
	}

	Repair(p, rec)

	assert.LessOrEqual(t, len(p.Title), 80)
	assert.LessOrEqual(t, len(p.Description), 240)
	assert.LessOrEqual(t, len(p.Reasoning), 160)
	assert.LessOrEqual(t, len(p.Fields[0].Label), 60)
}

func TestRepair_TruncatesOnRuneBoundary(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{
		StepID: "workspace-basics",
		Title:  "Basics",
		// a leading ASCII byte misaligns the two-byte runes with the cap
		Reasoning: "x" + strings.Repeat("é", 100),
		Fields:    []FieldPayload{{ID: "workspace_name", Label: "Name", Kind: "text"}},
	}

	Repair(p, rec)

	assert.LessOrEqual(t, len(p.Reasoning), 160)
	assert.True(t, utf8.ValidString(p.Reasoning))
}

func TestRepair_BackfillsRecipeStepFields(t *testing.T) {
	rec := teamRecipe(t)
	// model proposed the team-setup step but forgot both its fields
	p := &Payload{StepID: "team-setup", Title: "Set up your team",
		Fields: []FieldPayload{{ID: "workspace_name", Label: "Name", Kind: "text"}}}

	Repair(p, rec)

	var ids []string
	for _, f := range p.Fields {
		ids = append(ids, f.ID)
	}
	assert.Contains(t, ids, "team_size")
	assert.Contains(t, ids, "invite_emails")
}

func TestRepair_StepIDAliases(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{StepID: "Basics", Title: "t",
		Fields: []FieldPayload{{ID: "workspace_name", Label: "Name", Kind: "text"}}}

	Repair(p, rec)

	assert.Equal(t, recipe.StepWorkspaceBasics, p.StepID)
}

func TestRepair_ConfidenceClamped(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{StepID: "workspace-basics", Title: "t", Confidence: 3.2,
		Fields: []FieldPayload{{ID: "workspace_name", Label: "Name", Kind: "text"}}}

	Repair(p, rec)

	assert.Equal(t, 1.0, p.Confidence)
}

func TestRepair_Idempotent(t *testing.T) {
	rec := teamRecipe(t)
	p := &Payload{
		StepID:      "tools",
		Title:       strings.Repeat("t", 100),
		Persona:     "business",
		Description: "d",
		Fields: []FieldPayload{
			{ID: "integration_picker", Label: "Tools", Kind: "dropdown"},
		},
	}

	Repair(p, rec)
	first := *p
	firstFields := append([]FieldPayload(nil), p.Fields...)

	Repair(p, rec)

	assert.Equal(t, first.StepID, p.StepID)
	assert.Equal(t, first.Title, p.Title)
	assert.Equal(t, first.Persona, p.Persona)
	assert.Equal(t, firstFields, p.Fields)
}
