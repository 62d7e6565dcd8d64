package plan

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/promptcanvas/internal/recipe"
)

// Length caps enforced on LLM step payloads. Repair truncates to these;
// the schema rejects anything that still exceeds them.
const (
	maxTitleLen       = 80
	maxDescriptionLen = 240
	maxLabelLen       = 60
	maxReasoningLen   = 160
	maxFields         = 6
)

// Payload is the raw step proposal parsed from LLM output, before repair
// and schema validation.
type Payload struct {
	StepID      string         `json:"stepId"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Persona     string         `json:"persona,omitempty"`
	Reasoning   string         `json:"reasoning,omitempty"`
	Confidence  float64        `json:"confidence,omitempty"`
	Fields      []FieldPayload `json:"fields"`
	PrimaryCTA  *CTAPayload    `json:"primaryCta,omitempty"`
}

// FieldPayload is one proposed field. Options tolerate both plain strings
// and {value,label} objects.
type FieldPayload struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Kind        string          `json:"kind"`
	Description string          `json:"description,omitempty"`
	Required    bool            `json:"required,omitempty"`
	Options     []OptionPayload `json:"options,omitempty"`
}

// OptionPayload accepts "value" or {"value": ..., "label": ...}.
type OptionPayload struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (o *OptionPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Value = s
		o.Label = s
		return nil
	}
	type alias OptionPayload
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*o = OptionPayload(obj)
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

// CTAPayload is the proposed primary call to action.
type CTAPayload struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// personaSynonyms folds the wording models actually emit onto the four
// canonical personas.
var personaSynonyms = map[string]recipe.Persona{
	"explorer":   recipe.PersonaExplorer,
	"solo":       recipe.PersonaExplorer,
	"individual": recipe.PersonaExplorer,
	"personal":   recipe.PersonaExplorer,
	"starter":    recipe.PersonaExplorer,
	"team":       recipe.PersonaTeam,
	"business":   recipe.PersonaTeam,
	"company":    recipe.PersonaTeam,
	"startup":    recipe.PersonaTeam,
	"workgroup":  recipe.PersonaTeam,
	"client":     recipe.PersonaClient,
	"agency":     recipe.PersonaClient,
	"consultant": recipe.PersonaClient,
	"freelancer": recipe.PersonaClient,
	"portal":     recipe.PersonaClient,
	"governed":   recipe.PersonaGoverned,
	"enterprise": recipe.PersonaGoverned,
	"compliance": recipe.PersonaGoverned,
	"regulated":  recipe.PersonaGoverned,
	"corporate":  recipe.PersonaGoverned,
}

// fieldKindRemap folds nonstandard control names onto canvas field kinds.
var fieldKindRemap = map[string]recipe.FieldKind{
	"text":       recipe.FieldText,
	"input":      recipe.FieldText,
	"string":     recipe.FieldText,
	"select":     recipe.FieldSelect,
	"dropdown":   recipe.FieldSelect,
	"picker":     recipe.FieldSelect,
	"radio":      recipe.FieldSelect,
	"multiline":  recipe.FieldMultiline,
	"textarea":   recipe.FieldMultiline,
	"checkbox":   recipe.FieldCheckbox,
	"toggle":     recipe.FieldCheckbox,
	"switch":     recipe.FieldCheckbox,
	"boolean":    recipe.FieldCheckbox,
	"email_list": recipe.FieldEmailList,
	"emails":     recipe.FieldEmailList,
	"email":      recipe.FieldEmailList,
	"invites":    recipe.FieldEmailList,
}

// fieldIDAliases maps drifted field ids back onto the canonical set.
var fieldIDAliases = map[string]string{
	"workspacename":       "workspace_name",
	"workspace-name":      "workspace_name",
	"name":                "workspace_name",
	"portal_name":         "workspace_name",
	"teamsize":            "team_size",
	"team-size":           "team_size",
	"size":                "team_size",
	"headcount":           "team_size",
	"invites":             "invite_emails",
	"emails":              "invite_emails",
	"invite_list":         "invite_emails",
	"teammate_invite":     "invite_emails",
	"invite":              "invite_emails",
	"integration":         "integration_select",
	"integrations":        "integration_select",
	"integration_picker":  "integration_select",
	"tools":               "integration_select",
	"tone":                "tone_choice",
	"copy_tone":           "tone_choice",
	"region":              "region_select",
	"operating_region":    "region_select",
	"objective":           "objective_select",
	"goal":                "objective_select",
	"compliance":          "compliance_ack",
	"compliance_checkbox": "compliance_ack",
	"approvals":           "approval_depth",
	"approval_chain":      "approval_depth",
}

// canonicalFieldIDs is the whitelist a repaired field must land in.
var canonicalFieldIDs = map[string]bool{
	"workspace_name":     true,
	"team_size":          true,
	"invite_emails":      true,
	"integration_select": true,
	"compliance_ack":     true,
	"tone_choice":        true,
	"region_select":      true,
	"objective_select":   true,
	"approval_depth":     true,
}

// stepIDAliases folds loose step naming onto recipe step ids.
var stepIDAliases = map[string]string{
	"basics":        recipe.StepWorkspaceBasics,
	"workspace":     recipe.StepWorkspaceBasics,
	"setup":         recipe.StepWorkspaceBasics,
	"team":          recipe.StepTeamSetup,
	"teammates":     recipe.StepTeamSetup,
	"stakeholders":  recipe.StepTeamSetup,
	"rollout":       recipe.StepTeamSetup,
	"tools":         recipe.StepIntegrations,
	"connections":   recipe.StepIntegrations,
	"settings":      recipe.StepPreferences,
	"customization": recipe.StepPreferences,
	"governance":    recipe.StepCompliance,
	"security":      recipe.StepCompliance,
	"summary":       recipe.StepReview,
	"confirm":       recipe.StepReview,
	"confirmation":  recipe.StepReview,
}

// Repair normalizes an LLM step payload in place so that honest,
// near-miss output survives schema validation: persona synonyms fold to
// canonical personas, field kinds and ids remap, unknown fields drop,
// required step fields backfill from the recipe, the CTA defaults, and
// over-long copy truncates. Hopeless payloads pass through for the
// schema to reject.
func Repair(p *Payload, rec *recipe.CanvasRecipe) {
	p.StepID = repairStepID(p.StepID, rec)
	p.Title = truncate(strings.TrimSpace(p.Title), maxTitleLen)
	p.Description = truncate(strings.TrimSpace(p.Description), maxDescriptionLen)
	p.Reasoning = truncate(strings.TrimSpace(p.Reasoning), maxReasoningLen)
	p.Persona = repairPersona(p.Persona, rec)
	p.Confidence = clamp01(p.Confidence)
	p.Fields = repairFields(p.Fields, p.StepID, rec)
	p.PrimaryCTA = repairCTA(p.PrimaryCTA)
}

func repairStepID(id string, rec *recipe.CanvasRecipe) string {
	id = strings.TrimSpace(strings.ToLower(id))
	if _, ok := rec.Step(id); ok {
		return id
	}
	if alias, ok := stepIDAliases[id]; ok {
		if _, exists := rec.Step(alias); exists {
			return alias
		}
	}
	return id
}

func repairPersona(persona string, rec *recipe.CanvasRecipe) string {
	persona = strings.TrimSpace(strings.ToLower(persona))
	if persona == "" {
		return string(rec.Persona)
	}
	if canonical, ok := personaSynonyms[persona]; ok {
		return string(canonical)
	}
	return string(rec.Persona)
}

func repairFields(fields []FieldPayload, stepID string, rec *recipe.CanvasRecipe) []FieldPayload {
	out := make([]FieldPayload, 0, len(fields))
	seen := map[string]bool{}

	for _, f := range fields {
		id := strings.TrimSpace(strings.ToLower(f.ID))
		if alias, ok := fieldIDAliases[id]; ok {
			id = alias
		}
		if !canonicalFieldIDs[id] || seen[id] {
			continue
		}
		seen[id] = true

		f.ID = id
		f.Kind = string(repairFieldKind(f.Kind))
		f.Label = truncate(strings.TrimSpace(f.Label), maxLabelLen)
		f.Description = truncate(strings.TrimSpace(f.Description), maxDescriptionLen)
		if f.Label == "" {
			f.Label = recipeFieldLabel(rec, id)
		}
		out = append(out, f)
	}

	// backfill fields the recipe requires on this step but the model
	// forgot, as long as there is room
	for _, def := range rec.FieldsForStep(stepID) {
		if seen[def.ID] || len(out) >= maxFields {
			continue
		}
		if !def.Required && def.Kind != recipe.FieldEmailList && def.Kind != recipe.FieldSelect {
			continue
		}
		seen[def.ID] = true
		out = append(out, FieldPayload{
			ID:       def.ID,
			Label:    truncate(def.Label, maxLabelLen),
			Kind:     string(def.Kind),
			Required: def.Required,
			Options:  stringOptionPayloads(def.Options),
		})
	}

	return out
}

func repairFieldKind(kind string) recipe.FieldKind {
	kind = strings.TrimSpace(strings.ToLower(kind))
	if mapped, ok := fieldKindRemap[kind]; ok {
		return mapped
	}
	return recipe.FieldText
}

func repairCTA(cta *CTAPayload) *CTAPayload {
	if cta == nil || strings.TrimSpace(cta.Label) == "" {
		return &CTAPayload{Label: "Continue", Action: ActionNextStep}
	}
	cta.Label = truncate(strings.TrimSpace(cta.Label), 40)
	switch cta.Action {
	case ActionNextStep, ActionSubmit, ActionFinish, ActionSkip:
	default:
		cta.Action = ActionNextStep
	}
	return cta
}

func recipeFieldLabel(rec *recipe.CanvasRecipe, fieldID string) string {
	for _, def := range rec.Fields {
		if def.ID == fieldID {
			return truncate(def.Label, maxLabelLen)
		}
	}
	return fieldID
}

func stringOptionPayloads(values []string) []OptionPayload {
	if len(values) == 0 {
		return nil
	}
	out := make([]OptionPayload, 0, len(values))
	for _, v := range values {
		out = append(out, OptionPayload{Value: v, Label: v})
	}
	return out
}

// truncate cuts on a rune boundary so a multi-byte character is never
// split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return strings.TrimSpace(s[:max])
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
