package recipe

import "fmt"

// ID identifies a canvas recipe.
type ID string

const (
	SoloStarter     ID = "R1"
	TeamWorkspace   ID = "R2"
	ClientPortal    ID = "R3"
	GovernedRollout ID = "R4"
)

// Persona names the archetype a recipe is tuned for.
type Persona string

const (
	PersonaExplorer Persona = "explorer"
	PersonaTeam     Persona = "team"
	PersonaClient   Persona = "client"
	PersonaGoverned Persona = "governed"
)

// KnobType distinguishes numeric knobs from enumerated ones.
type KnobType string

const (
	KnobNumber KnobType = "number"
	KnobEnum   KnobType = "enum"
)

// KnobOption is one allowed value of an enum knob.
type KnobOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// KnobDefinition describes one tunable aspect of a recipe. Number knobs
// carry Min/Max/Step; enum knobs carry Options.
type KnobDefinition struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
	Type        KnobType     `json:"type"`
	Default     any          `json:"default"`
	Min         float64      `json:"min,omitempty"`
	Max         float64      `json:"max,omitempty"`
	Step        float64      `json:"step,omitempty"`
	Options     []KnobOption `json:"options,omitempty"`
}

// Allows reports whether value is valid for this knob.
func (k KnobDefinition) Allows(value any) bool {
	switch k.Type {
	case KnobNumber:
		f, ok := toFloat(value)
		return ok && f >= k.Min && f <= k.Max
	case KnobEnum:
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, opt := range k.Options {
			if opt.Value == s {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// FieldKind is the input control type of a canvas field.
type FieldKind string

const (
	FieldText      FieldKind = "text"
	FieldSelect    FieldKind = "select"
	FieldMultiline FieldKind = "multiline"
	FieldCheckbox  FieldKind = "checkbox"
	FieldEmailList FieldKind = "email_list"
)

// FieldDefinition describes one canvas form field a recipe offers.
type FieldDefinition struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	StepID   string    `json:"stepId"`
	Options  []string  `json:"options,omitempty"`
}

// StepDefinition is one step of a recipe's onboarding flow, in order.
type StepDefinition struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CanvasRecipe bundles a persona's default canvas: its ordered steps,
// fields, and the five tunable knobs.
type CanvasRecipe struct {
	ID          ID                `json:"id"`
	Persona     Persona           `json:"persona"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Steps       []StepDefinition  `json:"steps"`
	Fields      []FieldDefinition `json:"fields"`
	Knobs       []KnobDefinition  `json:"knobs"`
}

// Knob returns the knob definition with the given id.
func (r *CanvasRecipe) Knob(id string) (KnobDefinition, bool) {
	for _, k := range r.Knobs {
		if k.ID == id {
			return k, true
		}
	}
	return KnobDefinition{}, false
}

// Step returns the step definition with the given id.
func (r *CanvasRecipe) Step(id string) (StepDefinition, bool) {
	for _, s := range r.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return StepDefinition{}, false
}

// FieldsForStep returns the recipe fields belonging to a step, in order.
func (r *CanvasRecipe) FieldsForStep(stepID string) []FieldDefinition {
	var out []FieldDefinition
	for _, f := range r.Fields {
		if f.StepID == stepID {
			out = append(out, f)
		}
	}
	return out
}

// UnknownRecipeError is returned by Registry.Get for ids outside R1-R4.
type UnknownRecipeError struct {
	ID ID
}

func (e *UnknownRecipeError) Error() string {
	return fmt.Sprintf("unknown recipe %q", string(e.ID))
}
