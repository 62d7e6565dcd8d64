package plan

import (
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
)

// Kind discriminates the FormPlan union.
type Kind string

const (
	KindRenderStep Kind = "render_step"
	KindReview     Kind = "review"
	KindSuccess    Kind = "success"
	KindError      Kind = "error"
)

// CTA is the primary call to action of a rendered step.
type CTA struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// CTA actions the canvas understands.
const (
	ActionNextStep = "next_step"
	ActionSubmit   = "submit"
	ActionFinish   = "finish"
	ActionSkip     = "skip"
)

// FieldOption is one choice of a select field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a concrete form field ready to render, with any previously
// captured session value filled in.
type Field struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Kind        recipe.FieldKind `json:"kind"`
	Description string           `json:"description,omitempty"`
	Required    bool             `json:"required"`
	Options     []FieldOption    `json:"options,omitempty"`
	Value       any              `json:"value,omitempty"`
}

// Step is the render_step payload of a FormPlan.
type Step struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
	PrimaryCTA  CTA     `json:"primaryCta"`
	Reasoning   string  `json:"reasoning,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// ReviewRow is one line of the review summary.
type ReviewRow struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Stepper statuses.
const (
	StatusComplete = "complete"
	StatusCurrent  = "current"
	StatusUpcoming = "upcoming"
	StatusSkipped  = "skipped"
)

// StepperItem is one entry of the progress indicator.
type StepperItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// FormPlan is what the canvas renders next. Exactly one of Step, Review,
// or Message is populated, per Kind.
type FormPlan struct {
	Kind    Kind          `json:"kind"`
	Step    *Step         `json:"step,omitempty"`
	Review  []ReviewRow   `json:"review,omitempty"`
	Message string        `json:"message,omitempty"`
	Stepper []StepperItem `json:"stepper,omitempty"`
	Source  string        `json:"source,omitempty"`
}

// Plan sources.
const (
	SourceLLM   = "llm"
	SourceRules = "rules"
)

// ErrorPlan renders the canvas error state with a short message safe to
// show the user.
func ErrorPlan(message string) *FormPlan {
	return &FormPlan{Kind: KindError, Message: message, Source: SourceRules}
}

// buildStepper lays out the recipe steps with their statuses relative to
// the current step. Explorer recipes mark the preferences step skipped
// when the user never completed it and it is not the current step.
func buildStepper(rec *recipe.CanvasRecipe, sess *session.Session, currentStepID string) []StepperItem {
	var completed []string
	if sess != nil {
		completed = sess.CompletedSteps
	}

	out := make([]StepperItem, 0, len(rec.Steps))
	for _, step := range rec.Steps {
		item := StepperItem{ID: step.ID, Title: step.Title, Status: StatusUpcoming}
		switch {
		case stepDone(completed, step.ID):
			item.Status = StatusComplete
		case step.ID == currentStepID:
			item.Status = StatusCurrent
		case stepSkipped(rec, completed, step.ID):
			item.Status = StatusSkipped
		}
		out = append(out, item)
	}
	return out
}

// stepSkipped reports whether a recipe passes over a step for its
// persona. Explorers skip preferences unless they already completed it.
func stepSkipped(rec *recipe.CanvasRecipe, completed []string, stepID string) bool {
	return rec.Persona == recipe.PersonaExplorer &&
		stepID == recipe.StepPreferences &&
		!stepDone(completed, stepID)
}

func stepDone(completed []string, stepID string) bool {
	for _, id := range completed {
		if id == stepID {
			return true
		}
	}
	return false
}
