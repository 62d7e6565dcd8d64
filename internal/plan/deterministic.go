package plan

import (
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
)

// NextPlan computes the next FormPlan from the recipe's step order alone,
// with no LLM involved. It is the fallback whenever generation is off or
// fails, and the sole planner for deterministic deployments.
func NextPlan(rec *recipe.CanvasRecipe, sess *session.Session) *FormPlan {
	var completed []string
	if sess != nil {
		completed = sess.CompletedSteps
	}

	for _, step := range rec.Steps {
		if stepDone(completed, step.ID) || stepSkipped(rec, completed, step.ID) {
			continue
		}
		if step.ID == recipe.StepReview {
			return reviewPlan(rec, sess)
		}
		return renderStepPlan(rec, sess, step)
	}

	return &FormPlan{
		Kind:    KindSuccess,
		Message: "Your workspace is ready.",
		Stepper: buildStepper(rec, sess, ""),
		Source:  SourceRules,
	}
}

func renderStepPlan(rec *recipe.CanvasRecipe, sess *session.Session, step recipe.StepDefinition) *FormPlan {
	defs := rec.FieldsForStep(step.ID)
	fields := make([]Field, 0, len(defs))
	for _, def := range defs {
		fields = append(fields, Field{
			ID:       def.ID,
			Label:    def.Label,
			Kind:     def.Kind,
			Required: def.Required,
			Options:  stringOptions(def.Options),
			Value:    sessionValue(sess, def.ID),
		})
	}

	return &FormPlan{
		Kind: KindRenderStep,
		Step: &Step{
			ID:         step.ID,
			Title:      step.Title,
			Fields:     fields,
			PrimaryCTA: CTA{Label: "Continue", Action: ActionNextStep},
		},
		Stepper: buildStepper(rec, sess, step.ID),
		Source:  SourceRules,
	}
}

func reviewPlan(rec *recipe.CanvasRecipe, sess *session.Session) *FormPlan {
	var rows []ReviewRow
	for _, def := range rec.Fields {
		if v := sessionValue(sess, def.ID); v != nil {
			rows = append(rows, ReviewRow{Label: def.Label, Value: v})
		}
	}

	return &FormPlan{
		Kind:    KindReview,
		Review:  rows,
		Stepper: buildStepper(rec, sess, recipe.StepReview),
		Source:  SourceRules,
	}
}

func stringOptions(values []string) []FieldOption {
	if len(values) == 0 {
		return nil
	}
	out := make([]FieldOption, 0, len(values))
	for _, v := range values {
		out = append(out, FieldOption{Value: v, Label: v})
	}
	return out
}

func sessionValue(sess *session.Session, fieldID string) any {
	if sess == nil {
		return nil
	}
	return sess.Values[fieldID]
}
