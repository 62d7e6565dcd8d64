package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alexanderramin/promptcanvas/internal/llm"
	"github.com/alexanderramin/promptcanvas/internal/personalization"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

const planSystemPrompt = `You plan the next onboarding step of a workspace setup canvas.

You receive the user's original prompt, the chosen recipe with its steps and fields, the personalization overrides already decided, and the session state (captured values, completed steps).

Propose exactly one next step as a single JSON object:
{
  "stepId": "<one of the recipe's step ids>",
  "title": "<step title, max 80 chars>",
  "description": "<optional, max 240 chars>",
  "persona": "<explorer|team|client|governed>",
  "reasoning": "<why this step now, max 160 chars>",
  "confidence": <0.0-1.0>,
  "fields": [{"id": "<canonical field id>", "label": "...", "kind": "<text|select|multiline|checkbox|email_list>", "required": true, "options": [{"value": "...", "label": "..."}]}],
  "primaryCta": {"label": "Continue", "action": "next_step"}
}

Never propose a step the user already completed. At most 6 fields. Output JSON only.`

// Request carries everything the generator needs for one proposal.
type Request struct {
	Prompt    string
	Recipe    *recipe.CanvasRecipe
	Session   *session.Session
	Signals   signal.Signals
	Overrides map[string]personalization.Override
}

// Generator proposes the next canvas step via the LLM. Every failure
// mode yields a nil plan; callers fall back to NextPlan.
type Generator struct {
	client llm.Client
	log    *zap.Logger
}

// NewGenerator creates a Generator backed by client.
func NewGenerator(client llm.Client, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{client: client, log: log}
}

// Generate asks the LLM for the next step, repairs and validates the
// response, and renders it as a FormPlan. Returns nil when the client is
// not configured, the call fails, or the payload cannot be made valid.
func (g *Generator) Generate(ctx context.Context, req Request) *FormPlan {
	if g.client == nil || !g.client.Configured() || req.Recipe == nil {
		return nil
	}

	userPrompt, err := buildPlanContext(req)
	if err != nil {
		g.log.Warn("building plan context failed", zap.Error(err))
		return nil
	}

	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskPlan,
		SystemPrompt: planSystemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		g.log.Warn("plan generation call failed", zap.Error(err))
		return nil
	}

	payload, err := llm.ExtractJSON[Payload](resp.Text, nil)
	if err != nil {
		g.log.Warn("plan payload unparseable", zap.Error(err))
		return nil
	}

	Repair(&payload, req.Recipe)

	if err := Validate(&payload); err != nil {
		g.log.Warn("plan payload rejected by schema", zap.Error(err))
		return nil
	}

	step, ok := req.Recipe.Step(payload.StepID)
	if !ok {
		g.log.Warn("plan payload references unknown step", zap.String("step_id", payload.StepID))
		return nil
	}
	if req.Session != nil && stepDone(req.Session.CompletedSteps, step.ID) {
		g.log.Warn("plan payload proposes a completed step", zap.String("step_id", step.ID))
		return nil
	}

	return renderPayload(&payload, step, req)
}

// renderPayload converts a validated payload into a FormPlan, filling
// each field's value from the session.
func renderPayload(p *Payload, step recipe.StepDefinition, req Request) *FormPlan {
	fields := make([]Field, 0, len(p.Fields))
	for _, f := range p.Fields {
		fields = append(fields, Field{
			ID:          f.ID,
			Label:       f.Label,
			Kind:        recipe.FieldKind(f.Kind),
			Description: f.Description,
			Required:    f.Required,
			Options:     payloadOptions(f.Options),
			Value:       sessionValue(req.Session, f.ID),
		})
	}

	title := p.Title
	if title == "" {
		title = step.Title
	}

	out := &Step{
		ID:          step.ID,
		Title:       title,
		Description: p.Description,
		Fields:      fields,
		PrimaryCTA:  CTA{Label: p.PrimaryCTA.Label, Action: p.PrimaryCTA.Action},
		Reasoning:   p.Reasoning,
		Confidence:  p.Confidence,
	}

	return &FormPlan{
		Kind:    KindRenderStep,
		Step:    out,
		Stepper: buildStepper(req.Recipe, req.Session, step.ID),
		Source:  SourceLLM,
	}
}

func payloadOptions(in []OptionPayload) []FieldOption {
	if len(in) == 0 {
		return nil
	}
	out := make([]FieldOption, 0, len(in))
	for _, o := range in {
		out = append(out, FieldOption{Value: o.Value, Label: o.Label})
	}
	return out
}

// buildPlanContext renders the generation context as compact JSON the
// model can read back reliably.
func buildPlanContext(req Request) (string, error) {
	type stepCtx struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}
	type fieldCtx struct {
		ID       string `json:"id"`
		Label    string `json:"label"`
		Kind     string `json:"kind"`
		StepID   string `json:"stepId"`
		Required bool   `json:"required,omitempty"`
	}

	var completed []string
	values := map[string]any{}
	if req.Session != nil {
		completed = req.Session.CompletedSteps
		values = req.Session.Values
	}

	steps := make([]stepCtx, 0, len(req.Recipe.Steps))
	for _, s := range req.Recipe.Steps {
		steps = append(steps, stepCtx{ID: s.ID, Title: s.Title, Completed: stepDone(completed, s.ID)})
	}
	fields := make([]fieldCtx, 0, len(req.Recipe.Fields))
	for _, f := range req.Recipe.Fields {
		fields = append(fields, fieldCtx{
			ID: f.ID, Label: f.Label, Kind: string(f.Kind), StepID: f.StepID, Required: f.Required,
		})
	}

	overrides := map[string]any{}
	for id, o := range req.Overrides {
		overrides[id] = o.Value
	}

	snapshot := map[string]any{
		"prompt":         strings.TrimSpace(req.Prompt),
		"recipeId":       req.Recipe.ID,
		"persona":        req.Recipe.Persona,
		"steps":          steps,
		"fields":         fields,
		"overrides":      overrides,
		"capturedValues": values,
		"signals":        summarizeSignals(req.Signals),
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal plan context: %w", err)
	}
	return string(raw), nil
}

// summarizeSignals keeps only confidently known categories so the model
// is not fed a wall of unknowns.
func summarizeSignals(s signal.Signals) map[string]any {
	out := map[string]any{}
	if s.TeamSizeBracket.Value != signal.BracketUnknown {
		out["teamSizeBracket"] = s.TeamSizeBracket.Value
	}
	if len(s.DecisionMakers.Value) > 0 {
		out["decisionMakers"] = s.DecisionMakers.Value
	}
	if s.ApprovalChainDepth.Value != signal.DepthUnknown {
		out["approvalChainDepth"] = s.ApprovalChainDepth.Value
	}
	if len(s.ToolsUsed.Value) > 0 {
		out["toolsUsed"] = s.ToolsUsed.Value
	}
	if s.IntegrationCriticality.Value != signal.CriticalityUnknown {
		out["integrationCriticality"] = s.IntegrationCriticality.Value
	}
	if len(s.ComplianceTags.Value) > 0 {
		out["complianceTags"] = s.ComplianceTags.Value
	}
	if s.CopyTone.Value != signal.ToneNeutral {
		out["copyTone"] = s.CopyTone.Value
	}
	if s.Industry.Value != "" {
		out["industry"] = s.Industry.Value
	}
	if s.PrimaryObjective.Value != signal.ObjectiveUnknown {
		out["primaryObjective"] = s.PrimaryObjective.Value
	}
	if len(s.Constraints.Value) > 0 {
		out["constraints"] = s.Constraints.Value
	}
	if s.OperatingRegion.Value != "" {
		out["operatingRegion"] = s.OperatingRegion.Value
	}
	return out
}
