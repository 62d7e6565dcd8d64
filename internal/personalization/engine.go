package personalization

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

// FallbackMeta reports whether and why the guardrail discarded overrides.
type FallbackMeta struct {
	Applied             bool             `json:"applied"`
	Reasons             []FallbackReason `json:"reasons,omitempty"`
	AggregateConfidence float64          `json:"aggregateConfidence"`
	Details             []string         `json:"details,omitempty"`
}

// Result is the scored knob set for one recipe.
type Result struct {
	RecipeID  recipe.ID           `json:"recipeId"`
	Overrides map[string]Override `json:"overrides"`
	Fallback  FallbackMeta        `json:"fallback"`
}

// Engine scores recipe knobs against a resolved signal set.
type Engine struct {
	registry *recipe.Registry
	log      *zap.Logger
}

// NewEngine creates an Engine over the given recipe registry.
func NewEngine(registry *recipe.Registry, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{registry: registry, log: log}
}

// Score runs every knob cascade for the recipe and applies the fallback
// guardrail. Conflicting signal pairs skip scoring entirely; a low
// aggregate confidence after scoring discards the computed overrides.
// Either way the caller always receives a complete, usable override set.
func (e *Engine) Score(recipeID recipe.ID, signals signal.Signals) (*Result, error) {
	rec, err := e.registry.Get(recipeID)
	if err != nil {
		return nil, err
	}

	if reasons, details := detectConflicts(signals); len(reasons) > 0 {
		e.log.Info("signal conflict, falling back to recipe defaults",
			zap.String("recipe", string(recipeID)),
			zap.Any("reasons", reasons))
		fallbackTotal.WithLabelValues(string(reasons[0])).Inc()
		return &Result{
			RecipeID:  recipeID,
			Overrides: defaultOverrides(rec),
			Fallback: FallbackMeta{
				Applied: true,
				Reasons: reasons,
				Details: details,
			},
		}, nil
	}

	ctx := &scoringContext{recipe: rec, signals: signals}
	overrides := make(map[string]Override, len(rec.Knobs))
	for _, knob := range rec.Knobs {
		rules, ok := cascadesByKnob[knob.ID]
		if !ok {
			overrides[knob.ID] = Override{Value: knob.Default, Rationale: "recipe default"}
			continue
		}
		overrides[knob.ID] = runCascade(ctx, knob, rules())
	}

	aggregate := ctx.aggregateConfidence()

	// No rule consulted any signal and nothing moved off its default:
	// there is nothing to guard against, keep the defaults as scored.
	if len(ctx.registered) == 0 && !anyChanged(overrides) {
		return &Result{
			RecipeID:  recipeID,
			Overrides: overrides,
			Fallback:  FallbackMeta{AggregateConfidence: aggregate},
		}, nil
	}

	if aggregate < FallbackConfidence {
		e.log.Info("aggregate confidence below floor, falling back to recipe defaults",
			zap.String("recipe", string(recipeID)),
			zap.Float64("aggregate", aggregate))
		fallbackTotal.WithLabelValues(string(ReasonInsufficientConfidence)).Inc()
		return &Result{
			RecipeID:  recipeID,
			Overrides: defaultOverrides(rec),
			Fallback: FallbackMeta{
				Applied:             true,
				Reasons:             []FallbackReason{ReasonInsufficientConfidence},
				AggregateConfidence: aggregate,
				Details: []string{fmt.Sprintf(
					"aggregate confidence %.2f below %.2f floor", aggregate, FallbackConfidence)},
			},
		}, nil
	}

	return &Result{
		RecipeID:  recipeID,
		Overrides: overrides,
		Fallback:  FallbackMeta{AggregateConfidence: aggregate},
	}, nil
}

// detectConflicts finds signal pairs that contradict each other strongly
// enough that any scoring would be guesswork.
func detectConflicts(signals signal.Signals) ([]FallbackReason, []string) {
	var (
		reasons []FallbackReason
		details []string
	)

	tags := signals.ComplianceTags
	tone := signals.CopyTone
	if len(tags.Value) > 0 && tags.Meta.Confidence >= ConflictConfidence &&
		(tone.Value == signal.ToneFastPaced || tone.Value == signal.ToneOnboarding) &&
		tone.Meta.Confidence >= ConflictConfidence {
		reasons = append(reasons, ReasonConflictGovernanceVsFast)
		details = append(details, fmt.Sprintf(
			"compliance tags %v contradict %q tone", tags.Value, tone.Value))
	}

	bracket := signals.TeamSizeBracket
	makers := signals.DecisionMakers
	if bracket.Value == signal.BracketSolo && bracket.Meta.Confidence >= ConflictConfidence &&
		len(makers.Value) >= 2 && makers.Meta.Confidence >= ConflictConfidence {
		reasons = append(reasons, ReasonConflictSoloVsTeam)
		details = append(details, fmt.Sprintf(
			"solo team size contradicts %d decision-makers", len(makers.Value)))
	}

	return reasons, details
}

func defaultOverrides(rec *recipe.CanvasRecipe) map[string]Override {
	out := make(map[string]Override, len(rec.Knobs))
	for _, knob := range rec.Knobs {
		out[knob.ID] = Override{Value: knob.Default, Rationale: "recipe default (fallback)"}
	}
	return out
}

func anyChanged(overrides map[string]Override) bool {
	for _, o := range overrides {
		if o.ChangedFromDefault {
			return true
		}
	}
	return false
}
