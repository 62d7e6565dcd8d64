package personalization

import (
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

// scoringContext carries the inputs a cascade reads and accumulates the
// confidences of every signal a rule actually consulted. The aggregate
// of those confidences drives the fallback guardrail.
type scoringContext struct {
	recipe     *recipe.CanvasRecipe
	signals    signal.Signals
	registered []float64
}

// register records that a rule consulted a signal with this confidence.
func (c *scoringContext) register(confidence float64) {
	c.registered = append(c.registered, confidence)
}

// aggregateConfidence is the mean of all registered confidences, or 0
// when no rule consulted any signal.
func (c *scoringContext) aggregateConfidence() float64 {
	if len(c.registered) == 0 {
		return 0
	}
	var sum float64
	for _, v := range c.registered {
		sum += v
	}
	return sum / float64(len(c.registered))
}

// usable reports whether a signal's confidence clears the bar to act:
// either high on its own, or supporting-level with independent
// corroboration elsewhere in the signal set.
func (c *scoringContext) usable(confidence float64) bool {
	if confidence >= HighConfidence {
		return true
	}
	return confidence >= SupportingConfidence && c.hasCorroboration()
}

// hasCorroboration reports whether some independent signal backs up a
// borderline one. Compliance tags are the canonical corroborator.
func (c *scoringContext) hasCorroboration() bool {
	tags := c.signals.ComplianceTags
	return len(tags.Value) > 0 && tags.Meta.Confidence >= SupportingConfidence
}

// complianceUsable reports whether compliance evidence is strong enough
// to drive knob decisions.
func (c *scoringContext) complianceUsable() bool {
	tags := c.signals.ComplianceTags
	return len(tags.Value) > 0 && c.usable(tags.Meta.Confidence)
}

// knobEval is the in-flight state of one knob's cascade.
type knobEval struct {
	def       recipe.KnobDefinition
	value     any
	rationale string
	applied   bool
	locked    bool
}

// set records a rule's decision. Rationales accumulate into a trail, so
// a floor layered on top of a mapping keeps both sentences. A locked
// decision short-circuits every later, lower-priority rule.
func (e *knobEval) set(value any, rationale string, lock bool) {
	e.value = value
	if e.applied {
		e.rationale += "; " + rationale
	} else {
		e.rationale = rationale
		e.applied = true
	}
	e.locked = lock
}

// knobRule is one (predicate, action) pair of a cascade, highest
// priority first.
type knobRule struct {
	when  func(*scoringContext) bool
	apply func(*scoringContext, *knobEval)
}

// Override is the scored result for a single knob.
type Override struct {
	Value              any    `json:"value"`
	Rationale          string `json:"rationale"`
	ChangedFromDefault bool   `json:"changedFromDefault"`
}

// runCascade evaluates the rules in order against the knob, starting from
// its recipe default. Number results are clamped to the knob's bounds and
// step grid before comparison with the default.
func runCascade(ctx *scoringContext, def recipe.KnobDefinition, rules []knobRule) Override {
	eval := knobEval{def: def, value: def.Default, rationale: "recipe default"}

	for _, rule := range rules {
		if eval.locked {
			break
		}
		if rule.when(ctx) {
			rule.apply(ctx, &eval)
		}
	}

	if def.Type == recipe.KnobNumber {
		if f, ok := toFloat(eval.value); ok {
			eval.value = ClampNumber(f, def.Min, def.Max, def.Step)
		} else {
			eval.value = def.Default
			eval.rationale = "recipe default"
		}
	}

	return Override{
		Value:              eval.value,
		Rationale:          eval.rationale,
		ChangedFromDefault: !signal.ValuesEqual(eval.value, def.Default),
	}
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
