package classifier

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alexanderramin/promptcanvas/internal/llm"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

// LLMAcceptanceConfidence is the floor an LLM classification must clear;
// below it the heuristic decision stands.
const LLMAcceptanceConfidence = 0.6

const maxTags = 3
const maxReasoningLen = 160

// Decision sources.
const (
	SourceLLM        = "llm"
	SourceHeuristics = "heuristics"
)

// Decision is the recipe choice for a prompt.
type Decision struct {
	RecipeID   recipe.ID      `json:"recipeId"`
	Persona    recipe.Persona `json:"persona"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Source     string         `json:"source"`
}

const classifySystemPrompt = `You pick the onboarding recipe for a workspace setup prompt.

Recipes:
- "R1": solo starter, one person getting organized
- "R2": team workspace, an existing team wiring in their tools
- "R3": client portal, an agency or consultant serving clients
- "R4": governed rollout, compliance or approval-heavy organizations

Respond with one JSON object:
{"recipeId": "R1|R2|R3|R4", "persona": "explorer|team|client|governed", "confidence": 0.0-1.0, "reasoning": "<max 160 chars>", "tags": ["<up to 3 short cues>"]}

Confidence reflects how clearly the prompt fits the recipe. Output JSON only.`

// Classifier decides which recipe fits a prompt, preferring the LLM when
// it is confident and falling back to keyword heuristics otherwise.
type Classifier struct {
	client   llm.Client
	registry *recipe.Registry
	log      *zap.Logger
}

// New creates a Classifier.
func New(client llm.Client, registry *recipe.Registry, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{client: client, registry: registry, log: log}
}

type decisionWire struct {
	RecipeID   string   `json:"recipeId"`
	Persona    string   `json:"persona"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Tags       []string `json:"tags"`
}

// Classify never fails: the heuristic path always produces a decision,
// and the LLM path only replaces it when its confidence clears the
// acceptance floor.
func (c *Classifier) Classify(ctx context.Context, prompt string) Decision {
	keyword := signal.ExtractKeywordSignals(prompt)
	heuristic := c.heuristicDecision(keyword)

	if c.client == nil || !c.client.Configured() {
		return heuristic
	}

	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskClassify,
		SystemPrompt: classifySystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		c.log.Warn("llm classification failed, using heuristics", zap.Error(err))
		return heuristic
	}

	wire, err := llm.ExtractJSON[decisionWire](resp.Text, nil)
	if err != nil {
		c.log.Warn("llm classification unparseable, using heuristics", zap.Error(err))
		return heuristic
	}

	decision, ok := c.repairDecision(wire)
	if !ok {
		c.log.Warn("llm classification named an unknown recipe, using heuristics",
			zap.String("recipe_id", wire.RecipeID))
		return heuristic
	}
	if decision.Confidence < LLMAcceptanceConfidence {
		c.log.Debug("llm classification below acceptance floor, using heuristics",
			zap.Float64("confidence", decision.Confidence))
		return heuristic
	}
	return decision
}

// repairDecision normalizes an LLM decision: the recipe must exist, the
// persona comes from the recipe when the model's answer is off, tags
// dedupe and cap at three, reasoning truncates, confidence clamps.
func (c *Classifier) repairDecision(wire decisionWire) (Decision, bool) {
	rec, err := c.registry.Get(recipe.ID(strings.TrimSpace(strings.ToUpper(wire.RecipeID))))
	if err != nil {
		return Decision{}, false
	}

	persona := recipe.Persona(strings.TrimSpace(strings.ToLower(wire.Persona)))
	if persona != rec.Persona {
		persona = rec.Persona
	}

	return Decision{
		RecipeID:   rec.ID,
		Persona:    persona,
		Confidence: clamp01(wire.Confidence),
		Reasoning:  truncate(strings.TrimSpace(wire.Reasoning), maxReasoningLen),
		Tags:       dedupeTags(wire.Tags),
		Source:     SourceLLM,
	}, true
}

// heuristicDecision maps keyword signals straight to a recipe:
// compliance evidence wins, then client-serving cues, then any sign of a
// team or tool stack, and a quiet prompt lands on the solo starter.
func (c *Classifier) heuristicDecision(keyword signal.Partial) Decision {
	if keyword.ComplianceTags != nil && len(keyword.ComplianceTags.Value) > 0 {
		return heuristic(recipe.GovernedRollout, recipe.PersonaGoverned,
			keyword.ComplianceTags.Meta.Confidence,
			"compliance requirements in prompt",
			keyword.ComplianceTags.Value)
	}

	if keyword.CopyTone != nil && keyword.CopyTone.Value == signal.ToneTrustedAdvisor {
		return heuristic(recipe.ClientPortal, recipe.PersonaClient,
			keyword.CopyTone.Meta.Confidence,
			"client-serving cues in prompt",
			[]string{"client-facing"})
	}
	if keyword.Industry != nil && keyword.Industry.Value == "agency" {
		return heuristic(recipe.ClientPortal, recipe.PersonaClient,
			keyword.Industry.Meta.Confidence,
			"agency serving clients",
			[]string{"agency"})
	}

	teamish := keyword.TeamSizeBracket != nil &&
		keyword.TeamSizeBracket.Value != signal.BracketSolo
	multiTool := keyword.ToolsUsed != nil && len(keyword.ToolsUsed.Value) >= 2
	if teamish || multiTool {
		conf := 0.0
		var tags []string
		if teamish {
			conf = keyword.TeamSizeBracket.Meta.Confidence
			tags = append(tags, "team size "+string(keyword.TeamSizeBracket.Value))
		}
		if multiTool {
			if keyword.ToolsUsed.Meta.Confidence > conf {
				conf = keyword.ToolsUsed.Meta.Confidence
			}
			tags = append(tags, "existing tool stack")
		}
		return heuristic(recipe.TeamWorkspace, recipe.PersonaTeam, conf,
			"team or tool stack in prompt", tags)
	}

	conf := 0.5
	if keyword.TeamSizeBracket != nil {
		// explicit solo phrasing is strong evidence, not a shrug
		conf = keyword.TeamSizeBracket.Meta.Confidence
	}
	return heuristic(recipe.SoloStarter, recipe.PersonaExplorer, conf,
		"no team, client, or compliance cues", nil)
}

func heuristic(id recipe.ID, persona recipe.Persona, conf float64, reasoning string, tags []string) Decision {
	return Decision{
		RecipeID:   id,
		Persona:    persona,
		Confidence: clamp01(conf),
		Reasoning:  truncate(reasoning, maxReasoningLen),
		Tags:       dedupeTags(tags),
		Source:     SourceHeuristics,
	}
}

func dedupeTags(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, truncate(tag, 40))
		if len(out) == maxTags {
			break
		}
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
