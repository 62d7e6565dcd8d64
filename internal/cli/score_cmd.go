package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/promptcanvas/internal/plan"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
)

func newScoreCmd(app *App) *cobra.Command {
	var recipeID string

	cmd := &cobra.Command{
		Use:   "score <prompt>",
		Short: "Run the full pipeline for a prompt and print the scored plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return fmt.Errorf("prompt must not be empty")
			}

			id := recipe.ID(recipeID)
			var decision any
			if id == "" {
				d := app.Classifier.Classify(cmd.Context(), prompt)
				decision = d
				id = d.RecipeID
			}

			rec, err := app.Registry.Get(id)
			if err != nil {
				return err
			}

			signals := app.Resolver.Resolve(cmd.Context(), prompt)
			knobs, err := app.Engine.Score(rec.ID, signals)
			if err != nil {
				return err
			}

			formPlan := app.Generator.Generate(cmd.Context(), plan.Request{
				Prompt:    prompt,
				Recipe:    rec,
				Signals:   signals,
				Overrides: knobs.Overrides,
			})
			if formPlan == nil {
				formPlan = plan.NextPlan(rec, nil)
			}

			out, err := json.MarshalIndent(map[string]any{
				"decision": decision,
				"signals":  signals,
				"knobs":    knobs,
				"plan":     formPlan,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&recipeID, "recipe", "", "recipe id (R1-R4); classified from the prompt when omitted")
	return cmd
}
