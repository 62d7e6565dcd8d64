package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <prompt>",
		Short: "Classify a prompt into a canvas recipe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return fmt.Errorf("prompt must not be empty")
			}

			decision := app.Classifier.Classify(cmd.Context(), prompt)
			signals := app.Resolver.Resolve(cmd.Context(), prompt)

			out, err := json.MarshalIndent(map[string]any{
				"decision": decision,
				"signals":  signals,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
