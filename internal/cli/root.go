package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/promptcanvas/internal/classifier"
	"github.com/alexanderramin/promptcanvas/internal/config"
	"github.com/alexanderramin/promptcanvas/internal/personalization"
	"github.com/alexanderramin/promptcanvas/internal/plan"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

// App holds the wired services the CLI commands run against.
type App struct {
	Config     *config.Config
	Registry   *recipe.Registry
	Sessions   *session.Store
	Resolver   *signal.Resolver
	Classifier *classifier.Classifier
	Engine     *personalization.Engine
	Generator  *plan.Generator
	Log        *zap.Logger
}

// NewRootCmd creates the top-level "promptcanvas" command and registers
// all subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "promptcanvas",
		Short:         "Prompt-to-canvas personalization service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newClassifyCmd(app),
		newScoreCmd(app),
	)

	return root
}
