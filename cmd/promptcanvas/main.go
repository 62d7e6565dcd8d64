package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alexanderramin/promptcanvas/internal/classifier"
	"github.com/alexanderramin/promptcanvas/internal/cli"
	"github.com/alexanderramin/promptcanvas/internal/config"
	"github.com/alexanderramin/promptcanvas/internal/llm"
	"github.com/alexanderramin/promptcanvas/internal/personalization"
	"github.com/alexanderramin/promptcanvas/internal/plan"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	// LLM access is optional; everything degrades to keyword signals and
	// the deterministic planner when no credential is configured.
	llmCfg := llm.LoadConfig()
	observer := llm.MultiObserver{llm.NewZapObserver(log), llm.PromObserver{}}
	client := llm.NewChatClient(llmCfg, observer)

	registry := recipe.NewRegistry()
	store := session.NewStore(session.Config{
		IdleTTL:     cfg.Session.IdleTTL,
		MaxSessions: cfg.Session.MaxSessions,
		MaxEvents:   cfg.Session.MaxEvents,
	}, log)
	defer store.Close()

	app := &cli.App{
		Config:     cfg,
		Registry:   registry,
		Sessions:   store,
		Resolver:   signal.NewResolver(signal.NewFetcher(client, log), cfg.Personalization.LLMOverrideThreshold, log),
		Classifier: classifier.New(client, registry, log),
		Engine:     personalization.NewEngine(registry, log),
		Generator:  plan.NewGenerator(client, log),
		Log:        log,
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
