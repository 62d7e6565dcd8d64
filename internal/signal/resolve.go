package signal

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolver runs both extraction paths and merges the results.
type Resolver struct {
	fetcher   *Fetcher
	threshold float64
	log       *zap.Logger
}

// NewResolver creates a Resolver. A threshold outside (0,1] falls back to
// DefaultLLMOverrideThreshold.
func NewResolver(fetcher *Fetcher, threshold float64, log *zap.Logger) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultLLMOverrideThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{fetcher: fetcher, threshold: threshold, log: log}
}

// Resolve extracts keyword and LLM signals in parallel and merges them.
// The LLM path fails open: on error or timeout the merge proceeds with
// keyword signals alone, so Resolve never returns an error.
func (r *Resolver) Resolve(ctx context.Context, prompt string) Signals {
	var (
		keyword Partial
		llmPart Partial
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keyword = ExtractKeywordSignals(prompt)
		return nil
	})
	g.Go(func() error {
		part, err := r.fetcher.Fetch(gctx, prompt)
		if err != nil {
			r.log.Warn("llm signal extraction failed, continuing with keywords", zap.Error(err))
			return nil
		}
		llmPart = part
		return nil
	})
	_ = g.Wait()

	return Merge(keyword, llmPart, r.threshold)
}
