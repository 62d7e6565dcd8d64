package llm

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes retry delays following an exponential schedule with
// proportional jitter. The zero attempt returns the initial delay.
type Backoff struct {
	cfg  BackoffConfig
	rand *rand.Rand
}

// NewBackoff creates a Backoff from config. A nil source uses the global
// math/rand source; tests pass a seeded source for determinism.
func NewBackoff(cfg BackoffConfig, src rand.Source) *Backoff {
	if cfg.InitialDelayMs <= 0 {
		cfg.InitialDelayMs = 250
	}
	if cfg.MaxDelayMs < cfg.InitialDelayMs {
		cfg.MaxDelayMs = cfg.InitialDelayMs
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 2.0
	}
	if cfg.JitterRatio < 0 || cfg.JitterRatio > 1 {
		cfg.JitterRatio = 0
	}
	b := &Backoff{cfg: cfg}
	if src != nil {
		b.rand = rand.New(src)
	}
	return b
}

// Delay returns the wait before retry number attempt (0-based).
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := float64(b.cfg.InitialDelayMs) * math.Pow(b.cfg.Multiplier, float64(attempt))
	capped := math.Min(base, float64(b.cfg.MaxDelayMs))

	if b.cfg.JitterRatio > 0 {
		span := capped * b.cfg.JitterRatio
		capped = capped - span/2 + b.float64()*span
		if capped < 0 {
			capped = 0
		}
	}
	return time.Duration(capped) * time.Millisecond
}

func (b *Backoff) float64() float64 {
	if b.rand != nil {
		return b.rand.Float64()
	}
	return rand.Float64()
}
