package orchestrator

import (
	"context"
	"log/slog"

	"edugate/internal/core"
)

// GenerationState is the state of one lesson generation.
type GenerationState int

const (
	StateNotTried GenerationState = iota
	StateAttempting
	StateSucceeded
	StateFallbackUsed
)

func (s GenerationState) String() string {
	switch s {
	case StateNotTried:
		return "not_tried"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateFallbackUsed:
		return "fallback_used"
	default:
		return "unknown"
	}
}

// generation drives NotTried -> Attempting(n) -> Succeeded | FallbackUsed.
// Unusable or throttled attempts consume the budget; any other upstream
// error ends generation immediately, as does a throttled final attempt.
type generation struct {
	state       GenerationState
	attempt     int
	maxAttempts int
	text        string
}

func newGeneration(maxAttempts int) *generation {
	return &generation{state: StateNotTried, maxAttempts: maxAttempts}
}

func (g *generation) run(ctx context.Context, gen core.TextGenerator, prompt string, usable func(string) bool) error {
	for g.state == StateNotTried || g.state == StateAttempting {
		g.state = StateAttempting
		g.attempt++

		text, err := gen.Generate(ctx, prompt)
		switch {
		case err == nil && usable(text):
			g.text = text
			g.state = StateSucceeded
			return nil

		case err != nil && !core.IsRateLimit(err):
			return err

		case g.attempt >= g.maxAttempts:
			if err != nil {
				return err
			}
			g.state = StateFallbackUsed
			return nil
		}

		slog.Warn("lesson attempt unusable, retrying",
			"request_id", core.GetRequestID(ctx),
			"attempt", g.attempt,
			"throttled", err != nil,
		)
	}
	return nil
}
