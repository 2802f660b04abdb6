package llmobs

import (
	"context"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
	"deal-radar/internal/trace"
)

// observableGenerator wraps a Generator with observability (logging & tracing)
type observableGenerator struct {
	gen interfaces.Generator
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(gen interfaces.Generator) interfaces.Generator {
	return &observableGenerator{
		gen: gen,
	}
}

func (og *observableGenerator) Identity() string {
	return og.gen.Identity()
}

// Generate produces a model completion with observability
func (og *observableGenerator) Generate(ctx context.Context, prompt string, c interfaces.GenConstraints) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting model completion",
		"model", og.gen.Identity(),
		"prompt_chars", len(prompt),
		"max_tokens", c.MaxTokens,
	)

	out, err := og.gen.Generate(ctx, prompt, c)
	if err != nil {
		// Use ErrorWithErrSkip(1) to report the actual caller
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get model completion", err,
			"model", og.gen.Identity(),
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Model completion received",
		"model", og.gen.Identity(),
		"response_chars", len(out),
	)

	return out, nil
}
