package noop

import (
	"context"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
)

// Generator is the stand-in used when no model provider is configured. It
// always emits an empty but well-formed payload.
type Generator struct{}

var _ interfaces.Generator = (*Generator)(nil)

func New() *Generator {
	return &Generator{}
}

func (g *Generator) Identity() string {
	return interfaces.IdentityDisabled
}

func (g *Generator) Generate(ctx context.Context, _ string, _ interfaces.GenConstraints) (string, error) {
	logger.Debug(ctx, "Noop generator called - always returns empty payload")
	return `{"deals": [], "trend_summary": "No model configured."}`, nil
}
