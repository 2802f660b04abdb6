package llm

import (
	"deal-radar/internal/interfaces"
	"deal-radar/internal/llm/claude"
	"deal-radar/internal/llm/llmobs"
	"deal-radar/internal/llm/noop"
	"deal-radar/internal/llm/openai"
	"deal-radar/internal/store"
)

// New selects the generator for the configured provider, wrapped with
// observability. Any other provider value yields the noop generator, whose
// disabled identity makes extraction skip the model call entirely.
func New(cfg *store.Config) interfaces.Generator {
	switch cfg.LLM.Provider {
	case "openai":
		return llmobs.Wrap(openai.New(cfg.LLM.Model))
	case "claude":
		return llmobs.Wrap(claude.New(cfg.LLM.Model))
	default:
		return noop.New()
	}
}
