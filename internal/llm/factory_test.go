package llm

import (
	"strings"
	"testing"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/store"
)

func TestNewUnconfiguredProviderIsDisabled(t *testing.T) {
	for _, provider := range []string{"", "none"} {
		cfg := &store.Config{}
		cfg.LLM.Provider = provider

		gen := New(cfg)
		if gen == nil {
			t.Fatalf("Provider %q must yield a generator, got nil", provider)
		}
		if gen.Identity() != interfaces.IdentityDisabled {
			t.Errorf("Provider %q: expected disabled identity, got %q", provider, gen.Identity())
		}
	}
}

func TestNewConfiguredProviderIdentity(t *testing.T) {
	cfg := &store.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"

	gen := New(cfg)
	if !strings.HasPrefix(gen.Identity(), "openai:") {
		t.Errorf("Expected openai identity, got %q", gen.Identity())
	}
}
