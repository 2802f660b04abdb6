package interfaces

import "context"

// IdentityDisabled is the identity reported when no real model backs the
// generator. Callers that see it must not issue generation calls.
const IdentityDisabled = "disabled"

// GenConstraints bound a single generation call.
type GenConstraints struct {
	MaxTokens   int
	Temperature float32
}

// Generator is the generative-model collaborator. Implementations must
// honor the context deadline; a timeout is reported as an error and the
// caller degrades to the rule-based path.
type Generator interface {
	Generate(ctx context.Context, prompt string, c GenConstraints) (string, error)
	Identity() string
}
