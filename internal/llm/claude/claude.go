package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/trace"
)

const systemPrompt = "You are a precise M&A analyst. Respond ONLY with compact JSON matching the requested schema."

// Generator calls the Anthropic messages API.
type Generator struct {
	model    string
	endpoint string
}

var _ interfaces.Generator = (*Generator)(nil)

func New(model string) *Generator {
	// default messages endpoint (public Anthropic)
	endpoint := "https://api.anthropic.com/v1/messages"
	// If you use a proxy/bedrock/vertex, set endpoint via CLAUDE_API_ENDPOINT env var
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Generator{model: model, endpoint: endpoint}
}

func (g *Generator) Identity() string {
	return "claude:" + g.model
}

func (g *Generator) Generate(ctx context.Context, prompt string, c interfaces.GenConstraints) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return "", errors.New("CLAUDE_API_KEY missing")
	}

	reqBody := map[string]any{
		"model":  g.model,
		"system": systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
	}

	bb, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, "POST", g.endpoint, bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("claude http %d: %s", resp.StatusCode, string(body))
	}

	respBytes, _ := io.ReadAll(resp.Body)
	return extractText(respBytes)
}

// extractText drills assistant text out of the response, tolerating both the
// current content-block shape and older completion-style fields.
func extractText(respBytes []byte) (string, error) {
	var anyResp any
	if err := json.Unmarshal(respBytes, &anyResp); err != nil {
		// Not JSON? treat full body as the text response
		return strings.TrimSpace(string(respBytes)), nil
	}

	m, ok := anyResp.(map[string]any)
	if !ok {
		return strings.TrimSpace(string(respBytes)), nil
	}

	// 1) content blocks from the messages API
	if content, found := m["content"]; found {
		if arr, ok2 := content.([]any); ok2 {
			var parts []string
			for _, block := range arr {
				if bm, ok3 := block.(map[string]any); ok3 {
					if s, ok4 := bm["text"].(string); ok4 && strings.TrimSpace(s) != "" {
						parts = append(parts, s)
					}
				}
			}
			if len(parts) > 0 {
				return strings.TrimSpace(strings.Join(parts, "\n")), nil
			}
		}
	}

	// 2) completion / output_text / completion_text
	for _, k := range []string{"completion", "output", "output_text", "completion_text", "result"} {
		if v, exists := m[k]; exists {
			if s, ok2 := v.(string); ok2 && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), nil
			}
		}
	}

	return "", errors.New("no assistant text in response")
}
