package llmclient

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"sxlrun/internal/plan"
)

// GenaiPlanGenerator is a PlanGenerator backed by Gemini: a
// genai.GenerativeModel invoked with a system instruction, with the raw
// response logged and cleaned of markdown code fences before parsing.
type GenaiPlanGenerator struct {
	model *genai.GenerativeModel
}

// NewGenaiPlanGenerator constructs a Gemini-backed generator for
// modelName (e.g. "gemini-1.5-pro"), using apiKey for authentication.
func NewGenaiPlanGenerator(ctx context.Context, apiKey, modelName string) (*GenaiPlanGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llmclient: create genai client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	return &GenaiPlanGenerator{model: model}, nil
}

// GeneratePlan sends systemPrompt as the model's system instruction and
// userUtterance as the single user turn, then parses the model's JSON
// response into a Plan.
func (g *GenaiPlanGenerator) GeneratePlan(ctx context.Context, systemPrompt, userUtterance string) (*plan.Plan, error) {
	g.model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(userUtterance))
	if err != nil {
		return nil, fmt.Errorf("llmclient: generate content: %w", err)
	}

	raw, err := extractText(resp)
	if err != nil {
		return nil, err
	}
	log.Printf("llmclient: raw model response: %s", raw)

	cleaned := cleanJSONResponse(raw)
	p, err := plan.Unmarshal([]byte(cleaned))
	if err != nil {
		return nil, &GenerationError{RawResponse: raw, Cause: err}
	}
	return p, nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("llmclient: empty response from model")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// cleanJSONResponse strips a surrounding markdown code fence (```json ...
// ```), falling back to extracting the outermost {...} span.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		return strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
