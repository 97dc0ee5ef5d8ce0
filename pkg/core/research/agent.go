// Package research produces a qualitative company overview to accompany the
// quantitative screen. It talks to Gemini directly so it can keep using the
// search-grounded model variants.
package research

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"vyasaquant/pkg/core/prompt"
	"vyasaquant/pkg/core/utils"
)

// CompanyResearcher generates a background brief for a screened stock.
type CompanyResearcher struct {
	modelName string
	client    *genai.Client
}

// NewCompanyResearcher creates a researcher backed by GEMINI_API_KEY.
func NewCompanyResearcher(ctx context.Context) (*CompanyResearcher, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &CompanyResearcher{
		modelName: "gemini-2.0-flash",
		client:    client,
	}, nil
}

// Close releases the underlying client.
func (r *CompanyResearcher) Close() error {
	return r.client.Close()
}

// Research returns a markdown overview of the company.
func (r *CompanyResearcher) Research(ctx context.Context, symbol, companyName string) (string, error) {
	pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.ResearchCompanyOverview)
	if err != nil {
		return "", fmt.Errorf("research prompt unavailable: %w", err)
	}

	userPrompt, err := prompt.RenderUserPrompt(pt, prompt.NewContext().
		Set("Symbol", symbol).
		Set("CompanyName", companyName))
	if err != nil {
		return "", fmt.Errorf("failed to render research prompt: %w", err)
	}

	model := r.client.GenerativeModel(r.modelName)
	model.SetTemperature(0.7)

	fullPrompt := fmt.Sprintf("%s\n\nTask: %s", pt.SystemPrompt, userPrompt)
	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("research generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty research response for %s", symbol)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return utils.CleanMarkdown(sb.String()), nil
}
