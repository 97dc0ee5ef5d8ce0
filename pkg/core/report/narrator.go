// Package report turns a finished screen result into a markdown narrative
// via the configured LLM provider.
package report

import (
	"context"
	"fmt"
	"math"
	"strings"

	"vyasaquant/pkg/core/agent"
	"vyasaquant/pkg/core/pipeline"
	"vyasaquant/pkg/core/prompt"
	"vyasaquant/pkg/core/utils"
)

// AgentType is the routing key the manager uses for narrative generation.
const AgentType = "report_generation"

// Executor routes a prompt to the provider configured for an agent type.
// Satisfied by *agent.Manager.
type Executor interface {
	ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error)
}

var _ Executor = (*agent.Manager)(nil)

// Narrator implements pipeline.Narrator on top of the agent manager and the
// prompt registry.
type Narrator struct {
	manager Executor
}

var _ pipeline.Narrator = (*Narrator)(nil)

func NewNarrator(manager Executor) *Narrator {
	return &Narrator{manager: manager}
}

// Narrate renders the report prompt with the computed figures and executes it.
// The cleaned markdown is returned verbatim; the decision itself is never
// delegated to the model.
func (n *Narrator) Narrate(ctx context.Context, result *pipeline.Result) (string, error) {
	pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.ReportRecommendation)
	if err != nil {
		return "", fmt.Errorf("report prompt unavailable: %w", err)
	}

	userPrompt, err := prompt.RenderUserPrompt(pt, promptContext(result))
	if err != nil {
		return "", fmt.Errorf("failed to render report prompt: %w", err)
	}

	raw, err := n.manager.ExecutePrompt(ctx, AgentType, userPrompt, pt.SystemPrompt, nil)
	if err != nil {
		return "", err
	}

	narrative := utils.CleanMarkdown(raw)
	if !utils.ValidateMarkdown(narrative) {
		return "", fmt.Errorf("model returned unrenderable narrative")
	}
	return narrative, nil
}

// promptContext flattens the result into template variables.
func promptContext(result *pipeline.Result) *prompt.PromptExecutionContext {
	rec := result.Recommendation

	var eps strings.Builder
	for _, p := range result.Earnings {
		fmt.Fprintf(&eps, "FY%d: %.2f\n", p.FiscalYear, p.EPS)
	}

	ctx := prompt.NewContext().
		Set("Symbol", result.Symbol).
		Set("CompanyName", result.CompanyName).
		Set("Decision", string(rec.Decision)).
		Set("Reasons", strings.Join(rec.Reasons, "; ")).
		Set("EPSTable", eps.String()).
		Set("GrowthRate", fmt.Sprintf("%.2f", rec.Stability.GrowthRate)).
		Set("IsIncreasing", rec.Stability.IsIncreasing).
		Set("HasValueRound", rec.Value != nil).
		Set("Sector", result.Sector).
		Set("SectorPE", fmt.Sprintf("%.2f", result.SectorPE))

	if v := rec.Value; v != nil {
		peg := "undefined"
		if !math.IsInf(v.PEGRatio, 1) {
			peg = fmt.Sprintf("%.2f", v.PEGRatio)
		}
		ctx.Set("CurrentPrice", fmt.Sprintf("%.2f", v.CurrentPrice)).
			Set("IntrinsicValue", fmt.Sprintf("%.2f", v.IntrinsicValue)).
			Set("OptimisticValue", fmt.Sprintf("%.2f", v.OptimisticValue)).
			Set("CurrentPE", fmt.Sprintf("%.2f", v.CurrentPE)).
			Set("IntrinsicPE", fmt.Sprintf("%.2f", v.IntrinsicPE)).
			Set("PEG", peg)
	}
	return ctx
}
