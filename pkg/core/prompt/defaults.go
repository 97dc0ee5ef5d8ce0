package prompt

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	ReportRecommendation    string
	ResearchCompanyOverview string
}{
	ReportRecommendation:    "report.recommendation",
	ResearchCompanyOverview: "research.company_overview",
}

// RegisterDefaults installs the built-in prompts. Called by the entry points
// after LoadFromDirectory so that file-based prompts take priority only when
// present; a missing resources directory never leaves an agent without a
// prompt.
func RegisterDefaults() {
	r := Get()

	if _, err := r.GetPrompt(PromptIDs.ReportRecommendation); err != nil {
		r.Register(&PromptTemplate{
			ID:       PromptIDs.ReportRecommendation,
			Name:     "Recommendation Report",
			Category: "report",
			SystemPrompt: "You are an equity research writer for Indian stocks. " +
				"You are given the computed output of a two-round screen: an EPS stability " +
				"check and an intrinsic-value check. Write a concise markdown report that " +
				"explains the verdict using ONLY the figures provided. Never invent numbers, " +
				"never change the decision, and state clearly that this is not investment advice.",
			UserPromptTmpl: "Write the report for {{.Symbol}} ({{.CompanyName}}).\n\n" +
				"Decision: {{.Decision}}\nReasons: {{.Reasons}}\n\n" +
				"EPS history (fiscal year, EPS):\n{{.EPSTable}}\n\n" +
				"Stability round: growth rate {{.GrowthRate}}%, monotonic increase {{.IsIncreasing}}.\n" +
				"{{if .HasValueRound}}Value round: current price {{.CurrentPrice}}, intrinsic value {{.IntrinsicValue}}, " +
				"optimistic value {{.OptimisticValue}}, current P/E {{.CurrentPE}}, intrinsic P/E {{.IntrinsicPE}}, PEG {{.PEG}}.\n{{end}}" +
				"{{if .Sector}}Sector: {{.Sector}} (sector P/E {{.SectorPE}}).\n{{end}}",
			Variables: []PromptVariable{
				{Name: "Symbol", Type: "string", Required: true},
				{Name: "Decision", Type: "string", Required: true},
			},
			Version: "1.0",
		})
	}

	if _, err := r.GetPrompt(PromptIDs.ResearchCompanyOverview); err != nil {
		r.Register(&PromptTemplate{
			ID:       PromptIDs.ResearchCompanyOverview,
			Name:     "Company Overview Research",
			Category: "research",
			SystemPrompt: "You are a research analyst covering companies listed on the NSE. " +
				"Using web search, produce a short factual overview: what the company does, " +
				"its main segments, recent results, and notable risks. Cite sources. " +
				"Do not give buy or sell advice.",
			UserPromptTmpl: "Research {{.CompanyName}} (NSE: {{.Symbol}}).",
			Variables: []PromptVariable{
				{Name: "Symbol", Type: "string", Required: true},
				{Name: "CompanyName", Type: "string", Required: false},
			},
			Version: "1.0",
		})
	}
}

// GetReportPrompt returns a report prompt's system prompt by name
func GetReportPrompt(name string) (string, error) {
	return Get().GetSystemPrompt("report." + name)
}

// GetResearchPrompt returns a research prompt's system prompt by name
func GetResearchPrompt(name string) (string, error) {
	return Get().GetSystemPrompt("research." + name)
}
