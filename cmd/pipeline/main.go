// Batch screening CLI: runs the two-round analysis for one or more symbols
// and prints each verdict.
//
// Usage:
//
//	pipeline [-years N] [-narrate] SYMBOL [SYMBOL...]
//	pipeline -company "Hindustan Aeronautics"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"vyasaquant/pkg/core/agent"
	"vyasaquant/pkg/core/calc"
	"vyasaquant/pkg/core/ingest"
	"vyasaquant/pkg/core/pipeline"
	"vyasaquant/pkg/core/prompt"
	"vyasaquant/pkg/core/report"
	"vyasaquant/pkg/core/store"
)

func main() {
	years := flag.Int("years", 4, "fiscal years of EPS history (4-10)")
	company := flag.String("company", "", "company name to resolve instead of a symbol")
	narrate := flag.Bool("narrate", false, "generate an LLM narrative for each verdict")
	flag.Parse()

	if *company == "" && flag.NArg() == 0 {
		fmt.Println("usage: pipeline [-years N] [-narrate] SYMBOL [SYMBOL...]")
		fmt.Println("       pipeline -company \"Company Name\"")
		os.Exit(2)
	}

	godotenv.Load()
	prompt.RegisterDefaults()

	ctx := context.Background()

	var repo store.Repository
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[FATAL] Database init failed: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		repo = store.NewPostgresRepository(store.GetPool())
	} else {
		repo = store.NewMemoryRepository()
	}

	var narrator pipeline.Narrator
	if *narrate {
		configData, _ := os.ReadFile("config/models.yaml")
		var agentCfg agent.Config
		yaml.Unmarshal(configData, &agentCfg)
		if agentCfg.ActiveProvider == "" {
			agentCfg.ActiveProvider = "gemini"
		}
		narrator = report.NewNarrator(agent.NewManager(agentCfg))
	}

	orchestrator := pipeline.NewOrchestrator(ingest.NewCompositeSource(), repo, calc.DefaultThresholds(), narrator)

	requests := make([]pipeline.Request, 0, flag.NArg()+1)
	if *company != "" {
		requests = append(requests, pipeline.Request{CompanyName: *company, Years: *years})
	}
	for _, symbol := range flag.Args() {
		requests = append(requests, pipeline.Request{Symbol: symbol, Years: *years})
	}

	failed := 0
	for _, req := range requests {
		result, err := orchestrator.Analyze(ctx, req)
		if err != nil {
			fmt.Printf("[ERROR] %s%s: %v\n", req.Symbol, req.CompanyName, err)
			failed++
			continue
		}
		printResult(result)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func printResult(result *pipeline.Result) {
	rec := result.Recommendation
	fmt.Printf("\n========== %s ==========\n", result.Symbol)
	fmt.Printf("Decision: %s\n", rec.Decision)
	for _, reason := range rec.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	fmt.Printf("EPS growth: %.2f%% (monotonic: %v)\n", rec.Stability.GrowthRate, rec.Stability.IsIncreasing)
	if v := rec.Value; v != nil {
		fmt.Printf("Price: %.2f  Intrinsic: %.2f  Optimistic: %.2f\n", v.CurrentPrice, v.IntrinsicValue, v.OptimisticValue)
		fmt.Printf("P/E: %.2f  Intrinsic P/E: %.2f  PEG: %.2f\n", v.CurrentPE, v.IntrinsicPE, v.PEGRatio)
	}
	if result.Sector != "" {
		fmt.Printf("Sector: %s (P/E %.2f)\n", result.Sector, result.SectorPE)
	}
	if result.Narrative != "" {
		fmt.Printf("\n%s\n", result.Narrative)
	}
}
