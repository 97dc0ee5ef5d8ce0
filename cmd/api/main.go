package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"vyasaquant/pkg/api/analysis"
	"vyasaquant/pkg/api/config"
	"vyasaquant/pkg/core/agent"
	"vyasaquant/pkg/core/calc"
	"vyasaquant/pkg/core/ingest"
	"vyasaquant/pkg/core/pipeline"
	"vyasaquant/pkg/core/prompt"
	"vyasaquant/pkg/core/report"
	"vyasaquant/pkg/core/research"
	"vyasaquant/pkg/core/session"
	"vyasaquant/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Prompt library: file-based resources first, built-ins fill the gaps.
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to built-in prompts")
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", prompt.Get().Count(), resourcesPath)
	}
	prompt.RegisterDefaults()

	// Agent manager from config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	if agentCfg.ActiveProvider == "" {
		agentCfg.ActiveProvider = "gemini"
	}
	agentMgr := agent.NewManager(agentCfg)
	fmt.Printf("[AGENT] Active provider: %s\n", agentMgr.GetActiveProvider())

	// Storage: Postgres when DATABASE_URL is set, in-memory otherwise.
	var repo store.Repository
	ctx := context.Background()
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[FATAL] Database init failed: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		repo = store.NewPostgresRepository(store.GetPool())
		fmt.Println("[STORE] Using Postgres repository")
	} else {
		repo = store.NewMemoryRepository()
		fmt.Println("[STORE] DATABASE_URL not set, using in-memory repository")
	}

	// Pipeline wiring
	source := ingest.NewCompositeSource()
	narrator := report.NewNarrator(agentMgr)
	orchestrator := pipeline.NewOrchestrator(source, repo, calc.DefaultThresholds(), narrator)
	sessions := session.NewManager(orchestrator)

	var researcher analysis.Researcher
	if os.Getenv("GEMINI_API_KEY") != "" {
		r, err := research.NewCompanyResearcher(ctx)
		if err != nil {
			fmt.Printf("[WARNING] Research agent unavailable: %v\n", err)
		} else {
			defer r.Close()
			researcher = r
		}
	} else {
		fmt.Println("[WARNING] GEMINI_API_KEY not set, /api/research disabled")
	}

	// Analysis endpoints
	analysisHandler := analysis.NewHandler(orchestrator, sessions, researcher)
	http.HandleFunc("/api/analyze", analysisHandler.HandleAnalyze)
	http.HandleFunc("/api/analyze/start", analysisHandler.HandleStart)
	http.HandleFunc("/api/analyze/status", analysisHandler.HandleStatus)
	http.HandleFunc("/api/research", analysisHandler.HandleResearch)
	http.HandleFunc("/api/health", analysisHandler.HandleHealth)

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/analyze")
	fmt.Println("  - POST /api/analyze/start")
	fmt.Println("  - GET  /api/analyze/status?id=<session_id>")
	fmt.Println("  - POST /api/research")
	fmt.Println("  - GET  /api/health")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
