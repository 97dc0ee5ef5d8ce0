// Package analysis exposes the screening pipeline over HTTP.
package analysis

import (
	"context"
	"encoding/json"
	"net/http"

	"vyasaquant/pkg/core/pipeline"
	"vyasaquant/pkg/core/session"
	"vyasaquant/pkg/models"
)

// Researcher produces a qualitative company overview.
// Satisfied by *research.CompanyResearcher.
type Researcher interface {
	Research(ctx context.Context, symbol, companyName string) (string, error)
}

// Handler holds dependencies for analysis endpoints
type Handler struct {
	orchestrator *pipeline.Orchestrator
	sessions     *session.Manager
	researcher   Researcher // optional
}

// NewHandler creates a new analysis handler. researcher may be nil, in which
// case the research endpoint reports unavailable.
func NewHandler(orchestrator *pipeline.Orchestrator, sessions *session.Manager, researcher Researcher) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		sessions:     sessions,
		researcher:   researcher,
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}

func corsHeaders(w http.ResponseWriter) {
	// CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (models.AnalyzeRequest, bool) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.CompanyName == "" && req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "either company_name or ticker_symbol is required")
		return req, false
	}
	return req, true
}

// HandleAnalyze runs the full screen synchronously.
// POST /api/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.orchestrator.Analyze(r.Context(), req.ToPipelineRequest())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.FromPipelineResult(result))
}

// HandleStart launches a background analysis and returns a session ID.
// POST /api/analyze/start
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	id := h.sessions.Start(req.ToPipelineRequest())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.StartResponse{
		SessionID: id,
		Status:    string(session.StatusRunning),
	})
}

// HandleStatus reports on a background analysis.
// GET /api/analyze/status?id=<session_id>
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}

	s, ok := h.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// HandleResearch returns a qualitative company overview from the grounded
// research agent.
// POST /api/research
func (h *Handler) HandleResearch(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if h.researcher == nil {
		writeError(w, http.StatusServiceUnavailable, "research agent not configured")
		return
	}

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	overview, err := h.researcher.Research(r.Context(), req.Symbol, req.CompanyName)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"overview": overview})
}

// HandleHealth is a liveness probe.
// GET /api/health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
