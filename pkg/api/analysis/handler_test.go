package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vyasaquant/pkg/core/calc"
	"vyasaquant/pkg/core/ingest"
	"vyasaquant/pkg/core/pipeline"
	"vyasaquant/pkg/core/session"
	"vyasaquant/pkg/core/store"
	"vyasaquant/pkg/models"
)

type stubSource struct{}

func (stubSource) ResolveTicker(_ context.Context, _ string) (string, error) {
	return "HAL", nil
}

func (stubSource) FetchEarnings(_ context.Context, _ string, _ int) (calc.EarningsSeries, error) {
	return calc.EarningsSeries{
		{FiscalYear: 2020, EPS: 10.0},
		{FiscalYear: 2021, EPS: 12.0},
		{FiscalYear: 2022, EPS: 14.5},
		{FiscalYear: 2023, EPS: 17.0},
	}, nil
}

func (stubSource) FetchPrices(_ context.Context, _ string, _ int) (calc.PriceSeries, error) {
	return calc.PriceSeries{
		{FiscalYear: 2020, AvgPrice: 200},
		{FiscalYear: 2021, AvgPrice: 264},
		{FiscalYear: 2022, AvgPrice: 348},
		{FiscalYear: 2023, AvgPrice: 442},
	}, nil
}

func (stubSource) FetchQuote(_ context.Context, _ string) (*ingest.Quote, error) {
	return &ingest.Quote{Symbol: "HAL", CompanyName: "Hindustan Aeronautics", LastPrice: 400, EPSTTM: 18.0}, nil
}

func (stubSource) FetchSectorInfo(_ context.Context, _ string) (*ingest.SectorInfo, error) {
	return &ingest.SectorInfo{Sector: "Aerospace & Defence", SectorPE: 38.5}, nil
}

type stubResearcher struct{}

func (stubResearcher) Research(_ context.Context, symbol, _ string) (string, error) {
	return "## Overview of " + symbol, nil
}

func newTestHandler() *Handler {
	orch := pipeline.NewOrchestrator(stubSource{}, store.NewMemoryRepository(), calc.DefaultThresholds(), nil)
	return NewHandler(orch, session.NewManager(orch), stubResearcher{})
}

func TestHandleAnalyze(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"ticker_symbol":"HAL"}`))
	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp models.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Symbol != "HAL" || resp.Recommendation.Decision != calc.DecisionBuy {
		t.Errorf("response = %+v", resp)
	}
	if resp.RunID == "" {
		t.Error("run_id missing")
	}
}

func TestHandleAnalyzeRejectsEmptyRequest(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAnalyzeRejectsGet(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestStartAndStatusRoundTrip(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/start",
		strings.NewReader(`{"company_name":"Hindustan Aeronautics"}`))
	rec := httptest.NewRecorder()
	h.HandleStart(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var start models.StartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &start); err != nil {
		t.Fatalf("bad start response: %v", err)
	}
	if start.SessionID == "" {
		t.Fatal("session_id missing")
	}

	// Poll until the background run settles.
	deadline := time.After(2 * time.Second)
	for {
		statusReq := httptest.NewRequest(http.MethodGet, "/api/analyze/status?id="+start.SessionID, nil)
		statusRec := httptest.NewRecorder()
		h.HandleStatus(statusRec, statusReq)
		if statusRec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d, body = %s", statusRec.Code, statusRec.Body.String())
		}

		var s session.Session
		if err := json.Unmarshal(statusRec.Body.Bytes(), &s); err != nil {
			t.Fatalf("bad status response: %v", err)
		}
		if s.Status == session.StatusCompleted {
			if s.Result == nil || s.Result.Symbol != "HAL" {
				t.Errorf("session result = %+v", s.Result)
			}
			return
		}
		if s.Status == session.StatusFailed {
			t.Fatalf("background run failed: %s", s.Error)
		}
		select {
		case <-deadline:
			t.Fatal("session never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHandleStatusUnknownSession(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/analyze/status?id=nope", nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleResearch(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/research",
		strings.NewReader(`{"ticker_symbol":"HAL"}`))
	rec := httptest.NewRecorder()
	h.HandleResearch(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Overview of HAL") {
		t.Errorf("research = %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandleResearchUnconfigured(t *testing.T) {
	orch := pipeline.NewOrchestrator(stubSource{}, store.NewMemoryRepository(), calc.DefaultThresholds(), nil)
	h := NewHandler(orch, session.NewManager(orch), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/research",
		strings.NewReader(`{"ticker_symbol":"HAL"}`))
	rec := httptest.NewRecorder()
	h.HandleResearch(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}
