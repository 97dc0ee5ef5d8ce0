// Package models defines the JSON shapes exchanged with API clients.
package models

import (
	"vyasaquant/pkg/core/calc"
	"vyasaquant/pkg/core/pipeline"
)

// AnalyzeRequest starts a screen. Either company_name or ticker_symbol must
// be set; ticker_symbol wins when both are.
type AnalyzeRequest struct {
	CompanyName string `json:"company_name,omitempty"`
	Symbol      string `json:"ticker_symbol,omitempty"`
	Years       int    `json:"years,omitempty"`
}

// ToPipelineRequest maps the API request onto the orchestrator's input.
func (r AnalyzeRequest) ToPipelineRequest() pipeline.Request {
	return pipeline.Request{
		CompanyName: r.CompanyName,
		Symbol:      r.Symbol,
		Years:       r.Years,
	}
}

// AnalyzeResponse is the synchronous result of a screen.
type AnalyzeResponse struct {
	RunID          string              `json:"run_id"`
	Symbol         string              `json:"symbol"`
	CompanyName    string              `json:"company_name,omitempty"`
	Sector         string              `json:"sector,omitempty"`
	SectorPE       float64             `json:"sector_pe,omitempty"`
	Earnings       calc.EarningsSeries `json:"eps_data"`
	Recommendation calc.Recommendation `json:"recommendation"`
	Narrative      string              `json:"narrative,omitempty"`
	ElapsedMillis  int64               `json:"elapsed_ms"`
}

// FromPipelineResult flattens a pipeline result into the API shape.
func FromPipelineResult(res *pipeline.Result) AnalyzeResponse {
	return AnalyzeResponse{
		RunID:          res.RunID,
		Symbol:         res.Symbol,
		CompanyName:    res.CompanyName,
		Sector:         res.Sector,
		SectorPE:       res.SectorPE,
		Earnings:       res.Earnings,
		Recommendation: res.Recommendation,
		Narrative:      res.Narrative,
		ElapsedMillis:  res.Elapsed.Milliseconds(),
	}
}

// StartResponse acknowledges a background analysis.
type StartResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
