// Package ingest provides data acquisition for Indian equities: NSE quote
// and symbol search, Yahoo Finance fundamentals and price history, and
// MoneyControl sector data. It hands the scoring core clean (year, EPS) and
// (year, price) series and stays out of the decision logic.
package ingest

import "time"

// FiscalYearStartMonth is April: Indian fiscal year FY2023 runs
// Apr 2023 .. Mar 2024.
const FiscalYearStartMonth = time.April

// FiscalYearOf buckets a date into its Indian fiscal year.
func FiscalYearOf(t time.Time) int {
	if t.Month() >= FiscalYearStartMonth {
		return t.Year()
	}
	return t.Year() - 1
}

// CurrentFiscalYear returns the fiscal year containing now.
func CurrentFiscalYear(now time.Time) int {
	return FiscalYearOf(now)
}

// Quote is the current market snapshot for a symbol.
type Quote struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	LastPrice   float64 `json:"last_price"`
	EPSTTM      float64 `json:"eps_ttm"`
}

// SectorInfo is contextual data for the final report, not a screen input.
type SectorInfo struct {
	Sector   string  `json:"sector"`
	SectorPE float64 `json:"sector_pe"`
}

// TickerMatch is one candidate from a symbol search.
type TickerMatch struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
}
