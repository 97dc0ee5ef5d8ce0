package ingest

import (
	"context"
	"fmt"

	"vyasaquant/pkg/core/calc"
)

// =============================================================================
// COMPOSITE SOURCE
// =============================================================================

// CompositeSource fans a request across the concrete clients: NSE for symbol
// resolution and live quotes, Yahoo for fundamentals and price history, and
// screener.in as the EPS fallback. It satisfies pipeline.DataSource.
type CompositeSource struct {
	nse      *NSEClient
	yahoo    *YahooClient
	screener *ScreenerScraper
	mc       *MoneyControlClient
}

// NewCompositeSource wires the default production clients.
func NewCompositeSource() *CompositeSource {
	return &CompositeSource{
		nse:      NewNSEClient(),
		yahoo:    NewYahooClient(),
		screener: NewScreenerScraper(),
		mc:       NewMoneyControlClient(),
	}
}

// ResolveTicker maps a company name to its NSE symbol (best match).
func (s *CompositeSource) ResolveTicker(ctx context.Context, companyName string) (string, error) {
	matches, err := s.nse.SearchTicker(ctx, companyName)
	if err != nil {
		return "", fmt.Errorf("ticker resolution failed for %q: %w", companyName, err)
	}
	return matches[0].Symbol, nil
}

// FetchEarnings tries Yahoo first and falls back to scraping screener.in.
func (s *CompositeSource) FetchEarnings(ctx context.Context, symbol string, years int) (calc.EarningsSeries, error) {
	series, yahooErr := s.yahoo.FetchEarnings(ctx, symbol, years)
	if yahooErr == nil && len(series) >= 2 {
		return series, nil
	}
	fmt.Printf("[INGEST] Yahoo EPS fetch unusable for %s (%v), falling back to screener.in\n", symbol, yahooErr)

	series, scrapeErr := s.screener.FetchEarnings(ctx, symbol, years)
	if scrapeErr != nil {
		return nil, fmt.Errorf("all EPS sources failed for %s: yahoo: %v; screener: %w", symbol, yahooErr, scrapeErr)
	}
	return series, nil
}

// FetchPrices returns fiscal-year average prices from Yahoo.
func (s *CompositeSource) FetchPrices(ctx context.Context, symbol string, years int) (calc.PriceSeries, error) {
	return s.yahoo.FetchPrices(ctx, symbol, years)
}

// FetchQuote returns the live NSE quote enriched with Yahoo's TTM EPS.
func (s *CompositeSource) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	quote, nseErr := s.nse.GetQuote(ctx, symbol)
	if nseErr != nil {
		// NSE throttles aggressively; Yahoo carries the same quote fields.
		yq, yahooErr := s.yahoo.FetchQuote(ctx, symbol)
		if yahooErr != nil {
			return nil, fmt.Errorf("quote failed for %s: nse: %v; yahoo: %w", symbol, nseErr, yahooErr)
		}
		return yq, nil
	}
	if yq, err := s.yahoo.FetchQuote(ctx, symbol); err == nil && yq.EPSTTM != 0 {
		quote.EPSTTM = yq.EPSTTM
	}
	return quote, nil
}

// FetchSectorInfo returns MoneyControl sector context; callers treat errors
// as missing garnish, never as screen failures.
func (s *CompositeSource) FetchSectorInfo(ctx context.Context, symbol string) (*SectorInfo, error) {
	return s.mc.GetSectorInfo(ctx, symbol)
}
