// Package pipeline orchestrates one stock analysis end to end: resolve the
// ticker, acquire EPS and price history, run the Round 1 stability screen,
// run the Round 2 value screen when Round 1 passes, aggregate, persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vyasaquant/pkg/core/calc"
	"vyasaquant/pkg/core/ingest"
	"vyasaquant/pkg/core/store"
)

// DataSource supplies resolved market data. Implementations:
// - ingest.CompositeSource (live NSE/Yahoo/screener)
// - test fakes
type DataSource interface {
	ResolveTicker(ctx context.Context, companyName string) (string, error)
	FetchEarnings(ctx context.Context, symbol string, years int) (calc.EarningsSeries, error)
	FetchPrices(ctx context.Context, symbol string, years int) (calc.PriceSeries, error)
	FetchQuote(ctx context.Context, symbol string) (*ingest.Quote, error)
	FetchSectorInfo(ctx context.Context, symbol string) (*ingest.SectorInfo, error)
}

// Narrator turns a finished recommendation into prose for the stored report.
// Narration is garnish: a narrator error degrades to an empty narrative.
type Narrator interface {
	Narrate(ctx context.Context, result *Result) (string, error)
}

// Request identifies the stock to screen. Either CompanyName or Symbol must
// be set; Symbol wins when both are.
type Request struct {
	CompanyName string `json:"company_name,omitempty"`
	Symbol      string `json:"ticker_symbol,omitempty"`
	Years       int    `json:"years,omitempty"` // fiscal years of history, default 4, max 10
}

// Result is the full outcome of one pipeline run.
type Result struct {
	RunID          string              `json:"run_id"`
	Symbol         string              `json:"symbol"`
	CompanyName    string              `json:"company_name,omitempty"`
	Sector         string              `json:"sector,omitempty"`
	SectorPE       float64             `json:"sector_pe,omitempty"`
	Earnings       calc.EarningsSeries `json:"eps_data"`
	Recommendation calc.Recommendation `json:"recommendation"`
	Narrative      string              `json:"narrative,omitempty"`
	Elapsed        time.Duration       `json:"-"`
}

const (
	defaultYears = 4
	maxYears     = 10
)

// Orchestrator runs the two-round screen. It holds no per-run state; a single
// instance serves concurrent analyses.
type Orchestrator struct {
	source     DataSource
	repo       store.Repository
	narrator   Narrator // optional
	stability  *calc.StabilityEvaluator
	pricing    *calc.IntrinsicPricingEngine
	value      *calc.ValueEvaluator
	thresholds calc.Thresholds
}

// NewOrchestrator builds an orchestrator with the given collaborators.
// narrator may be nil.
func NewOrchestrator(source DataSource, repo store.Repository, thresholds calc.Thresholds, narrator Narrator) *Orchestrator {
	return &Orchestrator{
		source:     source,
		repo:       repo,
		narrator:   narrator,
		stability:  calc.NewStabilityEvaluator(thresholds),
		pricing:    calc.NewIntrinsicPricingEngine(),
		value:      calc.NewValueEvaluator(thresholds),
		thresholds: thresholds,
	}
}

// Analyze executes the full screen for one stock.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	years := req.Years
	if years <= 0 {
		years = defaultYears
	}
	if years > maxYears {
		years = maxYears
	}

	symbol := req.Symbol
	if symbol == "" {
		if req.CompanyName == "" {
			return nil, fmt.Errorf("either company_name or ticker_symbol is required")
		}
		resolved, err := o.source.ResolveTicker(ctx, req.CompanyName)
		if err != nil {
			return nil, err
		}
		symbol = resolved
		fmt.Printf("[PIPELINE] Resolved %q -> %s\n", req.CompanyName, symbol)
	}

	result := &Result{
		RunID:  uuid.New().String(),
		Symbol: symbol,
	}

	earnings, err := o.source.FetchEarnings(ctx, symbol, years)
	if err != nil {
		return nil, fmt.Errorf("EPS acquisition failed for %s: %w", symbol, err)
	}
	result.Earnings = earnings
	fmt.Printf("[PIPELINE] %s: %d fiscal years of EPS\n", symbol, len(earnings))

	// Round 1: stability.
	stability, err := o.stability.Evaluate(earnings)
	if err != nil {
		return nil, fmt.Errorf("stability check failed for %s: %w", symbol, err)
	}
	fmt.Printf("[PIPELINE] %s Round 1: passed=%v growth=%.2f%%\n", symbol, stability.Passed, stability.GrowthRate)

	var value *calc.ValueVerdict
	if stability.Passed {
		verdict, err := o.runValueRound(ctx, symbol, earnings, stability, result)
		if err != nil {
			return nil, err
		}
		value = verdict
		fmt.Printf("[PIPELINE] %s Round 2: passed=%v\n", symbol, value.Passed)
	}

	result.Recommendation = calc.Aggregate(symbol, stability, value)
	o.enrich(ctx, result)
	o.narrate(ctx, result)
	o.persist(ctx, result)

	result.Elapsed = time.Since(start)
	fmt.Printf("[PIPELINE] %s -> %s in %v\n", symbol, result.Recommendation.Decision, result.Elapsed)
	return result, nil
}

// runValueRound fetches Round 2 inputs and evaluates the value screen.
func (o *Orchestrator) runValueRound(ctx context.Context, symbol string, earnings calc.EarningsSeries, stability calc.StabilityVerdict, result *Result) (*calc.ValueVerdict, error) {
	prices, err := o.source.FetchPrices(ctx, symbol, maxYears)
	if err != nil {
		return nil, fmt.Errorf("price acquisition failed for %s: %w", symbol, err)
	}

	quote, err := o.source.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("quote acquisition failed for %s: %w", symbol, err)
	}
	result.CompanyName = quote.CompanyName

	currentEPS := quote.EPSTTM
	if currentEPS == 0 && len(earnings) > 0 {
		// No TTM figure: the latest fiscal year stands in, same treatment.
		currentEPS = earnings[len(earnings)-1].EPS
	}

	alignedEarnings, alignedPrices := alignByFiscalYear(earnings, prices)
	intrinsics, err := o.pricing.ComputeIntrinsics(alignedEarnings, alignedPrices, currentEPS, quote.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("intrinsic pricing failed for %s: %w", symbol, err)
	}
	if intrinsics.UsedYears < len(alignedEarnings) {
		fmt.Printf("[PIPELINE] %s: intrinsic P/E averaged over %d of %d years (loss years skipped)\n",
			symbol, intrinsics.UsedYears, len(alignedEarnings))
	}

	peg := calc.PEG(intrinsics.IntrinsicPE, stability.GrowthRate)
	verdict := o.value.Evaluate(quote.LastPrice, intrinsics, peg)

	if err := o.repo.SaveIntrinsicPE(ctx, symbol, alignedPrices, intrinsics); err != nil {
		fmt.Printf("[WARNING] failed to store intrinsic PE data for %s: %v\n", symbol, err)
	}
	return &verdict, nil
}

// alignByFiscalYear intersects the two series on fiscal year, preserving
// chronological order. The pricing engine requires exact 1:1 alignment.
func alignByFiscalYear(earnings calc.EarningsSeries, prices calc.PriceSeries) (calc.EarningsSeries, calc.PriceSeries) {
	priceByYear := make(map[int]calc.PricePoint, len(prices))
	for _, p := range prices {
		priceByYear[p.FiscalYear] = p
	}
	var e calc.EarningsSeries
	var p calc.PriceSeries
	for _, pt := range earnings {
		if price, ok := priceByYear[pt.FiscalYear]; ok {
			e = append(e, pt)
			p = append(p, price)
		}
	}
	return e, p
}

// enrich attaches sector context; failures are logged and ignored.
func (o *Orchestrator) enrich(ctx context.Context, result *Result) {
	info, err := o.source.FetchSectorInfo(ctx, result.Symbol)
	if err != nil {
		fmt.Printf("[PIPELINE] no sector info for %s: %v\n", result.Symbol, err)
		return
	}
	result.Sector = info.Sector
	result.SectorPE = info.SectorPE
}

// narrate asks the optional narrator for a prose report.
func (o *Orchestrator) narrate(ctx context.Context, result *Result) {
	if o.narrator == nil {
		return
	}
	narrative, err := o.narrator.Narrate(ctx, result)
	if err != nil {
		fmt.Printf("[WARNING] narrative generation failed for %s: %v\n", result.Symbol, err)
		return
	}
	result.Narrative = narrative
}

// persist stores everything; storage failures are logged, not fatal, so a
// database outage never hides a computed verdict from the caller.
func (o *Orchestrator) persist(ctx context.Context, result *Result) {
	if err := o.repo.SaveStock(ctx, store.StockRecord{
		Symbol:      result.Symbol,
		CompanyName: result.CompanyName,
		Sector:      result.Sector,
		SectorPE:    result.SectorPE,
	}); err != nil {
		fmt.Printf("[WARNING] failed to store stock %s: %v\n", result.Symbol, err)
	}
	if err := o.repo.SaveEarnings(ctx, result.Symbol, result.Earnings); err != nil {
		fmt.Printf("[WARNING] failed to store EPS data for %s: %v\n", result.Symbol, err)
	}
	if err := o.repo.SaveRecommendation(ctx, store.StoredRecommendation{
		RunID:          result.RunID,
		Recommendation: result.Recommendation,
		Narrative:      result.Narrative,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		fmt.Printf("[WARNING] failed to store recommendation for %s: %v\n", result.Symbol, err)
	}
}
