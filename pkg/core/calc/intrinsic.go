package calc

import (
	"fmt"
	"math"
)

// =============================================================================
// ROUND 2: INTRINSIC PRICING ENGINE
// =============================================================================

// IntrinsicPricingEngine derives a valuation anchor from historical P/E
// ratios. It is stateless; the struct exists so the pipeline can hold a
// configured instance alongside the evaluators.
type IntrinsicPricingEngine struct{}

// NewIntrinsicPricingEngine returns a pricing engine.
func NewIntrinsicPricingEngine() *IntrinsicPricingEngine {
	return &IntrinsicPricingEngine{}
}

// ComputeIntrinsics builds the historical P/E series and derives intrinsic
// and best-case valuations from it.
//
//	perYearPE[y]  = avgPrice[y] / eps[y]        (skipped when eps[y] <= 0)
//	intrinsicPE   = mean(perYearPE)
//	peGrowthRate  = CAGR(firstPE, lastPE)       (0 when not calculable)
//	bestCasePE    = currentPE + peGrowthRate    (intrinsicPE when growth <= 0)
//	intrinsicValue  = intrinsicPE * currentEPS
//	optimisticValue = bestCasePE * currentEPS
//
// Years with non-positive EPS are excluded from the average rather than
// zero-filled; a zero P/E would drag the anchor toward free. UsedYears in the
// result tells callers how many years actually survived the filter.
func (e *IntrinsicPricingEngine) ComputeIntrinsics(earnings EarningsSeries, prices PriceSeries, currentEPS, currentPrice float64) (IntrinsicsResult, error) {
	if len(earnings) != len(prices) {
		return IntrinsicsResult{}, fmt.Errorf("%w: %d earnings years vs %d price years",
			ErrMisalignedSeries, len(earnings), len(prices))
	}
	for i := range earnings {
		if earnings[i].FiscalYear != prices[i].FiscalYear {
			return IntrinsicsResult{}, fmt.Errorf("%w: year %d at index %d has price year %d",
				ErrMisalignedSeries, earnings[i].FiscalYear, i, prices[i].FiscalYear)
		}
	}

	var historical []float64
	for i := range earnings {
		if earnings[i].EPS <= 0 {
			continue
		}
		historical = append(historical, prices[i].AvgPrice/earnings[i].EPS)
	}
	if len(historical) == 0 {
		return IntrinsicsResult{}, fmt.Errorf("%w: no year with positive EPS to compute a P/E from",
			ErrInsufficientData)
	}

	var sum float64
	for _, pe := range historical {
		sum += pe
	}
	intrinsicPE := sum / float64(len(historical))

	// P/E growth is best-effort: a non-positive endpoint or a single usable
	// year degrades to zero growth instead of failing the whole round.
	peGrowthRate := 0.0
	if len(historical) >= 2 {
		if g, err := CAGR(historical[0], historical[len(historical)-1], len(historical)-1); err == nil {
			peGrowthRate = g
		}
	}

	var currentPE float64
	if currentEPS > 0 {
		currentPE = currentPrice / currentEPS
	}

	bestCasePE := intrinsicPE
	if peGrowthRate > 0 {
		bestCasePE = currentPE + peGrowthRate
	}

	return IntrinsicsResult{
		HistoricalPE:    historical,
		UsedYears:       len(historical),
		IntrinsicPE:     intrinsicPE,
		PEGrowthRate:    peGrowthRate,
		BestCasePE:      bestCasePE,
		CurrentPE:       currentPE,
		IntrinsicValue:  intrinsicPE * currentEPS,
		OptimisticValue: bestCasePE * currentEPS,
	}, nil
}

// PEG calculates the price/earnings-to-growth ratio from the intrinsic P/E
// and the Round 1 EPS growth rate (percent).
//
// A non-positive growth rate makes the ratio undefined; the sentinel +Inf is
// returned so the value screen fails loudly instead of a silent zero passing
// the ceiling check.
func PEG(intrinsicPE, epsGrowthRate float64) float64 {
	if epsGrowthRate <= 0 {
		return math.Inf(1)
	}
	return intrinsicPE / epsGrowthRate
}
