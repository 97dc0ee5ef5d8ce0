package calc

import (
	"fmt"
	"math"
)

// =============================================================================
// GROWTH RATE
// =============================================================================

// CAGR calculates the compound annual growth rate, in percent.
//
// FORMULA: CAGR = ((final / initial)^(1/periods) - 1) * 100
//
// The fractional-exponent root is undefined for non-positive bases, so
// initial must be > 0 and final must be >= 0; periods must be > 0.
// Negative EPS series belong to the evaluator's fallback policy, not here.
func CAGR(initial, final float64, periods int) (float64, error) {
	if periods <= 0 {
		return 0, fmt.Errorf("%w: periods must be positive, got %d", ErrInvalidInput, periods)
	}
	if initial <= 0 {
		return 0, fmt.Errorf("%w: initial value must be positive, got %g", ErrInvalidInput, initial)
	}
	if final < 0 {
		return 0, fmt.Errorf("%w: final value must be non-negative, got %g", ErrInvalidInput, final)
	}
	return (math.Pow(final/initial, 1.0/float64(periods)) - 1) * 100, nil
}

// =============================================================================
// GROWTH STRATEGIES
// =============================================================================

// GrowthStrategy computes the growth rate (percent) the Round 1 decision is
// based on. The default uses EPS CAGR; callers substitute a raw-earnings
// strategy when splits or bonus issues distort per-share figures.
type GrowthStrategy interface {
	GrowthRate(earnings EarningsSeries) (float64, error)
}

// EPSGrowth is the default strategy: CAGR from the first to the last EPS
// in the series.
type EPSGrowth struct{}

func (EPSGrowth) GrowthRate(earnings EarningsSeries) (float64, error) {
	if len(earnings) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 years of EPS, got %d", ErrInsufficientData, len(earnings))
	}
	return CAGR(earnings[0].EPS, earnings[len(earnings)-1].EPS, len(earnings)-1)
}

// SeriesGrowth computes CAGR over an externally supplied value series, e.g.
// raw net profit when EPS is unusable. The series must be aligned with the
// earnings series the evaluator is judging.
type SeriesGrowth struct {
	Values []float64
}

func (s SeriesGrowth) GrowthRate(earnings EarningsSeries) (float64, error) {
	if len(s.Values) != len(earnings) {
		return 0, fmt.Errorf("%w: fallback series has %d values for %d earnings years",
			ErrMisalignedSeries, len(s.Values), len(earnings))
	}
	if len(s.Values) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 values, got %d", ErrInsufficientData, len(s.Values))
	}
	return CAGR(s.Values[0], s.Values[len(s.Values)-1], len(s.Values)-1)
}
