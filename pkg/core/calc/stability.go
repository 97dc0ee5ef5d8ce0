package calc

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ROUND 1: STABILITY EVALUATOR
// =============================================================================

// StabilityEvaluator applies the Round 1 screen: EPS must be consistently
// increasing and its growth rate must clear the configured threshold.
type StabilityEvaluator struct {
	thresholds Thresholds
	growth     GrowthStrategy
	fallback   GrowthStrategy // optional, used when the primary strategy hits a domain error
}

// NewStabilityEvaluator builds an evaluator with the default EPS CAGR
// strategy and no fallback.
func NewStabilityEvaluator(t Thresholds) *StabilityEvaluator {
	return &StabilityEvaluator{thresholds: t, growth: EPSGrowth{}}
}

// WithGrowthStrategy replaces the primary growth strategy.
func (e *StabilityEvaluator) WithGrowthStrategy(s GrowthStrategy) *StabilityEvaluator {
	e.growth = s
	return e
}

// WithFallback sets the strategy tried when the primary one cannot compute a
// growth rate, e.g. raw net-profit CAGR when the first EPS year is negative.
func (e *StabilityEvaluator) WithFallback(s GrowthStrategy) *StabilityEvaluator {
	e.fallback = s
	return e
}

// Evaluate runs the Round 1 screen over a chronological earnings series.
//
// Decision rule: passed = increasing AND growthRate > GrowthRatePct.
//
// A TTM figure supplied in place of the latest fiscal year's EPS is treated
// identically; data substitution is the acquisition layer's concern.
//
// When neither the primary nor the fallback strategy can produce a growth
// rate (negative starting EPS with no fallback configured), the verdict fails
// on the growth condition rather than erroring: an incalculable growth rate
// is a rejection, not a crash.
func (e *StabilityEvaluator) Evaluate(earnings EarningsSeries) (StabilityVerdict, error) {
	if len(earnings) < 2 {
		return StabilityVerdict{}, fmt.Errorf("%w: stability check needs at least 2 years, got %d",
			ErrInsufficientData, len(earnings))
	}

	increasing := IsMonotonicIncreasing(earnings.Values())

	growthRate, growthErr := e.growth.GrowthRate(earnings)
	if growthErr != nil && e.fallback != nil && errors.Is(growthErr, ErrInvalidInput) {
		growthRate, growthErr = e.fallback.GrowthRate(earnings)
	}
	if growthErr != nil && !errors.Is(growthErr, ErrInvalidInput) {
		// Structural problems (misaligned fallback series etc.) go to the caller.
		return StabilityVerdict{}, growthErr
	}

	v := StabilityVerdict{
		GrowthRate:   growthRate,
		IsIncreasing: increasing,
	}

	var failures []string
	if !increasing {
		failures = append(failures, "EPS is not consistently increasing")
	}
	switch {
	case growthErr != nil:
		failures = append(failures, "EPS growth rate is not calculable from the available data")
	case growthRate <= e.thresholds.GrowthRatePct:
		failures = append(failures, fmt.Sprintf("EPS growth rate %.2f%% does not exceed %.2f%%",
			growthRate, e.thresholds.GrowthRatePct))
	}

	if len(failures) == 0 {
		v.Passed = true
		v.Reason = fmt.Sprintf("EPS is consistently increasing with a growth rate of %.2f%% (> %.2f%%)",
			growthRate, e.thresholds.GrowthRatePct)
	} else {
		v.Reason = strings.Join(failures, "; ")
	}
	return v, nil
}
