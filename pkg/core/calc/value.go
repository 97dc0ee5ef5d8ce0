package calc

import (
	"fmt"
	"math"
	"strings"
)

// =============================================================================
// ROUND 2: VALUE EVALUATOR
// =============================================================================

// ValueEvaluator applies the undervaluation and PEG screens to the pricing
// engine's output.
type ValueEvaluator struct {
	thresholds Thresholds
}

// NewValueEvaluator builds a Round 2 evaluator.
func NewValueEvaluator(t Thresholds) *ValueEvaluator {
	return &ValueEvaluator{thresholds: t}
}

// Evaluate produces the Round 2 verdict.
//
// Decision rule:
//
//	passed = currentPrice <= margin * intrinsicValue  AND  pegRatio < ceiling
func (e *ValueEvaluator) Evaluate(currentPrice float64, intrinsics IntrinsicsResult, pegRatio float64) ValueVerdict {
	v := ValueVerdict{
		CurrentPrice:    currentPrice,
		IntrinsicValue:  intrinsics.IntrinsicValue,
		OptimisticValue: intrinsics.OptimisticValue,
		CurrentPE:       intrinsics.CurrentPE,
		IntrinsicPE:     intrinsics.IntrinsicPE,
		PEGRatio:        pegRatio,
	}

	ceiling := e.thresholds.UndervaluationMargin * intrinsics.IntrinsicValue

	var failures []string
	if currentPrice > ceiling {
		failures = append(failures, fmt.Sprintf("current price %.2f exceeds %.2f (%.1fx intrinsic value %.2f)",
			currentPrice, ceiling, e.thresholds.UndervaluationMargin, intrinsics.IntrinsicValue))
	}
	if math.IsInf(pegRatio, 1) {
		failures = append(failures, "PEG ratio is undefined (non-positive EPS growth)")
	} else if pegRatio >= e.thresholds.PEGCeiling {
		failures = append(failures, fmt.Sprintf("PEG ratio %.2f is not below %.2f",
			pegRatio, e.thresholds.PEGCeiling))
	}

	if len(failures) == 0 {
		v.Passed = true
		v.Reason = fmt.Sprintf("price %.2f is within %.1fx of intrinsic value %.2f and PEG %.2f is below %.2f",
			currentPrice, e.thresholds.UndervaluationMargin, intrinsics.IntrinsicValue, pegRatio, e.thresholds.PEGCeiling)
	} else {
		v.Reason = strings.Join(failures, "; ")
	}
	return v
}
