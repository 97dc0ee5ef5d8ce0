package calc

// =============================================================================
// TREND CHECK
// =============================================================================

// IsMonotonicIncreasing reports whether every consecutive pair in the series
// is strictly increasing (series[i] < series[i+1]). A flat year fails the
// check.
//
// Empty and single-element series are vacuously true: there is no pair to
// violate the condition. Round 1 never sees them because the evaluator
// rejects series shorter than 2 years first.
func IsMonotonicIncreasing(series []float64) bool {
	for i := 0; i+1 < len(series); i++ {
		if series[i] >= series[i+1] {
			return false
		}
	}
	return true
}
