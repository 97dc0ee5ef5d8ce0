package calc

// =============================================================================
// RECOMMENDATION AGGREGATOR
// =============================================================================

// Aggregate combines the round verdicts into the final recommendation.
//
// A failed Round 1 short-circuits: the caller never runs Round 2 and passes
// value as nil, and this function does not recompute or second-guess that.
func Aggregate(symbol string, stability StabilityVerdict, value *ValueVerdict) Recommendation {
	if !stability.Passed {
		return Recommendation{
			Symbol:    symbol,
			Stability: stability,
			Decision:  DecisionReject,
			Reasons:   []string{stability.Reason},
		}
	}

	rec := Recommendation{
		Symbol:    symbol,
		Stability: stability,
		Value:     value,
		Decision:  DecisionReject,
		Reasons:   []string{stability.Reason},
	}
	if value != nil {
		rec.Reasons = append(rec.Reasons, value.Reason)
		if value.Passed {
			rec.Decision = DecisionBuy
		}
	}
	return rec
}
