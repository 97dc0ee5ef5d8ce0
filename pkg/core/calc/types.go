// Package calc provides the deterministic scoring core for the VyasaQuant
// two-round stock screen. Everything in this package is pure arithmetic over
// small in-memory series: no I/O, no shared state, safe to call concurrently.
package calc

// =============================================================================
// INPUT SERIES
// =============================================================================

// EarningsPoint is one fiscal year of per-share earnings.
// Indian fiscal years run April to March; FiscalYear is the starting year
// (FY2023 = Apr 2023 .. Mar 2024).
type EarningsPoint struct {
	FiscalYear int     `json:"fiscal_year"`
	EPS        float64 `json:"eps"`
}

// EarningsSeries is a chronological, gap-free sequence of EarningsPoints.
// Callers construct it once per analysis and never mutate it afterwards.
type EarningsSeries []EarningsPoint

// Values returns the EPS values in series order.
func (s EarningsSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.EPS
	}
	return out
}

// PricePoint is the average traded price for one fiscal year.
type PricePoint struct {
	FiscalYear int     `json:"fiscal_year"`
	AvgPrice   float64 `json:"avg_price"`
}

// PriceSeries is aligned 1:1 with an EarningsSeries by fiscal year.
type PriceSeries []PricePoint

// =============================================================================
// THRESHOLD CONFIGURATION
// =============================================================================

// Thresholds holds the tunable decision boundaries for both rounds.
// They are passed explicitly so tests can probe boundary values.
type Thresholds struct {
	// GrowthRatePct is the minimum EPS CAGR (percent) to pass Round 1.
	GrowthRatePct float64 `yaml:"growth_rate_pct"`
	// UndervaluationMargin is the multiple of intrinsic value the current
	// price may reach before Round 2 fails (1.1 = 10% headroom).
	UndervaluationMargin float64 `yaml:"undervaluation_margin"`
	// PEGCeiling is the maximum acceptable PEG ratio in Round 2.
	PEGCeiling float64 `yaml:"peg_ceiling"`
}

// DefaultThresholds returns the standard VyasaQuant screen:
// EPS CAGR > 10%, price within 1.1x intrinsic value, PEG < 1.5.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GrowthRatePct:        10.0,
		UndervaluationMargin: 1.1,
		PEGCeiling:           1.5,
	}
}

// =============================================================================
// VERDICTS
// =============================================================================

// StabilityVerdict is the Round 1 outcome. Created once per analysis request
// and never mutated.
type StabilityVerdict struct {
	GrowthRate   float64 `json:"growth_rate"`
	IsIncreasing bool    `json:"is_increasing"`
	Passed       bool    `json:"passed"`
	Reason       string  `json:"reason"`
}

// IntrinsicsResult carries the Round 2 pricing outputs.
type IntrinsicsResult struct {
	// HistoricalPE holds the per-year P/E ratios that survived the
	// non-positive-EPS filter, in chronological order.
	HistoricalPE []float64 `json:"historical_pe"`
	// UsedYears is how many years actually entered the average. Callers
	// must surface this so a 2-of-10 average is not mistaken for a 10-year one.
	UsedYears       int     `json:"used_years"`
	IntrinsicPE     float64 `json:"intrinsic_pe"`
	PEGrowthRate    float64 `json:"pe_growth_rate"`
	BestCasePE      float64 `json:"best_case_pe"`
	CurrentPE       float64 `json:"current_pe"`
	IntrinsicValue  float64 `json:"intrinsic_value"`
	OptimisticValue float64 `json:"optimistic_value"`
}

// ValueVerdict is the Round 2 outcome.
type ValueVerdict struct {
	CurrentPrice    float64 `json:"current_price"`
	IntrinsicValue  float64 `json:"intrinsic_value"`
	OptimisticValue float64 `json:"optimistic_value"`
	CurrentPE       float64 `json:"current_pe"`
	IntrinsicPE     float64 `json:"intrinsic_pe"`
	PEGRatio        float64 `json:"peg_ratio"`
	Passed          bool    `json:"passed"`
	Reason          string  `json:"reason"`
}

// =============================================================================
// FINAL RECOMMENDATION
// =============================================================================

// Decision is the terminal outcome of the screen.
type Decision string

const (
	DecisionBuy    Decision = "BUY"
	DecisionReject Decision = "REJECT"
)

// Recommendation is the aggregate result returned to the orchestration layer.
// Value is nil when Round 1 failed and Round 2 was never run.
type Recommendation struct {
	Symbol    string           `json:"symbol"`
	Stability StabilityVerdict `json:"stability"`
	Value     *ValueVerdict    `json:"value,omitempty"`
	Decision  Decision         `json:"decision"`
	Reasons   []string         `json:"reasons"`
}
