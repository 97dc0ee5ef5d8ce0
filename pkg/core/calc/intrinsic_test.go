package calc

import (
	"errors"
	"math"
	"testing"
)

func alignedSeries() (EarningsSeries, PriceSeries) {
	earnings := EarningsSeries{
		{FiscalYear: 2020, EPS: 10.0},
		{FiscalYear: 2021, EPS: 12.0},
		{FiscalYear: 2022, EPS: 14.5},
		{FiscalYear: 2023, EPS: 17.0},
	}
	prices := PriceSeries{
		{FiscalYear: 2020, AvgPrice: 200},
		{FiscalYear: 2021, AvgPrice: 264},
		{FiscalYear: 2022, AvgPrice: 348},
		{FiscalYear: 2023, AvgPrice: 442},
	}
	return earnings, prices
}

func TestComputeIntrinsicsHappyPath(t *testing.T) {
	earnings, prices := alignedSeries()
	// Per-year P/E: 20, 22, 24, 26 -> mean 23.
	res, err := NewIntrinsicPricingEngine().ComputeIntrinsics(earnings, prices, 18.0, 430)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UsedYears != 4 {
		t.Errorf("UsedYears = %d, want 4", res.UsedYears)
	}
	if math.Abs(res.IntrinsicPE-23.0) > 1e-9 {
		t.Errorf("IntrinsicPE = %f, want 23", res.IntrinsicPE)
	}
	wantGrowth, _ := CAGR(20, 26, 3)
	if math.Abs(res.PEGrowthRate-wantGrowth) > 1e-9 {
		t.Errorf("PEGrowthRate = %f, want %f", res.PEGrowthRate, wantGrowth)
	}
	wantBest := 430.0/18.0 + wantGrowth
	if math.Abs(res.BestCasePE-wantBest) > 1e-9 {
		t.Errorf("BestCasePE = %f, want %f", res.BestCasePE, wantBest)
	}
	// Round-trip: the intrinsic value must reproduce exactly from its factors.
	if res.IntrinsicValue != res.IntrinsicPE*18.0 {
		t.Errorf("IntrinsicValue = %v, want exact product %v", res.IntrinsicValue, res.IntrinsicPE*18.0)
	}
	if res.OptimisticValue != res.BestCasePE*18.0 {
		t.Errorf("OptimisticValue = %v, want exact product %v", res.OptimisticValue, res.BestCasePE*18.0)
	}
}

func TestComputeIntrinsicsSkipsNonPositiveEPSYears(t *testing.T) {
	earnings := EarningsSeries{
		{FiscalYear: 2020, EPS: 10.0},
		{FiscalYear: 2021, EPS: -3.0}, // loss year: excluded, not zero-filled
		{FiscalYear: 2022, EPS: 0.0},  // breakeven: excluded too
		{FiscalYear: 2023, EPS: 20.0},
	}
	prices := PriceSeries{
		{FiscalYear: 2020, AvgPrice: 100},
		{FiscalYear: 2021, AvgPrice: 90},
		{FiscalYear: 2022, AvgPrice: 95},
		{FiscalYear: 2023, AvgPrice: 300},
	}
	res, err := NewIntrinsicPricingEngine().ComputeIntrinsics(earnings, prices, 20.0, 310)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UsedYears != 2 {
		t.Errorf("UsedYears = %d, want 2", res.UsedYears)
	}
	// Surviving P/Es: 10 and 15 -> mean 12.5.
	if math.Abs(res.IntrinsicPE-12.5) > 1e-9 {
		t.Errorf("IntrinsicPE = %f, want 12.5", res.IntrinsicPE)
	}
}

func TestComputeIntrinsicsMisalignment(t *testing.T) {
	earnings, prices := alignedSeries()
	eng := NewIntrinsicPricingEngine()

	if _, err := eng.ComputeIntrinsics(earnings, prices[:3], 18, 430); !errors.Is(err, ErrMisalignedSeries) {
		t.Errorf("length mismatch error = %v, want ErrMisalignedSeries", err)
	}

	shifted := make(PriceSeries, len(prices))
	copy(shifted, prices)
	shifted[2].FiscalYear = 2025
	if _, err := eng.ComputeIntrinsics(earnings, shifted, 18, 430); !errors.Is(err, ErrMisalignedSeries) {
		t.Errorf("year mismatch error = %v, want ErrMisalignedSeries", err)
	}
}

func TestComputeIntrinsicsAllLossYears(t *testing.T) {
	earnings := EarningsSeries{{FiscalYear: 2022, EPS: -1}, {FiscalYear: 2023, EPS: -2}}
	prices := PriceSeries{{FiscalYear: 2022, AvgPrice: 50}, {FiscalYear: 2023, AvgPrice: 40}}
	_, err := NewIntrinsicPricingEngine().ComputeIntrinsics(earnings, prices, -2, 40)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("error = %v, want ErrInsufficientData", err)
	}
}

func TestComputeIntrinsicsSingleUsableYearHasZeroPEGrowth(t *testing.T) {
	earnings := EarningsSeries{
		{FiscalYear: 2022, EPS: -1.0},
		{FiscalYear: 2023, EPS: 10.0},
	}
	prices := PriceSeries{
		{FiscalYear: 2022, AvgPrice: 80},
		{FiscalYear: 2023, AvgPrice: 150},
	}
	res, err := NewIntrinsicPricingEngine().ComputeIntrinsics(earnings, prices, 10, 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PEGrowthRate != 0 {
		t.Errorf("PEGrowthRate = %f, want 0 for single usable year", res.PEGrowthRate)
	}
	// Zero P/E growth means the best case falls back to the intrinsic anchor.
	if res.BestCasePE != res.IntrinsicPE {
		t.Errorf("BestCasePE = %f, want IntrinsicPE %f", res.BestCasePE, res.IntrinsicPE)
	}
}

func TestPEG(t *testing.T) {
	if got := PEG(23, 19.25); math.Abs(got-23/19.25) > 1e-12 {
		t.Errorf("PEG(23, 19.25) = %f", got)
	}
	if got := PEG(23, 0); !math.IsInf(got, 1) {
		t.Errorf("PEG with zero growth = %v, want +Inf", got)
	}
	if got := PEG(23, -5); !math.IsInf(got, 1) {
		t.Errorf("PEG with negative growth = %v, want +Inf", got)
	}
}

func TestComputeIntrinsicsIdempotent(t *testing.T) {
	earnings, prices := alignedSeries()
	eng := NewIntrinsicPricingEngine()
	a, err1 := eng.ComputeIntrinsics(earnings, prices, 18, 430)
	b, err2 := eng.ComputeIntrinsics(earnings, prices, 18, 430)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if a.IntrinsicPE != b.IntrinsicPE || a.BestCasePE != b.BestCasePE ||
		a.IntrinsicValue != b.IntrinsicValue || a.OptimisticValue != b.OptimisticValue {
		t.Errorf("identical inputs gave different results: %+v vs %+v", a, b)
	}
}
