package ingest

import (
	"testing"
	"time"
)

func TestFiscalYearOf(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2024-04-01", 2024}, // April starts the new fiscal year
		{"2024-03-31", 2023}, // March still belongs to the prior one
		{"2023-12-15", 2023},
		{"2024-01-10", 2023},
		{"2024-07-01", 2024},
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := FiscalYearOf(d); got != tc.want {
			t.Errorf("FiscalYearOf(%s) = %d, want %d", tc.date, got, tc.want)
		}
	}
}

func TestYahooSymbol(t *testing.T) {
	if got := YahooSymbol("HAL"); got != "HAL.NS" {
		t.Errorf("YahooSymbol(HAL) = %s", got)
	}
	if got := YahooSymbol("HAL.NS"); got != "HAL.NS" {
		t.Errorf("YahooSymbol(HAL.NS) = %s, suffix must not double", got)
	}
}
