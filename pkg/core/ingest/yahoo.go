package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"vyasaquant/pkg/core/calc"
)

const (
	yahooChartURL      = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=%dy&interval=1mo"
	yahooTimeseriesURL = "https://query1.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries/%s?type=annualBasicEPS&period1=%d&period2=%d"
	yahooQuoteURL      = "https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s"

	yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// =============================================================================
// YAHOO FINANCE CLIENT
// =============================================================================

// YahooClient fetches fundamentals and price history from the public Yahoo
// Finance endpoints. NSE symbols carry the ".NS" suffix on Yahoo.
type YahooClient struct {
	chartURL      string
	timeseriesURL string
	quoteURL      string
	httpClient    *http.Client
	now           func() time.Time
}

// NewYahooClient creates a Yahoo Finance client.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		chartURL:      yahooChartURL,
		timeseriesURL: yahooTimeseriesURL,
		quoteURL:      yahooQuoteURL,
		httpClient:    &http.Client{Timeout: 20 * time.Second},
		now:           time.Now,
	}
}

// YahooSymbol maps an NSE symbol to its Yahoo ticker.
func YahooSymbol(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".NS"
}

func (c *YahooClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create Yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Yahoo returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Yahoo response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse Yahoo response: %w", err)
	}
	return nil
}

// yahooTimeseriesResponse mirrors the fundamentals-timeseries envelope.
type yahooTimeseriesResponse struct {
	Timeseries struct {
		Result []struct {
			Meta struct {
				Type []string `json:"type"`
			} `json:"meta"`
			AnnualBasicEPS []*struct {
				AsOfDate string `json:"asOfDate"`
				Value    struct {
					Raw float64 `json:"raw"`
				} `json:"reportedValue"`
			} `json:"annualBasicEPS"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

// FetchEarnings retrieves up to `years` fiscal years of basic EPS,
// chronological, bucketed into Indian fiscal years.
func (c *YahooClient) FetchEarnings(ctx context.Context, symbol string, years int) (calc.EarningsSeries, error) {
	end := c.now()
	start := end.AddDate(-(years + 1), 0, 0)
	rawURL := fmt.Sprintf(c.timeseriesURL, url.PathEscape(YahooSymbol(symbol)), start.Unix(), end.Unix())

	var parsed yahooTimeseriesResponse
	if err := c.getJSON(ctx, rawURL, &parsed); err != nil {
		return nil, err
	}
	if parsed.Timeseries.Error != nil {
		return nil, fmt.Errorf("Yahoo timeseries error for %s: %s", symbol, parsed.Timeseries.Error.Description)
	}

	byYear := make(map[int]float64)
	for _, res := range parsed.Timeseries.Result {
		for _, pt := range res.AnnualBasicEPS {
			if pt == nil {
				continue
			}
			d, err := time.Parse("2006-01-02", pt.AsOfDate)
			if err != nil {
				continue
			}
			byYear[FiscalYearOf(d)] = pt.Value.Raw
		}
	}
	if len(byYear) == 0 {
		return nil, fmt.Errorf("no annual EPS data from Yahoo for %s", symbol)
	}

	series := make(calc.EarningsSeries, 0, len(byYear))
	for fy, eps := range byYear {
		series = append(series, calc.EarningsPoint{FiscalYear: fy, EPS: eps})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].FiscalYear < series[j].FiscalYear })
	if len(series) > years {
		series = series[len(series)-years:]
	}
	return series, nil
}

// yahooChartResponse mirrors the chart API envelope.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrices retrieves monthly adjusted closes and averages them per fiscal
// year. The current (incomplete) fiscal year is excluded: a partial-year
// average would distort the historical P/E anchor.
func (c *YahooClient) FetchPrices(ctx context.Context, symbol string, years int) (calc.PriceSeries, error) {
	rawURL := fmt.Sprintf(c.chartURL, url.PathEscape(YahooSymbol(symbol)), years+1)

	var parsed yahooChartResponse
	if err := c.getJSON(ctx, rawURL, &parsed); err != nil {
		return nil, err
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo chart error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data from Yahoo for %s", symbol)
	}

	res := parsed.Chart.Result[0]
	closes := pickCloses(res.Indicators.Adjclose, res.Indicators.Quote)
	if len(closes) == 0 || len(res.Timestamp) != len(closes) {
		return nil, fmt.Errorf("malformed chart data from Yahoo for %s", symbol)
	}

	type bucket struct {
		sum float64
		n   int
	}
	buckets := make(map[int]*bucket)
	for i, ts := range res.Timestamp {
		if closes[i] == nil {
			continue
		}
		fy := FiscalYearOf(time.Unix(ts, 0).UTC())
		b := buckets[fy]
		if b == nil {
			b = &bucket{}
			buckets[fy] = b
		}
		b.sum += *closes[i]
		b.n++
	}

	currentFY := CurrentFiscalYear(c.now())
	series := make(calc.PriceSeries, 0, len(buckets))
	for fy, b := range buckets {
		if fy == currentFY {
			continue
		}
		series = append(series, calc.PricePoint{FiscalYear: fy, AvgPrice: b.sum / float64(b.n)})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no complete fiscal year of prices from Yahoo for %s", symbol)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].FiscalYear < series[j].FiscalYear })
	if len(series) > years {
		series = series[len(series)-years:]
	}
	return series, nil
}

// yahooQuoteResponse mirrors the v7 quote envelope.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			LongName           string  `json:"longName"`
			ShortName          string  `json:"shortName"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			EPSTrailingTTM     float64 `json:"epsTrailingTwelveMonths"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// FetchQuote returns the live price, company name and TTM EPS from Yahoo.
func (c *YahooClient) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	rawURL := fmt.Sprintf(c.quoteURL, url.QueryEscape(YahooSymbol(symbol)))

	var parsed yahooQuoteResponse
	if err := c.getJSON(ctx, rawURL, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote from Yahoo for %s", symbol)
	}
	r := parsed.QuoteResponse.Result[0]
	name := r.LongName
	if name == "" {
		name = r.ShortName
	}
	return &Quote{
		Symbol:      strings.TrimSuffix(r.Symbol, ".NS"),
		CompanyName: name,
		LastPrice:   r.RegularMarketPrice,
		EPSTTM:      r.EPSTrailingTTM,
	}, nil
}

func pickCloses(adj []struct {
	Adjclose []*float64 `json:"adjclose"`
}, quote []struct {
	Close []*float64 `json:"close"`
}) []*float64 {
	if len(adj) > 0 && len(adj[0].Adjclose) > 0 {
		return adj[0].Adjclose
	}
	if len(quote) > 0 {
		return quote[0].Close
	}
	return nil
}
