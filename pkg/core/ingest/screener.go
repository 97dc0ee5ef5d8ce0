package ingest

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"vyasaquant/pkg/core/calc"
)

const screenerCompanyURL = "https://www.screener.in/company/%s/"

// =============================================================================
// SCREENER.IN SCRAPER
// =============================================================================

// ScreenerScraper pulls the annual EPS row from a screener.in company page.
// It is the fallback EPS source when the Yahoo fundamentals feed has gaps for
// a symbol.
type ScreenerScraper struct {
	companyURL string
	httpClient *http.Client
}

// NewScreenerScraper creates a screener.in scraper.
func NewScreenerScraper() *ScreenerScraper {
	return &ScreenerScraper{
		companyURL: screenerCompanyURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// FetchEarnings scrapes the profit-and-loss table and returns up to `years`
// fiscal years of EPS, chronological. Column headers like "Mar 2024" mark the
// fiscal year ending that March, i.e. FY2023.
func (s *ScreenerScraper) FetchEarnings(ctx context.Context, symbol string, years int) (calc.EarningsSeries, error) {
	rawURL := fmt.Sprintf(s.companyURL, strings.ToUpper(symbol))
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create screener request: %w", err)
	}
	req.Header.Set("User-Agent", nseUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("screener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("screener returned status %d for %s", resp.StatusCode, symbol)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse screener page: %w", err)
	}
	return parseScreenerEPS(doc, years)
}

// parseScreenerEPS extracts the EPS row from the profit-loss section.
func parseScreenerEPS(doc *goquery.Document, years int) (calc.EarningsSeries, error) {
	table := doc.Find("section#profit-loss table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no profit-loss table on page")
	}

	// Header: first cell blank, then one column per fiscal-year end.
	var fiscalYears []int
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			fiscalYears = append(fiscalYears, 0)
			return
		}
		fy := parseFiscalYearHeader(strings.TrimSpace(th.Text()))
		fiscalYears = append(fiscalYears, fy)
	})
	if len(fiscalYears) < 2 {
		return nil, fmt.Errorf("no fiscal year columns in profit-loss table")
	}

	var series calc.EarningsSeries
	table.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		label := strings.TrimSpace(tr.Find("td").First().Text())
		if !strings.HasPrefix(label, "EPS") {
			return true
		}
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i == 0 || i >= len(fiscalYears) || fiscalYears[i] == 0 {
				return
			}
			raw := strings.ReplaceAll(strings.TrimSpace(td.Text()), ",", "")
			eps, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return
			}
			series = append(series, calc.EarningsPoint{FiscalYear: fiscalYears[i], EPS: eps})
		})
		return false
	})
	if len(series) == 0 {
		return nil, fmt.Errorf("no EPS row in profit-loss table")
	}

	sort.Slice(series, func(i, j int) bool { return series[i].FiscalYear < series[j].FiscalYear })
	if len(series) > years {
		series = series[len(series)-years:]
	}
	return series, nil
}

// parseFiscalYearHeader maps "Mar 2024" to FY2023 and "TTM" to 0 (skipped;
// TTM EPS enters the screen through the quote, not the historical series).
func parseFiscalYearHeader(text string) int {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	month, err := time.Parse("Jan", fields[0])
	if err != nil {
		return 0
	}
	return FiscalYearOf(time.Date(year, month.Month(), 28, 0, 0, 0, 0, time.UTC))
}
