package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

const nseBaseURL = "https://www.nseindia.com/api"

// NSE rejects requests without browser-like headers.
const nseUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// =============================================================================
// NSE CLIENT
// =============================================================================

// NSEClient talks to the nseindia.com JSON API. The site requires a primed
// session cookie, so the first request hits the homepage before any API call
// and the client's cookie jar carries the session onto API requests. One
// client is shared across concurrent analyses; priming is mutex-guarded.
type NSEClient struct {
	baseURL    string
	homeURL    string
	httpClient *http.Client
	mu         sync.Mutex
	primed     bool
}

// NewNSEClient creates an NSE API client with a cookie-holding HTTP client.
func NewNSEClient() *NSEClient {
	jar, _ := cookiejar.New(nil)
	return &NSEClient{
		baseURL:    nseBaseURL,
		homeURL:    "https://www.nseindia.com",
		httpClient: &http.Client{Timeout: 15 * time.Second, Jar: jar},
	}
}

// prime fetches the homepage once so the jar holds the session cookies.
// Best effort: a failed priming request just means the API call may be
// rejected, and the next call retries. The lock also stops concurrent
// callers from issuing duplicate priming requests.
func (c *NSEClient) prime(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.primed || c.homeURL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.homeURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", nseUserAgent)
	if resp, err := c.httpClient.Do(req); err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.primed = true
	}
}

func (c *NSEClient) get(ctx context.Context, path string, out interface{}) error {
	c.prime(ctx)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create NSE request: %w", err)
	}
	req.Header.Set("User-Agent", nseUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("NSE request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("NSE returned status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read NSE response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse NSE response: %w", err)
	}
	return nil
}

// nseSearchResponse mirrors /api/search/autocomplete.
type nseSearchResponse struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		SymbolInfo string `json:"symbol_info"`
		Result     string `json:"result_sub_type"`
	} `json:"symbols"`
}

// SearchTicker resolves a company name to NSE equity symbols via the
// autocomplete endpoint, equity matches first.
func (c *NSEClient) SearchTicker(ctx context.Context, companyName string) ([]TickerMatch, error) {
	var parsed nseSearchResponse
	path := "/search/autocomplete?q=" + url.QueryEscape(companyName)
	if err := c.get(ctx, path, &parsed); err != nil {
		return nil, err
	}

	var matches []TickerMatch
	for _, s := range parsed.Symbols {
		if s.Result != "" && !strings.EqualFold(s.Result, "equity") {
			continue
		}
		matches = append(matches, TickerMatch{Symbol: s.Symbol, CompanyName: s.SymbolInfo})
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no NSE equity match for %q", companyName)
	}
	return matches, nil
}

// nseQuoteResponse mirrors the parts of /api/quote-equity we consume.
type nseQuoteResponse struct {
	Info struct {
		Symbol      string `json:"symbol"`
		CompanyName string `json:"companyName"`
	} `json:"info"`
	PriceInfo struct {
		LastPrice float64 `json:"lastPrice"`
	} `json:"priceInfo"`
}

// GetQuote fetches the current price and company info for an NSE symbol.
func (c *NSEClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var parsed nseQuoteResponse
	path := "/quote-equity?symbol=" + url.QueryEscape(symbol)
	if err := c.get(ctx, path, &parsed); err != nil {
		return nil, err
	}
	if parsed.Info.Symbol == "" {
		return nil, fmt.Errorf("NSE quote for %q came back empty", symbol)
	}
	return &Quote{
		Symbol:      parsed.Info.Symbol,
		CompanyName: parsed.Info.CompanyName,
		LastPrice:   parsed.PriceInfo.LastPrice,
	}, nil
}
