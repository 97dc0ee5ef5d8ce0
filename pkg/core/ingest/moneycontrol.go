package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const moneyControlPriceFeedURL = "https://priceapi.moneycontrol.com/pricefeed/bse/equitycash/%s"

// =============================================================================
// MONEYCONTROL CLIENT
// =============================================================================

// MoneyControlClient fetches sector context from the MoneyControl price feed.
// Sector P/E is report garnish; a failure here never blocks the screen.
type MoneyControlClient struct {
	feedURL    string
	httpClient *http.Client
}

// NewMoneyControlClient creates a MoneyControl price feed client.
func NewMoneyControlClient() *MoneyControlClient {
	return &MoneyControlClient{
		feedURL:    moneyControlPriceFeedURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type moneyControlFeed struct {
	Data struct {
		Sector   string      `json:"sector"`
		SectorPE json.Number `json:"sectorPE"`
	} `json:"data"`
}

// GetSectorInfo retrieves the sector name and sector P/E for a stock symbol.
func (c *MoneyControlClient) GetSectorInfo(ctx context.Context, symbol string) (*SectorInfo, error) {
	rawURL := fmt.Sprintf(c.feedURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create MoneyControl request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("MoneyControl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MoneyControl returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read MoneyControl response: %w", err)
	}

	var parsed moneyControlFeed
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse MoneyControl response: %w", err)
	}

	info := &SectorInfo{Sector: parsed.Data.Sector}
	if pe, err := parsed.Data.SectorPE.Float64(); err == nil {
		info.SectorPE = pe
	}
	return info, nil
}
