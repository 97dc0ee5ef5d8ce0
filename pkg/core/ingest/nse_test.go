package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestNSEClient(handler http.Handler) (*NSEClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := &NSEClient{
		baseURL:    srv.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		primed:     true, // skip homepage priming against the test server
	}
	return c, srv
}

func TestSearchTickerFiltersToEquity(t *testing.T) {
	c, srv := newTestNSEClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/autocomplete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "hindustan aeronautics" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(`{"symbols":[
			{"symbol":"HAL","symbol_info":"Hindustan Aeronautics Limited","result_sub_type":"equity"},
			{"symbol":"HAL25JUL","symbol_info":"HAL Futures","result_sub_type":"derivative"}
		]}`))
	}))
	defer srv.Close()

	matches, err := c.SearchTicker(context.Background(), "hindustan aeronautics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Symbol != "HAL" {
		t.Errorf("matches = %+v, want only HAL", matches)
	}
}

func TestSearchTickerNoMatch(t *testing.T) {
	c, srv := newTestNSEClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[]}`))
	}))
	defer srv.Close()

	if _, err := c.SearchTicker(context.Background(), "nonexistent co"); err == nil {
		t.Error("expected error for empty result")
	}
}

func TestGetQuote(t *testing.T) {
	c, srv := newTestNSEClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "HAL" {
			t.Errorf("symbol = %q", got)
		}
		w.Write([]byte(`{
			"info":{"symbol":"HAL","companyName":"Hindustan Aeronautics Limited"},
			"priceInfo":{"lastPrice":4512.35}
		}`))
	}))
	defer srv.Close()

	q, err := c.GetQuote(context.Background(), "HAL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.LastPrice != 4512.35 || q.CompanyName != "Hindustan Aeronautics Limited" {
		t.Errorf("quote = %+v", q)
	}
}

const nseQuoteBody = `{
	"info":{"symbol":"HAL","companyName":"Hindustan Aeronautics Limited"},
	"priceInfo":{"lastPrice":4512.35}
}`

func TestGetQuoteCarriesPrimingCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "test-session"})
		case "/quote-equity":
			cookie, err := r.Cookie("nsit")
			if err != nil || cookie.Value != "test-session" {
				t.Error("session cookie from priming was not sent on the API request")
			}
			w.Write([]byte(nseQuoteBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewNSEClient()
	c.baseURL = srv.URL
	c.homeURL = srv.URL

	q, err := c.GetQuote(context.Background(), "HAL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Symbol != "HAL" {
		t.Errorf("quote = %+v", q)
	}
}

func TestConcurrentQuotesPrimeOnce(t *testing.T) {
	var primes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			primes.Add(1)
			http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "test-session"})
		case "/quote-equity":
			w.Write([]byte(nseQuoteBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewNSEClient()
	c.baseURL = srv.URL
	c.homeURL = srv.URL

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetQuote(context.Background(), "HAL"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := primes.Load(); got != 1 {
		t.Errorf("homepage was primed %d times, want 1", got)
	}
}

func TestGetQuoteHTTPError(t *testing.T) {
	c, srv := newTestNSEClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := c.GetQuote(context.Background(), "HAL"); err == nil {
		t.Error("expected error on 401")
	}
}
