package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"coinwatch/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const listingsPayload = `{
	"status": {"error_code": 0, "error_message": ""},
	"data": [
		{"id": 1, "name": "Bitcoin", "symbol": "BTC", "slug": "bitcoin", "cmc_rank": 1,
		 "quote": {"USD": {"price": 60123.45, "volume_24h": 28736495823, "percent_change_24h": 2.34, "market_cap": 1167387834231}}},
		{"id": 1027, "name": "Ethereum", "symbol": "ETH", "slug": "ethereum", "cmc_rank": 0,
		 "quote": {"USD": {"price": 3245.67, "volume_24h": 15983745621, "percent_change_24h": -1.23, "market_cap": 389028374651}}}
	]
}`

func TestListings(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/crypto" {
			t.Errorf("path = %q, want /api/crypto", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, listingsPayload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	quotes, err := c.Listings(context.Background(), 10, 1, "USD")
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if quotes[0].ID != "bitcoin" || quotes[0].Symbol != "BTC" {
		t.Errorf("quotes[0] = %s/%s, want bitcoin/BTC", quotes[0].ID, quotes[0].Symbol)
	}
	if quotes[0].Price != 60123.45 {
		t.Errorf("quotes[0].Price = %v, want 60123.45", quotes[0].Price)
	}
	// missing cmc_rank falls back to listing position
	if quotes[1].Rank != 2 {
		t.Errorf("quotes[1].Rank = %d, want 2", quotes[1].Rank)
	}
	if quotes[1].Glyph.Asset != domain.AssetEthereum {
		t.Errorf("quotes[1].Glyph.Asset = %v, want AssetEthereum", quotes[1].Glyph.Asset)
	}
	want := "convert=USD&limit=10&start=1"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestListingsValidation(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	if _, err := c.Listings(context.Background(), 0, 1, "USD"); !errors.Is(err, ErrValidation) {
		t.Errorf("limit 0: err = %v, want ErrValidation", err)
	}
	if _, err := c.Listings(context.Background(), 10, 0, "USD"); !errors.Is(err, ErrValidation) {
		t.Errorf("start 0: err = %v, want ErrValidation", err)
	}
	if called {
		t.Error("invalid params reached the server")
	}
}

func TestListingsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "upstream status 502"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.Listings(context.Background(), 10, 1, "USD")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestListingsProviderEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status": {"error_code": 1002, "error_message": "API key missing"}, "data": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.Listings(context.Background(), 10, 1, "USD")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestListingsNoBaseURL(t *testing.T) {
	c := NewClient("", testLogger())
	_, err := c.Listings(context.Background(), 10, 1, "USD")
	if !errors.Is(err, ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

const historyPayload = `{
	"status": {"error_code": 0, "error_message": ""},
	"data": {
		"quotes": [
			{"timestamp": "2026-08-30T12:00:00Z", "quote": {"USD": {"price": 60200.0}}},
			{"timestamp": "2026-08-30T10:00:00Z", "quote": {"USD": {"price": 60100.0}}},
			{"timestamp": "2026-08-30T11:00:00Z", "quote": {"USD": {"price": 60150.0}}}
		]
	}
}`

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/crypto/history" {
			t.Errorf("path = %q, want /api/crypto/history", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "bitcoin" {
			t.Errorf("id = %q, want bitcoin", got)
		}
		if got := r.URL.Query().Get("days"); got != "7" {
			t.Errorf("days = %q, want 7", got)
		}
		io.WriteString(w, historyPayload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	points, err := c.History(context.Background(), "bitcoin", domain.Timeframe7d, "USD")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp <= points[i-1].Timestamp {
			t.Fatalf("points not ascending at %d: %d <= %d", i, points[i].Timestamp, points[i-1].Timestamp)
		}
	}
	if points[0].Price != 60100.0 {
		t.Errorf("points[0].Price = %v, want 60100.0", points[0].Price)
	}
}

func TestHistoryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "unknown asset"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.History(context.Background(), "nosuchcoin", domain.Timeframe24h, "USD")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHistoryValidation(t *testing.T) {
	c := NewClient("http://localhost:0", testLogger())
	if _, err := c.History(context.Background(), "", domain.Timeframe24h, "USD"); !errors.Is(err, ErrValidation) {
		t.Errorf("empty id: err = %v, want ErrValidation", err)
	}
	if _, err := c.History(context.Background(), "bitcoin", domain.Timeframe("90d"), "USD"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad timeframe: err = %v, want ErrValidation", err)
	}
}
