package proxy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"coinwatch/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(upstreamURL, apiKey string) *Server {
	return NewServer(config.Upstream{
		APIURL:          upstreamURL,
		APIKey:          apiKey,
		RateLimitPerMin: 10000,
	}, testLogger())
}

func TestListingsPassThrough(t *testing.T) {
	const payload = `{"status":{"error_code":0},"data":[{"id":1,"slug":"bitcoin"}]}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/cryptocurrency/listings/latest" {
			t.Errorf("upstream path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-CMC_PRO_API_KEY"); got != "test-key" {
			t.Errorf("api key header = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		io.WriteString(w, payload)
	}))
	defer upstream.Close()

	srv := httptest.NewServer(newTestServer(upstream.URL, "test-key").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/crypto")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != payload {
		t.Errorf("body = %q, want upstream payload unchanged", body)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
}

func TestListingsMissingCredentials(t *testing.T) {
	srv := httptest.NewServer(newTestServer("http://localhost:0", "").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/crypto")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var eb map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if eb["error"] == "" {
		t.Error("error body has no message")
	}
}

func TestListingsBadParams(t *testing.T) {
	srv := httptest.NewServer(newTestServer("http://localhost:0", "k").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/crypto?limit=-5")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryMissingID(t *testing.T) {
	srv := httptest.NewServer(newTestServer("http://localhost:0", "k").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/crypto/history")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var eb map[string]string
	json.NewDecoder(resp.Body).Decode(&eb)
	if eb["error"] != "missing id parameter" {
		t.Errorf("error = %q", eb["error"])
	}
}

func TestHistoryForwardsParams(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/cryptocurrency/quotes/historical" {
			t.Errorf("upstream path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("slug") != "ethereum" || q.Get("interval") != "daily" || q.Get("count") != "30" {
			t.Errorf("upstream query = %v", q)
		}
		io.WriteString(w, `{"status":{"error_code":0},"data":{"quotes":[]}}`)
	}))
	defer upstream.Close()

	srv := httptest.NewServer(newTestServer(upstream.URL, "k").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/crypto/history?id=ethereum&timeframe=30d")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHistoryUnknownAsset(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"status":{"error_code":400,"error_message":"Invalid value for slug"}}`)
	}))
	defer upstream.Close()

	srv := httptest.NewServer(newTestServer(upstream.URL, "k").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/crypto/history?id=nosuchcoin")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpstreamServerErrorRetries(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	srv := httptest.NewServer(newTestServer(upstream.URL, "k").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/crypto")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("upstream called %d times, want 3", got)
	}
}

func TestPreflight(t *testing.T) {
	srv := httptest.NewServer(newTestServer("http://localhost:0", "k").Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/crypto", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
