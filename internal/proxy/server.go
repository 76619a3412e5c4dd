// Package proxy serves the two quote endpoints consumed by the dashboard
// client. It forwards requests to the market-data provider, attaching the
// API credential server-side so it never reaches a client.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"coinwatch/internal/config"
	"coinwatch/internal/domain"
	"coinwatch/internal/util"
)

const apiKeyHeader = "X-CMC_PRO_API_KEY"

// Server proxies quote requests to the configured provider. Credentials are
// checked lazily, at request time, so the process can start without them.
type Server struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	limiter    *util.RateLimiter
	log        *slog.Logger
}

// NewServer creates a proxy server from the upstream configuration.
func NewServer(cfg config.Upstream, log *slog.Logger) *Server {
	perMinute := cfg.RateLimitPerMin
	if perMinute <= 0 {
		perMinute = 25
	}
	return &Server{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    util.NewRateLimiter(perMinute),
		log:        log,
	}
}

// RegisterRoutes registers the quote endpoints on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/crypto", s.handleListings)
	mux.HandleFunc("GET /api/crypto/history", s.handleHistory)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := intParam(q, "limit", 10)
	start := intParam(q, "start", 1)
	convert := q.Get("convert")
	if convert == "" {
		convert = "USD"
	}
	if limit < 1 || start < 1 {
		writeError(w, http.StatusBadRequest, "limit and start must be positive")
		return
	}

	upstream := url.Values{}
	upstream.Set("limit", strconv.Itoa(limit))
	upstream.Set("start", strconv.Itoa(start))
	upstream.Set("convert", convert)

	s.forward(r.Context(), w, "/v1/cryptocurrency/listings/latest", upstream, false)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}
	tf, ok := domain.ParseTimeframe(q.Get("timeframe"))
	if !ok {
		tf = domain.Timeframe7d
	}
	days := intParam(q, "days", tf.LookbackDays())
	convert := q.Get("convert")
	if convert == "" {
		convert = "USD"
	}

	upstream := url.Values{}
	upstream.Set("slug", id)
	upstream.Set("interval", tf.Interval())
	upstream.Set("count", strconv.Itoa(days))
	upstream.Set("convert", convert)

	s.forward(r.Context(), w, "/v2/cryptocurrency/quotes/historical", upstream, true)
}

// forward performs the upstream request and relays the provider body
// unchanged on success. notFoundable maps upstream 4xx onto 404 so the
// client can tell an unknown asset from an outage.
func (s *Server) forward(ctx context.Context, w http.ResponseWriter, path string, q url.Values, notFoundable bool) {
	if s.apiURL == "" {
		writeError(w, http.StatusInternalServerError, "upstream api url not configured")
		return
	}
	if s.apiKey == "" {
		writeError(w, http.StatusInternalServerError, "upstream api key not configured")
		return
	}

	if err := s.limiter.Wait(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "rate limit wait cancelled")
		return
	}

	u := s.apiURL + path + "?" + q.Encode()
	var body []byte
	var status int
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(apiKeyHeader, s.apiKey)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		status = resp.StatusCode
		// Server-side failures are worth a retry; client-class statuses
		// won't change on a second attempt.
		if status >= 500 {
			return fmt.Errorf("upstream status %d", status)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("upstream request failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "upstream request failed")
		return
	}

	if status != http.StatusOK {
		s.log.Warn("upstream error status", "path", path, "status", status)
		if notFoundable && (status == http.StatusBadRequest || status == http.StatusNotFound) {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("upstream status %d", status))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func intParam(q url.Values, name string, def int) int {
	v := q.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
