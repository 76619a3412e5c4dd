// Package market fetches listings and price history from the quote proxy
// and normalizes the provider payloads into domain types.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"coinwatch/internal/domain"
)

// Client talks to a coinwatch proxy (or anything speaking the same routes).
// The zero value is not usable; construct with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient returns a client for the proxy at baseURL, e.g.
// "http://localhost:8790". An empty baseURL is allowed here and reported
// as ErrConfig on first use.
func NewClient(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// --- wire types ---

type listingsResponse struct {
	Status statusEnvelope `json:"status"`
	Data   []listingEntry `json:"data"`
}

type statusEnvelope struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type listingEntry struct {
	ID     int                  `json:"id"`
	Name   string               `json:"name"`
	Symbol string               `json:"symbol"`
	Slug   string               `json:"slug"`
	Rank   int                  `json:"cmc_rank"`
	Quote  map[string]wireQuote `json:"quote"`
}

type wireQuote struct {
	Price       float64 `json:"price"`
	Volume24h   float64 `json:"volume_24h"`
	PctChange24 float64 `json:"percent_change_24h"`
	MarketCap   float64 `json:"market_cap"`
}

type historyResponse struct {
	Status statusEnvelope `json:"status"`
	Data   struct {
		Quotes []historyEntry `json:"quotes"`
	} `json:"data"`
}

type historyEntry struct {
	Timestamp string               `json:"timestamp"`
	Quote     map[string]wireQuote `json:"quote"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Listings fetches the top listings ordered by market-cap rank. limit and
// start are 1-based per the provider convention; convert names the fiat
// currency for prices ("USD" when empty).
func (c *Client) Listings(ctx context.Context, limit, start int, convert string) ([]domain.AssetQuote, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", ErrValidation, limit)
	}
	if start < 1 {
		return nil, fmt.Errorf("%w: start %d", ErrValidation, start)
	}
	if convert == "" {
		convert = "USD"
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("start", strconv.Itoa(start))
	q.Set("convert", convert)

	var lr listingsResponse
	if err := c.getJSON(ctx, "/api/crypto", q, &lr); err != nil {
		return nil, fmt.Errorf("fetching listings: %w", err)
	}
	if lr.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("fetching listings: %w: provider code %d: %s",
			ErrUpstream, lr.Status.ErrorCode, lr.Status.ErrorMessage)
	}

	quotes := make([]domain.AssetQuote, 0, len(lr.Data))
	for i, e := range lr.Data {
		wq, ok := e.Quote[convert]
		if !ok {
			continue
		}
		id := e.Slug
		if id == "" {
			id = strconv.Itoa(e.ID)
		}
		rank := e.Rank
		if rank <= 0 {
			rank = i + 1
		}
		quotes = append(quotes, domain.AssetQuote{
			ID:           id,
			Name:         e.Name,
			Symbol:       e.Symbol,
			Price:        wq.Price,
			PctChange24h: wq.PctChange24,
			MarketCap:    wq.MarketCap,
			Volume24h:    wq.Volume24h,
			Rank:         rank,
			ImageRef:     domain.PlaceholderImage,
			Glyph:        domain.ResolveGlyph(id, e.Symbol),
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("fetching listings: %w: empty payload", ErrUpstream)
	}
	return quotes, nil
}

// History fetches the price series for one asset over tf, sorted ascending
// by timestamp. Unknown ids surface as ErrNotFound.
func (c *Client) History(ctx context.Context, assetID string, tf domain.Timeframe, convert string) ([]domain.HistoryPoint, error) {
	if assetID == "" {
		return nil, fmt.Errorf("%w: empty asset id", ErrValidation)
	}
	if _, ok := domain.ParseTimeframe(string(tf)); !ok {
		return nil, fmt.Errorf("%w: timeframe %q", ErrValidation, tf)
	}
	if convert == "" {
		convert = "USD"
	}

	q := url.Values{}
	q.Set("id", assetID)
	q.Set("timeframe", string(tf))
	q.Set("days", strconv.Itoa(tf.LookbackDays()))
	q.Set("convert", convert)

	var hr historyResponse
	if err := c.getJSON(ctx, "/api/crypto/history", q, &hr); err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", assetID, err)
	}
	if hr.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("fetching history for %s: %w: provider code %d: %s",
			assetID, ErrUpstream, hr.Status.ErrorCode, hr.Status.ErrorMessage)
	}

	points := make([]domain.HistoryPoint, 0, len(hr.Data.Quotes))
	for _, e := range hr.Data.Quotes {
		wq, ok := e.Quote[convert]
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			continue
		}
		points = append(points, domain.HistoryPoint{
			Timestamp: t.UnixMilli(),
			Price:     wq.Price,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("fetching history for %s: %w: no usable quotes", assetID, ErrUpstream)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points, nil
}

// getJSON performs one GET against the proxy and decodes the body into out.
// Proxy error statuses map onto the package sentinels.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: proxy url is empty", ErrConfig)
	}

	u := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var eb errorBody
		msg := ""
		if json.Unmarshal(body, &eb) == nil {
			msg = eb.Error
		}
		c.log.Warn("proxy error", "path", path, "status", resp.StatusCode, "error", msg)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrValidation, msg)
		default:
			return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding payload: %v", ErrUpstream, err)
	}
	return nil
}
