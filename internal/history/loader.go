// Package history loads chart series for one asset and timeframe, falling
// back to a synthesized series when the upstream has nothing usable. Loads
// carry a generation token so a slow response for a superseded selection is
// discarded instead of overwriting the chart.
package history

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"coinwatch/internal/domain"
)

// Historian fetches raw history points. Implemented by market.Client.
type Historian interface {
	History(ctx context.Context, assetID string, tf domain.Timeframe, convert string) ([]domain.HistoryPoint, error)
}

// Series is one renderable chart series. Synthesized marks a fallback walk
// rather than real market data.
type Series struct {
	AssetID     string
	Timeframe   domain.Timeframe
	Points      []domain.HistoryPoint
	Synthesized bool
}

// Request is a load token minted by Begin. Only the most recently minted
// token can apply its result.
type Request struct {
	AssetID   string
	Timeframe domain.Timeframe
	gen       uint64
}

// Result pairs a finished load with the token that started it.
type Result struct {
	Request Request
	Series  Series
}

// Loader coordinates chart loads. Safe for concurrent use; the intended
// pattern is Begin on selection change, Fetch in the background, Apply on
// completion.
type Loader struct {
	hist    Historian
	convert string
	log     *slog.Logger
	now     func() time.Time

	gen atomic.Uint64
}

// NewLoader creates a loader that fetches series in convert currency.
func NewLoader(hist Historian, convert string, log *slog.Logger) *Loader {
	return &Loader{
		hist:    hist,
		convert: convert,
		log:     log,
		now:     time.Now,
	}
}

// Begin registers a new load intent for (assetID, tf) and returns its token.
// Minting a new token supersedes every earlier one.
func (l *Loader) Begin(assetID string, tf domain.Timeframe) Request {
	return Request{
		AssetID:   assetID,
		Timeframe: tf,
		gen:       l.gen.Add(1),
	}
}

// Fetch performs the load for req. quote is the effective quote for the
// asset, used to seed the synthesized fallback when the upstream fails or
// returns nothing usable. Fetch never returns an error: a failed load
// degrades to a synthesized series.
func (l *Loader) Fetch(ctx context.Context, req Request, quote domain.AssetQuote) Result {
	points, err := l.hist.History(ctx, req.AssetID, req.Timeframe, l.convert)
	if err != nil {
		l.log.Warn("history unavailable, synthesizing",
			"asset", req.AssetID, "timeframe", req.Timeframe, "error", err)
		return Result{Request: req, Series: Series{
			AssetID:     req.AssetID,
			Timeframe:   req.Timeframe,
			Points:      Synthesize(quote, req.Timeframe, l.now()),
			Synthesized: true,
		}}
	}

	n, _ := req.Timeframe.Sampling()
	return Result{Request: req, Series: Series{
		AssetID:   req.AssetID,
		Timeframe: req.Timeframe,
		Points:    resample(points, n+1),
	}}
}

// Apply reports whether res belongs to the latest Begin. Callers keep the
// series only when Apply returns true; stale results are dropped.
func (l *Loader) Apply(res Result) bool {
	return res.Request.gen == l.gen.Load()
}
