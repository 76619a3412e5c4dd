// Package domain defines the core data types shared across the coinwatch
// dashboard: market quotes, history points, timeframes, and glyph variants.
package domain

import "time"

// AssetQuote is one market entry from a listings snapshot. Quotes are built
// wholesale by the market gateway on every successful fetch; a snapshot is an
// ordered slice of AssetQuote (market-cap rank descending) that replaces the
// previous one atomically.
type AssetQuote struct {
	ID           string  // stable provider identifier, unique within a snapshot
	Name         string
	Symbol       string
	Price        float64 // latest price in the convert currency, >= 0
	PctChange24h float64 // signed percent
	MarketCap    float64
	Volume24h    float64
	Rank         int    // 1-based; provider rank when supplied, else list position
	ImageRef     string // URI or local placeholder
	Glyph        Glyph
}

// HistoryPoint is a single (timestamp, price) sample in a time series.
// Timestamps are Unix milliseconds; series are ordered ascending.
type HistoryPoint struct {
	Timestamp int64
	Price     float64
}

// ---------------------------------------------------------------------------
// Timeframes
// ---------------------------------------------------------------------------

// Timeframe is one of the fixed chart display windows.
type Timeframe string

const (
	Timeframe24h Timeframe = "24h"
	Timeframe7d  Timeframe = "7d"
	Timeframe30d Timeframe = "30d"
	Timeframe1y  Timeframe = "1y"
)

// Timeframes lists all valid timeframes in display order.
var Timeframes = []Timeframe{Timeframe24h, Timeframe7d, Timeframe30d, Timeframe1y}

// ParseTimeframe returns the Timeframe for s, or false if s is not one of
// the fixed set.
func ParseTimeframe(s string) (Timeframe, bool) {
	switch Timeframe(s) {
	case Timeframe24h, Timeframe7d, Timeframe30d, Timeframe1y:
		return Timeframe(s), true
	}
	return "", false
}

// LookbackDays returns the history window length in days requested upstream.
func (tf Timeframe) LookbackDays() int {
	switch tf {
	case Timeframe7d:
		return 7
	case Timeframe30d:
		return 30
	case Timeframe1y:
		return 365
	default:
		return 1
	}
}

// Sampling returns the chart sampling policy: the number of intervals and
// the spacing between points. A rendered series has points+1 samples (the
// anchor plus one per interval). The 1y window uses a fixed 30-day step so
// spacing stays exact regardless of calendar month lengths.
func (tf Timeframe) Sampling() (points int, step time.Duration) {
	switch tf {
	case Timeframe7d:
		return 7, 24 * time.Hour
	case Timeframe30d:
		return 30, 24 * time.Hour
	case Timeframe1y:
		return 12, 30 * 24 * time.Hour
	default:
		return 24, time.Hour
	}
}

// Interval returns the upstream sampling interval name for this timeframe.
func (tf Timeframe) Interval() string {
	switch tf {
	case Timeframe1y:
		return "monthly"
	case Timeframe24h:
		return "hourly"
	default:
		return "daily"
	}
}

// ---------------------------------------------------------------------------
// Glyphs
// ---------------------------------------------------------------------------

// KnownAsset enumerates the assets the dashboard carries a dedicated glyph
// for. Everything else renders its symbol text.
type KnownAsset int

const (
	AssetUnknown KnownAsset = iota
	AssetBitcoin
	AssetEthereum
	AssetBinanceCoin
	AssetSolana
	AssetCardano
	AssetRipple
	AssetPolkadot
	AssetDogecoin
	AssetAvalanche
	AssetChainlink
)

// Glyph is the display identity of an asset, resolved once at normalization
// time. When Asset is AssetUnknown the Fallback symbol text is shown instead.
type Glyph struct {
	Asset    KnownAsset
	Fallback string // first three letters of the symbol, upper-cased
}

var knownAssets = map[string]KnownAsset{
	"bitcoin":     AssetBitcoin,
	"ethereum":    AssetEthereum,
	"binancecoin": AssetBinanceCoin,
	"solana":      AssetSolana,
	"cardano":     AssetCardano,
	"ripple":      AssetRipple,
	"polkadot":    AssetPolkadot,
	"dogecoin":    AssetDogecoin,
	"avalanche":   AssetAvalanche,
	"chainlink":   AssetChainlink,
}

// ResolveGlyph maps an asset id to its glyph variant, falling back to the
// leading letters of the symbol for assets without a dedicated glyph.
func ResolveGlyph(id, symbol string) Glyph {
	fallback := symbol
	if len(fallback) > 3 {
		fallback = fallback[:3]
	}
	fallback = upper(fallback)
	if known, ok := knownAssets[id]; ok {
		return Glyph{Asset: known, Fallback: fallback}
	}
	return Glyph{Asset: AssetUnknown, Fallback: fallback}
}

// upper avoids pulling strings in for a three-byte ASCII uppercase.
func upper(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}
