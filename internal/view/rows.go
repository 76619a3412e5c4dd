package view

import (
	"fmt"

	"coinwatch/internal/domain"
)

// glyphChars maps dedicated asset glyphs to their terminal rendering.
var glyphChars = map[domain.KnownAsset]string{
	domain.AssetBitcoin:     "₿",
	domain.AssetEthereum:    "Ξ",
	domain.AssetBinanceCoin: "◆",
	domain.AssetSolana:      "◎",
	domain.AssetCardano:     "₳",
	domain.AssetRipple:      "✕",
	domain.AssetPolkadot:    "●",
	domain.AssetDogecoin:    "Ð",
	domain.AssetAvalanche:   "▲",
	domain.AssetChainlink:   "⬡",
}

// GlyphString returns the display glyph for an asset, or its fallback
// symbol letters when there is no dedicated glyph.
func GlyphString(g domain.Glyph) string {
	if s, ok := glyphChars[g.Asset]; ok {
		return s
	}
	return g.Fallback
}

// Row is one rendered line of the ranked asset list.
type Row struct {
	Rank     int
	Glyph    string
	Symbol   string
	Name     string
	Price    string
	Change   string
	Gain     bool // true when the 24h change is non-negative
	Cap      string
	Selected bool
	Watched  bool
}

// Rows projects the snapshot into list rows. selectedID marks the row the
// cursor sits on; watching reports watchlist membership.
func Rows(snapshot []domain.AssetQuote, selectedID string, watching func(string) bool) []Row {
	rows := make([]Row, len(snapshot))
	for i, q := range snapshot {
		rows[i] = Row{
			Rank:     q.Rank,
			Glyph:    GlyphString(q.Glyph),
			Symbol:   q.Symbol,
			Name:     q.Name,
			Price:    FormatUSD(q.Price),
			Change:   FormatPct(q.PctChange24h),
			Gain:     q.PctChange24h >= 0,
			Cap:      FormatCompact(q.MarketCap),
			Selected: q.ID == selectedID,
			Watched:  watching != nil && watching(q.ID),
		}
	}
	return rows
}

// Stat is one label/value pair of the detail panel's stats strip.
type Stat struct {
	Label string
	Value string
}

// Stats builds the detail stats strip for the effective quote.
func Stats(q domain.AssetQuote) []Stat {
	return []Stat{
		{Label: "Market Cap", Value: FormatCompact(q.MarketCap)},
		{Label: "24h Volume", Value: FormatCompact(q.Volume24h)},
		{Label: "24h Change", Value: FormatPct(q.PctChange24h)},
		{Label: "Rank", Value: fmt.Sprintf("#%d", q.Rank)},
	}
}
