package domain

// PlaceholderImage is the local stand-in used when the provider supplies no
// asset image.
const PlaceholderImage = "/placeholder.svg?height=32&width=32"

// DefaultQuote is the fixed record shown whenever the selected asset cannot
// be resolved against the current snapshot, including before the first
// successful refresh. The values are literal and never change.
var DefaultQuote = AssetQuote{
	ID:           "bitcoin",
	Name:         "Bitcoin",
	Symbol:       "BTC",
	Price:        60123.45,
	PctChange24h: 2.34,
	MarketCap:    1167387834231,
	Volume24h:    28736495823,
	Rank:         1,
	ImageRef:     PlaceholderImage,
	Glyph:        Glyph{Asset: AssetBitcoin, Fallback: "BTC"},
}

// DefaultWatchlist is the starting watchlist membership, in insertion order.
var DefaultWatchlist = []string{
	"bitcoin", "ethereum", "solana", "binancecoin", "cardano",
	"polkadot", "dogecoin", "avalanche", "chainlink",
}

// DefaultListings is a static ten-asset dataset used as the selector and
// fallback snapshot until live data arrives.
func DefaultListings() []AssetQuote {
	quotes := []AssetQuote{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Price: 60123.45, PctChange24h: 2.34, MarketCap: 1167387834231, Volume24h: 28736495823},
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Price: 3245.67, PctChange24h: -1.23, MarketCap: 389765432198, Volume24h: 15678943210},
		{ID: "binancecoin", Name: "Binance Coin", Symbol: "BNB", Price: 567.89, PctChange24h: 0.45, MarketCap: 87654321098, Volume24h: 2345678901},
		{ID: "solana", Name: "Solana", Symbol: "SOL", Price: 123.45, PctChange24h: 5.67, MarketCap: 54321098765, Volume24h: 3456789012},
		{ID: "cardano", Name: "Cardano", Symbol: "ADA", Price: 0.56, PctChange24h: -2.34, MarketCap: 19876543210, Volume24h: 987654321},
		{ID: "ripple", Name: "XRP", Symbol: "XRP", Price: 0.78, PctChange24h: 1.23, MarketCap: 18765432109, Volume24h: 876543210},
		{ID: "polkadot", Name: "Polkadot", Symbol: "DOT", Price: 7.89, PctChange24h: -0.98, MarketCap: 9876543210, Volume24h: 765432109},
		{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE", Price: 0.12, PctChange24h: 3.45, MarketCap: 8765432109, Volume24h: 654321098},
		{ID: "avalanche", Name: "Avalanche", Symbol: "AVAX", Price: 34.56, PctChange24h: -1.23, MarketCap: 7654321098, Volume24h: 543210987},
		{ID: "chainlink", Name: "Chainlink", Symbol: "LINK", Price: 18.90, PctChange24h: 2.34, MarketCap: 6543210987, Volume24h: 432109876},
	}
	for i := range quotes {
		quotes[i].Rank = i + 1
		quotes[i].ImageRef = PlaceholderImage
		quotes[i].Glyph = ResolveGlyph(quotes[i].ID, quotes[i].Symbol)
	}
	return quotes
}
