// Package selection tracks the user's chosen asset, timeframe, and
// watchlist. State lives only for the session; nothing is persisted.
package selection

import (
	"strings"

	"coinwatch/internal/domain"
)

// State holds the user's current choices. It is owned by the UI event loop
// and is not safe for concurrent use.
type State struct {
	assetID   string
	timeframe domain.Timeframe
	watch     []string
}

// NewState returns the session defaults: Bitcoin selected, the 24h chart
// window, and the stock watchlist.
func NewState() *State {
	watch := make([]string, len(domain.DefaultWatchlist))
	copy(watch, domain.DefaultWatchlist)
	return &State{
		assetID:   domain.DefaultQuote.ID,
		timeframe: domain.Timeframe24h,
		watch:     watch,
	}
}

// SelectAsset records the chosen asset id. The id is not validated against
// the snapshot; resolution happens at read time so a selection can outlive
// the asset dropping out of the listings.
func (s *State) SelectAsset(id string) {
	s.assetID = id
}

// AssetID returns the currently selected asset id.
func (s *State) AssetID() string { return s.assetID }

// SelectTimeframe switches the chart window. Unknown values are ignored and
// the current timeframe stays in effect.
func (s *State) SelectTimeframe(v string) {
	if tf, ok := domain.ParseTimeframe(v); ok {
		s.timeframe = tf
	}
}

// Timeframe returns the active chart window.
func (s *State) Timeframe() domain.Timeframe { return s.timeframe }

// Watching reports whether id is on the watchlist.
func (s *State) Watching(id string) bool {
	for _, w := range s.watch {
		if w == id {
			return true
		}
	}
	return false
}

// AddWatch appends id to the watchlist unless already present.
func (s *State) AddWatch(id string) {
	if id == "" || s.Watching(id) {
		return
	}
	s.watch = append(s.watch, id)
}

// RemoveWatch drops id from the watchlist, preserving the order of the rest.
func (s *State) RemoveWatch(id string) {
	for i, w := range s.watch {
		if w == id {
			s.watch = append(s.watch[:i], s.watch[i+1:]...)
			return
		}
	}
}

// ToggleWatch adds id if absent, removes it if present.
func (s *State) ToggleWatch(id string) {
	if s.Watching(id) {
		s.RemoveWatch(id)
	} else {
		s.AddWatch(id)
	}
}

// WatchIDs returns a copy of the watchlist ids in insertion order.
func (s *State) WatchIDs() []string {
	out := make([]string, len(s.watch))
	copy(out, s.watch)
	return out
}

// Watchlist projects the snapshot onto the watchlist: quotes appear in
// watchlist insertion order, and ids absent from the snapshot are skipped.
func (s *State) Watchlist(snapshot []domain.AssetQuote) []domain.AssetQuote {
	byID := make(map[string]domain.AssetQuote, len(snapshot))
	for _, q := range snapshot {
		byID[q.ID] = q
	}
	out := make([]domain.AssetQuote, 0, len(s.watch))
	for _, id := range s.watch {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Resolve returns the snapshot quote for the selected asset. When the
// selection has no match in the snapshot, the Bitcoin default record is
// shown instead, so a detail panel is always renderable.
func (s *State) Resolve(snapshot []domain.AssetQuote) domain.AssetQuote {
	for _, q := range snapshot {
		if q.ID == s.assetID {
			return q
		}
	}
	return domain.DefaultQuote
}

// Title renders the session title from the watchlist: the names of the
// watched assets present in the snapshot, e.g.
// "coinwatch — Bitcoin, Ethereum". An empty watchlist projection yields
// the bare app name.
func (s *State) Title(snapshot []domain.AssetQuote) string {
	quotes := s.Watchlist(snapshot)
	if len(quotes) == 0 {
		return "coinwatch"
	}
	names := make([]string, len(quotes))
	for i, q := range quotes {
		names[i] = q.Name
	}
	return "coinwatch — " + strings.Join(names, ", ")
}
