package view

import (
	"strings"
	"testing"
	"time"

	"coinwatch/internal/domain"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{60123.45, "$60,123.45"},
		{3245.67, "$3,245.67"},
		{567.89, "$567.89"},
		{0.56, "$0.5600"},
		{1167387834231, "$1,167,387,834,231.00"},
		{0, "-"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(2.34); got != "▲2.34%" {
		t.Errorf("FormatPct(2.34) = %q", got)
	}
	if got := FormatPct(-1.23); got != "▼1.23%" {
		t.Errorf("FormatPct(-1.23) = %q", got)
	}
	if got := FormatPct(0); got != "▲0.00%" {
		t.Errorf("FormatPct(0) = %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1167387834231, "$1.17T"},
		{28736495823, "$28.74B"},
		{5432109, "$5.43M"},
		{98765, "$98.8K"},
		{512, "$512"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 30, 0, time.UTC)
	if got := FormatAge(time.Time{}, now); got != "no data yet" {
		t.Errorf("zero time: %q", got)
	}
	if got := FormatAge(now.Add(-12*time.Second), now); got != "updated 12s ago" {
		t.Errorf("12s: %q", got)
	}
	if got := FormatAge(now.Add(-90*time.Second), now); got != "updated 1m30s ago" {
		t.Errorf("90s: %q", got)
	}
}

func TestGlyphString(t *testing.T) {
	if got := GlyphString(domain.Glyph{Asset: domain.AssetBitcoin, Fallback: "BTC"}); got != "₿" {
		t.Errorf("bitcoin glyph = %q", got)
	}
	if got := GlyphString(domain.Glyph{Asset: domain.AssetUnknown, Fallback: "PEP"}); got != "PEP" {
		t.Errorf("fallback glyph = %q", got)
	}
}

func TestRows(t *testing.T) {
	snapshot := domain.DefaultListings()
	watching := func(id string) bool { return id == "ethereum" }
	rows := Rows(snapshot, "bitcoin", watching)

	if len(rows) != len(snapshot) {
		t.Fatalf("got %d rows, want %d", len(rows), len(snapshot))
	}
	if !rows[0].Selected || rows[1].Selected {
		t.Error("selection flag not on the bitcoin row")
	}
	if !rows[1].Watched || rows[0].Watched {
		t.Error("watch flag not on the ethereum row")
	}
	if rows[0].Price != "$60,123.45" {
		t.Errorf("rows[0].Price = %q", rows[0].Price)
	}
	if rows[1].Gain {
		t.Error("ethereum's negative change flagged as gain")
	}
}

func TestStats(t *testing.T) {
	stats := Stats(domain.DefaultQuote)
	if len(stats) != 4 {
		t.Fatalf("got %d stats, want 4", len(stats))
	}
	if stats[0].Value != "$1.17T" {
		t.Errorf("market cap = %q", stats[0].Value)
	}
	if stats[3].Value != "#1" {
		t.Errorf("rank = %q", stats[3].Value)
	}
}

func TestRenderChart(t *testing.T) {
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	points := make([]domain.HistoryPoint, 25)
	for i := range points {
		points[i] = domain.HistoryPoint{
			Timestamp: base.Add(time.Duration(i) * time.Hour).UnixMilli(),
			Price:     60000 + float64(i*50),
		}
	}

	out := RenderChart(points, domain.Timeframe24h, 40, 8)
	lines := strings.Split(out, "\n")
	if len(lines) != 9 { // height rows plus the axis line
		t.Fatalf("got %d lines, want 9", len(lines))
	}
	if !strings.Contains(lines[0], "$61,200.00") {
		t.Errorf("top gutter missing high: %q", lines[0])
	}
	if !strings.Contains(lines[7], "$60,000.00") {
		t.Errorf("bottom gutter missing low: %q", lines[7])
	}
	if !strings.Contains(lines[8], "00:00") {
		t.Errorf("axis line = %q", lines[8])
	}
	if !strings.ContainsRune(out, '█') {
		t.Error("chart has no filled cells")
	}
}

func TestRenderChartNarrowWidth(t *testing.T) {
	// monthly labels ("Jan 2006") are wider than half of a minimal chart;
	// the axis must degrade instead of blowing up
	base := time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)
	points := make([]domain.HistoryPoint, 13)
	for i := range points {
		points[i] = domain.HistoryPoint{
			Timestamp: base.Add(time.Duration(i) * 30 * 24 * time.Hour).UnixMilli(),
			Price:     60000 + float64(i*100),
		}
	}

	for width := 8; width <= 20; width++ {
		out := RenderChart(points, domain.Timeframe1y, width, 3)
		lines := strings.Split(out, "\n")
		if len(lines) != 4 {
			t.Fatalf("width %d: got %d lines, want 4", width, len(lines))
		}
		if !strings.Contains(lines[3], "Aug") {
			t.Errorf("width %d: axis lost its start label: %q", width, lines[3])
		}
	}
}

func TestRenderChartEmpty(t *testing.T) {
	out := RenderChart(nil, domain.Timeframe7d, 40, 8)
	if !strings.Contains(out, "no chart data") {
		t.Errorf("empty chart = %q", out)
	}
}
