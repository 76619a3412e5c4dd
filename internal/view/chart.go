package view

import (
	"fmt"
	"strings"
	"time"

	"coinwatch/internal/domain"
)

// eighth-height block runes, index 0 (empty) through 8 (full)
var blocks = []rune(" ▁▂▃▄▅▆▇█")

// RenderChart draws a text area chart of the series, width columns wide and
// height rows tall (excluding the axis line). Returns an empty-series
// placeholder when there is nothing to draw.
func RenderChart(points []domain.HistoryPoint, tf domain.Timeframe, width, height int) string {
	if width < 8 || height < 2 {
		return ""
	}
	if len(points) == 0 {
		return strings.Repeat("\n", height/2) + "  (no chart data)"
	}

	lo, hi := points[0].Price, points[0].Price
	for _, p := range points {
		if p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1 // flat series renders as a mid-height band
	}

	// one level count per column, in eighths of a row
	levels := make([]int, width)
	maxLevel := height * 8
	for col := 0; col < width; col++ {
		idx := col * (len(points) - 1) / (width - 1)
		frac := (points[idx].Price - lo) / span
		lvl := int(frac*float64(maxLevel-8)) + 4 // keep the floor visible
		if lvl < 1 {
			lvl = 1
		}
		if lvl > maxLevel {
			lvl = maxLevel
		}
		levels[col] = lvl
	}

	gutter := len(FormatUSD(hi))
	if g := len(FormatUSD(lo)); g > gutter {
		gutter = g
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		switch row {
		case 0:
			fmt.Fprintf(&b, "%*s ", gutter, FormatUSD(hi))
		case height - 1:
			fmt.Fprintf(&b, "%*s ", gutter, FormatUSD(lo))
		default:
			fmt.Fprintf(&b, "%*s ", gutter, "")
		}
		// rows fill bottom-up; the floor of this row sits at rowBase eighths
		rowBase := (height - 1 - row) * 8
		for col := 0; col < width; col++ {
			fill := levels[col] - rowBase
			if fill < 0 {
				fill = 0
			}
			if fill > 8 {
				fill = 8
			}
			b.WriteRune(blocks[fill])
		}
		b.WriteByte('\n')
	}

	left := timeLabel(points[0].Timestamp, tf)
	right := timeLabel(points[len(points)-1].Timestamp, tf)
	if len(left) > width {
		left = left[:width]
	}
	axis := left
	// The right label is dropped when both don't fit the chart width.
	if pad := width - len(left) - len(right); pad >= 1 {
		axis += strings.Repeat(" ", pad) + right
	}
	b.WriteString(strings.Repeat(" ", gutter+1))
	b.WriteString(axis)
	return b.String()
}

// timeLabel formats an axis timestamp at a granularity fitting the window.
func timeLabel(unixMilli int64, tf domain.Timeframe) string {
	t := time.UnixMilli(unixMilli).UTC()
	switch tf {
	case domain.Timeframe24h:
		return t.Format("15:04")
	case domain.Timeframe1y:
		return t.Format("Jan 2006")
	default:
		return t.Format("Jan 2")
	}
}
