// Package view renders snapshot and history data for the terminal UI:
// number formatting, list rows, and the price chart.
package view

import (
	"fmt"
	"strings"
	"time"
)

// FormatUSD formats a price as $X,XXX.XX. Sub-dollar prices keep four
// decimals so small-cap coins don't all read as $0.00.
func FormatUSD(p float64) string {
	if p == 0 {
		return "-"
	}
	if p < 1 {
		return fmt.Sprintf("$%.4f", p)
	}
	whole := int64(p)
	cents := int64((p-float64(whole))*100 + 0.5)
	if cents >= 100 {
		whole++
		cents -= 100
	}
	return fmt.Sprintf("$%s.%02d", groupThousands(whole), cents)
}

// FormatPct formats a 24h change as "▲2.34%" or "▼1.23%".
func FormatPct(pct float64) string {
	if pct < 0 {
		return fmt.Sprintf("▼%.2f%%", -pct)
	}
	return fmt.Sprintf("▲%.2f%%", pct)
}

// FormatCompact formats a large dollar value with T/B/M/K suffixes.
func FormatCompact(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// FormatAge renders how stale the snapshot is, e.g. "updated 12s ago".
// A zero time means no refresh has succeeded yet.
func FormatAge(lastUpdated, now time.Time) string {
	if lastUpdated.IsZero() {
		return "no data yet"
	}
	age := now.Sub(lastUpdated).Round(time.Second)
	if age < time.Second {
		return "updated just now"
	}
	if age < time.Minute {
		return fmt.Sprintf("updated %ds ago", int(age.Seconds()))
	}
	return fmt.Sprintf("updated %dm%02ds ago", int(age.Minutes()), int(age.Seconds())%60)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
