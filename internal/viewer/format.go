package viewer

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wonny/tse-screener/internal/contracts"
)

// FormatPrice renders a price with thousands separators and no decimals
func FormatPrice(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// FormatVolume renders a share count with thousands separators
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}

// FormatTurnover renders 売買代金(百万円) with one decimal
func FormatTurnover(v float64) string {
	return humanize.FormatFloat("#,###.#", v)
}

// FormatPct renders a signed percentage with two decimals
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatOptionalPct renders a missing value as "-"
func FormatOptionalPct(v contracts.NullFloat) string {
	if !v.Valid {
		return "-"
	}
	return FormatPct(v.Value)
}

// FormatSize renders a file size, e.g. "412 kB"
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatAge renders how long ago t was, e.g. "3 hours ago"
func FormatAge(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
