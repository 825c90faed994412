package cli

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var yenPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders an amount with the yen sign and grouped digits, e.g. ¥1,030,000.
func FormatYen(amount int64) string {
	if amount < 0 {
		return "-¥" + yenPrinter.Sprintf("%d", -amount)
	}
	return "¥" + yenPrinter.Sprintf("%d", amount)
}

// FormatManYen renders an amount in units of 万円, the way walls are usually
// named: 1,030,000 is "103万円". Amounts that are not whole 万 keep one decimal.
func FormatManYen(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if amount%10_000 == 0 {
		return sign + yenPrinter.Sprintf("%d", amount/10_000) + "万円"
	}
	return sign + yenPrinter.Sprintf("%.1f", float64(amount)/10_000) + "万円"
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(p float64) string {
	return yenPrinter.Sprintf("%.1f%%", p)
}

// Gauge draws a fixed-width bar for a percentage in [0, 100].
func Gauge(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
