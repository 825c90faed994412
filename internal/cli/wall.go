package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/the-wall-must-hold/internal/fuyou"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

const gaugeWidth = 30

// RenderSnapshot renders the progress towards one wall.
func RenderSnapshot(s model.ProgressSnapshot) string {
	style := LevelStyle(s.DangerLevel)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", style.Render(Gauge(s.Percentage, gaugeWidth)), style.Render(FormatPercent(s.Percentage)))
	fmt.Fprintf(&b, "Income:      %s / %s\n", FormatYen(s.CurrentIncome), FormatYen(s.Threshold))
	fmt.Fprintf(&b, "Remaining:   %s\n", FormatYen(s.RemainingAllowance))
	if s.RemainingMonths > 0 {
		fmt.Fprintf(&b, "Per month:   %s (%d months left)", FormatYen(s.RecommendedMonthlyIncome), s.RemainingMonths)
	} else {
		b.WriteString("Per month:   -")
	}

	return RenderBox(ChartIcon+" "+s.DisplayName+" ("+FormatManYen(s.Threshold)+")", b.String())
}

// RenderOverview renders one line per wall, marking the primary one.
func RenderOverview(snapshots []model.ProgressSnapshot, primary int) string {
	if len(snapshots) == 0 {
		return SubtleStyle.Render("No active thresholds")
	}

	rows := make([]string, 0, len(snapshots)+1)
	rows = append(rows, TableHeaderStyle.Render(fmt.Sprintf("  %-14s %-12s %-34s %s", "Wall", "Limit", "Progress", "Remaining")))
	for i, s := range snapshots {
		marker := "  "
		if i == primary {
			marker = "▶ "
		}
		style := LevelStyle(s.DangerLevel)
		row := fmt.Sprintf("%s%-14s %-12s %s %s",
			marker,
			s.DisplayName,
			FormatManYen(s.Threshold),
			style.Render(Gauge(s.Percentage, gaugeWidth)),
			FormatYen(s.RemainingAllowance))
		rows = append(rows, TableCellStyle.Render(row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderFuyou renders a legacy dependency category result.
func RenderFuyou(r fuyou.Result) string {
	var b strings.Builder
	b.WriteString(r.Reason)
	if r.Limit > 0 {
		fmt.Fprintf(&b, "\nLimit: %s", FormatYen(r.Limit))
	}
	if len(r.Risks) > 0 {
		b.WriteString("\n\n" + WarningStyle.Render("Risks"))
		for _, risk := range r.Risks {
			b.WriteString("\n  • " + risk)
		}
	}
	if len(r.Benefits) > 0 {
		b.WriteString("\n\n" + SuccessStyle.Render("Benefits"))
		for _, benefit := range r.Benefits {
			b.WriteString("\n  • " + benefit)
		}
	}
	return RenderBox(string(r.Category), b.String())
}
