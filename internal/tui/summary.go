package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := maxWidth(rows, func(r SummaryRow) string { return r.Label })
	valueWidth := maxWidth(rows, func(r SummaryRow) string { return r.Value })
	rule := strings.Repeat("-", labelWidth+valueWidth+3)

	var b strings.Builder
	b.WriteString(rule)
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render(pad(row.Label, labelWidth)))
		b.WriteString(" | ")
		b.WriteString(valueStyle.Render(pad(row.Value, valueWidth)))
	}
	b.WriteByte('\n')
	b.WriteString(rule)
	return b.String()
}

func maxWidth(rows []SummaryRow, field func(SummaryRow) string) int {
	w := 0
	for _, row := range rows {
		if n := len(field(row)); n > w {
			w = n
		}
	}
	return w
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var valueStyle = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
