package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SummaryRow is one label/value line in the end-of-run table.
type SummaryRow struct {
	Label string
	Value string
}

// RenderSummary draws the rows as a two-column table with rule lines
// above and below. Labels are left-aligned, values right-aligned.
func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	rule := strings.Repeat("─", labelWidth+valueWidth+2)
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, summaryRuleStyle.Render(rule))

	for _, row := range rows {
		label := fmt.Sprintf("%-*s", labelWidth, row.Label)
		value := fmt.Sprintf("%*s", valueWidth, row.Value)
		lines = append(lines, summaryLabelStyle.Render(label)+"  "+summaryValueStyle.Render(value))
	}

	lines = append(lines, summaryRuleStyle.Render(rule))
	return strings.Join(lines, "\n")
}

var (
	summaryRuleStyle  = lipgloss.NewStyle().Foreground(ColorDim)
	summaryLabelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	summaryValueStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
)
