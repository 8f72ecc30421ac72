package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sentidash/sentidash/internal/colors"
)

const (
	groupSymbol   = "▸"
	barWidth      = 20
	barFull       = "█"
	groupLabelMax = 18
)

// GroupRow defines the inputs needed to render a category count row, such as
// one bucket of the sentiment distribution.
type GroupRow struct {
	Label string
	Count int
	Total int
	Width int
}

// GroupRowStyles defines styles for group rows.
type GroupRowStyles struct {
	Base lipgloss.Style
	Bar  lipgloss.Style
}

// RenderGroupRow renders "▸ Positive   45  36.0% ███████".
func RenderGroupRow(row GroupRow, styles *GroupRowStyles) string {
	if styles == nil {
		defaults := defaultGroupRowStyles(row.Label)
		styles = &defaults
	}

	share := 0.0
	if row.Total > 0 {
		share = float64(row.Count) / float64(row.Total)
	}
	label := fmt.Sprintf("%s %-*s %6d  %5.1f%%", groupSymbol, groupLabelMax,
		Truncate(row.Label, groupLabelMax), row.Count, share*100)

	filled := int(share*barWidth + 0.5)
	if row.Width > 0 {
		room := row.Width - lipgloss.Width(label) - 1
		if room <= 0 {
			return styles.Base.Render(Truncate(label, row.Width))
		}
		filled = min(filled, room)
	}
	return styles.Base.Render(label) + " " + styles.Bar.Render(strings.Repeat(barFull, filled))
}

// RenderGroups renders one row per group in the given order.
func RenderGroups(rows []GroupRow) string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = RenderGroupRow(r, nil)
	}
	return strings.Join(out, "\n")
}

func defaultGroupRowStyles(label string) GroupRowStyles {
	return GroupRowStyles{
		Base: lipgloss.NewStyle().Bold(true),
		Bar:  lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(categoryColor(label)))),
	}
}

func categoryColor(label string) string {
	switch strings.ToLower(label) {
	case "positive":
		return colors.Green
	case "negative":
		return colors.Red
	case "neutral":
		return colors.Yellow
	default:
		return colors.Blue
	}
}
