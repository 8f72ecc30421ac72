// Package render draws the dashboard tables, tabs, panels and footer.
package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sentidash/sentidash/internal/colors"
	"github.com/sentidash/sentidash/internal/derive"
)

const (
	columnGap      = 2
	minColumnWidth = 6
	maxColumnWidth = 48
	missing        = "-"
	ellipsis       = "..."
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Blue)))
	activeTab   = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Background(lipgloss.Color(ansiColorNumber(colors.Blue))).Foreground(lipgloss.Color("0"))
	inactiveTab = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Red)))
)

// TableState defines the inputs needed to render a page of rows.
type TableState struct {
	Columns []string
	Rows    []derive.Record
	Width   int
}

// FooterState defines the inputs needed to render footer help text.
type FooterState struct {
	SearchMode   bool
	CommandMode  bool
	SearchQuery  string
	CommandQuery string
	Page         int
	TotalPages   int
	TotalCount   int
	Loading      bool
	Spinner      string
	LoadedAgo    string
	Width        int
}

// Tabs renders the page selector. Tabs are numbered from 1.
func Tabs(titles []string, active int) string {
	parts := make([]string, len(titles))
	for i, title := range titles {
		label := fmt.Sprintf("%d %s", i+1, title)
		if i == active {
			parts[i] = activeTab.Render(label)
		} else {
			parts[i] = inactiveTab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// Cell formats one field of a record for display.
func Cell(r derive.Record, column string) string {
	v, ok := r.Field(column)
	if !ok {
		return missing
	}
	if !v.IsNumber() {
		if s := v.String(); s != "" {
			return s
		}
		return missing
	}
	f, _ := v.Float()
	return FormatNumber(column, f)
}

// FormatNumber renders f according to what column holds: counts get thousands
// separators, scores three decimals, prices and percentages two.
func FormatNumber(column string, f float64) string {
	switch {
	case strings.Contains(column, "volume"), strings.Contains(column, "count"),
		strings.Contains(column, "records"), strings.Contains(column, "points"):
		return humanize.Comma(int64(math.Round(f)))
	case strings.Contains(column, "sentiment"), strings.Contains(column, "correlation"),
		strings.Contains(column, "subjectivity"):
		return fmt.Sprintf("%.3f", f)
	default:
		return fmt.Sprintf("%.2f", f)
	}
}

// Table renders a header and one line per row, fitting the columns to width.
func Table(state TableState) string {
	if len(state.Columns) == 0 {
		return ""
	}

	cells := make([][]string, len(state.Rows))
	for i, r := range state.Rows {
		cells[i] = make([]string, len(state.Columns))
		for j, col := range state.Columns {
			cells[i][j] = Cell(r, col)
		}
	}
	widths := ColumnWidths(state.Columns, cells, state.Width)

	var b strings.Builder
	b.WriteString(headerStyle.Render(line(headers(state.Columns), widths)))
	if len(cells) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No rows match the current filters"))
		return b.String()
	}
	for _, row := range cells {
		b.WriteString("\n")
		b.WriteString(line(row, widths))
	}
	return b.String()
}

func headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = strings.ToUpper(strings.ReplaceAll(c, "_", " "))
	}
	return out
}

// ColumnWidths sizes each column to its widest cell, then shrinks the widest
// columns until the table fits width. A width of 0 disables fitting.
func ColumnWidths(columns []string, cells [][]string, width int) []int {
	widths := make([]int, len(columns))
	for i, h := range headers(columns) {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColumnWidth)
	}
	if width <= 0 {
		return widths
	}

	total := func() int {
		sum := columnGap * (len(widths) - 1)
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for total() > width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func line(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = pad(Truncate(c, widths[i]), widths[i])
	}
	return strings.TrimRight(strings.Join(parts, strings.Repeat(" ", columnGap)), " ")
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= len(ellipsis) {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-len(ellipsis)]) + ellipsis
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// Pair is a labelled value in a summary panel.
type Pair struct {
	Label string
	Value string
}

// Panel renders labelled values on one line, wrapping when width is exceeded.
func Panel(pairs []Pair, width int) string {
	labelStyle := dimStyle
	valueStyle := lipgloss.NewStyle().Bold(true)

	var lines []string
	var current []string
	currentWidth := 0
	for _, p := range pairs {
		plain := p.Label + ": " + p.Value
		item := labelStyle.Render(p.Label+":") + " " + valueStyle.Render(p.Value)
		w := utf8.RuneCountInString(plain) + 4
		if width > 0 && currentWidth > 0 && currentWidth+w > width {
			lines = append(lines, strings.Join(current, "    "))
			current, currentWidth = nil, 0
		}
		current = append(current, item)
		currentWidth += w
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, "    "))
	}
	return strings.Join(lines, "\n")
}

// Error renders an inline error line.
func Error(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// Footer renders the page position and key help.
func Footer(state FooterState) string {
	var status []string
	if state.Loading {
		status = append(status, strings.TrimSpace(state.Spinner+" Loading..."))
	}
	if state.TotalPages > 0 {
		status = append(status, fmt.Sprintf("Page %d of %d", state.Page, state.TotalPages))
		status = append(status, fmt.Sprintf("%s rows", humanize.Comma(int64(state.TotalCount))))
	}
	if state.LoadedAgo != "" {
		status = append(status, "updated "+state.LoadedAgo)
	}

	var help []string
	switch {
	case state.SearchMode:
		help = append(help, "ESC: exit search", "Enter: apply", fmt.Sprintf("Search: %s", state.SearchQuery))
	case state.CommandMode:
		help = append(help, "ESC: cancel", "Enter: execute", fmt.Sprintf(":%s", state.CommandQuery))
	default:
		help = append(help, "1-5: page", "[/]: prev/next", "/: search", ":: command",
			"t: range", "r: retry", "e: export", "x/X: dismiss", "q: quit")
	}

	out := dimStyle.Render(strings.Join(status, "  ·  "))
	helpLine := strings.Join(help, "  |  ")
	if state.Width > 0 {
		helpLine = Truncate(helpLine, state.Width)
	}
	return out + "\n" + dimStyle.Render(helpLine)
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
