package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sentidash/sentidash/internal/colors"
	"github.com/sentidash/sentidash/internal/notify"
)

// KindIcon returns the marker shown before a notification.
func KindIcon(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return "✓"
	case notify.KindError:
		return "✗"
	case notify.KindWarning:
		return "!"
	default:
		return "i"
	}
}

func kindColor(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return colors.Green
	case notify.KindError:
		return colors.Red
	case notify.KindWarning:
		return colors.Yellow
	default:
		return colors.Cyan
	}
}

// Notifications renders the visible notifications, newest last, one per line.
func Notifications(list []notify.Notification, width int) string {
	if len(list) == 0 {
		return ""
	}
	lines := make([]string, len(list))
	for i, n := range list {
		text := KindIcon(n.Kind) + " " + n.Title
		if n.Message != "" {
			text += ": " + n.Message
		}
		if width > 0 {
			text = Truncate(text, width)
		}
		lines[i] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ansiColorNumber(kindColor(n.Kind)))).
			Render(text)
	}
	return strings.Join(lines, "\n")
}
