package state

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sentidash/sentidash/internal/notify"
)

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) error {
	m := NewModel(ctx, opts)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)...)

	// Bus listeners may run on the Update goroutine, which must never block
	// on its own message channel.
	unsubscribe := m.bus.Subscribe(func([]notify.Notification) {
		go p.Send(notificationsMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
