package state

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sentidash/sentidash/internal/view"
)

// handleKeyMsg processes keyboard input for the TUI.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch {
	case m.uiState.IsSearchMode():
		return m, m.handleSearchKey(msg)
	case m.uiState.IsCommandMode():
		return m.handleCommandKey(msg)
	}
	return m.handleKeyBinding(msg.String())
}

// handleSearchKey edits the search query. Every edit filters the table.
func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.uiState.SetSearchMode(false)
		m.uiState.SetSearchQuery("")
		return m.apply(view.SettingSearch, "")
	case tea.KeyEnter:
		m.uiState.SetSearchMode(false)
		return nil
	case tea.KeyBackspace:
		m.uiState.BackspaceSearchQuery()
	case tea.KeySpace:
		m.uiState.AppendToSearchQuery(' ')
	case tea.KeyRunes:
		m.uiState.AppendToSearchQuery(msg.Runes...)
	default:
		return nil
	}
	return m.apply(view.SettingSearch, m.uiState.GetSearchQuery())
}

// handleCommandKey edits and runs the command line.
func (m *Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.uiState.SetCommandMode(false)
	case tea.KeyEnter:
		line := m.uiState.GetCommandQuery()
		m.uiState.SetCommandMode(false)
		return m, m.executeCommand(line)
	case tea.KeyBackspace:
		if m.uiState.GetCommandQuery() == "" {
			m.uiState.SetCommandMode(false)
			break
		}
		m.uiState.BackspaceCommandQuery()
	case tea.KeySpace:
		m.uiState.AppendToCommandQuery(' ')
	case tea.KeyRunes:
		m.uiState.AppendToCommandQuery(msg.Runes...)
	}
	return m, nil
}

// handleKeyBinding handles keys outside of the input modes.
func (m *Model) handleKeyBinding(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m, m.switchTo(int(key[0] - '1'))
	case "tab":
		return m, m.switchTo((m.active + 1) % len(m.pages))
	case "shift+tab":
		return m, m.switchTo((m.active + len(m.pages) - 1) % len(m.pages))
	case "]", "n", "right":
		m.Page().NextPage()
		m.uiState.GetViewport().GotoTop()
	case "[", "p", "left":
		m.Page().PrevPage()
		m.uiState.GetViewport().GotoTop()
	case "j", "down":
		m.uiState.Scroll(1)
	case "k", "up":
		m.uiState.Scroll(-1)
	case "g", "home":
		m.uiState.GetViewport().GotoTop()
	case "G", "end":
		m.uiState.GetViewport().GotoBottom()
	case "t":
		return m, m.cycleRange()
	case "r":
		return m, m.load(m.active, true)
	case "e":
		m.exportPage(m.exportDir)
	case "c":
		m.resetFilters()
	case "x":
		m.dismissOldest()
	case "X":
		m.bus.ClearAll()
	case "/":
		m.uiState.SetSearchMode(true)
	case ":":
		m.uiState.SetCommandMode(true)
	}
	return m, nil
}

// cycleRange moves the page to the next time window.
func (m *Model) cycleRange() tea.Cmd {
	p := m.Page()
	if !hasSetting(p, view.SettingRange) {
		m.errorHandler.Warning("range is not available on " + p.Title())
		return nil
	}
	return m.apply(view.SettingRange, p.Hours().Next().String())
}

func (m *Model) resetFilters() {
	if m.Page().Reset() {
		m.uiState.GetViewport().GotoTop()
	}
	m.uiState.SetSearchQuery("")
	m.errorHandler.Info("Filters cleared")
}

// dismissOldest removes the notification that has been shown the longest.
func (m *Model) dismissOldest() {
	list := m.bus.List()
	if len(list) == 0 {
		return
	}
	m.bus.Dismiss(list[len(list)-1].ID)
}

func hasSetting(p view.Page, name string) bool {
	for _, s := range p.Settings() {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
