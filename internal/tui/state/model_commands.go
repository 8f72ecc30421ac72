package state

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sentidash/sentidash/internal/export"
	"github.com/sentidash/sentidash/internal/view"
)

// filterCommands map a command name to the page setting it changes.
var filterCommands = map[string]string{
	"search":    view.SettingSearch,
	"min":       view.SettingMin,
	"max":       view.SettingMax,
	"symbol":    view.SettingSymbol,
	"source":    view.SettingSource,
	"sentiment": view.SettingSentiment,
	"category":  view.SettingCategory,
	"range":     view.SettingRange,
	"limit":     view.SettingLimit,
}

// executeCommand runs one command line and returns a command to run.
func (m *Model) executeCommand(line string) tea.Cmd {
	line = strings.TrimSpace(line)
	if line == "" {
		m.errorHandler.Warning("Command is empty")
		return nil
	}

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	if setting, ok := filterCommands[command]; ok {
		return m.handleFilterCommand(command, setting, args)
	}

	switch command {
	case "q", "quit":
		return tea.Quit
	case "page":
		return m.handlePageCommand(args)
	case "size":
		return m.handleSizeCommand(args)
	case "export":
		return m.handleExportCommand(args)
	case "clear":
		m.resetFilters()
		return nil
	case "retry":
		return m.load(m.active, true)
	default:
		m.errorHandler.Warning(fmt.Sprintf("Unknown command: %s", command))
		return nil
	}
}

func (m *Model) handleFilterCommand(command, setting string, args []string) tea.Cmd {
	if len(args) == 0 && setting != view.SettingSearch {
		m.errorHandler.Warning(fmt.Sprintf("Invalid usage: %s <value>", command))
		return nil
	}
	value := strings.Join(args, " ")
	if setting == view.SettingSearch {
		m.uiState.SetSearchQuery(value)
	}
	return m.apply(setting, value)
}

func (m *Model) handlePageCommand(args []string) tea.Cmd {
	n, ok := m.intArg("page", args)
	if !ok {
		return nil
	}
	m.Page().SetPage(n)
	m.uiState.GetViewport().GotoTop()
	return nil
}

func (m *Model) handleSizeCommand(args []string) tea.Cmd {
	n, ok := m.intArg("size", args)
	if !ok {
		return nil
	}
	if n < 1 {
		m.errorHandler.Warning("size must be at least 1")
		return nil
	}
	m.Page().SetPageSize(n)
	m.uiState.GetViewport().GotoTop()
	return nil
}

func (m *Model) handleExportCommand(args []string) tea.Cmd {
	if len(args) > 1 {
		m.errorHandler.Warning("Invalid usage: export [dir]")
		return nil
	}
	dir := m.exportDir
	if len(args) == 1 {
		dir = args[0]
	}
	m.exportPage(dir)
	return nil
}

func (m *Model) intArg(command string, args []string) (int, bool) {
	if len(args) != 1 {
		m.errorHandler.Warning(fmt.Sprintf("Invalid usage: %s <number>", command))
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		m.errorHandler.Warning(fmt.Sprintf("%s must be a number, got %q", command, args[0]))
		return 0, false
	}
	return n, true
}

// exportPage writes the visible rows of the page as CSV into dir.
func (m *Model) exportPage(dir string) {
	p := m.Page()
	path, err := export.SaveTo(dir, p.Name(), m.now(), p.Export)
	switch {
	case stderrors.Is(err, export.ErrNoRows):
		m.errorHandler.Warning("Nothing to export on " + p.Title())
	case err != nil:
		m.logger.Error("export failed", "page", p.Title(), "error", err)
		m.errorHandler.Error(fmt.Sprintf("Export failed: %v", err))
	default:
		m.logger.Info("exported page", "page", p.Title(), "path", path)
		m.bus.Success("Exported "+p.Title(), path)
	}
}
