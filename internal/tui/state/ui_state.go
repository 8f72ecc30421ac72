package state

import (
	"github.com/charmbracelet/bubbles/viewport"
)

// UIState manages the terminal-facing state of the TUI: viewport size and
// the search and command input modes. Page data lives in the view package.
type UIState struct {
	viewport viewport.Model
	width    int
	height   int

	searchMode  bool
	searchQuery string

	commandMode  bool
	commandQuery string
}

// NewUIState creates a new UIState instance with default values.
func NewUIState() *UIState {
	return &UIState{
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		width:    defaultViewportWidth,
		height:   defaultViewportHeight,
	}
}

// GetViewport returns the current viewport model.
func (u *UIState) GetViewport() *viewport.Model {
	return &u.viewport
}

// GetWidth returns the current width of the UI.
func (u *UIState) GetWidth() int {
	return u.width
}

// SetWidth updates the width of the UI.
func (u *UIState) SetWidth(width int) {
	u.width = width
	if width <= 0 {
		u.width = defaultViewportWidth
	}
	u.viewport.Width = u.width
}

// GetHeight returns the current height of the UI.
func (u *UIState) GetHeight() int {
	return u.height
}

// SetHeight updates the height of the UI.
func (u *UIState) SetHeight(height int) {
	u.height = height
	if height <= 0 {
		u.height = defaultViewportHeight
	}
}

// FitViewport gives the viewport whatever height is left after chrome lines.
func (u *UIState) FitViewport(chrome int) {
	h := u.height - chrome
	if h < 1 {
		h = 1
	}
	u.viewport.Width = u.width
	u.viewport.Height = h
}

// Scroll moves the viewport by n lines; negative n scrolls up.
func (u *UIState) Scroll(n int) {
	u.viewport.SetYOffset(u.viewport.YOffset + n)
}

// IsSearchMode returns whether search mode is active.
func (u *UIState) IsSearchMode() bool {
	return u.searchMode
}

// SetSearchMode activates or deactivates search mode. The query is kept so
// that reopening search continues editing it.
func (u *UIState) SetSearchMode(active bool) {
	u.searchMode = active
	if active {
		u.commandMode = false
	}
}

// GetSearchQuery returns the current search query.
func (u *UIState) GetSearchQuery() string {
	return u.searchQuery
}

// SetSearchQuery updates the search query.
func (u *UIState) SetSearchQuery(query string) {
	u.searchQuery = query
}

// AppendToSearchQuery appends runes to the search query.
func (u *UIState) AppendToSearchQuery(r ...rune) {
	u.searchQuery += string(r)
}

// BackspaceSearchQuery removes the last rune of the search query.
func (u *UIState) BackspaceSearchQuery() {
	u.searchQuery = dropLast(u.searchQuery)
}

// IsCommandMode returns whether command mode is active.
func (u *UIState) IsCommandMode() bool {
	return u.commandMode
}

// SetCommandMode activates or deactivates command mode. Leaving it clears the query.
func (u *UIState) SetCommandMode(active bool) {
	u.commandMode = active
	if active {
		u.searchMode = false
	} else {
		u.commandQuery = ""
	}
}

// GetCommandQuery returns the current command query.
func (u *UIState) GetCommandQuery() string {
	return u.commandQuery
}

// AppendToCommandQuery appends runes to the command query.
func (u *UIState) AppendToCommandQuery(r ...rune) {
	u.commandQuery += string(r)
}

// BackspaceCommandQuery removes the last rune of the command query.
func (u *UIState) BackspaceCommandQuery() {
	u.commandQuery = dropLast(u.commandQuery)
}

func dropLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
