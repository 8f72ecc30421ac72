// Package state holds the bubbletea model of the dashboard.
package state

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sentidash/sentidash/internal/errors"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/notify"
	"github.com/sentidash/sentidash/internal/view"
)

const (
	defaultViewportWidth  = 80
	defaultViewportHeight = 22
)

// Options configures a Model.
type Options struct {
	Pages     []view.Page
	Bus       *notify.Bus
	ExportDir string
	Now       func() time.Time
	Logger    logging.Logger
	// Announce adds a success notification for every applied load.
	Announce bool
}

// Model represents the TUI model for bubbletea.
type Model struct {
	ctx     context.Context
	uiState *UIState

	pages   []view.Page
	active  int
	mounted []bool
	// inflight counts load commands per page that have not been applied yet.
	inflight []int

	bus          *notify.Bus
	errorHandler errors.ErrorHandler
	spinner      spinner.Model

	exportDir string
	announce  bool
	now       func() time.Time
	logger    logging.Logger
}

// NewModel creates the dashboard model. Requests are performed with ctx.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Bus == nil {
		opts.Bus = notify.NewBus()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	return &Model{
		ctx:          ctx,
		uiState:      NewUIState(),
		pages:        opts.Pages,
		mounted:      make([]bool, len(opts.Pages)),
		inflight:     make([]int, len(opts.Pages)),
		bus:          opts.Bus,
		errorHandler: errors.NewBusHandler(opts.Bus),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		exportDir:    opts.ExportDir,
		announce:     opts.Announce,
		now:          opts.Now,
		logger:       opts.Logger.With("component", "tui"),
	}
}

// Init mounts the first page.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.mount(m.active))
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.uiState.SetWidth(msg.Width)
		m.uiState.SetHeight(msg.Height)
		return m, nil
	case loadedMsg:
		m.handleLoaded(msg)
		return m, nil
	case notificationsMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Active returns the index of the displayed page.
func (m *Model) Active() int { return m.active }

// Page returns the displayed page.
func (m *Model) Page() view.Page { return m.pages[m.active] }

// mount loads page i the first time it is shown.
func (m *Model) mount(i int) tea.Cmd {
	if i < 0 || i >= len(m.pages) || m.mounted[i] {
		return nil
	}
	m.mounted[i] = true
	return m.load(i, false)
}

// load issues requests for page i and returns the command performing them.
// Issuing happens here, on the Update goroutine, so a later load supersedes
// this one even if its responses arrive first.
func (m *Model) load(i int, restart bool) tea.Cmd {
	p := m.pages[i]
	var pending []view.Pending
	if restart {
		pending = p.Restart()
	} else {
		pending = p.Start()
	}
	if len(pending) == 0 {
		return nil
	}
	m.inflight[i]++
	m.logger.Debug("loading page", "page", p.Title(), "requests", len(pending), "restart", restart)

	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{page: i, done: view.PerformAll(ctx, pending...)}
	}
}

func (m *Model) handleLoaded(msg loadedMsg) {
	if msg.page >= 0 && msg.page < len(m.inflight) && m.inflight[msg.page] > 0 {
		m.inflight[msg.page]--
	}
	outcomes := view.ApplyAll(msg.done)
	view.ReportAll(m.bus, outcomes, m.announce)
	for _, o := range outcomes {
		if o.Stale {
			m.logger.Debug("dropped stale response", "dataset", o.Dataset, "key", o.Key.String())
		}
	}
}

// switchTo shows page i, loading it on first display.
func (m *Model) switchTo(i int) tea.Cmd {
	if i < 0 || i >= len(m.pages) || i == m.active {
		return nil
	}
	m.active = i
	m.uiState.GetViewport().GotoTop()
	m.uiState.SetSearchMode(false)
	search, _ := m.Page().Setting(view.SettingSearch)
	m.uiState.SetSearchQuery(search)
	return m.mount(i)
}

// apply sets a page setting and loads the page when its query changed.
func (m *Model) apply(name, value string) tea.Cmd {
	change, err := m.Page().Set(name, value)
	if err != nil {
		if stderrors.Is(err, view.ErrUnsupported) {
			m.errorHandler.Warning(name + " is not available on " + m.Page().Title())
			return nil
		}
		m.errorHandler.Warning(err.Error())
		return nil
	}
	switch change {
	case view.ChangeKey:
		m.uiState.GetViewport().GotoTop()
		return m.load(m.active, false)
	case view.ChangeFilter:
		m.uiState.GetViewport().GotoTop()
	}
	return nil
}
