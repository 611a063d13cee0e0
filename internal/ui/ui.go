package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HistoryView ViewState = iota
	CreateView
	LiveView
	viewCount
)

func (v ViewState) String() string {
	switch v {
	case HistoryView:
		return "History"
	case CreateView:
		return "New Regiment"
	case LiveView:
		return "Live BPM"
	default:
		return "Unknown"
	}
}

// Model represents the TUI application state.
//
// The live view exists only while it is shown: switching to it subscribes, and switching away or quitting closes the subscription.
type Model struct {
	ctx     context.Context
	service services.Service
	logger  *log.Logger
	view    ViewState
	form    *RegimentForm
	list    *RegimentList
	live    *LiveBPM
	width   int
	height  int
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, service services.Service, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}
	return &Model{
		ctx:     ctx,
		service: service,
		logger:  logger,
		view:    HistoryView,
		form:    NewRegimentForm(ctx, service, logger),
		list:    NewRegimentList(ctx, service, logger),
		keys:    newKeyMap(),
	}
}

// Init loads the history view and starts the form's cursor blink.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.list.Init(), m.form.Init())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m, m.route(msg)
	}

	// Tick chains keep running while their view is hidden.
	if _, ok := msg.(spinner.TickMsg); ok {
		_, cmd := m.list.Update(msg)
		return m, cmd
	}
	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m.quit()
	case key.Matches(msg, m.keys.quit) && m.view != CreateView:
		return m.quit()
	case key.Matches(msg, m.keys.next):
		return m, m.switchTo((m.view + 1) % viewCount)
	case key.Matches(msg, m.keys.prev):
		return m, m.switchTo((m.view + viewCount - 1) % viewCount)
	}

	var cmd tea.Cmd
	switch m.view {
	case HistoryView:
		_, cmd = m.list.Update(msg)
	case CreateView:
		_, cmd = m.form.Update(msg)
	case LiveView:
		if m.live != nil {
			_, cmd = m.live.Update(msg)
		}
	}
	return m, cmd
}

// route delivers service results to the view that issued them.
func (m *Model) route(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgRegimentSaved:
		m.form.Update(msg)
		if res := msg.data.(regimentSaved); res.err == nil {
			return m.list.Reload()
		}
		return nil
	case MsgRegimentsLoaded, MsgActiveLoaded, MsgActiveMarked:
		_, cmd := m.list.Update(msg)
		return cmd
	case MsgSubscribed, MsgBPMSample, MsgStreamClosed:
		ev, ok := msg.data.(liveEvent)
		if !ok || ev.owner == nil {
			return nil
		}
		_, cmd := ev.owner.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) switchTo(view ViewState) tea.Cmd {
	if view == m.view {
		return nil
	}
	if m.view == LiveView {
		m.closeLive()
	}
	m.view = view
	if view == LiveView {
		m.live = NewLiveBPM(m.ctx, m.service, m.logger)
		return m.live.Init()
	}
	return nil
}

func (m *Model) closeLive() {
	if m.live != nil {
		m.live.Close()
		m.live = nil
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

// Close tears down the live subscription. It is safe to call after the program exits.
func (m *Model) Close() {
	m.closeLive()
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case HistoryView:
		body = m.list.View()
	case CreateView:
		body = m.form.View()
	case LiveView:
		if m.live != nil {
			body = m.live.View()
		}
	}
	return fmt.Sprintf("%s\n\n%s", m.renderTabs(), body)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := range viewCount {
		if v == m.view {
			tabs = append(tabs, styles.active.Render(" "+v.String()+" "))
		} else {
			tabs = append(tabs, styles.help.Render(" "+v.String()+" "))
		}
	}
	return strings.Join(tabs, " ")
}
