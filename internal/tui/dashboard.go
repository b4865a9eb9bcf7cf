// Package tui implements the terminal dashboard behind 'status --watch'.
// It polls Marathon for the monitored application's state and renders
// instance counts against the configured bounds.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/marathon"
)

// refreshInterval is how often the dashboard polls Marathon.
const refreshInterval = 2 * time.Second

// historySize bounds the instance count history strip.
const historySize = 30

// appReader is the slice of the Marathon client the dashboard needs.
type appReader interface {
	App(ctx context.Context, appID string) (*marathon.App, error)
}

// tickMsg paces the polling.
type tickMsg time.Time

// appMsg carries the result of one poll.
type appMsg struct {
	app *marathon.App
	err error
}

// Model holds the dashboard state.
type Model struct {
	client       appReader
	appID        string
	mode         string
	minInstances int
	maxInstances int
	timeout      time.Duration

	spinner  spinner.Model
	app      *marathon.App
	err      error
	fetched  time.Time
	history  []int
	fetching bool
	quitting bool
	width    int
}

// NewModel builds the dashboard for one application.
func NewModel(client appReader, appID string, cfg *config.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	timeout := cfg.Marathon.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return Model{
		client:       client,
		appID:        appID,
		mode:         cfg.Scaling.TriggerMode,
		minInstances: cfg.Scaling.MinInstances,
		maxInstances: cfg.Scaling.MaxInstances,
		timeout:      timeout,
		spinner:      sp,
		fetching:     true,
	}
}

// Init starts the spinner, the first poll, and the poll ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(), m.tick())
}

// Update handles messages. The ticker is re-armed from tickMsg only, so
// exactly one tick stream exists and at most one poll is in flight.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.fetching {
				m.fetching = true
				return m, m.fetch()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		if m.fetching {
			return m, m.tick()
		}
		m.fetching = true
		return m, tea.Batch(m.fetch(), m.tick())

	case appMsg:
		m.fetching = false
		m.fetched = time.Now()
		m.err = msg.err
		if msg.err == nil {
			m.app = msg.app
			m.history = append(m.history, msg.app.Instances)
			if len(m.history) > historySize {
				m.history = m.history[len(m.history)-historySize:]
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// fetch returns a command that polls Marathon once.
func (m Model) fetch() tea.Cmd {
	client, appID, timeout := m.client, m.appID, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		app, err := client.App(ctx, appID)
		return appMsg{app: app, err: err}
	}
}

// tick returns a command that sends the next tickMsg.
func (m Model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run opens the dashboard and blocks until the user quits.
func Run(client *marathon.Client, appID string, cfg *config.Config) error {
	p := tea.NewProgram(NewModel(client, appID, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
