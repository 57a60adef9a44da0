package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"gan-video-studio/internal/core"
)

// Watcher is the part of the controller the TUI needs
type Watcher interface {
	Snapshot() core.SessionInfo
	Cancel() error
}

// TickMsg is sent periodically to poll the controller
type TickMsg time.Time

// CancelledMsg reports the outcome of a user cancel
type CancelledMsg struct {
	Err error
}

// Model is the Bubble Tea model for the transcoder
type Model struct {
	Watcher   Watcher
	Info      core.SessionInfo
	Progress  progress.Model
	Width     int
	Stopping  bool
	CancelErr error
	Done      bool
}

// NewModel creates a model that polls w until the session ends
func NewModel(w Watcher) Model {
	prog := progress.New(
		progress.WithGradient("#7C3AED", "#10B981"),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		Watcher:  w,
		Info:     w.Snapshot(),
		Progress: prog,
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// cancelCmd stops the session off the update loop
func cancelCmd(w Watcher) tea.Cmd {
	return func() tea.Msg {
		return CancelledMsg{Err: w.Cancel()}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Stopping {
				return m, nil
			}
			m.Stopping = true
			return m, cancelCmd(m.Watcher)
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Progress.Width = max(msg.Width-20, 10)

	case CancelledMsg:
		m.CancelErr = msg.Err
		m.Info = m.Watcher.Snapshot()
		m.Done = true
		return m, tea.Quit

	case TickMsg:
		if m.Done {
			return m, nil
		}
		m.Info = m.Watcher.Snapshot()
		if m.Info.State.Terminal() {
			m.Done = true
			return m, tea.Quit
		}
		return m, tickCmd()
	}

	return m, nil
}
