// Package widget is a terminal now playing panel. It runs in its own process
// and only ever reads the shared snapshot, so it keeps working while the
// main app restarts.
package widget

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus-crane/tunestatus/snapshot"
)

const refreshInterval = time.Second

type Loader interface {
	Load() snapshot.Snapshot
}

type Controller interface {
	Control(ctx context.Context, command string) error
}

type tickMsg time.Time

type loadedMsg snapshot.Snapshot

type controlDoneMsg struct {
	command string
	err     error
}

type Model struct {
	store    Loader
	control  Controller
	interval time.Duration
	styles   Styles

	snap  snapshot.Snapshot
	width int
	err   error
}

// New builds the widget model. control may be nil, in which case the
// playback keys are ignored.
func New(store Loader, control Controller) Model {
	return Model{
		store:    store,
		control:  control,
		interval: refreshInterval,
		styles:   DefaultStyles(),
		snap:     snapshot.Empty(),
		width:    48,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg(m.store.Load())
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) send(command string) tea.Cmd {
	if m.control == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return controlDoneMsg{command: command, err: m.control.Control(ctx, command)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		return m, tea.Batch(m.load(), m.tick())
	case loadedMsg:
		m.snap = snapshot.Snapshot(msg)
	case controlDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			return m, m.load()
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ", "space", "p":
			return m, m.send("playpause")
		case "n", "right":
			return m, m.send("next")
		case "b", "left":
			return m, m.send("previous")
		case "a":
			return m, m.send("activate")
		}
	}
	return m, nil
}

func (m Model) View() string {
	view := Render(m.snap, m.width, m.styles)
	if m.err != nil {
		view += "\n" + m.styles.Error.Render(m.err.Error())
	}
	if m.control != nil {
		view += "\n" + m.styles.Muted.Render("[space] play/pause  [b] previous  [n] next  [a] open  [q] quit")
	}
	return view
}
