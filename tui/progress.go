// Package tui renders pipeline progress with Bubble Tea.
package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/user/shorts-clipper-cli/pipeline"
	"github.com/user/shorts-clipper-cli/tui/components"
)

// ErrInterrupted is returned by RunProgress when the user quits early.
var ErrInterrupted = errors.New("interrupted")

const defaultWidth = 60

// eventMsg carries one pipeline event.
type eventMsg pipeline.Event

// eventsClosedMsg is sent once the pipeline closes its channel.
type eventsClosedMsg struct{}

// waitForEvent returns a tea.Cmd that waits for the next event on the channel.
func waitForEvent(ch <-chan pipeline.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

// progressModel is the Bubble Tea model behind RunProgress.
type progressModel struct {
	events      <-chan pipeline.Event
	state       components.ProgressState
	width       int
	interrupted bool
	onInterrupt func()
}

func newProgressModel(events <-chan pipeline.Event, onInterrupt func()) progressModel {
	return progressModel{events: events, width: defaultWidth, onInterrupt: onInterrupt}
}

func (m progressModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > 100 {
			m.width = 100
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.interrupted = true
			if m.onInterrupt != nil {
				m.onInterrupt()
			}
			// Keep draining so the pipeline goroutine can finish.
			return m, waitForEvent(m.events)
		}
		return m, nil

	case eventMsg:
		m.apply(pipeline.Event(msg))
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		if !m.state.Done && m.state.Err == nil && !m.interrupted {
			m.state.Done = true
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *progressModel) apply(e pipeline.Event) {
	if e.Err != nil {
		m.state.Err = e.Err
		return
	}
	if m.state.Stage != "" && m.state.Stage != string(e.Stage) {
		m.state.Finished = append(m.state.Finished, m.state.Stage)
	}
	if e.Stage == pipeline.StageDone {
		m.state.Stage = ""
		m.state.Done = true
		m.state.Message = e.Message
		return
	}
	m.state.Stage = string(e.Stage)
	m.state.Message = e.Message
	m.state.Current = e.Current
	m.state.Total = e.Total
}

func (m progressModel) View() string {
	view := components.Progress(m.state, m.width)
	if m.interrupted && !m.state.Done {
		view += "\n stopping..."
	}
	return view + "\n"
}

// RunProgress renders events until the channel is closed. onInterrupt, if
// set, is called when the user presses ctrl+c; the pipeline is expected to
// stop and close the channel.
func RunProgress(events <-chan pipeline.Event, onInterrupt func(), opts ...tea.ProgramOption) error {
	p := tea.NewProgram(newProgressModel(events, onInterrupt), opts...)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress display: %w", err)
	}
	if m, ok := final.(progressModel); ok && m.interrupted {
		return ErrInterrupted
	}
	return nil
}
