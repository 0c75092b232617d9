// Package tui renders a live progress view for an organize run.
package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmsort/internal/organizer"
	"github.com/nikbrunner/bmsort/internal/runctl"
)

// EventMsg carries one run event into the program.
type EventMsg runctl.Event

// DoneMsg reports the end of the run.
type DoneMsg struct {
	Summary *organizer.Summary
	Err     error
}

// Params holds parameters for creating a new Model.
type Params struct {
	Controller *runctl.Controller
	Keys       *KeyMap // optional, uses default if nil
	Styles     *Styles // optional, uses default if nil
	// CopyToClipboard defaults to the system clipboard.
	CopyToClipboard func(string) error
}

// Model is the bubbletea model of the organize progress view.
type Model struct {
	ctl    *runctl.Controller
	keys   KeyMap
	styles Styles
	copyFn func(string) error

	bar     progress.Model
	spinner spinner.Model
	logs    viewport.Model
	lines   []string

	last      runctl.Progress
	summary   *organizer.Summary
	err       error
	done      bool
	stopping  bool
	quitAfter bool
	notice    string

	width  int
	height int
}

// NewModel creates a Model for the run driven by p.Controller.
func NewModel(p Params) Model {
	keys := DefaultKeyMap()
	if p.Keys != nil {
		keys = *p.Keys
	}
	styles := DefaultStyles()
	if p.Styles != nil {
		styles = *p.Styles
	}
	copyFn := p.CopyToClipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	m := Model{
		ctl:     p.Controller,
		keys:    keys,
		styles:  styles,
		copyFn:  copyFn,
		bar:     progress.New(progress.WithDefaultGradient()),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		logs:    viewport.New(76, 10),
	}
	m.resize(80, 24)
	return m
}

// Summary returns the run summary once the run has ended.
func (m Model) Summary() *organizer.Summary {
	return m.summary
}

// Err returns the error that prevented the run, if any.
func (m Model) Err() error {
	return m.err
}

// Progress returns the last progress snapshot received.
func (m Model) Progress() runctl.Progress {
	return m.last
}

// Lines returns the log lines received so far.
func (m Model) Lines() []string {
	return m.lines
}

// Done reports whether the run has ended.
func (m Model) Done() bool {
	return m.done
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case EventMsg:
		m.handleEvent(runctl.Event(msg))
		return m, nil

	case DoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.err = msg.Err
		if msg.Summary != nil {
			m.last.Processed = msg.Summary.Processed
			m.last.SuccessCount = msg.Summary.Success
			m.last.FailureCount = msg.Summary.Failure
		}
		if msg.Err != nil || m.quitAfter {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleEvent(ev runctl.Event) {
	switch ev.Kind {
	case runctl.EventProgress:
		if ev.Progress != nil {
			m.last = *ev.Progress
		}
	case runctl.EventLog:
		m.lines = append(m.lines, ev.Text)
		atBottom := m.logs.AtBottom()
		m.logs.SetContent(m.renderLines())
		if atBottom {
			m.logs.GotoBottom()
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.done || m.stopping {
			return m, tea.Quit
		}
		m.requestStop()
		m.quitAfter = true
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if !m.done && !m.stopping {
			m.requestStop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if err := m.copyFn(strings.Join(m.lines, "\n")); err != nil {
			m.notice = "copy failed: " + err.Error()
		} else {
			m.notice = "log copied to clipboard"
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.logs.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.logs.ScrollDown(1)
		return m, nil
	}
	return m, nil
}

func (m *Model) requestStop() {
	m.stopping = true
	if m.ctl != nil && m.ctl.RequestStop() {
		m.notice = "stopping after the current batch"
		return
	}
	m.notice = "stop requested"
}

// resize fits the bar and the log viewport into a width x height terminal.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	inner := max(width-8, 20)
	m.bar.Width = inner
	m.logs.Width = inner
	// title, status, bar, blank, border x2, summary, hints, notice, padding
	m.logs.Height = max(height-11, 3)
	m.logs.SetContent(m.renderLines())
}
