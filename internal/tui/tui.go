// Package tui is the cooperative binding: a bubbletea event loop in which
// network calls run as commands so the interface never blocks on latency.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textcal/internal/controller"
	"textcal/internal/event"
	"textcal/internal/publish"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)

	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	fieldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

// --- Types ---

type mode int

const (
	modeInput mode = iota
	modeExtracting
	modeConfirm
	modePublishing
	modeDone
	modeConfigError
)

type extractedMsg struct {
	ev  event.Extracted
	err error
}

type publishedMsg struct {
	res publish.Result
	err error
}

type Model struct {
	ctl    *controller.Controller
	cfgErr error

	mode      mode
	extracted event.Extracted
	result    publish.Result
	errText   string

	textarea textarea.Model
	spinner  spinner.Model
	quitting bool
	width    int
}

// NewModel builds the single-window model. A non-nil cfgErr locks all
// controls and shows the configuration problem instead of the editor.
func NewModel(ctl *controller.Controller, cfgErr error) Model {
	ta := textarea.New()
	ta.Placeholder = "Lunch with Maria next Friday at noon at the corner cafe..."
	ta.Focus()
	ta.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{ctl: ctl, cfgErr: cfgErr, textarea: ta, spinner: sp, mode: modeInput}
	if cfgErr != nil {
		m.mode = modeConfigError
		m.textarea.Blur()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// busy reports whether a network operation is in flight. While busy, keys
// that would start another operation are ignored rather than queued.
func (m Model) busy() bool {
	return m.mode == modeExtracting || m.mode == modePublishing
}

func (m Model) extractCmd(text string) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ev, err := ctl.Submit(context.Background(), text)
		return extractedMsg{ev: ev, err: err}
	}
}

// publishCmd runs the blocking CalDAV call in the command's goroutine; its
// completion comes back to the single Update loop as a message.
func (m Model) publishCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		res, err := ctl.Confirm(context.Background())
		return publishedMsg{res: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode == modeConfigError {
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textarea.SetWidth(min(msg.Width-8, 76))
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case extractedMsg:
		if msg.err != nil {
			m.mode = modeInput
			m.errText = msg.err.Error()
			m.textarea.Focus()
			return m, nil
		}
		m.mode = modeConfirm
		m.extracted = msg.ev
		m.errText = ""
		return m, nil

	case publishedMsg:
		if msg.err != nil {
			// The extracted record is still held by the controller;
			// confirming again retries without re-extracting.
			m.mode = modeConfirm
			m.errText = msg.err.Error()
			return m, nil
		}
		m.mode = modeDone
		m.result = msg.res
		m.errText = ""
		return m, nil
	}

	switch m.mode {
	case modeInput:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+s" {
			text := m.textarea.Value()
			if strings.TrimSpace(text) == "" {
				m.errText = "enter some event text first"
				return m, nil
			}
			m.mode = modeExtracting
			m.errText = ""
			m.textarea.Blur()
			return m, tea.Batch(m.spinner.Tick, m.extractCmd(text))
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	case modeConfirm:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "y", "enter":
				m.mode = modePublishing
				m.errText = ""
				return m, tea.Batch(m.spinner.Tick, m.publishCmd())
			case "n", "esc":
				m.ctl.Cancel()
				m.mode = modeInput
				m.errText = ""
				m.textarea.Focus()
				return m, nil
			}
		}

	case modeDone:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q", "esc":
				m.quitting = true
				return m, tea.Quit
			default:
				m.mode = modeInput
				m.textarea.Reset()
				m.textarea.Focus()
				m.errText = ""
				return m, nil
			}
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" textcal "))
	s.WriteString("\n\n")

	switch m.mode {
	case modeConfigError:
		s.WriteString(errorStyle.Render("Configuration problem"))
		s.WriteString("\n\n" + m.cfgErr.Error() + "\n\n")
		s.WriteString(helpStyle.Render("Fix config.json and restart • ctrl+c: quit"))

	case modeInput:
		s.WriteString("Describe the event:\n\n")
		s.WriteString(m.textarea.View())
		s.WriteString("\n\n")
		if m.errText != "" {
			s.WriteString(errorStyle.Render(m.errText) + "\n\n")
		}
		s.WriteString(helpStyle.Render("ctrl+s: parse • ctrl+c: quit"))

	case modeExtracting:
		s.WriteString(m.spinner.View() + " Asking the model to parse the event...\n\n")
		s.WriteString(helpStyle.Render("ctrl+c: quit"))

	case modeConfirm:
		s.WriteString("Parsed event details:\n\n")
		s.WriteString(boxStyle.Render(renderRecord(m.extracted)))
		s.WriteString("\n\n")
		if m.errText != "" {
			s.WriteString(errorStyle.Render(m.errText) + "\n\n")
		}
		s.WriteString(helpStyle.Render("y/enter: create • n/esc: cancel • ctrl+c: quit"))

	case modePublishing:
		s.WriteString(m.spinner.View() + " Creating the event on the calendar server...\n\n")
		s.WriteString(helpStyle.Render("ctrl+c: quit"))

	case modeDone:
		s.WriteString(successStyle.Render("Event created successfully!"))
		s.WriteString("\n\n")
		s.WriteString(fieldStyle.Render("Summary: ") + m.result.Summary + "\n")
		s.WriteString(fieldStyle.Render("URL:     ") + m.result.URL + "\n\n")
		s.WriteString(helpStyle.Render("any key: new event • q/esc: quit"))
	}

	return docStyle.Render(s.String())
}

func renderRecord(ev event.Extracted) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(fieldStyle.Render(fmt.Sprintf("%-12s", label)) + value + "\n")
	}
	row("Summary", ev.Summary)
	row("Start", ev.Start)
	row("End", ev.End)
	if ev.Location != "" {
		row("Location", ev.Location)
	}
	if ev.Description != "" {
		row("Description", ev.Description)
	}
	if ev.RRule != "" {
		row("Repeats", ev.RRule)
	}

	start, serr := time.ParseInLocation(event.TimeLayout, ev.Start, time.Local)
	end, eerr := time.ParseInLocation(event.TimeLayout, ev.End, time.Local)
	if serr == nil && eerr == nil && !end.After(start) {
		b.WriteString(warnStyle.Render("note: end is not after start"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// --- Runner ---

func Run(ctl *controller.Controller, cfgErr error) error {
	p := tea.NewProgram(NewModel(ctl, cfgErr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
