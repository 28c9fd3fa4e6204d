// Package tui presents the keynote in a terminal.
package tui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"microcasa/internal/deck"
	"microcasa/internal/session"
	"microcasa/internal/telemetry"
)

const (
	sidebarWidth = 22
	// chrome is the number of lines outside the viewport: title, progress, status, help.
	chrome = 4
)

const helpLine = "←/→ slides • b begin • s simulate • f submit • x bad submit • ↑/↓ scroll • q quit"

type Options struct {
	// Style is a glamour standard style; empty picks one from the terminal background.
	Style string
	// Pace is the delay between revealed burst readings.
	Pace time.Duration
}

type burstStepMsg struct{}

// Model is the bubbletea model of one presenter session.
type Model struct {
	session  *session.Session
	opts     Options
	styles   Styles
	md       *glamour.TermRenderer
	viewport viewport.Model
	progress progress.Model

	burst   *telemetry.Burst
	status  string
	failed  bool
	width   int
	height  int
	mdWidth int
}

func New(s *session.Session, opts Options) Model {
	m := Model{
		session:  s,
		opts:     opts,
		styles:   DefaultStyles(),
		viewport: viewport.New(80, 20),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:    100,
		height:   30,
	}
	m.resize()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case burstStepMsg:
		return m, m.advanceBurst()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "right", "l", "n":
			m.navigate("next", (*deck.Deck).Next)
		case "left", "h", "p":
			m.navigate("previous", (*deck.Deck).Previous)
		case "home":
			m.navigate("goto", func(d *deck.Deck) bool { return d.GoTo(0) })
		case "end":
			m.navigate("goto", func(d *deck.Deck) bool { return d.GoTo(d.Len() - 1) })
		case "b":
			m.navigate("begin", (*deck.Deck).Begin)
		case "s":
			return m, m.startBurst()
		case "f":
			m.submit(32.5, "Sector 7")
		case "x":
			m.submit(51, "Sector 7")
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) navigate(action string, move func(*deck.Deck) bool) {
	if m.session.Navigate(action, move) {
		m.refresh(true)
	}
}

// startBurst selects the Wokwi slide and schedules the first reading.
// A burst that is already running is left alone.
func (m *Model) startBurst() tea.Cmd {
	if m.burst != nil {
		return nil
	}
	m.session.Navigate("goto", func(d *deck.Deck) bool { return d.Select(deck.Wokwi) })
	m.burst = m.session.BeginBurst()
	m.setStatus("Uploading to simulator...", false)
	m.refresh(true)
	return m.tick(0)
}

func (m *Model) advanceBurst() tea.Cmd {
	if m.burst == nil {
		return nil
	}
	step, ok := m.session.AdvanceBurst(m.burst)
	if !ok || m.burst.Done() {
		m.burst = nil
	}
	if ok {
		m.setStatus(step.Line, step.Status == telemetry.StatusAlert)
	}
	m.refresh(false)

	if m.burst == nil {
		m.setStatus(fmt.Sprintf("Burst complete, %d readings in the table", m.session.Feed.Len()), false)
		return nil
	}
	return m.tick(m.opts.Pace)
}

func (m *Model) tick(delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return burstStepMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return burstStepMsg{} })
}

func (m *Model) submit(temperature float64, location string) {
	m.session.Navigate("goto", func(d *deck.Deck) bool { return d.Select(deck.AppSheet) })
	r, err := m.session.Submit(temperature, location)
	if err != nil {
		m.setStatus(telemetry.OutOfRangeMessage, true)
	} else {
		m.setStatus("Data synced! GPS Tagged: "+r.Geo(), false)
	}
	m.refresh(true)
}

func (m *Model) setStatus(s string, failed bool) {
	m.status, m.failed = s, failed
}

func (m *Model) resize() {
	m.viewport.Width = max(m.width-sidebarWidth-2, 20)
	m.viewport.Height = max(m.height-chrome, 5)
	m.progress.Width = max(m.width-12, 10)

	if w := m.viewport.Width - 2; w != m.mdWidth || m.md == nil {
		m.mdWidth = w
		style := glamour.WithAutoStyle()
		if m.opts.Style != "" {
			style = glamour.WithStandardStyle(m.opts.Style)
		}
		m.md, _ = glamour.NewTermRenderer(style, glamour.WithWordWrap(w))
	}
	m.refresh(false)
}

// refresh re-renders the active slide into the viewport.
func (m *Model) refresh(top bool) {
	var buf bytes.Buffer
	content := ""
	if err := m.session.Deck.Render(&buf); err != nil {
		content = "render failed: " + err.Error()
	} else {
		content = buf.String()
		if m.md != nil {
			if out, err := m.md.Render(content); err == nil {
				content = out
			}
		}
	}
	m.viewport.SetContent(content)
	if top {
		m.viewport.GotoTop()
	}
}

func (m Model) View() string {
	d := m.session.Deck

	var side strings.Builder
	for i, sl := range d.Slides() {
		label := fmt.Sprintf(" %-*s", sidebarWidth-2, sl.ID.Label())
		if i == d.Active() {
			side.WriteString(m.styles.ActiveItem.Render(label))
		} else {
			side.WriteString(m.styles.Item.Render(label))
		}
		side.WriteString("\n")
	}
	sidebar := m.styles.Sidebar.Width(sidebarWidth).Height(m.viewport.Height + 1).Render(side.String())

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(d.ActiveSlide().Title),
		m.viewport.View(),
	)

	status := m.styles.Status.Render(m.status)
	if m.failed {
		status = m.styles.Error.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main),
		fmt.Sprintf("%s %2d/%d", m.progress.ViewAs(d.Progress()), d.Active()+1, d.Len()),
		status,
		m.styles.Help.Render(helpLine),
	)
}
