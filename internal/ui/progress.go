// Package ui renders the live progress of a deck parse in the terminal.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"hydrodeck/internal/driver"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	countStyle  = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		driver.StatusOK.String():       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		driver.StatusCached.String():   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Italic(true),
		driver.StatusWarnings.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		driver.StatusFailed.String():   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		driver.StatusSkipped.String():  lipgloss.NewStyle().Faint(true),
		driver.StageParse.String():     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
	plainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

const statusColumn = 10

// row is one deck file on screen.
type row struct {
	name     string
	label    string // stage while running, status when done
	stage    driver.Stage
	entities int
}

type deckModel struct {
	title  string
	events <-chan driver.Event
	spin   spinner.Model
	bar    progress.Model
	rows   []row
	byPath map[string]int
	phase  string // run-wide stage, e.g. validating
	width  int
	done   bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows the driver's
// progress events for files until events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(76))

	m := &deckModel{
		title:  title,
		events: events,
		spin:   spin,
		bar:    bar,
		rows:   make([]row, len(files)),
		byPath: make(map[string]int, len(files)),
		width:  80,
	}
	for i, f := range files {
		m.rows[i] = row{name: filepath.Base(f), label: driver.StageQueued.String()}
		m.byPath[f] = i
	}
	return m
}

func (m *deckModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

// next waits for the following driver event.
func (m *deckModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *deckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// прерывание: вызывающий код отменит контекст драйвера
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(10, msg.Width-4)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *deckModel) apply(ev driver.Event) tea.Cmd {
	if ev.Path == "" {
		m.phase = ev.Stage.String()
		return nil
	}
	i, ok := m.byPath[ev.Path]
	if !ok {
		return nil
	}
	r := &m.rows[i]
	r.stage = ev.Stage
	if ev.Stage == driver.StageDone {
		r.label = ev.Status.String()
		r.entities = ev.Entities
	} else {
		r.label = ev.Stage.String()
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction counts a running file as half done.
func (m *deckModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		switch r.stage {
		case driver.StageDone:
			sum += 1
		case driver.StageParse:
			sum += 0.5
		}
	}
	return sum / float64(len(m.rows))
}

func (m *deckModel) header() string {
	h := m.title
	if m.phase != "" {
		h += " (" + m.phase + ")"
	}
	if m.done {
		return headerStyle.Render("done: " + h)
	}
	return m.spin.View() + " " + headerStyle.Render(h)
}

func (m *deckModel) renderRow(r row) string {
	style, ok := statusStyles[r.label]
	if !ok {
		style = plainStyle
	}
	line := "  " + style.Render(fmt.Sprintf("%*s", statusColumn, r.label)) + " " +
		truncate(r.name, max(20, m.width-statusColumn-16))
	if r.entities > 0 {
		line += countStyle.Render(fmt.Sprintf("  %d entities", r.entities))
	}
	return line
}

func (m *deckModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.rows)+4)
	lines = append(lines, m.header(), "")
	for _, r := range m.rows {
		lines = append(lines, m.renderRow(r))
	}
	bar := m.bar.View()
	if m.done {
		bar = m.bar.ViewAs(1)
	}
	lines = append(lines, "", bar)
	return strings.Join(lines, "\n") + "\n"
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	default:
		return runewidth.Truncate(value, width, "...")
	}
}
