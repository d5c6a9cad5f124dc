package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"squish/internal/batch"
)

type Model struct {
	updates    <-chan batch.ProgressUpdate
	started    time.Time
	width      int
	found      int
	processed  int
	failed     int
	bytesSaved int64
	quitting   bool
}

type doneMsg struct{}

type updateMsg batch.ProgressUpdate

func NewModel(updates <-chan batch.ProgressUpdate) Model {
	return Model{updates: updates, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.found += msg.FoundDelta
		m.processed += msg.ProcessedDelta
		m.failed += msg.FailedDelta
		m.bytesSaved += msg.BytesSavedDelta

		next := listenForUpdates(m.updates)
		if msg.Done != nil {
			return m, tea.Batch(tea.Println(ResultLine(*msg.Done)), next)
		}
		return m, next
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	done := m.processed + m.failed
	ratio := 0.0
	if m.found > 0 {
		ratio = float64(done) / float64(m.found)
		if ratio > 1 {
			ratio = 1
		}
	}

	bar := renderBar(barWidth, ratio)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("squish 🗜"),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", done, m.found)) + dimStyle.Render(fmt.Sprintf("  failed:%d", m.failed)),
		labelStyle.Render(fmt.Sprintf("Space saved: %s", FormatBytes(m.bytesSaved))),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar),
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan batch.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorTitle)
	labelStyle = lipgloss.NewStyle().Foreground(ColorText)
	barStyle   = lipgloss.NewStyle().Foreground(ColorBar)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorFaint)
)
