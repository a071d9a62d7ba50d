package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgpai22/subclock/internal/playback"
	"github.com/mgpai22/subclock/internal/subtitle"
)

const horizontalPadding = 2

var (
	paddingStyle   = lipgloss.NewStyle().Padding(1, horizontalPadding)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#1e1e2e")).Background(lipgloss.Color("#cba6f7")).Padding(0, 1)
	stateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	cueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	activeCueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")).Bold(true)
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#f9e2af")).Padding(0, 1)
)

func (m *model) View() string {
	lines := []string{
		titleStyle.Render(m.title()) + " " + stateStyle.Render(stateLabel(m.snap)),
		"",
	}

	switch {
	case m.loading && len(m.cues) == 0:
		lines = append(lines, statusStyle.Render(m.status))
	case len(m.cues) == 0:
		lines = append(lines, cueStyle.Render("No subtitles loaded"))
	default:
		lines = append(lines, m.viewCues()...)
		lines = append(lines, "", m.viewActive())
	}

	lines = append(lines, "", m.viewSeekBar())

	if m.err != nil {
		lines = append(lines, "", errorStyle.Render(strings.Join(subtitle.Diagnostics(m.err), "\n")))
	} else if m.status != "" && len(m.cues) > 0 {
		lines = append(lines, "", statusStyle.Render(m.status))
	}

	lines = append(lines, "", m.help.View(m.keymap))
	return paddingStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) title() string {
	source := m.session.Source()
	if source == "" {
		source = m.path
	}
	if source == "" {
		return "subclock"
	}
	return filepath.Base(source)
}

func stateLabel(snap playback.Snapshot) string {
	if snap.Ended {
		return "ended"
	}
	return snap.State.String()
}

func (m *model) viewCues() []string {
	focus := focusIndex(m.snap, m.cues)
	start, end := cueWindow(focus, len(m.cues), m.player.VisibleCues)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cue := m.cues[i]
		line := fmt.Sprintf("%s  %s",
			subtitle.MsToTimecode(cue.StartTimeMs),
			flatten(cue.Text),
		)
		if m.width > 0 {
			line = truncate(line, m.width-2*horizontalPadding-2)
		}
		if i == m.snap.ActiveCueIndex {
			lines = append(lines, activeCueStyle.Render("▶ "+line))
		} else {
			lines = append(lines, cueStyle.Render("  "+line))
		}
	}
	return lines
}

func (m *model) viewActive() string {
	i := m.snap.ActiveCueIndex
	if i < 0 || i >= len(m.cues) {
		return cueStyle.Render("...")
	}
	return boxStyle.Render(m.cues[i].Text)
}

func (m *model) viewSeekBar() string {
	var ratio float64
	if m.snap.TotalDurationMs > 0 {
		ratio = float64(m.snap.ElapsedMs) / float64(m.snap.TotalDurationMs)
	}
	return m.progress.ViewAs(ratio) + " " + timeStyle.Render(seekLabel(m.snap))
}

func seekLabel(snap playback.Snapshot) string {
	return subtitle.MsToTimecode(snap.ElapsedMs) + " / " + subtitle.MsToTimecode(snap.TotalDurationMs)
}

// cue the list is centered on: the active cue, else the next one to come,
// else the last
func focusIndex(snap playback.Snapshot, cues []subtitle.Cue) int {
	if snap.ActiveCueIndex >= 0 {
		return snap.ActiveCueIndex
	}
	for i, cue := range cues {
		if cue.StartTimeMs > snap.ElapsedMs {
			return i
		}
	}
	return len(cues) - 1
}

// half-open range of at most size cues centered on focus
func cueWindow(focus, count, size int) (start, end int) {
	if count <= 0 || size <= 0 {
		return 0, 0
	}
	if size >= count {
		return 0, count
	}
	start = focus - size/2
	start = max(start, 0)
	start = min(start, count-size)
	return start, start + size
}

func flatten(text string) string {
	return strings.ReplaceAll(text, "\n", " / ")
}

func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
