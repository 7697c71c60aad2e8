// ABOUTME: Bubbletea model for the engine status TUI
// ABOUTME: Polls engine stats and renders voices, queue depth, underruns and volume
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/Resonate-Protocol/steptone/pkg/audio/output"
	"github.com/Resonate-Protocol/steptone/pkg/synth"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// DefaultRefresh is the stats polling interval
	DefaultRefresh = 100 * time.Millisecond

	volumeStep = 5
	barWidth   = 20
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	beatStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Source is the engine shown by the TUI
type Source interface {
	Stats() synth.Stats
	Format() audio.Format
	BPM() uint16
	QueueLatency() time.Duration
}

// StatusMsg carries a polled snapshot
type StatusMsg struct {
	Stats   synth.Stats
	Latency time.Duration
	Clients int
}

// Model represents the TUI state
type Model struct {
	source  Source
	volume  *output.Volume
	clients func() int
	refresh time.Duration

	// Static
	format      audio.Format
	bpm         uint16
	backend     string
	monitorAddr string

	// Polled
	stats       synth.Stats
	latency     time.Duration
	clientCount int

	showDebug bool

	width  int
	height int
}

// Init starts polling
func (m Model) Init() tea.Cmd {
	return m.poll()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
		return m, m.poll()
	}

	return m, nil
}

// poll schedules the next snapshot
func (m Model) poll() tea.Cmd {
	if m.source == nil {
		return nil
	}
	source, clients := m.source, m.clients
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		msg := StatusMsg{
			Stats:   source.Stats(),
			Latency: source.QueueLatency(),
		}
		if clients != nil {
			msg.Clients = clients()
		}
		return msg
	})
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderVoices(),
		m.renderQueue(),
		m.renderControls(),
	}
	if m.showDebug {
		sections = append(sections, m.renderDebug())
	}

	body := borderStyle.Render(strings.Join(sections, "\n\n"))
	return body + "\n" + m.renderHelp()
}

// renderHeader renders format and tempo
func (m Model) renderHeader() string {
	s := titleStyle.Render("steptone") + "\n"
	s += fmt.Sprintf("%s %d Hz %s · %d bpm", labelStyle.Render("Format:"),
		m.format.SampleRate, channelName(m.format.Channels), m.bpm)
	if m.backend != "" {
		s += fmt.Sprintf(" · %s", m.backend)
	}
	return s
}

// renderVoices renders one line per sequencer
func (m Model) renderVoices() string {
	if len(m.stats.Voices) == 0 {
		return labelStyle.Render("No voices (silence)")
	}

	lines := make([]string, len(m.stats.Voices))
	for i, v := range m.stats.Voices {
		beat := "○"
		if v.OnBeat {
			beat = beatStyle.Render("●")
		}
		lines[i] = fmt.Sprintf("V%d %s %3d bpm step %-2d beat %-6d %8.2f Hz [%s]",
			i+1, beat, v.BPM, v.Step, v.Beat, v.Frequency, renderBar(float64(v.Level), barWidth))
	}
	return strings.Join(lines, "\n")
}

// renderQueue renders queue depth and underruns
func (m Model) renderQueue() string {
	fill := 0.0
	if m.stats.Capacity > 0 {
		fill = float64(m.stats.Queued) / float64(m.stats.Capacity)
	}

	s := fmt.Sprintf("%s [%s] %d/%d (%s)\n", labelStyle.Render("Queue:    "),
		renderBar(fill, barWidth), m.stats.Queued, m.stats.Capacity, m.latency.Round(100*time.Microsecond))

	underruns := fmt.Sprintf("%d", m.stats.Underruns.Count)
	if m.stats.Underruns.Count > 0 {
		underruns = alertStyle.Render(underruns)
		underruns += fmt.Sprintf(" (last %s)", m.stats.Underruns.Last.Format("15:04:05.000"))
	}
	s += fmt.Sprintf("%s %s", labelStyle.Render("Underruns:"), underruns)
	return s
}

// renderControls renders volume and monitor status
func (m Model) renderControls() string {
	vol, muted := 100, false
	if m.volume != nil {
		vol, muted = m.volume.Get(), m.volume.IsMuted()
	}

	s := fmt.Sprintf("%s [%s] %d%%", labelStyle.Render("Volume:   "), renderBar(float64(vol)/100, barWidth), vol)
	if muted {
		s += " " + alertStyle.Render("muted")
	}

	if m.monitorAddr != "" {
		s += fmt.Sprintf("\n%s %s (%d watching)", labelStyle.Render("Monitor:  "), m.monitorAddr, m.clientCount)
	}
	return s
}

// renderDebug renders raw counters
func (m Model) renderDebug() string {
	elapsed := time.Duration(0)
	if m.format.SampleRate > 0 {
		elapsed = time.Duration(m.stats.Elapsed) * time.Second / time.Duration(m.format.SampleRate)
	}

	s := fmt.Sprintf("DEBUG: elapsed %d frames (%s), underrun frames %d",
		m.stats.Elapsed, elapsed.Round(time.Millisecond), m.stats.Underruns.Frames)
	for i, v := range m.stats.Voices {
		s += fmt.Sprintf("\n  V%d signal %+.4f level %.4f", i+1, v.Signal, v.Level)
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Volume  m:Mute  d:Debug  q:Quit")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "+":
		if m.volume != nil {
			m.volume.Set(m.volume.Get() + volumeStep)
		}
	case "down", "-":
		if m.volume != nil {
			m.volume.Set(m.volume.Get() - volumeStep)
		}
	case "m":
		if m.volume != nil {
			m.volume.SetMuted(!m.volume.IsMuted())
		}
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from a snapshot
func (m *Model) applyStatus(msg StatusMsg) {
	m.stats = msg.Stats
	m.latency = msg.Latency
	m.clientCount = msg.Clients
}

// renderBar draws fraction (clamped to [0,1]) as a width-cell bar
func renderBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}
