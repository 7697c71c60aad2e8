// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program showing engine status
package ui

import (
	"time"

	"github.com/Resonate-Protocol/steptone/pkg/audio/output"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the TUI
type Options struct {
	Source      Source
	Volume      *output.Volume
	Backend     string
	MonitorAddr string
	// Clients reports connected monitor watchers; nil hides the count
	Clients     func() int
	Refresh     time.Duration
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}

	m := Model{
		source:      opts.Source,
		volume:      opts.Volume,
		clients:     opts.Clients,
		refresh:     opts.Refresh,
		backend:     opts.Backend,
		monitorAddr: opts.MonitorAddr,
	}
	if opts.Source != nil {
		m.format = opts.Source.Format()
		m.bpm = opts.Source.BPM()
		m.stats = opts.Source.Stats()
	}
	return m
}

// Run creates the TUI program; the caller runs it
func Run(opts Options) *tea.Program {
	return tea.NewProgram(NewModel(opts), tea.WithAltScreen())
}
