// Package consoledash is a read-only bubbletea dashboard for operators:
// a periodic snapshot of mixer layers, the master/aux clocks, and
// connected control surfaces, rendered with lipgloss. It never mutates
// show state — all control flows in through MIDI/OSC, never the console.
package consoledash

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	faderHeight      = 10
	defaultRefreshHz = 15.0
)

// LayerView is one mixer layer's read-only projection for display.
type LayerView struct {
	Name        string
	Empty       bool
	Level       float64 // effective level, [0,1]
	Mask        bool
	Bumping     bool
	PreviewHex  string // "" if the beam has no natural preview color
	BeamVariant string // "tunnel", "line", or "" when Empty
}

// ClockView is one clock's read-only projection.
type ClockView struct {
	Name  string
	BPM   float64
	State string // "cold", "warm", or "locked"
	Phase float64
	Beat  uint64
}

// SurfaceView is one control surface's connection status.
type SurfaceView struct {
	ID        string
	Connected bool
}

// State is a single point-in-time snapshot handed to the dashboard by its
// StateProvider; the dashboard never reaches back into live show state
// between snapshots.
type State struct {
	Layers   []LayerView
	Master   ClockView
	Aux      []ClockView
	Surfaces []SurfaceView
}

// StateProvider supplies a fresh, self-consistent snapshot on each poll.
type StateProvider interface {
	Snapshot() State
}

type tickMsg time.Time

// Model is the bubbletea model for the dashboard.
type Model struct {
	provider StateProvider
	refresh  time.Duration
	state    State
	width    int
	height   int
}

// New returns a dashboard Model polling provider at refreshHz (0 uses the
// default).
func New(provider StateProvider, refreshHz float64) Model {
	if refreshHz <= 0 {
		refreshHz = defaultRefreshHz
	}
	return Model{
		provider: provider,
		refresh:  time.Duration(float64(time.Second) / refreshHz),
		state:    provider.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.state = m.provider.Snapshot()
		return m, m.tickCmd()
	}
	return m, nil
}

func (m Model) View() string {
	var sections []string
	sections = append(sections, TitleStyle.Render("tunnels — operator console"))

	var layerViews []string
	for _, l := range m.state.Layers {
		layerViews = append(layerViews, renderLayer(l))
	}
	if len(layerViews) > 0 {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, layerViews...))
	}

	sections = append(sections, renderClocks(m.state.Master, m.state.Aux))
	sections = append(sections, renderSurfaces(m.state.Surfaces))
	sections = append(sections, HelpStyle.Render("q: quit"))

	content := strings.Join(sections, "\n")
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, content)
	}
	return content
}

func renderLayer(l LayerView) string {
	if l.Empty {
		return LayerStyle.Render(EmptyLayerStyle.Render("(empty)"))
	}

	var parts []string
	name := l.Name
	if len(name) > 12 {
		name = name[:12]
	}
	parts = append(parts, LayerNameStyle.Render(name))
	parts = append(parts, ValueStyle.Render(l.BeamVariant))
	parts = append(parts, "")
	parts = append(parts, renderFader(l.Level, faderHeight))
	parts = append(parts, ValueStyle.Render(fmt.Sprintf("%3d%%", int(l.Level*100+0.5))))

	if l.PreviewHex != "" {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(l.PreviewHex)).Render("██")
		parts = append(parts, swatch)
	}

	var flags []string
	if l.Mask {
		flags = append(flags, MaskOnStyle.Render("MASK"))
	} else {
		flags = append(flags, MaskOffStyle.Render("mask"))
	}
	if l.Bumping {
		flags = append(flags, BumpOnStyle.Render("BUMP"))
	}
	parts = append(parts, strings.Join(flags, " "))

	return LayerStyle.Render(strings.Join(parts, "\n"))
}

func renderFader(level float64, height int) string {
	filled := int(level*float64(height) + 0.5)
	var lines []string
	for i := height - 1; i >= 0; i-- {
		if i < filled {
			lines = append(lines, FaderFillStyle.Render("██"))
		} else {
			lines = append(lines, FaderTrackStyle.Render("░░"))
		}
	}
	return strings.Join(lines, "\n")
}

func renderClocks(master ClockView, aux []ClockView) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("master  %.1f BPM  %s  beat %d  phase %.2f",
		master.BPM, renderClockState(master.State), master.Beat, master.Phase))
	for _, a := range aux {
		lines = append(lines, fmt.Sprintf("%s  %.1f BPM  %s  beat %d  phase %.2f",
			a.Name, a.BPM, renderClockState(a.State), a.Beat, a.Phase))
	}
	return ClockStyle.Render(strings.Join(lines, "\n"))
}

func renderClockState(state string) string {
	switch state {
	case "locked":
		return LockedStyle.Render("LOCKED")
	case "warm":
		return WarmStyle.Render("warm")
	default:
		return ColdStyle.Render("cold")
	}
}

func renderSurfaces(surfaces []SurfaceView) string {
	if len(surfaces) == 0 {
		return SurfaceListStyle.Render(ValueStyle.Render("no control surfaces configured"))
	}
	var lines []string
	for _, s := range surfaces {
		if s.Connected {
			lines = append(lines, SurfaceUpStyle.Render("● ")+s.ID)
		} else {
			lines = append(lines, SurfaceDownStyle.Render("○ ")+s.ID)
		}
	}
	return SurfaceListStyle.Render(strings.Join(lines, "\n"))
}
