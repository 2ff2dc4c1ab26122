package consoledash

import "github.com/charmbracelet/lipgloss"

// Color palette, adapted for a dark terminal operator console.
var (
	ColorPrimary    = lipgloss.Color("#7C3AED")
	ColorSecondary  = lipgloss.Color("#06B6D4")
	ColorAccent     = lipgloss.Color("#F59E0B")
	ColorMuted      = lipgloss.Color("#6B7280")
	ColorActive     = lipgloss.Color("#22C55E")
	ColorMasked     = lipgloss.Color("#EF4444")
	ColorBackground = lipgloss.Color("#111827")
	ColorSurface    = lipgloss.Color("#1F2937")
	ColorText       = lipgloss.Color("#F9FAFB")
	ColorTextDim    = lipgloss.Color("#9CA3AF")
	ColorFader      = lipgloss.Color("#22D3EE")
	ColorFaderBg    = lipgloss.Color("#374151")
)

var (
	BaseStyle = lipgloss.NewStyle().
			Background(ColorBackground).
			Foreground(ColorText)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	LayerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSurface).
			Padding(0, 1).
			Width(14)

	LayerNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	FaderTrackStyle = lipgloss.NewStyle().Foreground(ColorFaderBg)
	FaderFillStyle  = lipgloss.NewStyle().Foreground(ColorFader)

	ValueStyle = lipgloss.NewStyle().Foreground(ColorTextDim)

	MaskOnStyle  = lipgloss.NewStyle().Foreground(ColorMasked).Bold(true)
	MaskOffStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	BumpOnStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	EmptyLayerStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)

	ClockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	LockedStyle = lipgloss.NewStyle().Foreground(ColorActive).Bold(true)
	WarmStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	ColdStyle   = lipgloss.NewStyle().Foreground(ColorMuted)

	SurfaceListStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorSecondary).
				Padding(0, 1)

	SurfaceUpStyle   = lipgloss.NewStyle().Foreground(ColorActive)
	SurfaceDownStyle = lipgloss.NewStyle().Foreground(ColorMasked)

	HelpStyle   = lipgloss.NewStyle().Foreground(ColorTextDim).Padding(0, 1)
	StatusStyle = lipgloss.NewStyle().Foreground(ColorTextDim).Padding(0, 1)
)
