package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Dracula-inspired palette shared by every view.
var (
	ColorBg        = lipgloss.Color("#282A36")
	ColorBgSubtle  = lipgloss.Color("#363949")
	ColorHighlight = lipgloss.Color("#44475A")
	ColorText      = lipgloss.Color("#F8F8F2")
	ColorMuted     = lipgloss.Color("#6272A4")

	ColorPrimary   = lipgloss.Color("#BD93F9")
	ColorSecondary = lipgloss.Color("#8BE9FD")
	ColorSuccess   = lipgloss.Color("#50FA7B")
	ColorWarning   = lipgloss.Color("#FFB86C")
	ColorDanger    = lipgloss.Color("#FF5555")
)

// Theme bundles the styles the views share. Build one with DefaultTheme
// and pass it down; views never construct colors themselves.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Danger    lipgloss.Color
	Success   lipgloss.Color

	Selected  lipgloss.Style // cursor row in the feature tree
	Mandatory lipgloss.Style // mandatory feature names
	Disabled  lipgloss.Style // features blocked by an XOR sibling
	Checked   lipgloss.Style // selected checkbox glyph
	GroupTag  lipgloss.Style // [XOR]/[OR] markers
	Tree      lipgloss.Style // branch characters

	Banner lipgloss.Style // dismissable error banner
	Footer lipgloss.Style // status line
	Valid  lipgloss.Style
	Invalid lipgloss.Style

	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
}

// DefaultTheme returns the standard dark theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Muted:     ColorMuted,
		Danger:    ColorDanger,
		Success:   ColorSuccess,

		Selected:  lipgloss.NewStyle().Background(ColorHighlight).Foreground(ColorText),
		Mandatory: lipgloss.NewStyle().Bold(true),
		Disabled:  lipgloss.NewStyle().Foreground(ColorMuted).Faint(true),
		Checked:   lipgloss.NewStyle().Foreground(ColorSuccess),
		GroupTag:  lipgloss.NewStyle().Foreground(ColorSecondary),
		Tree:      lipgloss.NewStyle().Foreground(ColorMuted),

		Banner:  lipgloss.NewStyle().Foreground(ColorText).Background(ColorDanger).Padding(0, 1),
		Footer:  lipgloss.NewStyle().Foreground(ColorMuted),
		Valid:   lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Invalid: lipgloss.NewStyle().Foreground(ColorDanger).Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorHighlight),
		FocusedPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary),
	}
}
