package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/session"
)

// Dashboard color palette - Gen Z Electric Synthwave
const (
	// Background colors (glassmorphism-inspired)
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors - neon style
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors - neon pink primary, purple secondary
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	// Graph colors
	ColorGraph = lipgloss.Color("#00FFFF") // Neon cyan
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	ChannelNameStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorGraph).
			Bold(true)

	StatusIdleStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StatusConnectingStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary)

	StatusAuthenticatedStyle = lipgloss.NewStyle().
					Foreground(ColorHealthy)

	StatusDegradedStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	StatusClosedStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)
)

// Status indicator characters - cyber glyphs
const (
	StatusIdle          = "○"
	StatusAuthenticated = "◉"
	StatusDegraded      = "◔"
	StatusClosed        = "◌"
)

// ConnectingSpinnerFrames are the animation frames for the connecting state
// Rotates through half-circle positions for a smooth spin effect
var ConnectingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// StateStyle returns the style used for a session state.
func StateStyle(state session.State) lipgloss.Style {
	switch state {
	case session.StateConnecting:
		return StatusConnectingStyle
	case session.StateAuthenticated:
		return StatusAuthenticatedStyle
	case session.StateDegraded:
		return StatusDegradedStyle
	case session.StateClosed:
		return StatusClosedStyle
	default:
		return StatusIdleStyle
	}
}

// StateGlyph returns the indicator for a session state. Connecting animates
// through spinnerFrame.
func StateGlyph(state session.State, spinnerFrame int) string {
	switch state {
	case session.StateConnecting:
		return ConnectingSpinnerFrames[spinnerFrame%len(ConnectingSpinnerFrames)]
	case session.StateAuthenticated:
		return StatusAuthenticated
	case session.StateDegraded:
		return StatusDegraded
	case session.StateClosed:
		return StatusClosed
	default:
		return StatusIdle
	}
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	middle := strings.Repeat("─", width-2)
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, properly padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	innerWidth := width - 4
	padding := innerWidth - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
