package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/session"
	"github.com/rileyhilliard/pulse/internal/util"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderChannelCards())

	if m.ShowFooter() {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	return b.String()
}

// renderHeader renders the dashboard header with session state and summary stats.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("pulse")

	status := m.view.Status
	state := StateStyle(status.State).Render(" " + StateGlyph(status.State, m.spinnerFrame) + " " + status.String())

	parts := []string{}
	if m.view.Epoch > 0 {
		parts = append(parts, fmt.Sprintf("session %d", m.view.Epoch))
	}
	if status.State == session.StateConnecting && status.Attempt > 1 {
		parts = append(parts, fmt.Sprintf("attempt %d", status.Attempt))
	}
	parts = append(parts,
		util.Count(len(m.channels), "channel", "channels"),
		util.Count(m.view.SampleCount(), "sample", "samples"),
		"updated "+m.updateText(),
	)

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + state + stats)
}

func (m Model) updateText() string {
	switch secs := m.SecondsSinceUpdate(); secs {
	case 0:
		return "just now"
	case 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", secs)
	}
}

// renderChannelCards renders the grid of channel cards, or a placeholder
// describing why there is nothing to show yet.
func (m Model) renderChannelCards() string {
	if len(m.channels) == 0 {
		return m.renderEmptyState()
	}

	cardWidth := m.calculateCardWidth()

	cards := make([]string, 0, len(m.channels))
	for i, ch := range m.channels {
		cards = append(cards, m.renderCard(ch, cardWidth, i == m.selected))
	}

	return m.layoutCards(cards, cardWidth)
}

// renderEmptyState explains an empty dashboard for each session state.
func (m Model) renderEmptyState() string {
	status := m.view.Status
	switch status.State {
	case session.StateIdle:
		return LabelStyle.Render("Not logged in. Run `pulse login` or set PULSE_AUTH_TOKEN.")
	case session.StateConnecting:
		return StatusConnectingStyle.Render(StateGlyph(status.State, m.spinnerFrame) + " Connecting to telemetry stream...")
	case session.StateDegraded:
		return StatusDegradedStyle.Render("Stream unavailable: " + status.Reason)
	case session.StateClosed:
		return StatusClosedStyle.Render("Session closed")
	default:
		return LabelStyle.Render("Connected, waiting for sensor data...")
	}
}

// calculateCardWidth determines the card width based on terminal width.
func (m Model) calculateCardWidth() int {
	switch m.LayoutMode() {
	case LayoutWide:
		return 48
	case LayoutStandard, LayoutCompact:
		return 36
	}
	if m.width == 0 {
		return 40
	}
	return max(m.width-4, 20)
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, cardWidth int) string {
	if len(cards) == 0 {
		return ""
	}

	cardsPerRow := 1
	if m.width > 0 {
		// Account for card margins and borders
		effectiveCardWidth := cardWidth + 3
		cardsPerRow = m.width / effectiveCardWidth
		if cardsPerRow < 1 {
			cardsPerRow = 1
		}
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := i + cardsPerRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"↑↓ select",
		"enter expand",
		"s sort: " + m.sortOrder.String(),
	}
	if m.logout != nil {
		hints = append(hints, "L logout")
	}
	hints = append(hints, "? help")

	return FooterStyle.Render(strings.Join(hints, " | "))
}
