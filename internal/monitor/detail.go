package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/dashboard"
)

// detailGraphHeight is the braille graph height in the detail view, in rows.
const detailGraphHeight = 10

// Detail view styles
var (
	detailContainerStyle = lipgloss.NewStyle().
				Padding(0, 1)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary)
)

// renderDetailView renders the expanded single-channel view: header, then
// the scrollable chart and sample table, then navigation hints.
func (m Model) renderDetailView() string {
	ch, ok := m.SelectedChannel()
	if !ok {
		return LabelStyle.Render("No channel selected")
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(ch))
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.renderDetailContent(ch))
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetailFooter())

	return detailContainerStyle.Render(b.String())
}

// updateDetailViewportContent refreshes the viewport with the selected channel.
func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	ch, ok := m.SelectedChannel()
	if !ok {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent(ch))
}

// renderDetailHeader renders the channel name and session state prominently.
func (m Model) renderDetailHeader(ch dashboard.Channel) string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(ch.Label)

	key := ""
	if string(ch.Key) != ch.Label {
		key = "  " + MutedStyle.Render(string(ch.Key))
	}

	status := m.view.Status
	state := StateStyle(status.State).Render(StateGlyph(status.State, m.spinnerFrame) + " " + status.String())

	return fmt.Sprintf("%s%s  %s", title, key, state)
}

// renderDetailContent renders the chart section and the sample table.
func (m Model) renderDetailContent(ch dashboard.Channel) string {
	width := m.width - 4
	if width < 40 {
		width = 40
	}
	unit := m.UnitFor(ch)

	last, ok := ch.Last()
	if !ok {
		return LabelStyle.Render("Waiting for samples...")
	}

	var lines []string

	lo, hi := sampleRange(ch.Samples)
	lines = append(lines, SectionHeader("History", FormatValue(last.Value, unit), width))
	lines = append(lines, SectionContentLine(
		LabelStyle.Render(fmt.Sprintf("min %s  max %s  samples %d",
			FormatValue(lo, unit), FormatValue(hi, unit), len(ch.Samples))),
		width))

	graphWidth := width - 4
	graph := RenderBrailleSparkline(Values(ch.Samples), graphWidth, detailGraphHeight, ColorGraph)
	for _, row := range strings.Split(graph, "\n") {
		lines = append(lines, SectionContentLine(row, width))
	}
	lines = append(lines, SectionContentLine(MutedStyle.Render(RenderTimeAxis(ch.Samples, graphWidth)), width))
	lines = append(lines, SectionFooter(width))

	lines = append(lines, "")
	lines = append(lines, SectionHeader("Samples", "newest first", width))
	for i := len(ch.Samples) - 1; i >= 0; i-- {
		s := ch.Samples[i]
		row := MutedStyle.Render(FormatClock(s.Time)) + "  " + detailValueStyle.Render(FormatValue(s.Value, unit))
		lines = append(lines, SectionContentLine(row, width))
	}
	lines = append(lines, SectionFooter(width))

	return strings.Join(lines, "\n")
}

// renderDetailFooter renders navigation hints for the detail view.
func (m Model) renderDetailFooter() string {
	return FooterStyle.Render("esc back | ↑↓ scroll | q quit | ? help")
}
