package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/series"
)

// cardGraphHeight is the braille graph height inside a card, in rows.
const cardGraphHeight = 3

// renderCard renders a single channel card: name, latest reading, range and
// a graph of the buffered window.
func (m Model) renderCard(ch dashboard.Channel, width int, selected bool) string {
	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}

	// Width covers padding but not the border
	inner := max(width-2, 8)
	unit := m.UnitFor(ch)

	lines := []string{m.renderCardTitle(ch, inner)}

	last, ok := ch.Last()
	if !ok {
		lines = append(lines, MutedStyle.Render("no samples yet"))
		return style.Width(width).Render(strings.Join(lines, "\n"))
	}

	lines = append(lines, ValueStyle.Render(FormatValue(last.Value, unit))+
		MutedStyle.Render("  at "+FormatClock(last.Time)))

	lo, hi := sampleRange(ch.Samples)
	lines = append(lines, LabelStyle.Render(fmt.Sprintf("min %s  max %s  n=%d",
		FormatValue(lo, unit), FormatValue(hi, unit), len(ch.Samples))))

	values := Values(ch.Samples)
	if m.LayoutMode() == LayoutMinimal {
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorGraph).Render(RenderMiniSparkline(values, inner)))
	} else {
		lines = append(lines, RenderBrailleSparkline(values, inner, cardGraphHeight, ColorGraph))
		lines = append(lines, MutedStyle.Render(RenderTimeAxis(ch.Samples, inner)))
	}

	return style.Width(width).Render(strings.Join(lines, "\n"))
}

// renderCardTitle renders the channel label, with the raw key alongside when
// the label came from device metadata.
func (m Model) renderCardTitle(ch dashboard.Channel, width int) string {
	title := ChannelNameStyle.Render(truncate(ch.Label, width))
	if string(ch.Key) == ch.Label {
		return title
	}
	room := width - lipgloss.Width(title) - 1
	if room < 4 {
		return title
	}
	return title + " " + MutedStyle.Render(truncate(string(ch.Key), room))
}

// sampleRange returns the min and max values in samples.
func sampleRange(samples []series.Sample) (lo, hi float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	lo, hi = samples[0].Value, samples[0].Value
	for _, s := range samples[1:] {
		if s.Value < lo {
			lo = s.Value
		}
		if s.Value > hi {
			hi = s.Value
		}
	}
	return lo, hi
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
