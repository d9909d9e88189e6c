package monitor

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/pulse/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force TrueColor output in tests so we can verify ANSI color codes
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestFindMinMax(t *testing.T) {
	tests := []struct {
		name    string
		data    []float64
		wantMin float64
		wantMax float64
	}{
		{"empty data", []float64{}, 0, 1},
		{"uses actual range", []float64{-50, 200, 500}, -50, 500},
		{"flat data is widened", []float64{20, 20}, 18, 22},
		{"flat zero is widened by one", []float64{0}, -1, 1},
		{"temperatures stay unscaled", []float64{21.5, 23, 22}, 21.5, 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minVal, maxVal := findMinMax(tt.data)
			assert.InDelta(t, tt.wantMin, minVal, 1e-9)
			assert.InDelta(t, tt.wantMax, maxVal, 1e-9)
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, 0.0, normalizeValue(10, 10, 20))
	assert.Equal(t, 1.0, normalizeValue(20, 10, 20))
	assert.Equal(t, 0.5, normalizeValue(15, 10, 20))
	assert.Equal(t, 0.5, normalizeValue(5, 5, 5))
}

func TestResampleData(t *testing.T) {
	t.Run("downsampling keeps peaks", func(t *testing.T) {
		got := resampleData([]float64{1, 9, 2, 3, 8, 1}, 3)
		assert.Equal(t, []float64{9, 3, 8}, got)
	})

	t.Run("upsampling interpolates", func(t *testing.T) {
		got := resampleData([]float64{0, 10}, 3)
		assert.Equal(t, []float64{0, 5, 10}, got)
	})

	t.Run("single value repeats", func(t *testing.T) {
		assert.Equal(t, []float64{4, 4}, resampleData([]float64{4}, 2))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, resampleData(nil, 4))
	})
}

func TestRenderBrailleSparkline(t *testing.T) {
	t.Run("empty input renders nothing", func(t *testing.T) {
		assert.Empty(t, RenderBrailleSparkline(nil, 10, 2, ColorGraph))
		assert.Empty(t, RenderBrailleSparkline([]float64{1}, 0, 2, ColorGraph))
	})

	t.Run("dimensions match", func(t *testing.T) {
		out := RenderBrailleSparkline([]float64{1, 5, 3, 8, 2}, 12, 3, ColorGraph)
		rows := strings.Split(out, "\n")
		require.Len(t, rows, 3)
		for _, row := range rows {
			assert.Equal(t, 12, lipgloss.Width(row))
		}
	})

	t.Run("applies color", func(t *testing.T) {
		out := RenderBrailleSparkline([]float64{1, 2}, 4, 1, ColorGraph)
		assert.Contains(t, out, "\x1b[")
	})

	t.Run("short data is right-aligned", func(t *testing.T) {
		out := RenderBrailleSparkline([]float64{1, 2}, 4, 1, ColorGraph)
		plain := []rune(stripANSI(out))
		require.Len(t, plain, 4)
		assert.Equal(t, brailleBase, plain[0])
		assert.NotEqual(t, brailleBase, plain[3])
	})

	t.Run("minimum value still draws a dot", func(t *testing.T) {
		out := RenderBrailleSparkline([]float64{0, 10}, 1, 1, ColorGraph)
		plain := []rune(stripANSI(out))
		require.Len(t, plain, 1)
		// Left column bottom dot (bit 6) set for the low point
		assert.NotZero(t, (plain[0]-brailleBase)&(1<<6))
	})
}

func TestRenderMiniSparkline(t *testing.T) {
	assert.Empty(t, RenderMiniSparkline(nil, 5))

	out := RenderMiniSparkline([]float64{0, 5, 10}, 10)
	assert.Equal(t, 3, utf8.RuneCountInString(out))
	assert.Equal(t, "▁", string([]rune(out)[0]))
	assert.Equal(t, "█", string([]rune(out)[2]))

	compressed := RenderMiniSparkline(make([]float64, 50), 10)
	assert.Equal(t, 10, utf8.RuneCountInString(compressed))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		unit string
		want string
	}{
		{21, "°C", "21°C"},
		{21.456, "°C", "21.46°C"},
		{-3.5, "", "-3.50"},
		{1013.25, " hPa", "1013.2 hPa"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.v, tt.unit))
		})
	}
}

func TestRenderTimeAxis(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local).UnixMilli()

	assert.Empty(t, RenderTimeAxis(nil, 20))

	single := RenderTimeAxis([]series.Sample{{Time: base}}, 20)
	assert.Len(t, single, 20)
	assert.True(t, strings.HasSuffix(single, "12:00:00"))

	span := RenderTimeAxis([]series.Sample{{Time: base}, {Time: base + 90_000}}, 20)
	assert.Len(t, span, 20)
	assert.True(t, strings.HasPrefix(span, "12:00:00"))
	assert.True(t, strings.HasSuffix(span, "12:01:30"))

	narrow := RenderTimeAxis([]series.Sample{{Time: base}, {Time: base + 90_000}}, 10)
	assert.Equal(t, "12:01:30", narrow)
}

// stripANSI removes escape sequences from rendered output.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
