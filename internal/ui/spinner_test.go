package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a buffer written from the animation goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Testing")
	assert.Equal(t, SpinnerPending, s.State())
}

func TestSpinnerSuccess(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo("Logging in", &out)

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(3 * spinnerInterval)
	s.Success()

	assert.Equal(t, SpinnerSuccess, s.State())
	got := out.String()
	assert.Contains(t, got, "Logging in...")
	assert.Contains(t, got, SymbolSuccess)
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestSpinnerFail(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo("Fetching devices", &out)

	s.Start()
	s.Fail()

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, out.String(), SymbolFail)
}

func TestSpinnerDoubleStart(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo("Test", &out)

	s.Start()
	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	s.Success()
}

func TestSpinnerFinishWithoutStart(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo("Test", &out)

	s.Success()
	s.Fail()
	assert.Equal(t, SpinnerPending, s.State())
	assert.Empty(t, out.String())
}

func TestSpinnerFrames(t *testing.T) {
	assert.Len(t, spinnerFrames, 8)
	for _, f := range spinnerFrames {
		assert.Equal(t, 1, len([]rune(f)))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "0.00s"},
		{50 * time.Millisecond, "0.05s"},
		{100 * time.Millisecond, "0.1s"},
		{1500 * time.Millisecond, "1.5s"},
		{10 * time.Second, "10.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.duration))
		})
	}
}
