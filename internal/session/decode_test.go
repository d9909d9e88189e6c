package session

import (
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	iso := time.Date(2024, 5, 1, 10, 0, 0, 250*int(time.Millisecond), time.UTC)

	tests := []struct {
		name    string
		raw     string
		wantKey series.Key
		want    series.Sample
	}{
		{
			name:    "iso time",
			raw:     `{"topic":"tempA","value":21.5,"time":"2024-05-01T10:00:00.250Z"}`,
			wantKey: "tempA",
			want:    series.Sample{Time: iso.UnixMilli(), Value: 21.5},
		},
		{
			name:    "epoch millis as number",
			raw:     `{"topic":"tempA","value":-3,"time":1714557600250}`,
			wantKey: "tempA",
			want:    series.Sample{Time: 1714557600250, Value: -3},
		},
		{
			name:    "epoch millis as string",
			raw:     `{"topic":"tempB","value":0,"time":"1714557600250"}`,
			wantKey: "tempB",
			want:    series.Sample{Time: 1714557600250, Value: 0},
		},
		{
			name:    "channelKey alias",
			raw:     `{"channelKey":"hum","value":1e2,"time":"2024-05-01T10:00:00.250+00:00"}`,
			wantKey: "hum",
			want:    series.Sample{Time: iso.UnixMilli(), Value: 100},
		},
		{
			name:    "topic and channelKey agree",
			raw:     `{"topic":"x","channelKey":"x","value":1,"time":5}`,
			wantKey: "x",
			want:    series.Sample{Time: 5, Value: 1},
		},
		{
			name:    "date only is utc midnight",
			raw:     `{"topic":"x","value":1,"time":"2024-05-01"}`,
			wantKey: "x",
			want:    series.Sample{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), Value: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, ev.Key)
			assert.Equal(t, tt.want, ev.Sample)
		})
	}
}

func TestDecodeEventRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `hello`},
		{"array", `["tempA",1,2]`},
		{"unknown field", `{"topic":"a","value":1,"time":1,"unit":"C"}`},
		{"missing topic", `{"value":1,"time":1}`},
		{"empty topic", `{"topic":"  ","value":1,"time":1}`},
		{"topic not string", `{"topic":7,"value":1,"time":1}`},
		{"conflicting keys", `{"topic":"a","channelKey":"b","value":1,"time":1}`},
		{"missing value", `{"topic":"a","time":1}`},
		{"null value", `{"topic":"a","value":null,"time":1}`},
		{"string value", `{"topic":"a","value":"21.5","time":1}`},
		{"bool value", `{"topic":"a","value":true,"time":1}`},
		{"missing time", `{"topic":"a","value":1}`},
		{"empty time", `{"topic":"a","value":1,"time":""}`},
		{"garbage time", `{"topic":"a","value":1,"time":"yesterday"}`},
		{"object time", `{"topic":"a","value":1,"time":{}}`},
		{"trailing data", `{"topic":"a","value":1,"time":1} {}`},
		{"time above int64", `{"topic":"a","value":1,"time":1e30}`},
		{"time below int64", `{"topic":"a","value":1,"time":-1e30}`},
		{"time just past int64", `{"topic":"a","value":1,"time":9.3e18}`},
		{"string time past int64", `{"topic":"a","value":1,"time":"99999999999999999999"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state  State
		expect string
	}{
		{StateIdle, "idle"},
		{StateConnecting, "connecting"},
		{StateAuthenticated, "authenticated"},
		{StateDegraded, "degraded"},
		{StateClosed, "closed"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.state.String())
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "degraded (timeout)", Status{State: StateDegraded, Reason: "timeout"}.String())
	assert.Equal(t, "authenticated", Status{State: StateAuthenticated}.String())
}
