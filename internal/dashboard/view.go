package dashboard

import (
	"context"
	"time"

	"github.com/rileyhilliard/pulse/internal/credential"
	"github.com/rileyhilliard/pulse/internal/series"
	"github.com/rileyhilliard/pulse/internal/session"
)

// Device is display metadata for one channel.
type Device struct {
	Key         series.Key `json:"key"`
	DisplayName string     `json:"name"`
	Unit        string     `json:"unit,omitempty"`
}

// DeviceSource lists device metadata for a credential.
type DeviceSource interface {
	ListDevices(ctx context.Context, cred credential.Credential) ([]Device, error)
}

// Channel is one series ready to render.
type Channel struct {
	Key     series.Key
	Label   string
	Unit    string
	Samples []series.Sample
}

// Last returns the newest sample, if any.
func (ch Channel) Last() (series.Sample, bool) {
	if len(ch.Samples) == 0 {
		return series.Sample{}, false
	}
	return ch.Samples[len(ch.Samples)-1], true
}

// View is an immutable snapshot of the dashboard. Everything in it is a copy;
// holding a View never blocks routing.
type View struct {
	// Epoch counts sessions created by the controller. Zero means none yet.
	Epoch     uint64
	SessionID string
	Status    session.Status
	Series    map[series.Key][]series.Sample
	Labels    map[series.Key]string
	// Channels holds the same data as Series, sorted by key.
	Channels  []Channel
	UpdatedAt time.Time
}

// Channel looks up one channel by key.
func (v View) Channel(key series.Key) (Channel, bool) {
	for _, ch := range v.Channels {
		if ch.Key == key {
			return ch, true
		}
	}
	return Channel{}, false
}

// SampleCount is the total number of buffered samples across channels.
func (v View) SampleCount() int {
	n := 0
	for _, s := range v.Series {
		n += len(s)
	}
	return n
}
