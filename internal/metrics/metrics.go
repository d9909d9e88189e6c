// Package metrics exposes Prometheus collectors for the streaming core.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session metrics
	SessionState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_session_state",
			Help: "Current connection session state (0=idle, 1=connecting, 2=authenticated, 3=degraded, 4=closed)",
		},
	)

	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_session_transitions_total",
			Help: "Total number of session state transitions by target state",
		},
		[]string{"to"},
	)

	ReconnectAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_reconnect_attempts_total",
			Help: "Total number of reconnection attempts after a failure",
		},
	)

	ConnectDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulse_connect_duration_seconds",
			Help:    "Time taken for a connect attempt to be accepted or rejected",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Stream metrics
	EventsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_events_received_total",
			Help: "Total number of decoded inbound events",
		},
	)

	DecodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_decode_errors_total",
			Help: "Total number of inbound events dropped as malformed",
		},
	)

	SamplesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_samples_dropped_total",
			Help: "Total number of samples dropped for arriving out of order",
		},
	)

	// Dashboard metrics
	Channels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_channels",
			Help: "Number of channels in the current series registry",
		},
	)

	DeviceFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_device_fetch_errors_total",
			Help: "Total number of failed device metadata fetches",
		},
	)
)

func init() {
	prometheus.MustRegister(SessionState)
	prometheus.MustRegister(SessionTransitions)
	prometheus.MustRegister(ReconnectAttempts)
	prometheus.MustRegister(ConnectDuration)
	prometheus.MustRegister(EventsReceived)
	prometheus.MustRegister(DecodeErrors)
	prometheus.MustRegister(SamplesDropped)
	prometheus.MustRegister(Channels)
	prometheus.MustRegister(DeviceFetchErrors)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
