package cli

import (
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusView(state session.State, reason string) dashboard.View {
	return dashboard.View{Status: session.Status{State: state, Reason: reason}}
}

func TestWaitForTerminalStopsOnClosed(t *testing.T) {
	views := make(chan dashboard.View, 3)
	views <- statusView(session.StateConnecting, "")
	views <- statusView(session.StateClosed, "server shut down")
	views <- statusView(session.StateIdle, "")

	var seen []session.State
	last := waitForTerminal(context.Background(), views, func(v dashboard.View) {
		seen = append(seen, v.Status.State)
	})

	assert.Equal(t, session.StateClosed, last.State)
	assert.Equal(t, []session.State{session.StateConnecting, session.StateClosed}, seen)
}

func TestWaitForTerminalStopsWhenExhausted(t *testing.T) {
	views := make(chan dashboard.View, 2)
	views <- statusView(session.StateDegraded, "timeout")
	views <- statusView(session.StateDegraded, "retries exhausted after 3 attempts: timeout")

	last := waitForTerminal(context.Background(), views, func(dashboard.View) {})
	assert.True(t, last.Exhausted())
}

func TestWaitForTerminalChannelClosed(t *testing.T) {
	views := make(chan dashboard.View, 1)
	views <- statusView(session.StateAuthenticated, "")
	close(views)

	last := waitForTerminal(context.Background(), views, func(dashboard.View) {})
	assert.Equal(t, session.StateAuthenticated, last.State)
}

func TestWaitForTerminalContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	last := waitForTerminal(ctx, make(chan dashboard.View), func(dashboard.View) {})
	assert.Equal(t, session.StateIdle, last.State)
}

func TestClosedReason(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, closedReason(ctx, session.Status{State: session.StateAuthenticated}))
	assert.NoError(t, closedReason(ctx, session.Status{State: session.StateDegraded, Reason: "timeout"}))

	err := closedReason(ctx, session.Status{State: session.StateClosed, Reason: "server shut down"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransport))
	assert.Contains(t, err.Error(), "server shut down")

	err = closedReason(ctx, session.Status{State: session.StateDegraded, Reason: "retries exhausted after 2 attempts: refused"})
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.NoError(t, closedReason(cancelled, session.Status{State: session.StateClosed}))
}

func TestSessionOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.MaxAttempts = -1
	cfg.Session.MinRetryInterval = time.Second

	opts := sessionOptions(cfg)
	assert.Equal(t, -1, opts.MaxAttempts)
	assert.Equal(t, time.Second, opts.MinRetryInterval)
	assert.Equal(t, cfg.Session.ConnectTimeout, opts.ConnectTimeout)
	assert.NotNil(t, opts.Logger)
}

func TestStartStreamRejectsBadServerURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.URL = "://nope"

	_, err := startStream(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
