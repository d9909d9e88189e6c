package session

import (
	"strings"
	"time"
)

// State is the lifecycle state of a connection session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAuthenticated
	StateDegraded
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateDegraded:
		return "degraded"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of a session.
type Status struct {
	State State
	// Reason is set for StateDegraded: why the last attempt or stream failed.
	Reason string
	// Attempt counts connect attempts since the last successful one (1-based
	// while connecting, 0 once authenticated).
	Attempt int
	Since   time.Time
}

// String renders the status the way it is shown in logs and the dashboard.
func (s Status) String() string {
	if s.State == StateDegraded && s.Reason != "" {
		return s.State.String() + " (" + s.Reason + ")"
	}
	return s.State.String()
}

// exhaustedPrefix starts the Reason of a session that stopped retrying.
const exhaustedPrefix = "retries exhausted"

// Exhausted reports whether the session gave up reconnecting. An exhausted
// session stays degraded until it is closed.
func (s Status) Exhausted() bool {
	return s.State == StateDegraded && strings.HasPrefix(s.Reason, exhaustedPrefix)
}
