package session

import (
	"context"
	"errors"
)

// ErrRejected is returned by a Transport when the remote side refused the
// credential.
var ErrRejected = errors.New("credential rejected")

// Transport opens push connections to the telemetry source.
type Transport interface {
	// Dial connects with token attached. It returns only after the remote side
	// acknowledged the connection and credential, or with an error when it
	// refused (wrapping ErrRejected) or the connection failed. Dial must give
	// up when ctx is done.
	Dial(ctx context.Context, token string) (Conn, error)
}

// Conn is an accepted connection delivering raw event payloads.
type Conn interface {
	// Next blocks until the next event payload arrives. Any error means the
	// stream is over. Close unblocks a pending Next.
	Next(ctx context.Context) ([]byte, error)
	Close() error
}
