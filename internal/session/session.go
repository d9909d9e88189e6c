package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metrics"
	"github.com/rileyhilliard/pulse/internal/series"
)

// Defaults for Options fields left at zero.
const (
	DefaultConnectTimeout   = 10 * time.Second
	DefaultMinRetryInterval = 500 * time.Millisecond
	DefaultMaxRetryInterval = 30 * time.Second
	DefaultMaxAttempts      = 10

	// MinRetryInterval is the floor for any retry delay, jitter included.
	MinRetryInterval = 250 * time.Millisecond
)

// Options tunes connect and retry behavior.
type Options struct {
	ConnectTimeout   time.Duration
	MinRetryInterval time.Duration
	MaxRetryInterval time.Duration
	// MaxAttempts caps consecutive failed connects. Negative means unlimited.
	MaxAttempts int

	Logger logger.Logger
	// OnStatus is called after every state transition, from the goroutine
	// that caused it. It must not call back into the session.
	OnStatus func(Status)
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.MinRetryInterval <= 0 {
		o.MinRetryInterval = DefaultMinRetryInterval
	}
	if o.MinRetryInterval < MinRetryInterval {
		o.MinRetryInterval = MinRetryInterval
	}
	if o.MaxRetryInterval < o.MinRetryInterval {
		o.MaxRetryInterval = DefaultMaxRetryInterval
		if o.MaxRetryInterval < o.MinRetryInterval {
			o.MaxRetryInterval = o.MinRetryInterval
		}
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	return o
}

// Session is one logical push connection for one credential. It connects,
// retries with backoff, decodes inbound events and routes them into its
// registry. A closed session is never reused.
type Session struct {
	id        string
	transport Transport
	token     string
	registry  *series.Registry
	opts      Options
	log       logger.Logger

	mu      sync.Mutex
	status  Status
	conn    Conn // live connection while authenticated
	cancel  context.CancelFunc
	started bool
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
}

// New creates an idle session. An empty token keeps the session idle forever.
func New(transport Transport, token string, registry *series.Registry, opts Options) *Session {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Session{
		id:        id,
		transport: transport,
		token:     token,
		registry:  registry,
		opts:      opts,
		log:       opts.Logger,
		status:    Status{State: StateIdle, Since: time.Now()},
		done:      make(chan struct{}),
	}
}

// ID uniquely identifies this session in logs and views.
func (s *Session) ID() string {
	return s.id
}

// Registry returns the registry this session routes into.
func (s *Session) Registry() *series.Registry {
	return s.registry
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Start begins connecting in the background. It is a no-op without a token,
// on a closed session, or when already started.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.started {
		s.mu.Unlock()
		return
	}
	if s.token == "" {
		s.mu.Unlock()
		s.log.Debug("session %s: no credential, staying idle", s.id)
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true
	s.mu.Unlock()

	go s.run(ctx)
}

// Close tears the session down: it stops event processing, releases the
// connection and any pending retry timer, and waits for the worker to exit.
// Once Close returns no further events are routed. Calling Close again has no
// effect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		cancel := s.cancel
		conn := s.conn
		started := s.started
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if conn != nil {
			_ = conn.Close()
		}
		if started {
			<-s.done
		}

		s.transition(StateClosed, "")
		s.log.Debug("session %s closed", s.id)
	})
}

// Done is closed when the background worker has exited.
func (s *Session) Done() <-chan struct{} {
	if !s.isStarted() {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

func (s *Session) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// transition records a state change. Nothing leaves StateClosed.
func (s *Session) transition(state State, reason string) {
	s.mu.Lock()
	if s.status.State == StateClosed {
		s.mu.Unlock()
		return
	}
	st := s.status
	st.State = state
	st.Reason = reason
	st.Since = time.Now()
	switch state {
	case StateConnecting:
		st.Attempt++
	case StateAuthenticated:
		st.Attempt = 0
	}
	s.status = st
	onStatus := s.opts.OnStatus
	s.mu.Unlock()

	metrics.SessionState.Set(float64(state))
	metrics.SessionTransitions.WithLabelValues(state.String()).Inc()

	if onStatus != nil {
		onStatus(st)
	}
}

func (s *Session) newBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.opts.MinRetryInterval
	exp.MaxInterval = s.opts.MaxRetryInterval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.5
	exp.MaxElapsedTime = 0
	exp.Reset()

	if s.opts.MaxAttempts < 0 {
		return exp
	}
	// WithMaxRetries counts retries, the first attempt is free
	return backoff.WithMaxRetries(exp, uint64(s.opts.MaxAttempts-1))
}

// run is the session worker: connect, stream until failure, back off, repeat.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		if ctx.Err() != nil {
			s.transition(StateClosed, "")
		}
	}()

	b := s.newBackOff()
	for {
		s.transition(StateConnecting, "")
		if attempt := s.Status().Attempt; attempt > 1 {
			metrics.ReconnectAttempts.Inc()
		}

		conn, err := s.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if err == nil {
			b.Reset()
			s.transition(StateAuthenticated, "")
			s.log.Info("session %s authenticated", s.id)

			err = s.stream(ctx, conn)
			if ctx.Err() != nil {
				return
			}
			s.transition(StateDegraded, "disconnected: "+err.Error())
			s.log.Warn("session %s disconnected: %v", s.id, err)
		} else {
			s.transition(StateDegraded, failureReason(err))
			s.log.Warn("session %s connect failed: %v", s.id, err)
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			reason := fmt.Sprintf("%s after %d attempts: %s", exhaustedPrefix, s.opts.MaxAttempts, s.Status().Reason)
			s.transition(StateDegraded, reason)
			s.log.Error("session %s giving up: %s", s.id, reason)
			return
		}
		if delay < MinRetryInterval {
			delay = MinRetryInterval
		}

		s.log.Debug("session %s retrying in %s", s.id, delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

type dialResult struct {
	conn Conn
	err  error
}

// errConnectTimeout marks a connect attempt that outlived ConnectTimeout.
var errConnectTimeout = errors.New("timeout")

// connect dials with the connect deadline applied. A transport that ignores
// the deadline is abandoned and its late connection closed.
func (s *Session) connect(ctx context.Context) (Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	defer cancel()

	started := time.Now()
	results := make(chan dialResult, 1)
	go func() {
		conn, err := s.transport.Dial(dialCtx, s.token)
		results <- dialResult{conn: conn, err: err}
	}()

	var res dialResult
	select {
	case res = <-results:
	case <-dialCtx.Done():
		go func() {
			if late := <-results; late.conn != nil {
				_ = late.conn.Close()
			}
		}()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errConnectTimeout
	}
	metrics.ConnectDuration.Observe(time.Since(started).Seconds())

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, errConnectTimeout
		}
		return nil, res.err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = res.conn.Close()
		return nil, context.Canceled
	}
	s.conn = res.conn
	s.mu.Unlock()

	return res.conn, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errConnectTimeout):
		return "timeout"
	case errors.Is(err, ErrRejected):
		return "rejected: " + err.Error()
	default:
		return err.Error()
	}
}

// stream reads events in arrival order until the connection fails or the
// session is torn down. It always releases conn before returning.
func (s *Session) stream(ctx context.Context, conn Conn) error {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		raw, err := conn.Next(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.handle(raw)
	}
}

// handle decodes one payload and routes it. Malformed payloads are dropped.
func (s *Session) handle(raw []byte) {
	ev, err := DecodeEvent(raw)
	if err != nil {
		metrics.DecodeErrors.Inc()
		s.log.Debug("session %s dropped event: %v", s.id, err)
		return
	}

	metrics.EventsReceived.Inc()
	if !s.registry.Route(ev.Key, ev.Sample) {
		metrics.SamplesDropped.Inc()
	}
}
