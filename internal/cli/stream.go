package cli

import (
	"context"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/credential"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metrics"
	"github.com/rileyhilliard/pulse/internal/session"
	"github.com/rileyhilliard/pulse/internal/transport/socketio"
)

// StreamContext carries the wired streaming stack through a command. Close
// must be called to stop the session and release the metrics listener.
type StreamContext struct {
	Config     *config.Config
	Controller *dashboard.Controller
	Store      *credential.Store
	API        *api.Client
	log        logger.Logger
	cancel     context.CancelFunc
}

// newAPIClient builds the REST client from config.
func newAPIClient(cfg *config.Config) *api.Client {
	ac := api.DefaultConfig(cfg.APIURL())
	ac.Timeout = cfg.API.Timeout
	ac.RetryCount = cfg.API.Retries
	ac.Debug = globalFlags.Verbose
	ac.Logger = logger.WithComponent("api")
	return api.NewClient(ac)
}

// sessionOptions maps the session config section onto session.Options.
func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		ConnectTimeout:   cfg.Session.ConnectTimeout,
		MinRetryInterval: cfg.Session.MinRetryInterval,
		MaxRetryInterval: cfg.Session.MaxRetryInterval,
		MaxAttempts:      cfg.Session.MaxAttempts,
		Logger:           logger.WithComponent("session"),
	}
}

// startStream wires transport, device client and controller from cfg and
// starts the controller with the configured credential, if any.
func startStream(ctx context.Context, cfg *config.Config) (*StreamContext, error) {
	log := logger.WithComponent("stream")

	transport, err := socketio.New(socketio.Config{
		URL:              cfg.Server.URL,
		Path:             cfg.Server.SocketPath,
		Namespace:        cfg.Server.Namespace,
		Event:            cfg.Server.Event,
		HandshakeTimeout: cfg.Session.HandshakeTimeout,
		Logger:           logger.WithComponent("socketio"),
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't use server.url "+cfg.Server.URL,
			"Set it to the server base, e.g. http://localhost:3000.")
	}

	client := newAPIClient(cfg)
	ctrl := dashboard.New(transport, client, dashboard.Options{
		Capacity:        cfg.Buffer.Capacity,
		PublishInterval: cfg.Dashboard.PublishInterval,
		Session:         sessionOptions(cfg),
		Logger:          logger.WithComponent("dashboard"),
	})

	ctx, cancel := context.WithCancel(ctx)
	sc := &StreamContext{
		Config:     cfg,
		Controller: ctrl,
		Store:      credential.NewStore(credential.Credential{Token: cfg.Auth.Token}),
		API:        client,
		log:        log,
		cancel:     cancel,
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Warn("metrics endpoint on %s stopped: %v", cfg.Metrics.Addr, err)
			}
		}()
		log.Info("serving metrics on %s/metrics", cfg.Metrics.Addr)
	}

	if err := ctrl.Start(ctx, sc.Store); err != nil {
		cancel()
		return nil, errors.Wrap(err, "Couldn't start the dashboard")
	}

	log.Info("streaming from %s (capacity %d, refresh %s)",
		cfg.Server.URL, cfg.Buffer.Capacity, cfg.Dashboard.PublishInterval)
	return sc, nil
}

// Logout drops the credential. The controller tears the session down and
// publishes an idle view.
func (sc *StreamContext) Logout() {
	sc.log.Info("logging out")
	sc.Store.Clear()
}

// Close stops the controller and everything it owns.
func (sc *StreamContext) Close() {
	sc.Controller.Stop()
	sc.cancel()
}

// waitForTerminal feeds views to onView until the session is closed or gives
// up, or ctx ends. It returns the last status seen.
func waitForTerminal(ctx context.Context, views <-chan dashboard.View, onView func(dashboard.View)) session.Status {
	var last session.Status
	for {
		select {
		case <-ctx.Done():
			return last
		case v, ok := <-views:
			if !ok {
				return last
			}
			last = v.Status
			onView(v)
			if v.Status.State == session.StateClosed || v.Status.Exhausted() {
				return last
			}
		}
	}
}

// closedReason turns a terminal status into a command error, or nil when
// the stream ended because the user asked it to.
func closedReason(ctx context.Context, st session.Status) error {
	if ctx.Err() != nil || (st.State != session.StateClosed && !st.Exhausted()) {
		return nil
	}
	return errors.New(errors.ErrTransport,
		"Stream closed: "+st.Reason,
		"Check that the server is up and your token is valid ('pulse login').")
}
