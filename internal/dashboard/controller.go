// Package dashboard ties a credential source to a connection session and
// publishes read-only views of the live series to renderers.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/credential"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metrics"
	"github.com/rileyhilliard/pulse/internal/series"
	"github.com/rileyhilliard/pulse/internal/session"
)

// DefaultPublishInterval is how often views are pushed to subscribers when
// nothing else triggers a publish.
const DefaultPublishInterval = time.Second

var (
	ErrAlreadyStarted = errors.New("dashboard already started")
	ErrStopped        = errors.New("dashboard stopped")
)

// Options configures a Controller.
type Options struct {
	// Capacity is the per-channel window. Zero uses series.DefaultCapacity.
	Capacity        int
	PublishInterval time.Duration
	// Session is passed to every session the controller creates. OnStatus
	// is overwritten.
	Session session.Options
	Logger  logger.Logger
}

// Controller owns at most one session at a time. A credential change tears
// the current session and its series down before a new one is built, so data
// from one credential never shows up under another.
type Controller struct {
	transport session.Transport
	devices   DeviceSource
	opts      Options
	log       logger.Logger

	mu       sync.Mutex
	epoch    uint64
	sess     *session.Session
	registry *series.Registry
	meta     map[series.Key]Device
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	// cancels the in-flight device fetch of the current epoch
	fetchCancel context.CancelFunc

	subMu   sync.Mutex
	subs    map[int]chan View
	nextSub int

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a stopped controller. devices may be nil, in which case labels
// always fall back to channel keys.
func New(transport session.Transport, devices DeviceSource, opts Options) *Controller {
	if opts.Capacity <= 0 {
		opts.Capacity = series.DefaultCapacity
	}
	if opts.PublishInterval <= 0 {
		opts.PublishInterval = DefaultPublishInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = opts.Logger
	}

	return &Controller{
		transport: transport,
		devices:   devices,
		opts:      opts,
		log:       opts.Logger,
		meta:      make(map[series.Key]Device),
		subs:      make(map[int]chan View),
	}
}

// Start observes src until ctx ends or Stop is called. Every credential it
// yields replaces the current session.
func (c *Controller) Start(ctx context.Context, src credential.Source) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	c.started = true
	c.cancel = cancel
	c.mu.Unlock()

	creds := src.Watch(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx, creds)
	}()
	return nil
}

func (c *Controller) run(ctx context.Context, creds <-chan credential.Credential) {
	ticker := time.NewTicker(c.opts.PublishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cred, ok := <-creds:
			if !ok {
				return
			}
			c.switchCredential(ctx, cred)
		case <-ticker.C:
			c.publish()
		}
	}
}

// switchCredential retires the current epoch and, if cred is present, starts
// a new one.
func (c *Controller) switchCredential(ctx context.Context, cred credential.Credential) {
	c.teardown()

	if !cred.Present() {
		c.log.Info("no credential, dashboard idle")
		c.publish()
		return
	}

	reg := series.NewRegistry(c.opts.Capacity)

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.epoch++
	epoch := c.epoch
	sopts := c.opts.Session
	sopts.OnStatus = func(session.Status) { c.onStatus(epoch) }
	sess := session.New(c.transport, cred.Token, reg, sopts)
	c.sess = sess
	c.registry = reg
	c.meta = make(map[series.Key]Device)

	epochCtx, cancelFetch := context.WithCancel(ctx)
	c.fetchCancel = cancelFetch
	c.mu.Unlock()

	c.log.Info("epoch %d: session %s for new credential", epoch, sess.ID())
	sess.Start(ctx)

	if c.devices != nil {
		c.wg.Add(1)
		go c.fetchDevices(epochCtx, epoch, cred)
	}
	c.publish()
}

// teardown closes the current session and discards its series.
func (c *Controller) teardown() {
	c.mu.Lock()
	sess := c.sess
	reg := c.registry
	cancelFetch := c.fetchCancel
	c.sess = nil
	c.registry = nil
	c.fetchCancel = nil
	c.meta = make(map[series.Key]Device)
	c.mu.Unlock()

	if cancelFetch != nil {
		cancelFetch()
	}
	if sess != nil {
		sess.Close()
		c.log.Debug("session %s retired", sess.ID())
	}
	if reg != nil {
		reg.Clear()
	}
	metrics.Channels.Set(0)
}

func (c *Controller) onStatus(epoch uint64) {
	c.mu.Lock()
	current := c.epoch == epoch && c.sess != nil
	c.mu.Unlock()
	if current {
		c.publish()
	}
}

func (c *Controller) fetchDevices(ctx context.Context, epoch uint64, cred credential.Credential) {
	defer c.wg.Done()

	devices, err := c.devices.ListDevices(ctx, cred)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.DeviceFetchErrors.Inc()
		c.log.Warn("epoch %d: device metadata unavailable, using channel keys: %v", epoch, err)
		return
	}

	meta := make(map[series.Key]Device, len(devices))
	for _, d := range devices {
		if d.Key != "" {
			meta[d.Key] = d
		}
	}

	c.mu.Lock()
	if c.epoch != epoch || c.sess == nil {
		c.mu.Unlock()
		c.log.Debug("epoch %d: discarding device metadata from superseded epoch", epoch)
		return
	}
	c.meta = meta
	c.mu.Unlock()

	c.log.Debug("epoch %d: loaded %d devices", epoch, len(meta))
	c.publish()
}

// Label returns the display name for key, or the key itself when no device
// metadata names it.
func (c *Controller) Label(key series.Key) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.labelLocked(key)
}

func (c *Controller) labelLocked(key series.Key) string {
	if d, ok := c.meta[key]; ok && d.DisplayName != "" {
		return d.DisplayName
	}
	return string(key)
}

// CurrentView snapshots the dashboard state. Safe to call at any time and
// from any goroutine.
func (c *Controller) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Epoch:     c.epoch,
		Series:    map[series.Key][]series.Sample{},
		Labels:    map[series.Key]string{},
		UpdatedAt: time.Now(),
	}

	if c.sess == nil {
		v.Status = session.Status{State: session.StateIdle}
		if c.stopped {
			v.Status.State = session.StateClosed
		}
		return v
	}

	v.SessionID = c.sess.ID()
	v.Status = c.sess.Status()
	v.Series = c.registry.SnapshotAll()

	for key := range c.meta {
		v.Labels[key] = c.labelLocked(key)
	}

	keys := make([]series.Key, 0, len(v.Series))
	for key := range v.Series {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	v.Channels = make([]Channel, 0, len(keys))
	for _, key := range keys {
		label := c.labelLocked(key)
		v.Labels[key] = label
		v.Channels = append(v.Channels, Channel{
			Key:     key,
			Label:   label,
			Unit:    c.meta[key].Unit,
			Samples: v.Series[key],
		})
	}
	return v
}

// Subscribe returns a channel of views and a function to unsubscribe. A
// subscriber that falls behind only receives the latest view. The channel is
// closed on unsubscribe or Stop.
func (c *Controller) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	c.subMu.Lock()
	if c.isStopped() {
		c.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

func (c *Controller) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// publish pushes the current view to every subscriber without blocking.
func (c *Controller) publish() {
	v := c.CurrentView()
	metrics.Channels.Set(float64(len(v.Channels)))

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		// drop the stale view and replace it
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Stop tears everything down and waits for background work to finish. Safe
// to call more than once, and before Start.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		c.wg.Wait()
		c.teardown()

		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()

		c.subMu.Lock()
		for id, ch := range c.subs {
			delete(c.subs, id)
			close(ch)
		}
		c.subMu.Unlock()

		c.log.Debug("dashboard stopped")
	})
}
