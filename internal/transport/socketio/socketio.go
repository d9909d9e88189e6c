// Package socketio implements the push transport over Socket.IO (protocol v5,
// Engine.IO v4) on a plain WebSocket connection.
//
// Only the pieces a read-mostly client needs are supported: the open
// handshake, namespace connect with an auth payload, ping/pong, text events,
// and disconnects. Binary attachments and HTTP long-polling are not.
package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/session"
)

// Engine.IO packet types
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
	engineNoop    = '6'
)

// Socket.IO packet types (carried inside engine messages)
const (
	socketConnect      = '0'
	socketDisconnect   = '1'
	socketEvent        = '2'
	socketConnectError = '4'
)

// Defaults for Config fields left empty.
const (
	DefaultPath             = "/socket.io/"
	DefaultNamespace        = "/"
	DefaultEvent            = "sensorData"
	DefaultHandshakeTimeout = 10 * time.Second
)

// ErrServerDisconnect is returned by Next when the server ends the session.
var ErrServerDisconnect = errors.New("server disconnected")

// ErrClosed is returned by Next after a local Close.
var ErrClosed = fmt.Errorf("socket.io: %w", io.ErrClosedPipe)

// Config describes where and how to connect.
type Config struct {
	// URL is the server base, e.g. http://localhost:3000. http(s) and ws(s)
	// schemes are accepted.
	URL       string
	Path      string
	Namespace string
	// Event is the event name carrying sensor payloads.
	Event            string
	HandshakeTimeout time.Duration
	Logger           logger.Logger
}

// Transport dials Socket.IO servers. It implements session.Transport.
type Transport struct {
	endpoint  string
	namespace string
	event     string
	dialer    *websocket.Dialer
	log       logger.Logger
}

// New validates cfg and returns a transport.
func New(cfg Config) (*Transport, error) {
	endpoint, err := Endpoint(cfg.URL, cfg.Path)
	if err != nil {
		return nil, err
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	if !strings.HasPrefix(ns, "/") {
		ns = "/" + ns
	}

	event := cfg.Event
	if event == "" {
		event = DefaultEvent
	}

	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Noop()
	}

	return &Transport{
		endpoint:  endpoint,
		namespace: ns,
		event:     event,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
		},
		log: log,
	}, nil
}

// Endpoint builds the WebSocket URL for a server base and Socket.IO path.
func Endpoint(base, path string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("socket.io: server URL is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("socket.io: invalid server URL %q: %w", base, err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("socket.io: unsupported scheme %q in %q", u.Scheme, base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("socket.io: missing host in %q", base)
	}

	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// openPacket is the Engine.IO handshake payload.
type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"` // ms
	PingTimeout  int    `json:"pingTimeout"`  // ms
}

// Dial connects, performs the Engine.IO and namespace handshakes, and returns
// once the server has acknowledged the namespace connect. The token is sent
// both as a bearer header on the upgrade and in the connect auth payload.
func (t *Transport) Dial(ctx context.Context, token string) (session.Conn, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	ws, resp, err := t.dialer.DialContext(ctx, t.endpoint, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: server returned %s", session.ErrRejected, resp.Status)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dial %s: %w", t.endpoint, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	// Abort a stalled handshake when ctx ends
	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	c := &conn{ws: ws, event: t.event, namespace: t.namespace, log: t.log}
	if err := c.handshake(token); err != nil {
		_ = ws.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	if !stop() {
		// ctx fired after the handshake finished; the socket is already closed
		return nil, ctx.Err()
	}

	t.log.Debug("socket.io connected to %s (sid %s)", t.endpoint, c.sid)
	return c, nil
}

// conn is an established Socket.IO connection. It implements session.Conn.
type conn struct {
	ws        *websocket.Conn
	event     string
	namespace string
	log       logger.Logger

	sid        string
	pingWindow time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func (c *conn) write(msg string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (c *conn) handshake(token string) error {
	c.closed = make(chan struct{})

	_, msg, err := c.ws.ReadMessage()
	if err != nil {
		return fmt.Errorf("socket.io handshake: %w", err)
	}
	if len(msg) == 0 || msg[0] != engineOpen {
		return fmt.Errorf("socket.io handshake: expected open packet, got %q", truncate(msg))
	}
	var open openPacket
	if err := json.Unmarshal(msg[1:], &open); err != nil {
		return fmt.Errorf("socket.io handshake: bad open packet: %w", err)
	}
	if open.PingInterval > 0 && open.PingTimeout > 0 {
		c.pingWindow = time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
	}

	auth, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return err
	}
	if err := c.write(string(engineMessage) + string(socketConnect) + c.nsPrefix() + string(auth)); err != nil {
		return fmt.Errorf("socket.io connect: %w", err)
	}

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("socket.io connect: %w", err)
		}
		if len(msg) == 0 {
			continue
		}

		switch msg[0] {
		case enginePing:
			if err := c.write(string(enginePong)); err != nil {
				return fmt.Errorf("socket.io connect: %w", err)
			}
			continue
		case engineClose:
			return fmt.Errorf("socket.io connect: %w", ErrServerDisconnect)
		case engineMessage:
		default:
			continue
		}

		if len(msg) < 2 {
			continue
		}
		ns, body := c.splitNamespace(msg[2:])
		if ns != c.namespace {
			continue
		}

		switch msg[1] {
		case socketConnect:
			var ack struct {
				SID string `json:"sid"`
			}
			_ = json.Unmarshal(body, &ack)
			c.sid = ack.SID
			if c.sid == "" {
				c.sid = open.SID
			}
			return nil
		case socketConnectError:
			var cerr struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(body, &cerr) != nil || cerr.Message == "" {
				cerr.Message = string(body)
			}
			return fmt.Errorf("%w: %s", session.ErrRejected, cerr.Message)
		}
	}
}

// nsPrefix is the namespace segment of an outgoing packet, empty for "/".
func (c *conn) nsPrefix() string {
	if c.namespace == DefaultNamespace {
		return ""
	}
	return c.namespace + ","
}

// splitNamespace separates an optional "/ns," prefix from a packet body.
func (c *conn) splitNamespace(b []byte) (string, []byte) {
	if len(b) == 0 || b[0] != '/' {
		return DefaultNamespace, b
	}
	s := string(b)
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i], b[i+1:]
	}
	return s, nil
}

// Next returns the payload of the next configured event. Pings are answered
// and other events skipped. A frame that claims to be an event but can't be
// unpacked is returned as-is so the caller's decoder rejects it.
func (c *conn) Next(ctx context.Context) ([]byte, error) {
	for {
		if c.pingWindow > 0 {
			_ = c.ws.SetReadDeadline(time.Now().Add(c.pingWindow))
		}
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				return nil, ErrClosed
			default:
			}
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, fmt.Errorf("ping timeout after %s", c.pingWindow)
			}
			return nil, err
		}
		if len(msg) == 0 {
			continue
		}

		switch msg[0] {
		case enginePing:
			if err := c.write(string(enginePong)); err != nil {
				return nil, err
			}
			continue
		case engineClose:
			return nil, ErrServerDisconnect
		case engineNoop, enginePong:
			continue
		case engineMessage:
		default:
			continue
		}

		if len(msg) < 2 {
			continue
		}
		ns, body := c.splitNamespace(msg[2:])
		if ns != c.namespace {
			continue
		}

		switch msg[1] {
		case socketDisconnect:
			return nil, ErrServerDisconnect
		case socketConnectError:
			return nil, fmt.Errorf("%w: %s", session.ErrRejected, truncate(body))
		case socketEvent:
			payload, ok := c.eventPayload(body)
			if !ok {
				continue
			}
			return payload, nil
		}
	}
}

// eventPayload extracts the first argument of an event frame body such as
// `12["sensorData",{...}]` (the leading digits are an optional ack id).
func (c *conn) eventPayload(body []byte) ([]byte, bool) {
	i := 0
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}
	body = body[i:]

	var args []json.RawMessage
	if err := json.Unmarshal(body, &args); err != nil || len(args) == 0 {
		return body, true
	}

	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return body, true
	}
	if name != c.event {
		return nil, false
	}
	if len(args) < 2 {
		return []byte("null"), true
	}
	return args[1], true
}

// Close sends a namespace disconnect and closes the socket. Safe to call more
// than once and concurrently with Next.
func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.ws.SetWriteDeadline(time.Now().Add(time.Second))
		_ = c.ws.WriteMessage(websocket.TextMessage, []byte(string(engineMessage)+string(socketDisconnect)+strings.TrimSuffix(c.nsPrefix(), ",")))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func truncate(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

var _ session.Transport = (*Transport)(nil)
