// Package api is the HTTP client for the telemetry backend's REST endpoints:
// login and device metadata. The streaming side lives in transport/socketio.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rileyhilliard/pulse/internal/credential"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/series"
)

// Endpoint paths, relative to the base URL.
const (
	LoginPath   = "/auth/login"
	DevicesPath = "/devices"
)

// Config represents client configuration
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryCount    int
	RetryWaitTime time.Duration
	Debug         bool
	Logger        logger.Logger
}

// DefaultConfig returns default client configuration
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		Timeout:       10 * time.Second,
		RetryCount:    2,
		RetryWaitTime: 500 * time.Millisecond,
	}
}

// Client talks to the backend REST API.
type Client struct {
	client  *resty.Client
	baseURL string
	log     logger.Logger
}

// NewClient creates a client. A nil cfg uses DefaultConfig for localhost.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig("http://localhost:3000")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Noop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})

	if cfg.Debug {
		client.SetDebug(true)
	}

	return &Client{
		client:  client,
		baseURL: cfg.BaseURL,
		log:     log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

type errorResponse struct {
	Message any `json:"message"`
}

// Login exchanges a username and password for a bearer credential.
func (c *Client) Login(ctx context.Context, username, password string) (credential.Credential, error) {
	if username == "" || password == "" {
		return credential.Credential{}, errors.New(errors.ErrAuth,
			"username and password are required",
			"Pass --username, or run 'pulse login' in a terminal to be prompted")
	}

	var result loginResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&loginRequest{Username: username, Password: password}).
		SetResult(&result).
		SetError(&errorResponse{}).
		Post(LoginPath)
	if err != nil {
		return credential.Credential{}, errors.WrapWithCode(err, errors.ErrAPI,
			"login request failed",
			"Check that api.url points at a running server: "+c.baseURL)
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return credential.Credential{}, errors.New(errors.ErrAuth,
			"login rejected: "+serverMessage(resp),
			"Double-check the username and password")
	}
	if resp.IsError() {
		return credential.Credential{}, errors.New(errors.ErrAPI,
			"login API returned "+resp.Status()+": "+serverMessage(resp),
			"The server may be unhealthy, try again shortly")
	}

	token := result.AccessToken
	if token == "" {
		token = result.Token
	}
	if token == "" {
		return credential.Credential{}, errors.New(errors.ErrAPI,
			"login response did not include a token",
			"Expected a JSON body with an access_token field")
	}

	c.log.Debug("logged in as %s", username)
	return credential.Credential{Token: token}, nil
}

// wireDevice accepts the field spellings backends commonly use.
type wireDevice struct {
	Key         string `json:"key"`
	Topic       string `json:"topic"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Unit        string `json:"unit"`
}

// ListDevices fetches device metadata. It implements dashboard.DeviceSource.
func (c *Client) ListDevices(ctx context.Context, cred credential.Credential) ([]dashboard.Device, error) {
	if !cred.Present() {
		return nil, errors.New(errors.ErrAuth, "no credential for device listing", "Run 'pulse login' first")
	}

	var result []wireDevice
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(cred.Token).
		SetResult(&result).
		SetError(&errorResponse{}).
		Get(DevicesPath)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAPI, "device request failed", "")
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, errors.New(errors.ErrAuth, "device listing rejected: "+serverMessage(resp), "The token may have expired, log in again")
	}
	if resp.IsError() {
		return nil, errors.New(errors.ErrAPI, "devices API returned "+resp.Status()+": "+serverMessage(resp), "")
	}

	devices := make([]dashboard.Device, 0, len(result))
	for _, w := range result {
		key := w.Key
		if key == "" {
			key = w.Topic
		}
		if key == "" {
			continue
		}
		name := w.Name
		if name == "" {
			name = w.DisplayName
		}
		devices = append(devices, dashboard.Device{Key: series.Key(key), DisplayName: name, Unit: w.Unit})
	}
	return devices, nil
}

// serverMessage pulls a human readable message from an error body. NestJS
// style servers send either a string or a list of strings.
func serverMessage(resp *resty.Response) string {
	if e, ok := resp.Error().(*errorResponse); ok && e != nil {
		switch m := e.Message.(type) {
		case string:
			if m != "" {
				return m
			}
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	body := strings.TrimSpace(resp.String())
	if body == "" {
		return http.StatusText(resp.StatusCode())
	}
	return body
}

var _ dashboard.DeviceSource = (*Client)(nil)
