package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .pulse.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Buffer    BufferConfig    `yaml:"buffer" mapstructure:"buffer"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig points at the push endpoint.
type ServerConfig struct {
	// URL is the server base, e.g. http://localhost:3000.
	URL string `yaml:"url" mapstructure:"url"`

	// SocketPath is the Socket.IO mount path.
	SocketPath string `yaml:"socket_path" mapstructure:"socket_path"`

	Namespace string `yaml:"namespace" mapstructure:"namespace"`

	// Event is the event name that carries sensor readings.
	Event string `yaml:"event" mapstructure:"event"`
}

// APIConfig controls the REST client used for login and device metadata.
type APIConfig struct {
	// URL defaults to Server.URL when empty.
	URL     string        `yaml:"url,omitempty" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retries int           `yaml:"retries" mapstructure:"retries"`
}

// AuthConfig holds a stored credential. Prefer PULSE_AUTH_TOKEN over
// writing tokens to disk.
type AuthConfig struct {
	Token    string `yaml:"token,omitempty" mapstructure:"token"`
	Username string `yaml:"username,omitempty" mapstructure:"username"`
}

// BufferConfig sizes the per-channel rolling window.
type BufferConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// SessionConfig tunes connect and retry behavior.
type SessionConfig struct {
	ConnectTimeout   time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" mapstructure:"handshake_timeout"`
	MinRetryInterval time.Duration `yaml:"min_retry_interval" mapstructure:"min_retry_interval"`
	MaxRetryInterval time.Duration `yaml:"max_retry_interval" mapstructure:"max_retry_interval"`

	// MaxAttempts caps consecutive failed connects. -1 retries forever.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// DashboardConfig controls how often views are refreshed.
type DashboardConfig struct {
	PublishInterval time.Duration `yaml:"publish_interval" mapstructure:"publish_interval"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`

	// File receives logs while the dashboard owns the terminal. Supports ~
	// and ${HOME}/${USER}.
	File string `yaml:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Server: ServerConfig{
			URL:        "http://localhost:3000",
			SocketPath: "/socket.io/",
			Namespace:  "/",
			Event:      "sensorData",
		},
		API: APIConfig{
			Timeout: 10 * time.Second,
			Retries: 2,
		},
		Buffer: BufferConfig{
			Capacity: 100,
		},
		Session: SessionConfig{
			ConnectTimeout:   10 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			MinRetryInterval: 500 * time.Millisecond,
			MaxRetryInterval: 30 * time.Second,
			MaxAttempts:      10,
		},
		Dashboard: DashboardConfig{
			PublishInterval: time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// APIURL returns the REST base URL, falling back to the server URL.
func (c *Config) APIURL() string {
	if c.API.URL != "" {
		return c.API.URL
	}
	return c.Server.URL
}
