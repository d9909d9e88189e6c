package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
)

// MinPublishInterval is the fastest allowed dashboard refresh.
const MinPublishInterval = 100 * time.Millisecond

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pulse only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade pulse or lower the version field")
	}

	if err := validateURL("server.url", cfg.Server.URL, "http", "https", "ws", "wss"); err != nil {
		return err
	}
	if cfg.API.URL != "" {
		if err := validateURL("api.url", cfg.API.URL, "http", "https"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(cfg.Server.Event) == "" {
		return errors.New(errors.ErrConfig,
			"server.event can't be empty",
			"Set it to the event name your server emits, usually 'sensorData'")
	}

	if cfg.Buffer.Capacity < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("buffer.capacity must be at least 1, got %d", cfg.Buffer.Capacity),
			"The default window holds 100 samples per channel")
	}

	if err := validateSession(cfg.Session); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'session' section in your .pulse.yaml.")
	}

	if cfg.Dashboard.PublishInterval < MinPublishInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("dashboard.publish_interval %s is too fast", cfg.Dashboard.PublishInterval),
			fmt.Sprintf("Use at least %s", MinPublishInterval))
	}

	if cfg.API.Timeout < 0 || cfg.API.Retries < 0 {
		return errors.New(errors.ErrConfig,
			"api.timeout and api.retries can't be negative",
			"Remove them to use the defaults")
	}

	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown log.level '%s'", cfg.Log.Level),
			"Use one of: debug, info, warn, error")
	}

	return nil
}

func validateURL(field, raw string, schemes ...string) error {
	if raw == "" {
		return errors.New(errors.ErrConfig,
			field+" is required",
			"Point it at your server, e.g. http://localhost:3000")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("%s '%s' isn't a valid URL", field, raw),
			"Use a full URL like http://localhost:3000")
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("%s '%s' has no host", field, raw),
					"Use a full URL like http://localhost:3000")
			}
			return nil
		}
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("%s '%s' uses unsupported scheme '%s'", field, raw, u.Scheme),
		"Supported schemes: "+strings.Join(schemes, ", "))
}

func validateSession(s SessionConfig) error {
	if s.ConnectTimeout < 0 || s.HandshakeTimeout < 0 {
		return fmt.Errorf("session timeouts can't be negative")
	}
	if s.MinRetryInterval < 0 || s.MaxRetryInterval < 0 {
		return fmt.Errorf("session retry intervals can't be negative")
	}
	if s.MaxRetryInterval > 0 && s.MinRetryInterval > s.MaxRetryInterval {
		return fmt.Errorf("session.min_retry_interval (%s) is larger than session.max_retry_interval (%s)",
			s.MinRetryInterval, s.MaxRetryInterval)
	}
	if s.MaxAttempts < -1 {
		return fmt.Errorf("session.max_attempts must be -1 (unlimited) or more, got %d", s.MaxAttempts)
	}
	return nil
}
