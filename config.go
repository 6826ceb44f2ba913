package rosapi

import (
	"crypto/tls"
	"fmt"
	"time"
)

// Config holds validated connection parameters (spec §6). Construct one
// with NewConfig, which validates the required fields and fills the
// zero-value/omitted optional fields with their documented defaults.
type Config struct {
	Host string // required
	User string // required
	Pass string // required

	Port     int  // default: 8729 if SSL, else 8728
	SSL      bool // default false
	Legacy   bool // default false: use post-6.43 plain login instead of MD5 challenge

	Timeout  time.Duration // connect deadline; default 10s
	Attempts int           // total login attempts before ConnectionFailed; default 1
	Delay    time.Duration // sleep between failed attempts; default 1s

	// InsecureSkipVerify and MinTLSVersion let a caller opt into the
	// permissive, interoperability-first TLS posture some RouterOS
	// devices need (self-signed certs). The default is verification
	// enabled, per spec §9's explicit MUST.
	InsecureSkipVerify bool
	MinTLSVersion      uint16 // default: tls.VersionTLS12

	// RepeatThreshold enables repeat-command detection on every Run call
	// when > 0: the same command word issued at least this many times
	// within RepeatWindow raises a RepeatAlert (default 0, disabled).
	RepeatThreshold int
	RepeatWindow    time.Duration // default 1s if RepeatThreshold > 0
	RepeatCooldown  time.Duration // default 10s if RepeatThreshold > 0

	// SlowThreshold enables slow-reply detection on every Run call when
	// > 0: a reply taking at least this long raises a SlowAlert
	// (default 0, disabled).
	SlowThreshold time.Duration
}

const (
	defaultPlainPort    = 8728
	defaultTLSPort      = 8729
	defaultTimeout      = 10 * time.Second
	defaultAttempts     = 1
	defaultDelay        = 1 * time.Second
	defaultRepeatWindow = 1 * time.Second
	defaultRepeatCool   = 10 * time.Second
)

// NewConfig validates cfg and returns a copy with defaults applied. It is
// the only way this package accepts a Config: Dial and Client.Run both
// assume the Config they hold has already passed through NewConfig.
func NewConfig(cfg Config) (Config, error) {
	if cfg.Host == "" {
		return Config{}, fmt.Errorf("%w: host is required", ErrConfig)
	}
	if cfg.User == "" {
		return Config{}, fmt.Errorf("%w: user is required", ErrConfig)
	}
	if cfg.Pass == "" {
		return Config{}, fmt.Errorf("%w: pass is required", ErrConfig)
	}
	if cfg.Attempts < 0 {
		return Config{}, fmt.Errorf("%w: attempts must be >= 0", ErrConfig)
	}

	if cfg.Port == 0 {
		if cfg.SSL {
			cfg.Port = defaultTLSPort
		} else {
			cfg.Port = defaultPlainPort
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.Delay == 0 {
		cfg.Delay = defaultDelay
	}
	if cfg.MinTLSVersion == 0 {
		cfg.MinTLSVersion = tls.VersionTLS12
	}

	if cfg.RepeatThreshold > 0 {
		if cfg.RepeatWindow == 0 {
			cfg.RepeatWindow = defaultRepeatWindow
		}
		if cfg.RepeatCooldown == 0 {
			cfg.RepeatCooldown = defaultRepeatCool
		}
	}

	return cfg, nil
}

// tlsConfig builds the *tls.Config this Config's InsecureSkipVerify and
// MinTLSVersion fields describe, with Host as the server name.
func (c Config) tlsConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // opt-in only, defaults to false
		MinVersion:         c.MinTLSVersion,
		ServerName:         c.Host,
	}
}
