package mormotauth

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config carries all tunable client settings. Configure it before Build
// and treat it as immutable afterwards.
type Config struct {
	// BaseURL is the server origin, e.g. "http://localhost:888".
	BaseURL string
	// Root is the model root name appended to BaseURL, e.g. "root".
	Root string

	HTTP         HTTPConfig
	SessionCache SessionCacheConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig controls the client-owned transport. It only applies when no
// *http.Client is injected through the Builder.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
SESSION CACHE CONFIG
====================================
*/

// SessionCacheConfig enables Redis-backed session persistence so separate
// processes can resume a session without re-authenticating.
type SessionCacheConfig struct {
	Enabled     bool
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "mormotauth",
		},
		SessionCache: SessionCacheConfig{
			RedisPrefix: "mauth",
			TTL:         time.Hour,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy detaches the caller.
	return cfg
}

// Validate rejects configurations the client cannot operate with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("BaseURL is required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errors.New("BaseURL must be an absolute http or https URL")
	}
	if strings.HasSuffix(c.BaseURL, "/") {
		return errors.New("BaseURL must not end with '/'")
	}
	if c.Root == "" {
		return errors.New("Root is required")
	}
	if strings.ContainsAny(c.Root, "/?#") {
		return errors.New("Root must be a single path segment")
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP Timeout must not be negative")
	}
	if c.SessionCache.Enabled && c.SessionCache.TTL <= 0 {
		return errors.New("SessionCache TTL must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be positive")
	}
	return nil
}
