package mormotauth

import (
	"errors"
	"io"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/restforge/mormotauth/session"
)

// Builder assembles a [Client]. Configure it during initialization and
// call Build exactly once; construction is allocation-only and performs no
// I/O.
type Builder struct {
	config Config

	httpClient *http.Client
	redis      *redis.Client
	logger     *logrus.Logger
	clock      session.Clock
	auditSink  AuditSink

	built bool
}

// New returns a Builder preloaded with defaults. BaseURL and Root must
// still be supplied through WithConfig.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithHTTPClient injects a reusable transport. When omitted, Build creates
// an *http.Client from the HTTP config section. The client never falls
// back to a process-global transport.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithRedis injects the Redis client backing the session cache. Required
// when SessionCache.Enabled is set.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithLogger injects a logrus logger. When omitted, logging is discarded.
func (b *Builder) WithLogger(logger *logrus.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces the millisecond clock used for signing. Intended for
// tests that pin the signature tick window.
func (b *Builder) WithClock(clock session.Clock) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink attaches a consumer for audit events. Only effective when
// Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and constructs the Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SessionCache.Enabled && b.redis == nil {
		return nil, errors.New("SessionCache requires redis client")
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}

	logger := b.logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	client := &Client{
		config:  cfg,
		http:    httpClient,
		log:     logger,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		clock:   b.clock,
	}
	if cfg.SessionCache.Enabled {
		client.sessions = session.NewStore(b.redis, cfg.SessionCache.RedisPrefix)
	}

	b.built = true

	return client, nil
}
