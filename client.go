package mormotauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/restforge/mormotauth/password"
	"github.com/restforge/mormotauth/session"
	"github.com/restforge/mormotauth/sign"
)

// authResponse is the JSON body of both Auth exchanges.
type authResponse struct {
	Result *string `json:"result"`
}

// Client authenticates against one server and signs every subsequent
// request path. It holds at most one session; Login replaces it and
// Invalidate drops it. All methods are safe for concurrent use.
type Client struct {
	config   Config
	http     *http.Client
	log      *logrus.Logger
	metrics  *Metrics
	audit    *auditDispatcher
	sessions *session.Store
	clock    session.Clock

	mu      sync.RWMutex
	user    string
	session *session.Session
}

// Close flushes and stops the audit dispatcher. The Client must not be
// used afterwards.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// Session returns the current authenticated session, or nil when the
// client is unauthenticated.
func (c *Client) Session() *session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// MetricsSnapshot copies the current counter values. Exporters consume
// this through the metrics/export packages.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports how many audit events the dispatcher discarded.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// ServerNonce fetches the login challenge for user from the Auth endpoint
// and returns the value of its "result" field.
func (c *Client) ServerNonce(ctx context.Context, user string) (string, error) {
	nonce, status, err := c.fetchAuth(ctx, url.Values{"Username": {user}})
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		c.metricInc(MetricProtocolErrors)
		return "", &ProtocolError{Endpoint: "Auth", Reason: fmt.Sprintf("challenge rejected with status %d", status)}
	}
	if nonce == "" {
		c.metricInc(MetricProtocolErrors)
		return "", &ProtocolError{Endpoint: "Auth", Reason: "empty challenge nonce"}
	}

	c.metricInc(MetricNonceFetch)
	c.auditEmit(AuditEvent{Type: AuditNonceFetched, User: user, Status: status})
	return nonce, nil
}

// Login runs the challenge-response handshake for user with the
// pre-hashed password and installs the resulting session on the client.
//
// A (nil, nil) return means the server rejected the credentials, the
// expected, recoverable outcome the caller must branch on. Transport
// failures surface as [*NetworkError] and malformed responses as
// [*ProtocolError]; neither is ever reported as a rejection.
func (c *Client) Login(ctx context.Context, user, passwordHash string) (*session.Session, error) {
	serverNonce, status, err := c.fetchAuth(ctx, url.Values{"Username": {user}})
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		c.noteRejected(user, status)
		return nil, nil
	}
	if serverNonce == "" {
		c.metricInc(MetricProtocolErrors)
		return nil, &ProtocolError{Endpoint: "Auth", Reason: "empty challenge nonce"}
	}
	c.metricInc(MetricNonceFetch)
	c.auditEmit(AuditEvent{Type: AuditNonceFetched, User: user, Status: status})

	clientNonce, err := sign.ClientNonce()
	if err != nil {
		return nil, err
	}
	loginHash := sign.LoginHash(c.config.Root, serverNonce, clientNonce, user, passwordHash)

	key, status, err := c.fetchAuth(ctx, url.Values{
		"Username":    {user},
		"Password":    {loginHash},
		"ClientNonce": {clientNonce},
	})
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 || key == "" {
		c.noteRejected(user, status)
		return nil, nil
	}

	sess, err := session.New(key, passwordHash, c.sessionOpts()...)
	if err != nil {
		c.metricInc(MetricProtocolErrors)
		return nil, &ProtocolError{Endpoint: "Auth", Reason: "unusable session key", Err: err}
	}

	c.setSession(user, sess)
	c.cacheSave(ctx, user, sess)

	c.metricInc(MetricLoginSuccess)
	c.auditEmit(AuditEvent{Type: AuditLoginSucceeded, User: user, SessionID: sess.ID()})
	c.log.WithFields(logrus.Fields{"user": user, "session": sess.IDHex()}).Info("authenticated")
	return sess, nil
}

// LoginWithPassword hashes plain with the server's stored-password scheme
// and runs [Client.Login].
func (c *Client) LoginWithPassword(ctx context.Context, user, plain string) (*session.Session, error) {
	return c.Login(ctx, user, password.Hash(plain))
}

// Resume installs a cached session for user without a handshake. It
// returns (nil, nil) when the cache holds nothing for user.
func (c *Client) Resume(ctx context.Context, user string) (*session.Session, error) {
	if c.sessions == nil {
		return nil, ErrSessionCacheDisabled
	}

	sess, err := c.sessions.Load(ctx, user, c.sessionOpts()...)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	c.setSession(user, sess)
	c.metricInc(MetricSessionResumed)
	c.auditEmit(AuditEvent{Type: AuditSessionResumed, User: user, SessionID: sess.ID()})
	c.log.WithFields(logrus.Fields{"user": user, "session": sess.IDHex()}).Info("session resumed")
	return sess, nil
}

// Invalidate drops the current session and removes it from the cache.
// The reference protocol documents no logout exchange, so no request is
// issued; the server session simply times out. Invalidating an
// unauthenticated client is a no-op.
func (c *Client) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	user, sess := c.user, c.session
	c.user, c.session = "", nil
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	c.metricInc(MetricSessionInvalidated)
	c.auditEmit(AuditEvent{Type: AuditSessionInvalidated, User: user, SessionID: sess.ID()})
	c.log.WithFields(logrus.Fields{"user": user, "session": sess.IDHex()}).Info("session invalidated")

	if c.sessions != nil {
		return c.sessions.Delete(ctx, user)
	}
	return nil
}

// SignPath builds the signed request path for method and params using the
// current session. It fails with [ErrNotAuthenticated] when no session is
// installed.
func (c *Client) SignPath(method string, params url.Values) (string, error) {
	sess := c.Session()
	if sess == nil {
		return "", ErrNotAuthenticated
	}
	c.metricInc(MetricPathsSigned)
	return sess.SignPath(c.config.Root, method, params), nil
}

// Get issues a signed GET for method with params.
func (c *Client) Get(ctx context.Context, method string, params url.Values) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, method, params, nil)
}

// Post issues a signed POST for method carrying body.
func (c *Client) Post(ctx context.Context, method string, body io.Reader) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, method, nil, body)
}

// Put issues a signed PUT for method carrying body.
func (c *Client) Put(ctx context.Context, method string, body io.Reader) (*http.Response, error) {
	return c.do(ctx, http.MethodPut, method, nil, body)
}

// Delete issues a signed DELETE for method.
func (c *Client) Delete(ctx context.Context, method string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, method, nil, nil)
}

// GetWithBody issues a signed GET against the model root itself with a
// request body, the server's remote-statement entry point.
func (c *Client) GetWithBody(ctx context.Context, body io.Reader) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, "", nil, body)
}

func (c *Client) do(ctx context.Context, httpMethod, method string, params url.Values, body io.Reader) (*http.Response, error) {
	path, err := c.SignPath(method, params)
	if err != nil {
		return nil, err
	}
	target := c.config.BaseURL + "/" + path

	req, err := http.NewRequestWithContext(ctx, httpMethod, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", httpMethod, err)
	}
	requestID := c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.metricInc(MetricNetworkErrors)
		return nil, &NetworkError{Op: httpMethod, URL: target, Err: err}
	}

	c.metricInc(MetricRequests)
	c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     httpMethod,
		"path":       path,
		"status":     resp.StatusCode,
	}).Debug("signed request")
	return resp, nil
}

// fetchAuth performs one Auth exchange. Non-2xx responses return the
// status with an empty result and no error; the caller decides whether
// that means rejection.
func (c *Client) fetchAuth(ctx context.Context, query url.Values) (string, int, error) {
	target := c.config.BaseURL + "/" + c.config.Root + "/Auth?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build auth request: %w", err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.metricInc(MetricNetworkErrors)
		return "", 0, &NetworkError{Op: http.MethodGet, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, nil
	}

	var parsed authResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.metricInc(MetricProtocolErrors)
		return "", resp.StatusCode, &ProtocolError{Endpoint: "Auth", Reason: "invalid JSON body", Err: err}
	}
	if parsed.Result == nil {
		c.metricInc(MetricProtocolErrors)
		return "", resp.StatusCode, &ProtocolError{Endpoint: "Auth", Reason: `missing "result" field`}
	}
	return *parsed.Result, resp.StatusCode, nil
}

func (c *Client) noteRejected(user string, status int) {
	c.metricInc(MetricLoginRejected)
	c.auditEmit(AuditEvent{Type: AuditLoginRejected, User: user, Status: status})
	c.log.WithFields(logrus.Fields{"user": user, "status": status}).Warn("authentication rejected")
}

func (c *Client) decorate(req *http.Request) string {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.config.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.HTTP.UserAgent)
	}
	return requestID
}

func (c *Client) setSession(user string, sess *session.Session) {
	c.mu.Lock()
	c.user, c.session = user, sess
	c.mu.Unlock()
}

func (c *Client) sessionOpts() []session.Option {
	if c.clock == nil {
		return nil
	}
	return []session.Option{session.WithClock(c.clock)}
}

// cacheSave is best effort: a cache outage must not fail a successful
// handshake.
func (c *Client) cacheSave(ctx context.Context, user string, sess *session.Session) {
	if c.sessions == nil {
		return
	}
	if err := c.sessions.Save(ctx, user, sess, c.config.SessionCache.TTL); err != nil {
		c.log.WithFields(logrus.Fields{"user": user}).WithError(err).Warn("session cache save failed")
	}
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) auditEmit(event AuditEvent) {
	if c == nil {
		return
	}
	c.audit.emit(event)
}
