package mormotauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/restforge/mormotauth/session"
	"github.com/restforge/mormotauth/sign"
)

const (
	testUser = "admin"
	testHash = "8B4567A3C2D1E0F98B4567A3C2D1E0F98B4567A3C2D1E0F98B4567A3C2D1E0F9"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := defaultConfig()
	cfg.BaseURL = baseURL
	cfg.Root = "root"

	client, err := New().
		WithConfig(cfg).
		WithClock(func() int64 { return 0x01020304 }).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

// authStub emulates the server side of the handshake: it hands out a fixed
// nonce, then verifies the submitted Password against the same derivation.
type authStub struct {
	serverNonce string
	sessionKey  string
	root        string
	user        string
	hash        string
}

func (a *authStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/"+a.root+"/Auth") {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("Username") != a.user {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if q.Get("Password") == "" {
			_ = json.NewEncoder(w).Encode(map[string]string{"result": a.serverNonce})
			return
		}
		want := sign.LoginHash(a.root, a.serverNonce, q.Get("ClientNonce"), a.user, a.hash)
		if q.Get("Password") != want {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": a.sessionKey})
	})
}

func TestServerNonce(t *testing.T) {
	stub := &authStub{serverNonce: "AAAAAAAA", root: "root", user: testUser}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	nonce, err := client.ServerNonce(context.Background(), testUser)
	if err != nil {
		t.Fatalf("ServerNonce: %v", err)
	}
	if nonce != "AAAAAAAA" {
		t.Fatalf("nonce = %q", nonce)
	}
}

func TestServerNonceMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"unexpected":"shape"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ServerNonce(context.Background(), testUser)

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
}

func TestServerNonceInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ServerNonce(context.Background(), testUser)

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	stub := &authStub{
		serverNonce: "AAAAAAAA",
		sessionKey:  "123+5A7C9E",
		root:        "root",
		user:        testUser,
		hash:        testHash,
	}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	sess, err := client.Login(context.Background(), testUser, testHash)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess == nil {
		t.Fatal("expected a session")
	}
	if sess.ID() != 123 {
		t.Fatalf("session id = %d, want 123", sess.ID())
	}
	if client.Session() != sess {
		t.Fatal("client did not install the session")
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 || snap.Counters[MetricNonceFetch] != 1 {
		t.Fatalf("unexpected counters: %v", snap.Counters)
	}
}

func TestLoginRejectedIsAbsentSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	sess, err := client.Login(context.Background(), testUser, testHash)
	if err != nil {
		t.Fatalf("rejection must not raise, got %v", err)
	}
	if sess != nil {
		t.Fatal("rejection must yield an absent session")
	}
	if client.Session() != nil {
		t.Fatal("client must stay unauthenticated")
	}
	if client.MetricsSnapshot().Counters[MetricLoginRejected] != 1 {
		t.Fatal("rejection counter not incremented")
	}
}

func TestLoginWrongCredentialsRejected(t *testing.T) {
	stub := &authStub{
		serverNonce: "AAAAAAAA",
		sessionKey:  "123+5A7C9E",
		root:        "root",
		user:        testUser,
		hash:        testHash,
	}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	sess, err := client.Login(context.Background(), testUser, strings.Repeat("00", 32))
	if err != nil || sess != nil {
		t.Fatalf("wrong credentials must yield (nil, nil), got (%v, %v)", sess, err)
	}
}

func TestLoginNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(t, srv.URL)
	_, err := client.Login(context.Background(), testUser, testHash)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
}

func TestLoginUnusableSessionKey(t *testing.T) {
	stub := &authStub{
		serverNonce: "AAAAAAAA",
		sessionKey:  "not-a-session",
		root:        "root",
		user:        testUser,
		hash:        testHash,
	}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Login(context.Background(), testUser, testHash)

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
	if !errors.Is(err, session.ErrInvalidKey) {
		t.Fatalf("expected wrapped ErrInvalidKey, got %v", err)
	}
}

func TestSignPathRequiresSession(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	if _, err := client.SignPath("Method", nil); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := client.Get(context.Background(), "Method", nil); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Get without session: expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSignedRequestVerifiableByServer(t *testing.T) {
	saltSeed := sign.ChainCRC32(0, []byte(testHash))

	verified := false
	mux := http.NewServeMux()
	stub := &authStub{
		serverNonce: "AAAAAAAA",
		sessionKey:  "52+9F",
		root:        "root",
		user:        testUser,
		hash:        testHash,
	}
	mux.Handle("/root/Auth", stub.handler(t))
	mux.HandleFunc("/root/", func(w http.ResponseWriter, r *http.Request) {
		raw := r.RequestURI // exact bytes as sent, not re-encoded
		marker := session.SignatureParam + "="
		idx := strings.LastIndex(raw, marker)
		if idx < 0 {
			t.Errorf("no signature in %q", raw)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		// The byte range the client checksummed: everything before the
		// signature separator, without the leading '/'.
		unsigned := strings.TrimPrefix(raw[:idx-1], "/")

		sig, err := session.ParseSignature(raw[idx+len(marker):])
		if err != nil {
			t.Errorf("ParseSignature: %v", err)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if sig.IDHex != sign.EncodeHex8(52) {
			t.Errorf("signature session id %q", sig.IDHex)
		}
		want := sign.EncodeHex8(sign.ChainCRC32(saltSeed, []byte(sig.Nonce), []byte(unsigned)))
		if sig.Checksum != want {
			t.Errorf("checksum %q, want %q", sig.Checksum, want)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		verified = true
		_, _ = io.WriteString(w, `{"result":[]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.Login(context.Background(), testUser, testHash); err != nil {
		t.Fatalf("Login: %v", err)
	}

	resp, err := client.Get(context.Background(), "DestList", url.Values{"select": {"Dest"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("server declined the signed request: %d", resp.StatusCode)
	}
	if !verified {
		t.Fatal("signature was never verified")
	}
}

func TestInvalidateDropsSession(t *testing.T) {
	stub := &authStub{
		serverNonce: "AAAAAAAA",
		sessionKey:  "7+K",
		root:        "root",
		user:        testUser,
		hash:        testHash,
	}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.Login(context.Background(), testUser, testHash); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := client.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if client.Session() != nil {
		t.Fatal("session survived Invalidate")
	}
	// Idempotent on an unauthenticated client.
	if err := client.Invalidate(context.Background()); err != nil {
		t.Fatalf("second Invalidate: %v", err)
	}
}

func TestResumeWithoutCache(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	if _, err := client.Resume(context.Background(), testUser); !errors.Is(err, ErrSessionCacheDisabled) {
		t.Fatalf("expected ErrSessionCacheDisabled, got %v", err)
	}
}
