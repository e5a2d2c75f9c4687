package mormotauth

import (
	"context"
	"time"
)

// AuditEventType names a security-relevant client operation.
type AuditEventType string

const (
	// AuditNonceFetched records a challenge fetch from the Auth endpoint.
	AuditNonceFetched AuditEventType = "nonce_fetched"
	// AuditLoginSucceeded records a completed handshake.
	AuditLoginSucceeded AuditEventType = "login_succeeded"
	// AuditLoginRejected records a handshake the server declined.
	AuditLoginRejected AuditEventType = "login_rejected"
	// AuditSessionResumed records a session restored from the cache.
	AuditSessionResumed AuditEventType = "session_resumed"
	// AuditSessionInvalidated records a session dropped by Invalidate.
	AuditSessionInvalidated AuditEventType = "session_invalidated"
)

// AuditEvent is one structured audit record.
type AuditEvent struct {
	Time      time.Time
	Type      AuditEventType
	User      string
	SessionID uint32
	// Status is the HTTP status associated with the event, when any.
	Status int
}

// AuditSink receives audit events. Emit is called from a single dispatcher
// goroutine and should not block for long.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpAuditSink discards every event.
type NoOpAuditSink struct{}

// Emit implements [AuditSink].
func (NoOpAuditSink) Emit(context.Context, AuditEvent) {}
