// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// importing net/http. Tests inject fixed values (notably the clock) the same
// way.
package requestcontext

import (
	"context"
	"time"

	id "vouch/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	issuerIDKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyIssuerID    = issuerIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// IssuerID retrieves the authenticated issuer from the context. Returns the
// zero value when the request is unauthenticated.
func IssuerID(ctx context.Context) id.IssuerID {
	if v, ok := ctx.Value(ContextKeyIssuerID).(id.IssuerID); ok {
		return v
	}
	return id.IssuerID{}
}

// WithIssuerID injects an authenticated issuer into the context.
func WithIssuerID(ctx context.Context, issuerID id.IssuerID) context.Context {
	return context.WithValue(ctx, ContextKeyIssuerID, issuerID)
}

// RequestID retrieves the correlation id set by middleware, or "" if unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now returns the request-scoped time when one was injected, falling back to
// the wall clock. Services take their timestamps from here so tests can pin
// time without a clock interface on every constructor.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithTime injects a fixed request time, used by middleware and tests.
func WithTime(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, now)
}
