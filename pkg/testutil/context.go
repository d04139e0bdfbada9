package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// WithIssuer adds an authenticated issuer to the request context, simulating
// what the auth middleware does for issuer-scoped endpoints. Invalid IDs are
// silently ignored.
func WithIssuer(req *http.Request, issuerID string) *http.Request {
	parsed, err := id.ParseIssuerID(issuerID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithIssuerID(req.Context(), parsed))
}

// WithFixedTime pins the request-scoped clock so tests get deterministic
// timestamps.
func WithFixedTime(ctx context.Context, now time.Time) context.Context {
	return requestcontext.WithTime(ctx, now)
}

// DiscardLogger returns a logger that drops everything, for handlers and
// services under test that require one.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
