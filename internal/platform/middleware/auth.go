package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

// issuerClaims is the subset of the externally issued token this service
// cares about. Account registration and session handling live in a separate
// system; this middleware only establishes which issuer is calling.
type issuerClaims struct {
	IssuerID string `json:"issuer_id"`
	jwt.RegisteredClaims
}

// RequireIssuer validates the bearer token and injects the authenticated
// issuer into the request context. Tokens are HMAC-signed with a key shared
// with the account system.
func RequireIssuer(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims := &issuerClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingKey), nil
			})
			if err != nil || !parsed.Valid {
				logger.WarnContext(ctx, "rejected issuer token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			issuerID, err := id.ParseIssuerID(claims.IssuerID)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token carries no issuer identity"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithIssuerID(ctx, issuerID)))
		})
	}
}
