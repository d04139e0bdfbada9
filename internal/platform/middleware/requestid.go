package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"vouch/pkg/requestcontext"
)

// RequestID attaches a correlation id to every request, honoring an inbound
// X-Request-ID header when present so traces survive proxy hops.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
