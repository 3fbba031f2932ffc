package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/logger"
)

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID reuses an inbound X-Request-ID or mints a UUID, and stores it in
// the request context for handlers and loggers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logger.WithRequestID(ctx, id)
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
