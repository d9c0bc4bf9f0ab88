package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/sellerdesk/pkg/logger"
)

// RequestLogger stores a request-scoped logger in context, enriched with
// whatever of correlation_id, seller_id, trace_id and span_id is known.
// Handlers retrieve it with logger.FromContext.
//
// Mount it after RequestLogging and Tracing so both IDs are present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
