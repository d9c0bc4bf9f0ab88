package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
	"github.com/utafrali/sellerdesk/pkg/httputil"
	"github.com/utafrali/sellerdesk/pkg/logger"
)

// SessionResolver reports the logged-in seller for a request. An empty ID
// with a nil error means nobody is logged in.
type SessionResolver func(ctx context.Context) (sellerID string, err error)

// RequireSession rejects requests when no seller session is active. On
// success the seller ID is stored in context and added to the request-scoped
// logger.
func RequireSession(resolve SessionResolver, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sellerID, err := resolve(r.Context())
			if err != nil {
				httputil.WriteError(w, r, err, fallback)
				return
			}
			if sellerID == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("seller is not logged in"), fallback)
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("seller.id", sellerID))
			ctx := logger.WithSellerID(r.Context(), sellerID)
			ctx = logger.NewContext(ctx, logger.FromContext(r.Context()).With(slog.String("seller_id", sellerID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
