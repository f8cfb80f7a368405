package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type httpMiddleware func(http.HandlerFunc) http.HandlerFunc

// adapt lets the HandlerFunc middleware of the slices sit in a chi chain.
func adapt(m httpMiddleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m(next.ServeHTTP)
	}
}

// baseContextMiddleware swaps the request context for one derived from
// baseCtx, so handlers observe server shutdown and carry the logger.
func baseContextMiddleware(baseCtx context.Context, logger *zap.Logger) httpMiddleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			baseCtx := core.WithLogger(baseCtx, logger)

			if v, ok := ctx.Value(http.ServerContextKey).(*http.Server); ok {
				baseCtx = context.WithValue(baseCtx, http.ServerContextKey, v)
			}

			if v, ok := ctx.Value(http.LocalAddrContextKey).(net.Addr); ok {
				baseCtx = context.WithValue(baseCtx, http.LocalAddrContextKey, v)
			}

			if rctx := chi.RouteContext(ctx); rctx != nil {
				baseCtx = context.WithValue(baseCtx, chi.RouteCtxKey, rctx)
			}

			next.ServeHTTP(w, r.WithContext(baseCtx))
		}
	}
}
