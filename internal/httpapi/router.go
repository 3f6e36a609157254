// Package httpapi exposes the webhook endpoint over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	"github.com/nimafallahian/catalog-sync/internal/ports"
	"github.com/nimafallahian/catalog-sync/internal/service"
)

// maxBody bounds the size of an accepted webhook payload.
const maxBody = 8 << 20

// Options configures the router.
type Options struct {
	// RateLimit is the number of requests allowed per client IP per minute.
	// Zero disables rate limiting.
	RateLimit int
	Logger    *slog.Logger
}

// NewRouter wires the webhook handler and health probe.
func NewRouter(dispatcher ports.EventDispatcher, config service.IntegrationConfigFunc, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &webhookHandler{dispatcher: dispatcher, config: config, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]bool{"ok": true})
	})

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
		}
		r.Post("/", h.ServeHTTP)
		r.Post("/webhooks", h.ServeHTTP)
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
