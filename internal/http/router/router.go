// Package router wires the handlers onto a chi router.
//
// Route table:
//
//	POST /api/users                 register a user
//	GET  /api/users                 list users (?q=, ?order=asc|desc)
//	GET  /api/users/{id}            one user
//	POST /api/form/validate         validate the whole form
//	POST /api/form/fields/{field}   validate one field
//	GET  /api/form/errors           errors mirrored for the form session
//	GET  /metrics                   Prometheus exposition
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/http/handlers/forms"
	"github.com/aanand-mishra/registration-api/internal/http/handlers/user"
)

// New returns the application handler. gatherer backs /metrics.
func New(deps handlers.Deps, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", user.New(deps))
			r.Get("/", user.GetList(deps))
			r.Get("/{id}", user.GetByID(deps))
		})
		r.Route("/form", func(r chi.Router) {
			r.Post("/validate", forms.Validate(deps))
			r.Post("/fields/{field}", forms.Field(deps))
			r.Get("/errors", forms.Errors(deps))
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// requestLogger logs one line per request through log.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
