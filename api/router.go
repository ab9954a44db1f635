// Package api assembles the HTTP surface of the planning service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/crewplan/api/audit"
	"github.com/kilianp07/crewplan/api/planning"
	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/store"
)

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds what the router serves. Audit, Health and Metrics are optional.
type Deps struct {
	Runner  planning.Runner
	Audit   store.AuditReader
	Health  Pinger
	Metrics http.Handler
	// Token, when set, is required as "Bearer <token>" on /api routes.
	Token string
	Log   logger.Logger
}

// NewRouter returns the chi router.
func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = promhttp.Handler()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(d.Health))
	r.Method(http.MethodGet, "/metrics", d.Metrics)

	r.Route("/api/v1/tenants/{tenantID}", func(r chi.Router) {
		r.Use(bearerAuth(d.Token))
		r.Method(http.MethodPost, "/planning-runs", planning.NewRunHandler(d.Runner, d.Log))
		if d.Audit != nil {
			r.Method(http.MethodGet, "/audit", audit.NewLogHandler(d.Audit))
		}
	})
	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{"ok": true, "time": time.Now().UTC()}
		code := http.StatusOK
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				status["ok"] = false
				status["db"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
