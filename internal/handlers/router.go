// Package handlers exposes the HTTP surface of the API: the session
// endpoints plus CRUD for clientes, lotes, and usuarios, all JSON.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"lotear/internal/apierr"
	"lotear/internal/auth"
	"lotear/internal/version"
)

// RouterOptions carries the dependencies of the HTTP layer.
type RouterOptions struct {
	DB             *gorm.DB
	Auth           *auth.Service
	AllowedOrigins []string
	Debug          bool
}

type handler struct {
	db    *gorm.DB
	auth  *auth.Service
	debug bool
}

// Router builds the HTTP router: health, readiness, metrics, and the
// /api subtree. Every /api response, including 404 and 405, is JSON.
func Router(opts RouterOptions) http.Handler {
	h := &handler{db: opts.DB, auth: opts.Auth, debug: opts.Debug}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(100, time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, apierr.NotFound(""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, apierr.MethodNotAllowed())
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", h.ready)

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", h.login)
		api.Post("/auth/refresh", h.refresh)

		api.Group(func(priv chi.Router) {
			priv.Use(auth.RequireAuth(opts.Auth))

			priv.Post("/auth/logout", h.logout)

			priv.Route("/clientes", func(rr chi.Router) {
				rr.Get("/", h.listClientes)
				rr.Post("/", h.createCliente)
				rr.Get("/{id}", h.getCliente)
				rr.Put("/{id}", h.putCliente)
				rr.Patch("/{id}", h.patchCliente)
				rr.Delete("/{id}", h.deleteCliente)
			})

			priv.Route("/lotes", func(rr chi.Router) {
				rr.Get("/", h.listLotes)
				rr.Post("/", h.createLote)
				rr.Get("/{id}", h.getLote)
				rr.Put("/{id}", h.putLote)
				rr.Patch("/{id}", h.patchLote)
				rr.Delete("/{id}", h.deleteLote)
			})

			priv.Route("/usuarios", func(rr chi.Router) {
				rr.Get("/", h.listUsuarios)
				rr.Post("/", h.createUsuario)
				rr.Get("/{id}", h.getUsuario)
				rr.Put("/{id}", h.putUsuario)
				rr.Patch("/{id}", h.patchUsuario)
				rr.Delete("/{id}", h.deleteUsuario)
			})
		})
	})

	return otelhttp.NewHandler(r, version.Name)
}

func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
