package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/shared/metrics"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Handler      *Handler
	Authorizer   *middleware.Authorizer
	RateLimiter  *middleware.RateLimiter
	Whitelist    *middleware.OriginWhitelist
	Metrics      *metrics.Metrics
	Logger       *zerolog.Logger
	MaxBodyBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(cfg.Metrics.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.Whitelist, cfg.Logger))
		r.Use(chimiddleware.RequestSize(cfg.MaxBodyBytes))

		// authed wraps a handler with token lookup and the live session check.
		authed := func(r chi.Router) chi.Router {
			return r.With(cfg.Authorizer.Authorize, cfg.Authorizer.RequireLiveSession)
		}

		r.Route("/auth", func(r chi.Router) {
			r.Get("/", h.AuthStatus)
			r.With(cfg.RateLimiter.Handler).Post("/register", h.Register)
			r.Get("/verify/{token}", h.Verify)
			r.With(cfg.RateLimiter.Handler).Post("/login", h.Login)
			authed(r).Post("/logout", h.Logout)
		})

		authed(r).Post("/user", h.Profile)

		r.Route("/link/{provider}", func(r chi.Router) {
			authed(r).Post("/", h.LinkURL)
			r.Get("/callback", h.LinkCallback)
		})

		authed(r).
			With(middleware.RequireRole(middleware.AnyOf(model.RoleMember))).
			Post("/debug", h.Debug)

		r.Route("/games", func(r chi.Router) {
			r.Get("/{gameId}", h.GetGame)
			authed(r).
				With(middleware.RequireRole(middleware.AnyOf(model.RoleDeveloper, model.RoleAdmin))).
				Post("/", h.UpsertGame)
		})
	})

	return r
}
