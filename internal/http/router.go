package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookapi/internal/auth"
	"bookapi/internal/config"
	"bookapi/internal/http/handler"
	mw "bookapi/internal/http/middleware"
	"bookapi/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, stores *store.Stores, jwtSvc *auth.JWT, hasher *auth.Hasher, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	metrics := mw.NewMetrics()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Instrument)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is up"))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := stores.Ping(ctx); err != nil {
			log.Warn("health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	requireAuth := auth.RequireAuth(jwtSvc, stores.Users, stores.Denylist, log)

	ah := &handler.AuthHandler{
		Users:    stores.Users,
		Denylist: stores.Denylist,
		JWT:      jwtSvc,
		Hasher:   hasher,
		Log:      log,
	}
	me := &handler.MeHandler{}

	r.Route("/user", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(mw.NewRateLimiter("/user", cfg.RateLimitPerMinute, metrics).Handler)
		}
		r.Post("/signup", ah.Signup)
		r.Post("/login", ah.Login)
		r.Post("/logout", ah.Logout)
		r.With(requireAuth).Get("/me", me.Me)
	})

	bh := &handler.BookHandler{Books: stores.Books, Log: log}

	r.Route("/book", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", bh.List)
		r.Post("/", bh.Create)
		r.Get("/author/{author}", bh.ByAuthor)
		r.Get("/publicationYear/{publicationYear}", bh.ByYear)
		r.Put("/{id}", bh.Update)
		r.Delete("/{id}", bh.Delete)
	})

	return r
}
