package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"giftregistry/internal/app"
	"giftregistry/internal/metrics"
	"giftregistry/internal/ratelimit"
	"giftregistry/internal/util"
	"giftregistry/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	// Optional rate limiters. Auth covers register/login/refresh, Claim
	// covers the public mark-bought endpoint. Nil disables the limit.
	AuthLimiter  *ratelimit.FixedWindowLimiter
	ClaimLimiter *ratelimit.FixedWindowLimiter

	// TrustedProxies controls when forwarded headers are honored for the
	// client IP used as rate-limit key.
	TrustedProxies *util.TrustedProxies
}

// Server exposes the gift-registry HTTP API.
type Server struct {
	app            *app.App
	router         chi.Router
	authLimiter    *ratelimit.FixedWindowLimiter
	claimLimiter   *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:            cfg.App,
		router:         chi.NewRouter(),
		authLimiter:    cfg.AuthLimiter,
		claimLimiter:   cfg.ClaimLimiter,
		trustedProxies: cfg.TrustedProxies,
	}
	s.routes()
	return s
}

// Router returns the configured handler with the middleware stack applied.
func (s *Server) Router() http.Handler {
	var handler http.Handler = s.router
	handler = withHTTPMetrics(handler)
	handler = util.WithRequestLog("giftregistry", handler)
	handler = util.WithSecurityHeaders(handler)
	handler = util.WithCORS(handler)
	handler = util.WithRequestID(handler)
	return handler
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.With(s.rateLimited(s.authLimiter)).Post("/register", s.handleRegister)
		r.With(s.rateLimited(s.authLimiter)).Post("/login", s.handleLogin)
		r.With(s.rateLimited(s.authLimiter)).Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.authenticated(s.handleLogout))
		r.Get("/me", s.authenticated(s.handleMe))
		r.Put("/profile", s.authenticated(s.handleUpdateProfile))
		r.Put("/password", s.authenticated(s.handleChangePassword))
	})

	s.router.Route("/lists", func(r chi.Router) {
		r.Get("/", s.authenticated(s.handleLists))
		r.Post("/", s.authenticated(s.handleCreateList))
		r.Get("/global", s.authenticated(s.handleGlobalGifts))
		r.Patch("/global/gifts/reorder", s.authenticated(s.handleReorderGlobal))
		r.Get("/{id}", s.authenticated(s.handleGetList))
		r.Put("/{id}", s.authenticated(s.handleUpdateList))
		r.Delete("/{id}", s.authenticated(s.handleDeleteList))
		r.Post("/{listaId}/gifts", s.authenticated(s.handleCreateGift))
		r.Patch("/{listaId}/gifts/reorder", s.authenticated(s.handleReorderList))
	})

	s.router.Route("/gifts", func(r chi.Router) {
		r.Put("/{id}", s.authenticated(s.handleUpdateGift))
		r.Delete("/{id}", s.authenticated(s.handleDeleteGift))
	})

	s.router.Route("/public", func(r chi.Router) {
		r.Get("/lists/{slug}", s.handlePublicList)
		r.Get("/global/{hashId}", s.handlePublicGlobal)
		r.With(s.rateLimited(s.claimLimiter)).Post("/gifts/{id}/mark-bought", s.handleClaimGift)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authHandler is an authenticated endpoint receiving the resolved caller.
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Token não fornecido")
			return
		}
		user, ok := s.app.UserFromToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		next(w, r, user)
	}
}

func (s *Server) rateLimited(limiter *ratelimit.FixedWindowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(util.ClientIP(r, s.trustedProxies)) {
				writeError(w, http.StatusTooManyRequests, "Muitas requisições, tente novamente em instantes")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
