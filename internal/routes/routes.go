package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/userdesk/internal/auth"
	"github.com/BradenHooton/userdesk/internal/handlers"
	middlewareCustom "github.com/BradenHooton/userdesk/internal/middleware"
	"github.com/BradenHooton/userdesk/internal/models"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Dependencies are the components the router wires together
type Dependencies struct {
	UserHandler        *handlers.UserHandler
	AuthHandler        *handlers.AuthHandler
	TokenManager       *auth.TokenManager
	Principals         auth.PrincipalLoader
	DB                 handlers.Pinger
	HTTPMetrics        *middlewareCustom.HTTPMetrics
	MetricsHandler     http.Handler
	IPResolver         *pkghttp.IPResolver
	LoginRatePerMinute int
	Env                string
	Logger             *slog.Logger
}

// NewRouter builds the application router with its global middleware
func NewRouter(deps Dependencies) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.StripSlashes)
	router.Use(middlewareCustom.SecurityHeaders(deps.Env))
	router.Use(middlewareCustom.SecureLogger(deps.Logger))
	if deps.HTTPMetrics != nil {
		router.Use(deps.HTTPMetrics.Middleware)
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	RegisterRoutes(router, deps)
	return router
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, deps Dependencies) {
	// Public routes
	router.Get("/health", handlers.Health(deps.DB, deps.Logger))
	if deps.MetricsHandler != nil {
		router.Handle("/metrics", deps.MetricsHandler)
	}
	router.With(middlewareCustom.RateLimitByIP(deps.LoginRatePerMinute, deps.IPResolver)).
		Post("/auth/login", deps.AuthHandler.Login)

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(deps.TokenManager, deps.Principals, deps.Logger))

		r.With(auth.RequireAuthority(models.RoleUser)).Get("/whoami", handlers.WhoAmI)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuthority(models.RoleUser, models.RoleAdmin))
			deps.UserHandler.RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuthority(models.RoleAdmin))
			deps.UserHandler.RegisterAdminRoutes(r)
		})
	})
}
