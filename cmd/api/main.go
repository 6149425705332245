package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/userdesk/internal/auth"
	"github.com/BradenHooton/userdesk/internal/background"
	"github.com/BradenHooton/userdesk/internal/config"
	"github.com/BradenHooton/userdesk/internal/database"
	"github.com/BradenHooton/userdesk/internal/handlers"
	middlewareCustom "github.com/BradenHooton/userdesk/internal/middleware"
	"github.com/BradenHooton/userdesk/internal/repositories"
	"github.com/BradenHooton/userdesk/internal/routes"
	"github.com/BradenHooton/userdesk/internal/services"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
	pkglogger "github.com/BradenHooton/userdesk/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userRepo := repositories.NewUserRepository(db)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	auditLogger := pkglogger.NewAuditLogger(logger)
	ipResolver := pkghttp.NewIPResolver(cfg.Server.TrustedProxies)

	userService := services.NewUserService(userRepo, logger, auditLogger)
	authService := services.NewAuthService(userRepo, tokenManager, logger, auditLogger)

	if cfg.Bootstrap.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		cancel()
		if err != nil {
			logger.Error("failed to ensure admin user", slog.Any("error", err))
		}
	} else {
		logger.Info("admin bootstrap credentials not set, skipping admin user creation")
	}

	router := routes.NewRouter(routes.Dependencies{
		UserHandler:        handlers.NewUserHandler(userService),
		AuthHandler:        handlers.NewAuthHandler(authService, ipResolver),
		TokenManager:       tokenManager,
		Principals:         userRepo,
		DB:                 db,
		HTTPMetrics:        middlewareCustom.NewHTTPMetrics(registry),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		IPResolver:         ipResolver,
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
		Env:                cfg.Server.Env,
		Logger:             logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	statsCollector := background.NewStatsCollector(userRepo, registry, logger, cfg.Metrics.StatsInterval)
	statsCtx, statsCancel := context.WithCancel(context.Background())
	defer statsCancel()

	go statsCollector.Start(statsCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	statsCollector.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
