package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogitters/apcimap/api"
	"github.com/gogitters/apcimap/internal/authz"
	"github.com/gogitters/apcimap/internal/config"
	"github.com/gogitters/apcimap/internal/handler"
	"github.com/gogitters/apcimap/internal/logging"
	"github.com/gogitters/apcimap/internal/middleware"
	"github.com/gogitters/apcimap/internal/repository"
	"github.com/gogitters/apcimap/internal/service"
	"github.com/gogitters/apcimap/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	_, logCloser := logging.Init("apcimap-api", cfg.LogLevel, cfg.AppEnv, cfg.LogFile)
	defer logCloser.Close()

	ctx := context.Background()

	pool, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := session.ConnectRedis(ctx, session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Timeout:  cfg.RedisTimeout,
	})
	if err != nil {
		slog.Error("failed to connect to session store", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	db := repository.NewDB(pool)
	userRepo := repository.NewUserRepository(db)
	starRepo := repository.NewStarRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.PublicURL)
	userSvc := service.NewUserService(userRepo)
	starSvc := service.NewStarService(starRepo)

	pipeline := authz.NewPipeline(cfg.JWTSecret, cfg.CookieSecure)
	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)

	authHandler := handler.NewAuthHandler(authSvc, pipeline)
	userHandler := handler.NewUserHandler(userSvc, pipeline)
	starHandler := handler.NewStarHandler(starSvc, pipeline)
	propertyHandler := handler.NewPropertyHandler(propertyRepo, starSvc, pipeline)
	healthHandler := handler.NewHealthHandler(db, sessions)

	routes := http.NewServeMux()
	routes.Handle("/user", userHandler)
	routes.Handle("/star", starHandler)
	routes.Handle("/property", propertyHandler)
	routes.HandleFunc("/sign-up", authHandler.SignUp)
	routes.HandleFunc("/sign-in", authHandler.SignIn)
	routes.HandleFunc("/sign-out", authHandler.SignOut)
	routes.HandleFunc("/activation", authHandler.Activate)

	var apiChain http.Handler = routes
	apiChain = middleware.Metrics(apiChain)
	apiChain = middleware.Recovery(apiChain)
	apiChain = middleware.Logging(apiChain)
	apiChain = middleware.Session(sessions, middleware.SessionConfig{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})(apiChain)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", healthHandler.Liveness)
	root.HandleFunc("GET /ready", healthHandler.Readiness)
	root.Handle("GET /metrics", promhttp.Handler())
	root.HandleFunc("GET /docs", handler.ServeDocs("/docs/openapi.yaml"))
	root.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.OpenAPI))
	root.Handle("/", apiChain)

	var h http.Handler = root
	h = middleware.Tracing(h)
	h = middleware.MethodOverride(h)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
