package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gymfit/api-server-go/handlers"
	"github.com/gymfit/api-server-go/middleware"
	"github.com/gymfit/api-server-go/pkg/monitoring"
	"github.com/gymfit/api-server-go/services"
	"github.com/gymfit/api-server-go/shared/utils"
)

func main() {
	// Load .env if present; real deployments inject environment directly
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	utils.SetupLogging(
		utils.GetEnvOrDefault("LOG_FORMAT", "json"),
		utils.GetEnvOrDefault("LOG_LEVEL", "info"),
	)

	ctx := context.Background()

	shutdownMetrics, err := monitoring.Setup(ctx, monitoring.Config{
		ServiceName: "gymfit-api-server",
		ResourceAttrs: map[string]string{
			"deployment.environment": utils.GetEnvOrDefault("ENVIRONMENT", "development"),
		},
	})
	if err != nil {
		slog.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Error("Failed to shut down metrics", "error", err)
		}
	}()

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET_KEY environment variable is required")
		os.Exit(1)
	}
	tokenExpiry := time.Duration(utils.GetEnvIntOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute

	dbConfig := NewDatabaseConfig()
	db, err := ConnectDB(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := GracefulShutdown(db); err != nil {
			slog.Error("Database shutdown failed", "error", err)
		}
	}()

	if utils.GetEnvOrDefault("RUN_MIGRATION", "false") == "true" {
		if err := MigrateDatabase(db); err != nil {
			slog.Error("Database migration failed", "error", err)
			os.Exit(1)
		}
	}

	if utils.GetEnvOrDefault("RUN_SEED", "false") == "true" {
		if err := SeedDatabase(db); err != nil {
			slog.Error("Database seeding failed", "error", err)
			os.Exit(1)
		}
	}

	authService := services.NewAuthService(db, jwtSecret, tokenExpiry)
	apiServer := handlers.NewAPIServer(db, authService)

	jwtAuth, err := middleware.NewJWTAuthMiddleware(middleware.JWTAuthConfig{
		Secret: jwtSecret,
		SkipPathPrefixes: []string{
			"/health",
			"/metrics",
			"/auth/login",
			"/check_access",
		},
	})
	if err != nil {
		slog.Error("Failed to initialize JWT middleware", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	apiServer.SetupRoutes(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.Handle("/metrics", monitoring.Handler())

	corsMiddleware := middleware.NewCORSMiddleware(utils.GetEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"))

	var handler http.Handler = mux
	handler = jwtAuth.AuthenticateJWT(handler)
	handler = monitoring.HTTPMetricsMiddleware(handler)
	handler = middleware.RequestLogging(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = corsMiddleware(handler)

	port := utils.GetEnvOrDefault("PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
