package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/outcome-content/pkg/config"
	"github.com/tendant/outcome-content/pkg/definitions"
	"github.com/tendant/outcome-content/pkg/definitions/api"
	"github.com/tendant/outcome-content/pkg/taxonomy"
)

// ProcessConfig holds settings for the server process itself. Service
// settings are read by config.WithEnv using EnvPrefix.
type ProcessConfig struct {
	EnvPrefix       string        `env:"OUTCOME_ENV_PREFIX" env-default:""`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" env-default:"text"`
	TaxonomyFile    string        `env:"TAXONOMY_FILE" env-default:""`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func main() {
	_ = godotenv.Load()

	var processConfig ProcessConfig
	if err := cleanenv.ReadEnv(&processConfig); err != nil {
		slog.Error("Failed to read process configuration", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(processConfig)
	if err != nil {
		slog.Error("Failed to configure logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	serverConfig, err := config.Load(config.WithEnv(processConfig.EnvPrefix))
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	groups := taxonomy.NewMemoryManager()
	if processConfig.TaxonomyFile != "" {
		if err := loadTaxonomy(groups, processConfig.TaxonomyFile); err != nil {
			slog.Error("Failed to load taxonomy", "file", processConfig.TaxonomyFile, "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	stack, err := serverConfig.Build(ctx,
		definitions.WithLogger(logger),
		definitions.WithMetrics(definitions.NewMetrics(prometheus.DefaultRegisterer)),
		definitions.WithTaxonomy(groups),
	)
	if err != nil {
		slog.Error("Failed to build service", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	if err := stack.Repository.Verify(ctx); err != nil {
		slog.Warn("Outcome definition container is missing", "error", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: newRouter(stack.Repository, serverConfig, processConfig, logger, prometheus.DefaultRegisterer),
	}

	go func() {
		slog.Info("Outcome definition server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.Storage.Type,
			"default_culture", serverConfig.DefaultCulture.String())

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), processConfig.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}

func newLogger(pc ProcessConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(pc.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", pc.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch pc.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: use 'text' or 'json'", pc.LogFormat)
	}
}

func loadTaxonomy(groups *taxonomy.MemoryManager, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return groups.Load(f)
}

// newRouter wires the health, metrics and definition API routes.
func newRouter(repo definitions.Repository, sc *config.ServerConfig, pc ProcessConfig, logger *slog.Logger, reg prometheus.Registerer) http.Handler {
	httpMetrics := api.NewHTTPMetrics(reg)
	handler := api.NewDefinitionHandler(repo, sc.DefaultCulture)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(api.RequestIDMiddleware)
	r.Use(api.LoggingMiddleware(logger))
	r.Use(api.RecoveryMiddleware)
	r.Use(httpMetrics.Middleware)

	// CORS for development
	if sc.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"status":      "healthy",
			"environment": sc.Environment,
		})
	})

	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(pc.RequestTimeout))
		r.Mount("/", handler.Routes())
	})

	return r
}
