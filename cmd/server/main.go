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
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	grievancehandler "civicdesk/internal/grievance/handler"
	grievanceservice "civicdesk/internal/grievance/service"
	identityhandler "civicdesk/internal/identity/handler"
	identitymetrics "civicdesk/internal/identity/metrics"
	identityservice "civicdesk/internal/identity/service"
	"civicdesk/internal/identity/token"
	mediahandler "civicdesk/internal/media/handler"
	mediametrics "civicdesk/internal/media/metrics"
	mediaservice "civicdesk/internal/media/service"
	"civicdesk/internal/platform/config"
	"civicdesk/internal/platform/httpserver"
	"civicdesk/internal/platform/logger"
	"civicdesk/internal/platform/metrics"
	"civicdesk/internal/platform/middleware"
	"civicdesk/pkg/platform/httputil"
	"civicdesk/pkg/platform/middleware/metadata"
	"civicdesk/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal module packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	tokens := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	grievanceSvc := grievanceservice.New(infra.grievances, infra.classifier,
		grievanceservice.WithLogger(log),
		grievanceservice.WithMetrics(infra.grievanceMetrics),
	)
	var grievanceOpts []grievancehandler.Option
	if cfg.Auth.RequireStaff {
		grievanceOpts = append(grievanceOpts, grievancehandler.WithStaffAuth(tokens))
	}

	identitySvc := identityservice.New(infra.accounts, tokens,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
	)

	mediaSvc := mediaservice.New(infra.queue, infra.objects, infra.fetcher, infra.bucket,
		mediaservice.WithLogger(log),
		mediaservice.WithMetrics(mediametrics.New()),
	)

	httpMetrics := metrics.New()
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log, httpMetrics))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.RequestLimit))
	r.Use(middleware.LatencyMiddleware(httpMetrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(infra))
	r.Handle("/metrics", promhttp.Handler())

	grievancehandler.New(grievanceSvc, log, grievanceOpts...).Register(r)
	identityhandler.New(identitySvc, log).Register(r)
	mediahandler.New(mediaSvc, log).Register(r)

	srv := httpserver.New(cfg.Addr, r, cfg.RequestLimit)

	log.Info("starting civicdesk", "addr", cfg.Addr, "store", cfg.Store)
	return httpserver.Run(ctx, srv, log, shutdownTimeout)
}

func healthHandler(infra *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := infra.Health(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
