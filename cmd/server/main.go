package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/handlers"
	"github.com/asakaida/terastore/internal/infrastructure/config"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/infrastructure/logger"
	"github.com/asakaida/terastore/internal/infrastructure/metrics"
	"github.com/asakaida/terastore/internal/repositories/sqlstore"
	"github.com/asakaida/terastore/internal/services"
	"github.com/asakaida/terastore/internal/services/filter"
	"github.com/asakaida/terastore/pkg/cache"
	"github.com/asakaida/terastore/pkg/cache/memorycache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	shutdownTimeout      = 30 * time.Second
	metricsUpdatePeriod  = 15 * time.Second
	httpReadHeaderPeriod = 10 * time.Second
)

var envFlag string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "TeraStore API server",
	Long: `TeraStore API server.
Serves the pulse and attribute HTTP API, a gRPC health service and Prometheus metrics.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	env := os.Getenv("ENV")
	if env == "" {
		env = "dev"
	}
	rootCmd.Flags().StringVarP(&envFlag, "env", "e", env, "Environment to use (dev, test, prod)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Initialize configuration
	if err := config.InitConfig(envFlag); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Connect to database
	store, err := database.NewStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("error closing database connection", zap.Error(err))
		}
	}()
	log.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := store.RunMigrations(ctx); err != nil {
			return err
		}
		log.Info("database migrations applied")
	}

	// Initialize metrics
	collector := metrics.NewCollector()
	exporter := metrics.NewPrometheusExporter(collector, nil)

	var keyCache cache.Cache[entities.DataType]
	if cfg.KeyCache.Enabled {
		c := memorycache.New[entities.DataType](&memorycache.Config{
			MaxEntries:    cfg.KeyCache.MaxEntries,
			EnableMetrics: true,
		})
		collector.SetCache(c)
		keyCache = c
		log.Info("key type cache enabled", zap.Int("max_entries", cfg.KeyCache.MaxEntries))
	}

	// Initialize repositories
	pulseRepo := sqlstore.NewPulseRepository(store)
	deviceRepo := sqlstore.NewDeviceRepository(store)
	registry := sqlstore.NewKeyRegistry(store)
	stores := sqlstore.NewAttributeStores(store)

	// Initialize services
	keys := services.NewKeyResolver(registry, keyCache)
	attributes := services.NewAttributeService(store, pulseRepo, registry, stores, keys, log.Named("attributes"))
	router := handlers.NewRouter(log.Named("http"), handlers.Services{
		Devices:    services.NewDeviceService(store, deviceRepo),
		Pulses:     services.NewPulseService(store, pulseRepo, deviceRepo, stores, attributes, log.Named("pulses")),
		Attributes: attributes,
		Filter:     filter.NewEngine(store, pulseRepo, stores, keys),
		Health:     store,
	}, collector, exporter)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: httpReadHeaderPeriod,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.MetricsPort)),
		Handler:           metricsMux,
		ReadHeaderTimeout: httpReadHeaderPeriod,
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor(collector, exporter)))
	healthpb.RegisterHealthServer(grpcServer, handlers.NewHealthServer(store, log.Named("health")))
	// Register reflection service (for grpcurl, etc.)
	reflection.Register(grpcServer)

	grpcListener, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.GRPCPort)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	serverErrors := make(chan error, 3)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		log.Info("metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()
	go func() {
		log.Info("gRPC health server listening", zap.String("addr", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			serverErrors <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	updateCtx, stopUpdates := context.WithCancel(ctx)
	defer stopUpdates()
	go updateMetrics(updateCtx, exporter)

	// Wait for shutdown signal or server error
	var runErr error
	select {
	case runErr = <-serverErrors:
		log.Error("server failed", zap.Error(runErr))
	case <-ctx.Done():
		log.Info("initiating graceful shutdown")
	}
	stopUpdates()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics server shutdown failed", zap.Error(err))
	}

	// Channel to notify when graceful stop completes
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		log.Info("server stopped gracefully")
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	}

	return runErr
}

// updateMetrics refreshes the cache gauges until ctx is done
func updateMetrics(ctx context.Context, exporter *metrics.PrometheusExporter) {
	ticker := time.NewTicker(metricsUpdatePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exporter.Update()
		}
	}
}
