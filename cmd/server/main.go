package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/suitability/internal/application/service"
	"github.com/turtacn/suitability/internal/config"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/infrastructure/audit"
	"github.com/turtacn/suitability/internal/infrastructure/consumers"
	"github.com/turtacn/suitability/internal/infrastructure/monitoring"
	"github.com/turtacn/suitability/internal/interfaces/http"
	"github.com/turtacn/suitability/internal/interfaces/http/handlers"
	"github.com/turtacn/suitability/pkg/logger"
)

// configFileEnv names an explicit config file; unset searches the default locations.
const configFileEnv = "SUITABILITY_CONFIG_FILE"

func main() {
	// Load config
	loader := config.NewLoader(os.Getenv(configFileEnv))
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, loader, cfg, appLogger); err != nil {
		appLogger.Fatal(context.Background(), "Server exited with error", err)
	}
	appLogger.Info(context.Background(), "Server stopped")
}

func run(ctx context.Context, loader *config.Loader, cfg *config.Config, appLogger *monitoring.ZapLogger) error {
	// Log level follows config file edits
	loader.Watch(appLogger, func(next *config.Config) {
		if err := appLogger.SetLevel(next.Log.Level); err != nil {
			appLogger.Warn(context.Background(), "Ignoring invalid log level", logger.String("level", next.Log.Level))
		}
	})

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetricsAdapter(monitoring.NewMetrics(registry))

	// Initialize the tenant configuration store
	store, err := openStore(ctx, cfg, metrics, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Change events go to Kafka and, on the database backend, to the history table
	var publishers audit.MultiPublisher
	var history appservice.HistoryReader
	if cfg.Kafka.Enabled {
		publishers = append(publishers, audit.NewKafkaProducer(cfg.Kafka, appLogger))
	}
	if store.db != nil {
		auditSvc, err := audit.NewGormAuditService(ctx, store.db.DB())
		if err != nil {
			return err
		}
		publishers = append(publishers, auditSvc)
		history = auditSvc
	}
	var publisher service.EventPublisher = service.NewNoopEventPublisher()
	if len(publishers) > 0 {
		publisher = publishers
	}
	defer func() { _ = publisher.Close() }()

	// Initialize application services
	configs := appservice.NewTenantConfigService(store.repo, appLogger,
		appservice.WithStrictValidation(cfg.Store.StrictValidation),
		appservice.WithEventPublisher(publisher),
		appservice.WithMetrics(metrics),
	)
	if err := configs.Seed(ctx); err != nil {
		return err
	}
	risk := appservice.NewRiskProfileService(configs, metrics, tracing.Tracer(), appLogger)

	// Initialize HTTP handlers and router
	router := http.NewRouter(cfg, appLogger, tracing.Tracer(), metrics, registry,
		handlers.NewHealthHandler(store.checks, appLogger),
		handlers.NewRiskHandler(risk, appLogger),
		handlers.NewTenantConfigHandler(configs, history, appLogger),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return router.Stop(shutdownCtx)
	})

	// Other replicas' writes evict this replica's cache
	if cfg.Kafka.Enabled && cfg.Kafka.ConsumeInvalidations && store.cache != nil {
		consumer := consumers.NewConfigEventConsumer(cfg.Kafka, instanceID(), store.cache, tracing, appLogger)
		g.Go(func() error { return consumer.Run(gctx) })
	}

	return g.Wait()
}

func instanceID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host + "-" + uuid.NewString()[:8]
	}
	return uuid.NewString()
}
