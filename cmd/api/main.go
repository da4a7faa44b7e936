package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentdesk/internal/api"
	"rentdesk/internal/config"
	"rentdesk/internal/database"
	"rentdesk/internal/domain"
	"rentdesk/internal/events"
	"rentdesk/internal/logging"
	"rentdesk/internal/metrics"
	"rentdesk/internal/models"
	"rentdesk/internal/repository"
	"rentdesk/internal/service"
	"rentdesk/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	items, err := loadItems(cfg, &logger)
	if err != nil {
		return err
	}

	db, err := initDatabase(cfg, items, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, cache := initCache(cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	eventBus := events.NewEventBus()

	exportSvc := service.NewExportService(db, cfg.Exports.Path, &logger)
	exportWorker := worker.NewExportWorker(exportSvc, worker.RetryPolicy{}, &logger)

	bookingSvc := service.NewBookingService(
		db, cache, eventBus, exportWorker,
		time.Duration(cfg.Booking.CacheTTLSeconds)*time.Second,
		&logger,
	)
	itemSvc := service.NewItemService(db, &logger)

	httpServer := api.NewHTTPServer(cfg.API, cfg.Shop.ID, bookingSvc, itemSvc, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go exportWorker.Start(ctx)
	go database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger).Start(ctx)
	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadItems prefers a standalone items file when ITEMS_PATH is set, falling
// back to the items block of the main config.
func loadItems(cfg *config.Config, logger *zerolog.Logger) ([]models.Item, error) {
	itemsPath := os.Getenv("ITEMS_PATH")
	if itemsPath == "" {
		return cfg.Items, nil
	}

	itemsData, err := os.ReadFile(itemsPath)
	if err != nil {
		logger.Error().Err(err).Str("items_path", itemsPath).Msg("read items")
		return nil, err
	}

	var itemsConfig struct {
		Items []models.Item `yaml:"items"`
	}
	if err := yaml.Unmarshal(itemsData, &itemsConfig); err != nil {
		logger.Error().Err(err).Str("items_path", itemsPath).Msg("parse items")
		return nil, err
	}
	if err := config.ValidateItems(itemsConfig.Items); err != nil {
		return nil, fmt.Errorf("validate items: %w", err)
	}

	return itemsConfig.Items, nil
}

func initDatabase(cfg *config.Config, items []models.Item, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	shop := models.Shop{ID: cfg.Shop.ID, Name: cfg.Shop.Name, Timezone: cfg.Shop.Timezone}
	if err := db.Seed(context.Background(), shop, cfg.Shop.WalkInCustomer, items); err != nil {
		logger.Error().Err(err).Msg("seed database")
		db.Close()
		return nil, err
	}
	return db, nil
}

// initCache wires the availability cache: Redis fronted by an in-memory
// fallback when enabled and reachable, plain in-memory otherwise.
func initCache(cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.AvailabilityCache) {
	memory := repository.NewMemoryAvailabilityCache()

	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil, memory
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, using in-memory cache")
		_ = repository.Close(redisClient)
		return nil, memory
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	primary := repository.NewRedisAvailabilityCache(redisClient)
	return redisClient, repository.NewFailoverAvailabilityCache(primary, memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
