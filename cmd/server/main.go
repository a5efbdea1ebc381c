package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stone_sales/internal/config"
	"stone_sales/internal/database"
	"stone_sales/internal/events"
	"stone_sales/internal/handlers"
	"stone_sales/internal/migrations"
	"stone_sales/internal/observability"
	"stone_sales/internal/redis"
	"stone_sales/internal/repository"
	"stone_sales/internal/services"
	"stone_sales/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}

	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(ctx, db, cfg.SeedAdminUsername, cfg.SeedAdminPassword, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient, err := redis.Initialize(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	store := repository.NewStore(db)

	var publishers events.MultiPublisher
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		publishers = append(publishers, kafkaPublisher)
		logger.Info("publishing order events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	if cfg.WhatsAppEnabled() {
		sender := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
		publishers = append(publishers, events.NewCustomerNotifier(sender, store.Customers()))
		logger.Info("whatsapp customer notifications enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := services.Dependencies{
		Store:   store,
		Events:  publishers,
		Metrics: observability.NewMetrics(registry),
		Logger:  logger,
	}

	apiHandler := handlers.NewAPIHandler(handlers.Services{
		Orders:       services.NewOrderService(deps),
		CustomOrders: services.NewCustomOrderService(deps),
		Catalog:      services.NewCatalogService(deps),
		Employees:    services.NewEmployeeService(deps),
		Accounts:     services.NewAccountService(deps, redisClient, cfg.SessionTTL),
	}, logger)
	router := handlers.NewRouter(apiHandler, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("failed to close kafka writer", zap.Error(err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", zap.Error(err))
	}
}
