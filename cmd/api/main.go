package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/cloudevents"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/kafka"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/middleware"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/mongodb"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/outbox"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/tracing"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/api/handlers"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/application"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/broadcast"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
	mongoRepo "github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/infrastructure/mongodb"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/infrastructure/warehouse"
)

const serviceName = "readiness-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting readiness-service API")

	config := loadConfig()
	ctx := context.Background()

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory("/readiness-service")

	db := mongoClient.Database()
	personnelRepo := mongoRepo.NewPersonnelRepository(db, eventFactory, m)
	unitRepo := mongoRepo.NewUnitRepository(db, eventFactory, m)
	assignmentRepo := mongoRepo.NewAssignmentRepository(db, eventFactory, m)
	certificationRepo := mongoRepo.NewCertificationRepository(db, m)

	var sink domain.ReadinessSink
	var influxSink *warehouse.InfluxSink
	if config.Influx.URL != "" {
		influxSink = warehouse.NewInfluxSink(config.Influx)
		defer influxSink.Close()
		sink = influxSink
		logger.Info("InfluxDB sink initialized", "url", config.Influx.URL, "bucket", config.Influx.Bucket)
	} else {
		sink = warehouse.NewNoopSink()
		logger.Warn("No InfluxDB configured, readiness history disabled")
	}

	outboxPublisher := outbox.NewPublisher(
		personnelRepo.GetOutboxRepository(),
		producer.Underlying(),
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	readinessService := application.NewReadinessApplicationService(
		unitRepo,
		personnelRepo,
		assignmentRepo,
		sink,
		producer,
		eventFactory,
		m,
		logger,
	)

	// Initialize and start the broadcast hub, fed by the readiness service
	hub := broadcast.NewHub(
		broadcast.ReportSourceFunc(func(ctx context.Context, unitID string) (*domain.ReadinessReport, error) {
			return readinessService.GetUnitReadiness(ctx, application.GetUnitReadinessQuery{UnitID: unitID})
		}),
		m,
		logger,
	)
	if err := hub.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start broadcast hub")
		os.Exit(1)
	}
	defer hub.Stop()
	logger.Info("Broadcast hub started")

	rosterService := application.NewRosterApplicationService(
		personnelRepo,
		unitRepo,
		assignmentRepo,
		hub,
		m,
		logger,
	)
	certificationService := application.NewCertificationApplicationService(
		certificationRepo,
		personnelRepo,
		assignmentRepo,
		hub,
		producer,
		eventFactory,
		m,
		logger,
	)

	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))

	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		if err := mongoClient.HealthCheck(ctx); err != nil {
			return err
		}
		if influxSink != nil {
			return influxSink.HealthCheck(ctx)
		}
		return nil
	}))

	router.GET("/metrics", middleware.MetricsEndpoint(m))

	apiV1 := router.Group("/api/v1")

	handlers.NewPersonnelHandlers(rosterService, logger).RegisterRoutes(apiV1)
	handlers.NewUnitHandlers(rosterService, logger).RegisterRoutes(apiV1)
	handlers.NewAssignmentHandlers(rosterService, logger).RegisterRoutes(apiV1)
	handlers.NewReadinessHandlers(readinessService, logger).RegisterRoutes(apiV1)
	handlers.NewCertificationHandlers(certificationService, logger).RegisterRoutes(apiV1)

	handlers.NewWebsocketHandlers(hub, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config is assembled from the environment at startup.
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
	Influx     warehouse.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "readiness_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: serviceName,
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
		},
		Influx: warehouse.Config{
			URL:    getEnv("INFLUXDB_URL", ""),
			Token:  getEnv("INFLUXDB_TOKEN", ""),
			Org:    getEnv("INFLUXDB_ORG", "readiness"),
			Bucket: getEnv("INFLUXDB_BUCKET", "unit_readiness"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
