package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hisapi/docs"
	"hisapi/internal/auth"
	"hisapi/internal/cache"
	"hisapi/internal/config"
	"hisapi/internal/database"
	"hisapi/internal/database/migration"
	"hisapi/internal/events"
	"hisapi/internal/google"
	handlers "hisapi/internal/http/handler"
	"hisapi/internal/http/middleware"
	"hisapi/internal/logger"
	tracing "hisapi/internal/otel"
	"hisapi/internal/repository/postgres"
	"hisapi/internal/service"
	"hisapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Hospital Information System API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger.Component(log, "tracing"))
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	// PostgreSQL pool (database/sql on pgx, traced by otelsql)
	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	kv := cache.NewRedisCache(redisClient)

	// S3-compatible object storage for export files
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return err
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka, logger.Component(log, "events"))
	defer publisher.Close()

	tokens, err := auth.NewJWTIssuer(cfg.JWT)
	if err != nil {
		return err
	}
	log.Info("session tokens configured", zap.Duration("ttl", tokens.TTL()))
	verifier := google.NewCachedVerifier(
		google.NewTokenInfoVerifier(cfg.Google),
		kv,
		cfg.Google.VerifyCacheTTL,
		logger.Component(log, "google"),
	)

	// Repositories
	users := postgres.NewUserPostgres(db)
	messages := postgres.NewMessagePostgres(db)
	notifications := postgres.NewNotificationPostgres(db)
	complaints := postgres.NewComplaintPostgres(db)
	conventions := postgres.NewInsuranceConventionPostgres(db)
	interventions := postgres.NewInterventionTypePostgres(db)
	exports := postgres.NewExportRecordPostgres(db)
	integrations := postgres.NewIntegrationRecordPostgres(db)
	reports := postgres.NewCustomReportPostgres(db)

	sources := service.Sources{
		Messages:             messages,
		Notifications:        notifications,
		Complaints:           complaints,
		InsuranceConventions: conventions,
		InterventionTypes:    interventions,
		IntegrationRecords:   integrations,
	}
	svcLog := logger.Component(log, "service")
	services := handlers.Services{
		Auth:                 service.NewAuthService(users, verifier, google.NewOAuthClient(cfg.Google), tokens, svcLog),
		Messages:             service.NewMessageService(messages),
		Notifications:        service.NewNotificationService(notifications, kv, svcLog),
		Complaints:           service.NewComplaintService(complaints),
		InsuranceConventions: service.NewInsuranceConventionService(conventions),
		InterventionTypes:    service.NewInterventionTypeService(interventions),
		Exports:              service.NewExportService(exports, sources, objStore, svcLog),
		IntegrationRecords:   service.NewIntegrationRecordService(integrations, publisher, svcLog),
		CustomReports:        service.NewCustomReportService(reports, sources),
	}

	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	loginMetrics, err := handlers.NewLoginMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger.Component(log, "http")))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:           db,
		Services:     services,
		Authenticate: middleware.JWTAuth(tokens),
		LoginMetrics: loginMetrics,
		Log:          logger.Component(log, "http"),
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server shutdown", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr))
	return app.Listen(addr)
}
