package main

import (
	"context"
	"errors"
	"log/slog"
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

	"signdesk/docs"
	"signdesk/internal/config"
	"signdesk/internal/database"
	"signdesk/internal/database/migration"
	handlers "signdesk/internal/http/handler"
	"signdesk/internal/http/middleware"
	"signdesk/internal/logging"
	"signdesk/internal/notify"
	"signdesk/internal/otel"
	"signdesk/internal/pdf"
	"signdesk/internal/repository/postgres"
	"signdesk/internal/service"
	"signdesk/internal/storage"
)

// @title SignDesk API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logging.New(cfg.Log, cfg.Location())
	slog.SetDefault(log)
	log.Info("app_starting", "app_host", cfg.AppHost, "storage_driver", cfg.Storage.Driver)
	if cfg.Auth.JWTSecret == "" {
		log.Error("app_config_invalid", "error_message", "JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("tracing_init_failed", "error_message", err.Error())
		os.Exit(1)
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Error("database_connect_failed", "error_message", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		os.Exit(1)
	}

	// Initialize object storage using the configured driver
	objStore, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("storage_init_failed", "error_message", err.Error())
		os.Exit(1)
	}

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("metrics_init_failed", "error_message", err.Error())
		os.Exit(1)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("metrics_init_failed", "error_message", err.Error())
		os.Exit(1)
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	sigRepo := postgres.NewSignaturePostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)

	authz := service.NewAuthorizer(docRepo)
	auditSvc := service.NewAuditService(auditRepo, authz, log)
	svc := handlers.Services{
		Documents:  service.NewDocumentService(objStore, docRepo, authz, cfg.MaxUploadSize, log),
		Signatures: service.NewSignatureService(docRepo, sigRepo, authz, auditSvc, metrics, log),
		Finalize:   service.NewFinalizeService(objStore, sigRepo, authz, pdf.NewPDFCPU(), auditSvc, metrics, cfg.Storage.PresignExpiry, log),
		Links: service.NewLinkService(docRepo, objStore, authz, notify.New(cfg.SMTP, log), auditSvc,
			cfg.PublicBaseURL, cfg.Storage.PresignExpiry, log),
		Audit: auditSvc,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Multipart framing needs headroom above the file itself
		BodyLimit: int(cfg.MaxUploadSize) + 1<<20,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, svc, middleware.Authenticate([]byte(cfg.Auth.JWTSecret)))

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
		log.Info("app_stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("http_shutdown_failed", "error_message", err.Error())
		}
		if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.Error("tracing_shutdown_failed", "error_message", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Error("app_listen_failed", "addr", addr, "error_message", err.Error())
		os.Exit(1)
	}
}
