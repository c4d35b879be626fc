package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"financeapi/docs"
	"financeapi/internal/auth"
	"financeapi/internal/config"
	"financeapi/internal/database"
	"financeapi/internal/database/migration"
	handlers "financeapi/internal/http/handler"
	"financeapi/internal/http/middleware"
	"financeapi/internal/logger"
	"financeapi/internal/marketdata"
	"financeapi/internal/otel"
	"financeapi/internal/repository/postgres"
	"financeapi/internal/service"
	"financeapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Finance API
// @version 1.0
// @description 50/20/30 personal finance tracker.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		logger.L.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.L.Warn("tracing shutdown failed", "error", err)
		}
	}()

	dsn, err := database.DSN(cfg.Database)
	if err != nil {
		return err
	}
	if err := migration.EnsureMigrated(ctx, dsn, database.Host(cfg.Database)); err != nil {
		return err
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// Exports are disabled when MinIO is not configured.
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
	} else {
		logger.L.Warn("object storage not configured, exports disabled")
	}

	txm := postgres.NewTxManager(db)
	accountRepo := postgres.NewAccountPostgres(db)
	cardRepo := postgres.NewCardPostgres(db)
	debtRepo := postgres.NewDebtPostgres(db)
	subRepo := postgres.NewSubscriptionPostgres(db)
	movementRepo := postgres.NewMovementPostgres(db)
	fundRepo := postgres.NewFundPostgres(db)
	configRepo := postgres.NewUserConfigPostgres(db)

	market := marketdata.New(cfg.MarketData)
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.SessionMaxAge)

	movementSvc := service.NewMovementService(movementRepo, accountRepo, cardRepo, fundRepo, subRepo, txm)
	configSvc := service.NewUserConfigService(configRepo)
	services := handlers.Services{
		Auth:          auth.NewService(postgres.NewUserPostgres(db), tokens, cfg.Auth.BcryptCost),
		Accounts:      service.NewAccountService(accountRepo),
		Cards:         service.NewCardService(cardRepo, accountRepo),
		Debts:         service.NewDebtService(debtRepo, accountRepo, movementSvc, txm),
		Subscriptions: service.NewSubscriptionService(subRepo, cardRepo, accountRepo),
		Movements:     movementSvc,
		Funds:         service.NewFundService(fundRepo, market),
		Config:        configSvc,
		Reports:       service.NewReportService(configSvc, accountRepo, debtRepo, subRepo, movementRepo, fundRepo),
		Data: service.NewDataService(service.Repositories{
			Accounts:      accountRepo,
			Cards:         cardRepo,
			Debts:         debtRepo,
			Subscriptions: subRepo,
			Movements:     movementRepo,
			Funds:         fundRepo,
		}, configSvc, objStore, txm),
		Market: market,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    1 << 20,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggerWithWriter(os.Stdout, cfg.LogLevel))
	app.Use(metrics.Handler())
	app.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, services, handlers.CookieOptions{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure || cfg.IsProduction(),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("server starting", "addr", ":"+cfg.Port, "env", cfg.Environment)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
