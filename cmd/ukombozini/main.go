package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ukombozini/backoffice/internal/app"
	"github.com/ukombozini/backoffice/internal/boosters"
	"github.com/ukombozini/backoffice/internal/dashboard"
	"github.com/ukombozini/backoffice/internal/groups"
	"github.com/ukombozini/backoffice/internal/meetings"
	"github.com/ukombozini/backoffice/internal/members"
	"github.com/ukombozini/backoffice/internal/observability"
	"github.com/ukombozini/backoffice/internal/officers"
	"github.com/ukombozini/backoffice/internal/platform/db"
	"github.com/ukombozini/backoffice/internal/products"
	"github.com/ukombozini/backoffice/internal/reports"
	"github.com/ukombozini/backoffice/internal/shared"
	"github.com/ukombozini/backoffice/internal/tablebanking"
	"github.com/ukombozini/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)

	officersRepo := officers.NewRepository(dbpool)
	officersService := officers.NewService(officersRepo)
	officersHandler := officers.NewHandler(logger, officersService)

	membersRepo := members.NewRepository(dbpool)
	membersService := members.NewService(membersRepo)
	membersHandler := members.NewHandler(logger, membersService)

	groupsRepo := groups.NewRepository(dbpool)
	groupsService := groups.NewService(groupsRepo)
	groupsHandler := groups.NewHandler(logger, groupsService)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardService := dashboard.NewService(dashboardRepo, redisClient, logger, cfg.DashboardCacheTTL)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	ledgerRepo := tablebanking.NewRepository(dbpool)
	ledgerService := tablebanking.NewService(ledgerRepo, auditLogger, dashboardService)
	ledgerHandler := tablebanking.NewHandler(logger, ledgerService)

	boostersRepo := boosters.NewRepository(dbpool)
	boostersService := boosters.NewService(boostersRepo, dashboardService)
	boostersHandler := boosters.NewHandler(logger, boostersService)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	meetingsRepo := meetings.NewRepository(dbpool)
	meetingsService := meetings.NewService(meetingsRepo)
	meetingsHandler := meetings.NewHandler(logger, meetingsService)

	reportsRepo := reports.NewRepository(dbpool)
	reportsService := reports.NewService(reportsRepo)
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		OfficersHandler:     officersHandler,
		MembersHandler:      membersHandler,
		GroupsHandler:       groupsHandler,
		TablebankingHandler: ledgerHandler,
		BoostersHandler:     boostersHandler,
		ProductsHandler:     productsHandler,
		MeetingsHandler:     meetingsHandler,
		ReportsHandler:      reportsHandler,
		DashboardHandler:    dashboardHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
