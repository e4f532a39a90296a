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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/condofacil/condofacil/internal/accounts"
	"github.com/condofacil/condofacil/internal/app"
	"github.com/condofacil/condofacil/internal/auth"
	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/communications"
	"github.com/condofacil/condofacil/internal/condos"
	"github.com/condofacil/condofacil/internal/observability"
	"github.com/condofacil/condofacil/internal/reminders"
	"github.com/condofacil/condofacil/internal/reports"
	"github.com/condofacil/condofacil/internal/reservations"
	"github.com/condofacil/condofacil/internal/settings"
	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
	"github.com/condofacil/condofacil/internal/votings"
	"github.com/condofacil/condofacil/jobs"
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
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

	sessionManager := shared.NewSessionManager(redisClient, "condofacil_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)

	usersRepo := users.NewRepository(dbpool)
	roleResolver := auth.NewSessionRoleResolver(usersRepo)
	authzService := authz.NewService(roleResolver, logger)
	authzHandler := authz.NewHandler(logger, authzService)

	usersService := users.NewService(usersRepo, authzService, auditLogger)
	usersHandler := users.NewHandler(logger, usersService)

	sessionRepo := auth.NewSessionRepository(dbpool)
	authService := auth.NewService(usersRepo, sessionRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	condosRepo := condos.NewRepository(dbpool)

	settingsRepo := settings.NewRepository(dbpool)
	settingsService := settings.NewService(settingsRepo, condosRepo, authzService, auditLogger)
	settingsHandler := settings.NewHandler(logger, settingsService)

	reservationsRepo := reservations.NewRepository(dbpool)
	reservationsService := reservations.NewService(reservationsRepo, condosRepo, settings.NewRulesAdapter(settingsService), usersService, authzService, approvalRecorder, auditLogger)
	reservationsHandler := reservations.NewHandler(logger, reservationsService)

	communicationsRepo := communications.NewRepository(dbpool)
	communicationsService := communications.NewService(communicationsRepo, condosRepo, usersService, authzService, auditLogger)
	communicationsHandler := communications.NewHandler(logger, communicationsService)

	remindersRepo := reminders.NewRepository(dbpool)
	remindersService := reminders.NewService(remindersRepo, condosRepo, authzService, auditLogger)
	remindersHandler := reminders.NewHandler(logger, remindersService)

	votingsRepo := votings.NewRepository(dbpool)
	votingsService := votings.NewService(votingsRepo, condosRepo, authzService, auditLogger)
	votingsHandler := votings.NewHandler(logger, votingsService)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo, condosRepo, authzService, auditLogger)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	pdfClient := reports.NewGotenbergClient(cfg.GotenbergURL)
	reportsService := reports.NewService(usersService, reservationsService, communicationsService, votingsService, authzService, pdfClient)
	reportsHandler := reports.NewHandler(logger, reportsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		SessionManager:        sessionManager,
		CSRFManager:           csrfManager,
		Metrics:               metrics,
		AuthHandler:           authHandler,
		AuthzHandler:          authzHandler,
		UsersHandler:          usersHandler,
		ReservationsHandler:   reservationsHandler,
		CommunicationsHandler: communicationsHandler,
		RemindersHandler:      remindersHandler,
		VotingsHandler:        votingsHandler,
		AccountsHandler:       accountsHandler,
		ReportsHandler:        reportsHandler,
		SettingsHandler:       settingsHandler,
		JobHandler:            jobHandler,
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
