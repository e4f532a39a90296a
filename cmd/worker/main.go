package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condofacil/condofacil/internal/app"
	"github.com/condofacil/condofacil/internal/auth"
	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/condos"
	"github.com/condofacil/condofacil/internal/reminders"
	"github.com/condofacil/condofacil/internal/settings"
	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
	"github.com/condofacil/condofacil/internal/votings"
	"github.com/condofacil/condofacil/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)

	usersRepo := users.NewRepository(pool)
	roleResolver := auth.NewSessionRoleResolver(usersRepo)
	authzService := authz.NewService(roleResolver, logger)

	condosRepo := condos.NewRepository(pool)

	remindersRepo := reminders.NewRepository(pool)
	remindersService := reminders.NewService(remindersRepo, condosRepo, authzService, auditLogger)

	votingsRepo := votings.NewRepository(pool)
	votingsService := votings.NewService(votingsRepo, condosRepo, authzService, auditLogger)

	settingsRepo := settings.NewRepository(pool)

	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.HandleSendEmailTask(logger)},
			{Type: jobs.TaskTypeReminderDigest, Handler: jobs.HandleReminderDigestTask(jobs.ReminderDigestDeps{
				Reminders: remindersService,
				Enqueuer:  client,
				Logger:    logger,
			})},
			{Type: jobs.TaskTypeCloseVotings, Handler: jobs.HandleCloseVotingsTask(votingsService, logger)},
			{Type: jobs.TaskTypeBackup, Handler: jobs.HandleBackupTask(condosRepo, settingsRepo, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ReminderDigestCron, Task: jobs.NewReminderDigestTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.CloseVotingsCron, Task: jobs.NewCloseVotingsTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.BackupCron, Task: jobs.NewBackupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
