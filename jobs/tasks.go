package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/condofacil/condofacil/internal/reminders"
	"github.com/condofacil/condofacil/internal/votings"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeReminderDigest scans reminders falling due and mails the digest.
	TaskTypeReminderDigest = "lembretes:digest"
	// TaskTypeCloseVotings sweeps active votings past their end date.
	TaskTypeCloseVotings = "votacoes:close"
	// TaskTypeBackup stamps the periodic backup marker per condominium.
	TaskTypeBackup = "backup:run"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		// SMTP delivery is stubbed; Mailpit picks these up in development.
		logger.Info("send email",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
		return nil
	}
}

// EmailEnqueuer submits email tasks back onto the queue.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// ReminderDigestDeps collects the services the digest scan needs.
type ReminderDigestDeps struct {
	Reminders *reminders.Service
	Enqueuer  EmailEnqueuer
	Logger    *slog.Logger
}

// NewReminderDigestTask constructs the daily digest task.
func NewReminderDigestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReminderDigest, nil)
}

// HandleReminderDigestTask emails reminders falling due within 24 hours,
// grouped per condominium.
func HandleReminderDigestTask(deps ReminderDigestDeps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		due, err := deps.Reminders.DueWithin(ctx, 24*time.Hour)
		if err != nil {
			return err
		}
		byCondo := map[uuid.UUID][]reminders.Reminder{}
		for _, rem := range due {
			byCondo[rem.CondoID] = append(byCondo[rem.CondoID], rem)
		}
		for condoID, items := range byCondo {
			body := fmt.Sprintf("Lembretes vencendo nas próximas 24 horas: %d", len(items))
			for _, rem := range items {
				body += fmt.Sprintf("\n- [%s] %s (vence %s)", rem.Prioridade, rem.Titulo,
					rem.DataVencimento.Format("02/01/2006 15:04"))
			}
			if deps.Enqueuer == nil {
				continue
			}
			_, err := deps.Enqueuer.EnqueueSendEmail(ctx, SendEmailPayload{
				To:      fmt.Sprintf("sindico+%s@condofacil.local", condoID),
				Subject: "Lembretes do dia",
				Body:    body,
			})
			if err != nil {
				deps.Logger.Warn("enqueue reminder digest email", slog.Any("error", err))
			}
		}
		deps.Logger.Info("reminder digest scanned",
			slog.Int("due", len(due)), slog.Int("condominios", len(byCondo)))
		return nil
	}
}

// NewCloseVotingsTask constructs the voting sweep task.
func NewCloseVotingsTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCloseVotings, nil)
}

// HandleCloseVotingsTask closes votings whose end date has passed.
func HandleCloseVotingsTask(service *votings.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		n, err := service.CloseExpired(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("expired votings closed", slog.Int("count", n))
		}
		return nil
	}
}

// BackupMarker stamps the last-backup timestamp for one condominium.
type BackupMarker interface {
	MarkBackup(ctx context.Context, condoID uuid.UUID, at time.Time) error
}

// CondoLister enumerates condominium ids for fan-out jobs.
type CondoLister interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// NewBackupTask constructs the periodic backup task.
func NewBackupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeBackup, nil)
}

// HandleBackupTask records a backup run for every condominium. The dump
// itself is produced by infrastructure; this job stamps the marker the
// settings screen displays.
func HandleBackupTask(condos CondoLister, marker BackupMarker, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		ids, err := condos.ListIDs(ctx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, id := range ids {
			if err := marker.MarkBackup(ctx, id, now); err != nil {
				logger.Warn("mark backup", slog.String("condominio", id.String()), slog.Any("error", err))
			}
		}
		logger.Info("backup marker updated", slog.Int("condominios", len(ids)))
		return nil
	}
}
