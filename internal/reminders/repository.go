package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condofacil/condofacil/internal/shared"
)

// RepositoryPort describes repository operations used by Service and the
// notification worker.
type RepositoryPort interface {
	Insert(ctx context.Context, rem Reminder) error
	Get(ctx context.Context, condoID, id uuid.UUID) (Reminder, error)
	ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Reminder, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]Reminder, error)
	Delete(ctx context.Context, condoID, id uuid.UUID) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reminderColumns = `id, condominio_id, titulo, descricao, tipo, prioridade, data_vencimento, criado_por, data_criacao`

func scanReminder(row pgx.Row) (Reminder, error) {
	var rem Reminder
	var tipo, prioridade string
	if err := row.Scan(&rem.ID, &rem.CondoID, &rem.Titulo, &rem.Descricao, &tipo, &prioridade,
		&rem.DataVencimento, &rem.CriadoPor, &rem.DataCriacao); err != nil {
		return Reminder{}, err
	}
	rem.Tipo = Tipo(tipo)
	rem.Prioridade = Prioridade(prioridade)
	return rem, nil
}

// Insert persists a new reminder.
func (r *Repository) Insert(ctx context.Context, rem Reminder) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO lembretes
(id, condominio_id, titulo, descricao, tipo, prioridade, data_vencimento, criado_por, data_criacao)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rem.ID, rem.CondoID, rem.Titulo, rem.Descricao, string(rem.Tipo), string(rem.Prioridade),
		rem.DataVencimento, rem.CriadoPor, rem.DataCriacao)
	return err
}

// Get fetches one reminder scoped to its condominium.
func (r *Repository) Get(ctx context.Context, condoID, id uuid.UUID) (Reminder, error) {
	rem, err := scanReminder(r.pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM lembretes WHERE condominio_id=$1 AND id=$2`, condoID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reminder{}, shared.ErrNotFound
		}
		return Reminder{}, err
	}
	return rem, nil
}

// ListByCondo returns reminders ordered by due date, soonest first.
func (r *Repository) ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM lembretes WHERE condominio_id=$1 ORDER BY data_vencimento ASC`, condoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReminders(rows)
}

// ListDueBetween returns reminders across all condominiums falling due inside
// the window. The notification worker scans with this daily.
func (r *Repository) ListDueBetween(ctx context.Context, from, to time.Time) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM lembretes WHERE data_vencimento >= $1 AND data_vencimento < $2 ORDER BY data_vencimento ASC`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReminders(rows)
}

func collectReminders(rows pgx.Rows) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

// Delete removes one reminder.
func (r *Repository) Delete(ctx context.Context, condoID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lembretes WHERE condominio_id=$1 AND id=$2`, condoID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
