package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condofacil/condofacil/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, e Entry) error
	Get(ctx context.Context, condoID, id uuid.UUID) (Entry, error)
	ListByPeriod(ctx context.Context, condoID uuid.UUID, from, to time.Time) ([]Entry, error)
	Update(ctx context.Context, e Entry) error
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

const entryColumns = `id, condominio_id, tipo, categoria, descricao, valor, data, criado_por, data_criacao`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var tipo string
	if err := row.Scan(&e.ID, &e.CondoID, &tipo, &e.Categoria, &e.Descricao, &e.Valor,
		&e.Data, &e.CriadoPor, &e.DataCriacao); err != nil {
		return Entry{}, err
	}
	e.Tipo = Tipo(tipo)
	return e, nil
}

// Insert persists a new ledger entry.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO lancamentos
(id, condominio_id, tipo, categoria, descricao, valor, data, criado_por, data_criacao)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.CondoID, string(e.Tipo), e.Categoria, e.Descricao, e.Valor, e.Data, e.CriadoPor, e.DataCriacao)
	return err
}

// Get fetches one entry scoped to its condominium.
func (r *Repository) Get(ctx context.Context, condoID, id uuid.UUID) (Entry, error) {
	e, err := scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM lancamentos WHERE condominio_id=$1 AND id=$2`, condoID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

// ListByPeriod returns entries dated inside [from, to) ordered by date.
func (r *Repository) ListByPeriod(ctx context.Context, condoID uuid.UUID, from, to time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM lancamentos WHERE condominio_id=$1 AND data >= $2 AND data < $3 ORDER BY data ASC`,
		condoID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of one entry.
func (r *Repository) Update(ctx context.Context, e Entry) error {
	tag, err := r.pool.Exec(ctx, `UPDATE lancamentos
SET tipo=$3, categoria=$4, descricao=$5, valor=$6, data=$7
WHERE condominio_id=$1 AND id=$2`,
		e.CondoID, e.ID, string(e.Tipo), e.Categoria, e.Descricao, e.Valor, e.Data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes one entry.
func (r *Repository) Delete(ctx context.Context, condoID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lancamentos WHERE condominio_id=$1 AND id=$2`, condoID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
