package communications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condofacil/condofacil/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, com Communication) error
	Get(ctx context.Context, condoID, id uuid.UUID) (Communication, error)
	ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Communication, error)
	Delete(ctx context.Context, condoID, id uuid.UUID) error
	CountByCondo(ctx context.Context, condoID uuid.UUID) (int, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const communicationColumns = `id, condominio_id, titulo, mensagem, tipo, autor_id, autor_nome, data_criacao`

func scanCommunication(row pgx.Row) (Communication, error) {
	var com Communication
	var tipo string
	if err := row.Scan(&com.ID, &com.CondoID, &com.Titulo, &com.Mensagem, &tipo, &com.AutorID, &com.AutorNome, &com.DataCriacao); err != nil {
		return Communication{}, err
	}
	com.Tipo = Tipo(tipo)
	return com, nil
}

// Insert persists a new announcement.
func (r *Repository) Insert(ctx context.Context, com Communication) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO comunicados
(id, condominio_id, titulo, mensagem, tipo, autor_id, autor_nome, data_criacao)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		com.ID, com.CondoID, com.Titulo, com.Mensagem, string(com.Tipo), com.AutorID, com.AutorNome, com.DataCriacao)
	return err
}

// Get fetches one announcement scoped to its condominium.
func (r *Repository) Get(ctx context.Context, condoID, id uuid.UUID) (Communication, error) {
	com, err := scanCommunication(r.pool.QueryRow(ctx,
		`SELECT `+communicationColumns+` FROM comunicados WHERE condominio_id=$1 AND id=$2`, condoID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Communication{}, shared.ErrNotFound
		}
		return Communication{}, err
	}
	return com, nil
}

// ListByCondo returns announcements newest first.
func (r *Repository) ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Communication, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+communicationColumns+` FROM comunicados WHERE condominio_id=$1 ORDER BY data_criacao DESC`, condoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Communication
	for rows.Next() {
		com, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, com)
	}
	return out, rows.Err()
}

// Delete removes one announcement.
func (r *Repository) Delete(ctx context.Context, condoID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comunicados WHERE condominio_id=$1 AND id=$2`, condoID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByCondo totals announcements for reports.
func (r *Repository) CountByCondo(ctx context.Context, condoID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comunicados WHERE condominio_id=$1`, condoID).Scan(&n)
	return n, err
}

var _ RepositoryPort = (*Repository)(nil)
