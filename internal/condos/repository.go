package condos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condofacil/condofacil/internal/shared"
)

// RepositoryPort describes persistence operations for condominiums.
type RepositoryPort interface {
	Get(ctx context.Context, id uuid.UUID) (Condo, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]Condo, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a condominium by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Condo, error) {
	var c Condo
	err := r.pool.QueryRow(ctx, `SELECT id, nome, endereco, created_at FROM condominios WHERE id=$1`, id).
		Scan(&c.ID, &c.Nome, &c.Endereco, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Condo{}, shared.ErrNotFound
		}
		return Condo{}, err
	}
	return c, nil
}

// Exists reports whether the condominium record is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM condominios WHERE id=$1)`, id).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// List returns all condominiums ordered by name.
func (r *Repository) List(ctx context.Context) ([]Condo, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nome, endereco, created_at FROM condominios ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Condo
	for rows.Next() {
		var c Condo
		if err := rows.Scan(&c.ID, &c.Nome, &c.Endereco, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListIDs returns every condominium id. Fan-out jobs use this.
func (r *Repository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM condominios`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
