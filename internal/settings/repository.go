package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condofacil/condofacil/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Get(ctx context.Context, condoID uuid.UUID) (Settings, error)
	Save(ctx context.Context, s Settings) error
	MarkBackup(ctx context.Context, condoID uuid.UUID, at time.Time) error
}

// Repository provides PostgreSQL backed persistence. The document is one
// JSONB row per condominium.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches the condominium's document. Missing documents map to
// ErrNotFound; the service substitutes defaults.
func (r *Repository) Get(ctx context.Context, condoID uuid.UUID) (Settings, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT documento FROM configuracoes WHERE condominio_id=$1`, condoID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, shared.ErrNotFound
		}
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, err
	}
	s.CondoID = condoID
	return s, nil
}

// Save upserts the condominium's document.
func (r *Repository) Save(ctx context.Context, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO configuracoes (condominio_id, documento, atualizado_em)
VALUES ($1, $2, $3)
ON CONFLICT (condominio_id) DO UPDATE SET documento=EXCLUDED.documento, atualizado_em=EXCLUDED.atualizado_em`,
		s.CondoID, raw, time.Now().UTC())
	return err
}

// MarkBackup stamps the backup marker inside the stored document.
func (r *Repository) MarkBackup(ctx context.Context, condoID uuid.UUID, at time.Time) error {
	s, err := r.Get(ctx, condoID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s = Defaults(condoID)
		} else {
			return err
		}
	}
	s.Backup.UltimoBackup = &at
	return r.Save(ctx, s)
}

var _ RepositoryPort = (*Repository)(nil)
