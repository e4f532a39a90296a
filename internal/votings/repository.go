package votings

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
// auto-close worker.
type RepositoryPort interface {
	Insert(ctx context.Context, v Voting) error
	Get(ctx context.Context, condoID, id uuid.UUID) (Voting, error)
	ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Voting, error)
	InsertVote(ctx context.Context, votingID, userID uuid.UUID, opcao string) error
	CountVotes(ctx context.Context, votingID uuid.UUID) (map[string]int, error)
	Close(ctx context.Context, condoID, id uuid.UUID) error
	CloseExpired(ctx context.Context, now time.Time) (int, error)
	CountByStatus(ctx context.Context, condoID uuid.UUID) (map[Status]int, error)
}

// Repository provides PostgreSQL backed persistence. Ballots live in their
// own table with a primary key on (votacao_id, usuario_id), which is what
// enforces one vote per resident.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const votingColumns = `id, condominio_id, titulo, descricao, tipo, opcoes, data_fim, status, criado_por, data_criacao`

func scanVoting(row pgx.Row) (Voting, error) {
	var v Voting
	var tipo, status string
	if err := row.Scan(&v.ID, &v.CondoID, &v.Titulo, &v.Descricao, &tipo, &v.Opcoes,
		&v.DataFim, &status, &v.CriadoPor, &v.DataCriacao); err != nil {
		return Voting{}, err
	}
	v.Tipo = Tipo(tipo)
	v.Status = Status(status)
	return v, nil
}

// Insert persists a new voting.
func (r *Repository) Insert(ctx context.Context, v Voting) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO votacoes
(id, condominio_id, titulo, descricao, tipo, opcoes, data_fim, status, criado_por, data_criacao)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.CondoID, v.Titulo, v.Descricao, string(v.Tipo), v.Opcoes, v.DataFim,
		string(v.Status), v.CriadoPor, v.DataCriacao)
	return err
}

// Get fetches one voting scoped to its condominium.
func (r *Repository) Get(ctx context.Context, condoID, id uuid.UUID) (Voting, error) {
	v, err := scanVoting(r.pool.QueryRow(ctx,
		`SELECT `+votingColumns+` FROM votacoes WHERE condominio_id=$1 AND id=$2`, condoID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voting{}, shared.ErrNotFound
		}
		return Voting{}, err
	}
	return v, nil
}

// ListByCondo returns votings newest first.
func (r *Repository) ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Voting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+votingColumns+` FROM votacoes WHERE condominio_id=$1 ORDER BY data_criacao DESC`, condoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Voting
	for rows.Next() {
		v, err := scanVoting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// InsertVote records one ballot. A repeat ballot from the same resident hits
// the primary key and maps to ErrConflict.
func (r *Repository) InsertVote(ctx context.Context, votingID, userID uuid.UUID, opcao string) error {
	tag, err := r.pool.Exec(ctx, `INSERT INTO votos (votacao_id, usuario_id, opcao, data_voto)
VALUES ($1, $2, $3, $4) ON CONFLICT (votacao_id, usuario_id) DO NOTHING`,
		votingID, userID, opcao, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrConflict
	}
	return nil
}

// CountVotes aggregates ballots per option.
func (r *Repository) CountVotes(ctx context.Context, votingID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT opcao, COUNT(*) FROM votos WHERE votacao_id=$1 GROUP BY opcao`, votingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var opcao string
		var n int
		if err := rows.Scan(&opcao, &n); err != nil {
			return nil, err
		}
		counts[opcao] = n
	}
	return counts, rows.Err()
}

// Close marks one voting encerrada.
func (r *Repository) Close(ctx context.Context, condoID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE votacoes SET status='encerrada' WHERE condominio_id=$1 AND id=$2`, condoID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CloseExpired marks every active voting past its end date encerrada and
// returns how many changed. The scheduler runs this.
func (r *Repository) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE votacoes SET status='encerrada' WHERE status='ativa' AND data_fim <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CountByStatus aggregates votings per status for reports.
func (r *Repository) CountByStatus(ctx context.Context, condoID uuid.UUID) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM votacoes WHERE condominio_id=$1 GROUP BY status`, condoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
