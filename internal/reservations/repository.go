package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/condofacil/condofacil/internal/shared"
)

// StatusUpdate carries a lifecycle transition. Updates are last-writer-wins:
// there is no version token, mirroring the remote-store semantics the
// application was designed against.
type StatusUpdate struct {
	Status         Status
	AprovadoPor    string
	RejeitadoPor   string
	MotivoRejeicao string
	DecididoEm     time.Time
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, res Reservation) error
	Get(ctx context.Context, condoID, id uuid.UUID) (Reservation, error)
	ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Reservation, error)
	ListByUser(ctx context.Context, condoID, userID uuid.UUID) ([]Reservation, error)
	ListBlockingAt(ctx context.Context, condoID uuid.UUID, local, slot string) ([]Reservation, error)
	CountBlockingByUser(ctx context.Context, condoID, userID uuid.UUID) (int, error)
	CountByStatus(ctx context.Context, condoID uuid.UUID) (map[Status]int, error)
	UpdateStatus(ctx context.Context, condoID, id uuid.UUID, update StatusUpdate) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reservationColumns = `id, condominio_id, local, data_completa, usuario_id, status, data_criacao,
COALESCE(aprovado_por, ''), COALESCE(rejeitado_por, ''), COALESCE(motivo_rejeicao, ''), COALESCE(decidido_em, 'epoch'::timestamptz)`

func scanReservation(row pgx.Row) (Reservation, error) {
	var res Reservation
	var status string
	if err := row.Scan(&res.ID, &res.CondoID, &res.Local, &res.DataCompleta, &res.UsuarioID, &status,
		&res.DataCriacao, &res.AprovadoPor, &res.RejeitadoPor, &res.MotivoRejeicao, &res.DecididoEm); err != nil {
		return Reservation{}, err
	}
	res.Status = Status(status)
	return res, nil
}

// Insert persists a new reservation. No uniqueness constraint backs the
// local+slot pair; collision detection happens in the service read path.
func (r *Repository) Insert(ctx context.Context, res Reservation) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO reservas
(id, condominio_id, local, data_completa, usuario_id, status, data_criacao)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.CondoID, res.Local, res.DataCompleta, res.UsuarioID, string(res.Status), res.DataCriacao)
	return err
}

// Get fetches one reservation scoped to its condominium.
func (r *Repository) Get(ctx context.Context, condoID, id uuid.UUID) (Reservation, error) {
	res, err := scanReservation(r.pool.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservas WHERE condominio_id=$1 AND id=$2`, condoID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reservation{}, shared.ErrNotFound
		}
		return Reservation{}, err
	}
	return res, nil
}

func (r *Repository) queryList(ctx context.Context, query string, args ...any) ([]Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListByCondo returns every reservation of a condominium ordered by slot.
func (r *Repository) ListByCondo(ctx context.Context, condoID uuid.UUID) ([]Reservation, error) {
	return r.queryList(ctx,
		`SELECT `+reservationColumns+` FROM reservas WHERE condominio_id=$1 ORDER BY data_completa ASC`, condoID)
}

// ListByUser returns one user's reservations ordered by slot.
func (r *Repository) ListByUser(ctx context.Context, condoID, userID uuid.UUID) ([]Reservation, error) {
	return r.queryList(ctx,
		`SELECT `+reservationColumns+` FROM reservas WHERE condominio_id=$1 AND usuario_id=$2 ORDER BY data_completa ASC`,
		condoID, userID)
}

// ListBlockingAt returns the pending or approved reservations holding the
// exact local+slot pair. Slot equality is plain string equality.
func (r *Repository) ListBlockingAt(ctx context.Context, condoID uuid.UUID, local, slot string) ([]Reservation, error) {
	return r.queryList(ctx,
		`SELECT `+reservationColumns+` FROM reservas
WHERE condominio_id=$1 AND local=$2 AND data_completa=$3 AND status IN ('pendente', 'aprovada')`,
		condoID, local, slot)
}

// CountBlockingByUser counts a user's pending/approved reservations.
func (r *Repository) CountBlockingByUser(ctx context.Context, condoID, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reservas WHERE condominio_id=$1 AND usuario_id=$2 AND status IN ('pendente', 'aprovada')`,
		condoID, userID).Scan(&n)
	return n, err
}

// CountByStatus aggregates reservations per status for dashboards.
func (r *Repository) CountByStatus(ctx context.Context, condoID uuid.UUID) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM reservas WHERE condominio_id=$1 GROUP BY status`, condoID)
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

// UpdateStatus applies a lifecycle transition. Last write wins.
func (r *Repository) UpdateStatus(ctx context.Context, condoID, id uuid.UUID, update StatusUpdate) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reservas SET status=$3,
aprovado_por=NULLIF($4, ''), rejeitado_por=NULLIF($5, ''), motivo_rejeicao=NULLIF($6, ''), decidido_em=$7
WHERE condominio_id=$1 AND id=$2`,
		condoID, id, string(update.Status), update.AprovadoPor, update.RejeitadoPor, update.MotivoRejeicao, update.DecididoEm)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
