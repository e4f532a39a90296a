package reservations

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
)

// Rules are the reservation window policies taken from condominium settings.
type Rules struct {
	Areas            []string
	TempoMinimoHoras int
	TempoMaximoDias  int
	LimitePorMorador int
	FusoHorario      string
}

// DefaultRules mirror the settings defaults for condominiums that never
// customised anything.
func DefaultRules() Rules {
	return Rules{
		Areas:            slices.Clone(DefaultAreas),
		TempoMinimoHoras: 24,
		TempoMaximoDias:  30,
		LimitePorMorador: 5,
		FusoHorario:      "America/Sao_Paulo",
	}
}

// RulesPort supplies the reservation rules for one condominium.
type RulesPort interface {
	ReservationRules(ctx context.Context, condoID uuid.UUID) (Rules, error)
}

// CondoPort answers parent-record existence checks.
type CondoPort interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// DirectoryPort resolves user ids to display names for approval metadata.
type DirectoryPort interface {
	DisplayName(ctx context.Context, id uuid.UUID) string
}

// AuditPort records administrative actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the reservation lifecycle and the slot-conflict check.
type Service struct {
	repo      RepositoryPort
	condos    CondoPort
	rules     RulesPort
	directory DirectoryPort
	authz     *authz.Service
	approvals *shared.ApprovalRecorder
	audit     AuditPort
}

// NewService constructs the reservations service. rules, directory, approvals
// and audit may be nil; the service then skips window policies, name
// enrichment and history.
func NewService(repo RepositoryPort, condos CondoPort, rules RulesPort, directory DirectoryPort, authzSvc *authz.Service, approvals *shared.ApprovalRecorder, audit AuditPort) *Service {
	return &Service{repo: repo, condos: condos, rules: rules, directory: directory, authz: authzSvc, approvals: approvals, audit: audit}
}

func (s *Service) requireCondo(ctx context.Context, condoID uuid.UUID) error {
	ok, err := s.condos.Exists(ctx, condoID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("condomínio: %w", shared.ErrNotFound)
	}
	return nil
}

// HasConflict reports whether a pending or approved reservation already holds
// the exact local+slot pair. excludeID (optional, uuid.Nil to skip) ignores
// one reservation, used when re-validating an edit. Slot equality is verbatim
// string equality; no timezone normalisation happens here.
func (s *Service) HasConflict(ctx context.Context, condoID uuid.UUID, local, slot string, excludeID uuid.UUID) (bool, error) {
	local = CanonicalArea(local)
	if err := ValidateSlot(slot); err != nil {
		return false, err
	}
	if err := s.requireCondo(ctx, condoID); err != nil {
		return false, err
	}
	blocking, err := s.repo.ListBlockingAt(ctx, condoID, local, slot)
	if err != nil {
		return false, err
	}
	for _, res := range blocking {
		if excludeID != uuid.Nil && res.ID == excludeID {
			continue
		}
		if res.Status.Blocking() {
			return true, nil
		}
	}
	return false, nil
}

// CreateInput carries a booking request.
type CreateInput struct {
	Local        string
	DataCompleta string
	UsuarioID    uuid.UUID
}

// Create books a slot. The conflict check and the insert are two separate
// store operations with no transaction between them: two concurrent callers
// can both pass the check and both insert. The original product shipped with
// that window and this port keeps it (see the schema note for the partial
// unique index that would close it).
func (s *Service) Create(ctx context.Context, condoID uuid.UUID, input CreateInput) (Reservation, error) {
	input.Local = CanonicalArea(input.Local)
	rules := s.resolveRules(ctx, condoID)
	if !slices.Contains(rules.Areas, input.Local) {
		return Reservation{}, ErrInvalidArea
	}
	if err := ValidateSlot(input.DataCompleta); err != nil {
		return Reservation{}, err
	}
	if err := s.requireCondo(ctx, condoID); err != nil {
		return Reservation{}, err
	}
	if err := s.checkWindow(rules, input.DataCompleta); err != nil {
		return Reservation{}, err
	}
	if rules.LimitePorMorador > 0 {
		active, err := s.repo.CountBlockingByUser(ctx, condoID, input.UsuarioID)
		if err != nil {
			return Reservation{}, err
		}
		if active >= rules.LimitePorMorador {
			return Reservation{}, shared.Denied("Você atingiu o limite de reservas ativas.")
		}
	}

	conflict, err := s.HasConflict(ctx, condoID, input.Local, input.DataCompleta, uuid.Nil)
	if err != nil {
		return Reservation{}, err
	}
	if conflict {
		return Reservation{}, shared.ErrConflict
	}

	res := Reservation{
		ID:           uuid.New(),
		CondoID:      condoID,
		Local:        input.Local,
		DataCompleta: input.DataCompleta,
		UsuarioID:    input.UsuarioID,
		Status:       StatusPendente,
		DataCriacao:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, res); err != nil {
		return Reservation{}, err
	}
	_ = s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  "reservas",
		RefID:   res.ID,
		ActorID: input.UsuarioID.String(),
		Action:  shared.ApprovalSubmit,
	})
	return res, nil
}

// Approve transitions a pending reservation to aprovada. Guarded by
// canApproveReservations; terminal states are refused.
func (s *Service) Approve(ctx context.Context, condoID, id uuid.UUID) (Reservation, error) {
	return authz.Guard(ctx, s.authz, authz.CapApproveReservations,
		"Apenas o síndico pode aprovar reservas.",
		func(ctx context.Context) (Reservation, error) {
			res, err := s.repo.Get(ctx, condoID, id)
			if err != nil {
				return Reservation{}, err
			}
			if res.Status.Terminal() {
				return Reservation{}, fmt.Errorf("%w: reserva %s não está pendente", shared.ErrInvalidInput, res.Status)
			}
			actor, _ := shared.CurrentUserID(ctx)
			update := StatusUpdate{
				Status:      StatusAprovada,
				AprovadoPor: s.actorName(ctx, actor),
				DecididoEm:  time.Now().UTC(),
			}
			if err := s.repo.UpdateStatus(ctx, condoID, id, update); err != nil {
				return Reservation{}, err
			}
			_ = s.approvals.Record(ctx, shared.ApprovalLog{
				Module:  "reservas",
				RefID:   id,
				ActorID: actor,
				Action:  shared.ApprovalApprove,
			})
			s.recordAudit(ctx, "reservation.approved", id, nil)
			res.Status = StatusAprovada
			res.AprovadoPor = update.AprovadoPor
			res.DecididoEm = update.DecididoEm
			return res, nil
		})
}

// Reject transitions a pending reservation to rejeitada. Guarded by
// canRejectReservations; a reason is mandatory.
func (s *Service) Reject(ctx context.Context, condoID, id uuid.UUID, motivo string) (Reservation, error) {
	return authz.Guard(ctx, s.authz, authz.CapRejectReservations,
		"Apenas o síndico pode rejeitar reservas.",
		func(ctx context.Context) (Reservation, error) {
			if motivo == "" {
				return Reservation{}, fmt.Errorf("%w: motivo da rejeição é obrigatório", shared.ErrInvalidInput)
			}
			res, err := s.repo.Get(ctx, condoID, id)
			if err != nil {
				return Reservation{}, err
			}
			if res.Status.Terminal() {
				return Reservation{}, fmt.Errorf("%w: reserva %s não está pendente", shared.ErrInvalidInput, res.Status)
			}
			actor, _ := shared.CurrentUserID(ctx)
			update := StatusUpdate{
				Status:         StatusRejeitada,
				RejeitadoPor:   s.actorName(ctx, actor),
				MotivoRejeicao: motivo,
				DecididoEm:     time.Now().UTC(),
			}
			if err := s.repo.UpdateStatus(ctx, condoID, id, update); err != nil {
				return Reservation{}, err
			}
			_ = s.approvals.Record(ctx, shared.ApprovalLog{
				Module:  "reservas",
				RefID:   id,
				ActorID: actor,
				Action:  shared.ApprovalReject,
				Note:    motivo,
			})
			s.recordAudit(ctx, "reservation.rejected", id, map[string]any{"motivo": motivo})
			res.Status = StatusRejeitada
			res.RejeitadoPor = update.RejeitadoPor
			res.MotivoRejeicao = motivo
			res.DecididoEm = update.DecididoEm
			return res, nil
		})
}

// Cancel withdraws a pending reservation. Only its creator may cancel, and
// only while it is still pending; no capability is involved.
func (s *Service) Cancel(ctx context.Context, condoID, id uuid.UUID) error {
	actor, ok := shared.CurrentUserID(ctx)
	if !ok {
		return shared.ErrUnauthenticated
	}
	res, err := s.repo.Get(ctx, condoID, id)
	if err != nil {
		return err
	}
	if res.UsuarioID.String() != actor {
		return shared.Denied("Apenas quem criou a reserva pode cancelá-la.")
	}
	if res.Status != StatusPendente {
		return fmt.Errorf("%w: apenas reservas pendentes podem ser canceladas", shared.ErrInvalidInput)
	}
	if err := s.repo.UpdateStatus(ctx, condoID, id, StatusUpdate{Status: StatusCancelada, DecididoEm: time.Now().UTC()}); err != nil {
		return err
	}
	_ = s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  "reservas",
		RefID:   id,
		ActorID: actor,
		Action:  shared.ApprovalCancel,
	})
	return nil
}

// ListAll returns every reservation of the condominium. Guarded by
// canViewAllReservations.
func (s *Service) ListAll(ctx context.Context, condoID uuid.UUID) ([]Reservation, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewAllReservations,
		"Você não tem permissão para ver todas as reservas.",
		func(ctx context.Context) ([]Reservation, error) {
			if err := s.requireCondo(ctx, condoID); err != nil {
				return nil, err
			}
			return s.repo.ListByCondo(ctx, condoID)
		})
}

// ListMine returns the current user's reservations.
func (s *Service) ListMine(ctx context.Context, condoID uuid.UUID) ([]Reservation, error) {
	actor, ok := shared.CurrentUserID(ctx)
	if !ok {
		return nil, shared.ErrUnauthenticated
	}
	userID, err := uuid.Parse(actor)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	if err := s.requireCondo(ctx, condoID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, condoID, userID)
}

// CountByStatus aggregates reservations for dashboards and reports.
func (s *Service) CountByStatus(ctx context.Context, condoID uuid.UUID) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx, condoID)
}

func (s *Service) resolveRules(ctx context.Context, condoID uuid.UUID) Rules {
	if s.rules == nil {
		return DefaultRules()
	}
	rules, err := s.rules.ReservationRules(ctx, condoID)
	if err != nil || len(rules.Areas) == 0 {
		return DefaultRules()
	}
	return rules
}

// checkWindow applies antecedence and horizon policies. The slot is parsed in
// the condominium zone strictly for these comparisons.
func (s *Service) checkWindow(rules Rules, slot string) error {
	loc, err := time.LoadLocation(rules.FusoHorario)
	if err != nil {
		loc = time.UTC
	}
	at, err := SlotTime(slot, loc)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	if rules.TempoMinimoHoras > 0 && at.Before(now.Add(time.Duration(rules.TempoMinimoHoras)*time.Hour)) {
		return fmt.Errorf("%w: reservas exigem %d horas de antecedência", shared.ErrInvalidInput, rules.TempoMinimoHoras)
	}
	if rules.TempoMaximoDias > 0 && at.After(now.AddDate(0, 0, rules.TempoMaximoDias)) {
		return fmt.Errorf("%w: reservas permitidas até %d dias à frente", shared.ErrInvalidInput, rules.TempoMaximoDias)
	}
	return nil
}

func (s *Service) actorName(ctx context.Context, actor string) string {
	if s.directory == nil || actor == "" {
		return actor
	}
	id, err := uuid.Parse(actor)
	if err != nil {
		return actor
	}
	return s.directory.DisplayName(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, action string, entity uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor, _ := shared.CurrentUserID(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "reserva",
		EntityID: entity.String(),
		Meta:     meta,
	})
}
