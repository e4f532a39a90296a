package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
)

// CondoPort answers parent-record existence checks.
type CondoPort interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AuditPort records administrative actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages dated reminders.
type Service struct {
	repo   RepositoryPort
	condos CondoPort
	authz  *authz.Service
	audit  AuditPort
}

// NewService constructs the reminders service. audit may be nil.
func NewService(repo RepositoryPort, condos CondoPort, authzSvc *authz.Service, audit AuditPort) *Service {
	return &Service{repo: repo, condos: condos, authz: authzSvc, audit: audit}
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

// CreateInput carries a new reminder.
type CreateInput struct {
	Titulo         string
	Descricao      string
	Tipo           Tipo
	Prioridade     Prioridade
	DataVencimento time.Time
}

// Create registers a reminder. Guarded by canCreateReminders.
func (s *Service) Create(ctx context.Context, condoID uuid.UUID, input CreateInput) (Reminder, error) {
	return authz.Guard(ctx, s.authz, authz.CapCreateReminders,
		"Apenas o síndico pode criar lembretes.",
		func(ctx context.Context) (Reminder, error) {
			input.Titulo = strings.TrimSpace(input.Titulo)
			if input.Titulo == "" {
				return Reminder{}, fmt.Errorf("%w: título é obrigatório", shared.ErrInvalidInput)
			}
			if !input.Tipo.Valid() {
				return Reminder{}, fmt.Errorf("%w: tipo de lembrete desconhecido", shared.ErrInvalidInput)
			}
			if !input.Prioridade.Valid() {
				return Reminder{}, fmt.Errorf("%w: prioridade desconhecida", shared.ErrInvalidInput)
			}
			if input.DataVencimento.IsZero() {
				return Reminder{}, fmt.Errorf("%w: data de vencimento é obrigatória", shared.ErrInvalidInput)
			}
			if err := s.requireCondo(ctx, condoID); err != nil {
				return Reminder{}, err
			}
			actor, _ := shared.CurrentUserID(ctx)
			criador, err := uuid.Parse(actor)
			if err != nil {
				return Reminder{}, shared.ErrUnauthenticated
			}
			rem := Reminder{
				ID:             uuid.New(),
				CondoID:        condoID,
				Titulo:         input.Titulo,
				Descricao:      strings.TrimSpace(input.Descricao),
				Tipo:           input.Tipo,
				Prioridade:     input.Prioridade,
				DataVencimento: input.DataVencimento.UTC(),
				CriadoPor:      criador,
				DataCriacao:    time.Now().UTC(),
			}
			if err := s.repo.Insert(ctx, rem); err != nil {
				return Reminder{}, err
			}
			s.recordAudit(ctx, "reminder.created", rem.ID, map[string]any{"tipo": string(rem.Tipo)})
			return rem, nil
		})
}

// Listing splits reminders into due and past groups.
type Listing struct {
	Ativos   []Reminder
	Passados []Reminder
}

// List returns the condominium's reminders split by due date. Any
// authenticated user may read them.
func (s *Service) List(ctx context.Context, condoID uuid.UUID) (Listing, error) {
	if _, ok := shared.CurrentUserID(ctx); !ok {
		return Listing{}, shared.ErrUnauthenticated
	}
	if err := s.requireCondo(ctx, condoID); err != nil {
		return Listing{}, err
	}
	all, err := s.repo.ListByCondo(ctx, condoID)
	if err != nil {
		return Listing{}, err
	}
	now := time.Now().UTC()
	var listing Listing
	for _, rem := range all {
		if rem.Ativo(now) {
			listing.Ativos = append(listing.Ativos, rem)
		} else {
			listing.Passados = append(listing.Passados, rem)
		}
	}
	return listing, nil
}

// Delete removes a reminder. Guarded by canDeleteReminders.
func (s *Service) Delete(ctx context.Context, condoID, id uuid.UUID) error {
	return s.authz.GuardErr(ctx, authz.CapDeleteReminders,
		"Apenas o síndico pode excluir lembretes.",
		func(ctx context.Context) error {
			if err := s.repo.Delete(ctx, condoID, id); err != nil {
				return err
			}
			s.recordAudit(ctx, "reminder.deleted", id, nil)
			return nil
		})
}

// DueWithin returns reminders falling due inside the next window, across all
// condominiums. The notification job calls this.
func (s *Service) DueWithin(ctx context.Context, window time.Duration) ([]Reminder, error) {
	now := time.Now().UTC()
	return s.repo.ListDueBetween(ctx, now, now.Add(window))
}

func (s *Service) recordAudit(ctx context.Context, action string, entity uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor, _ := shared.CurrentUserID(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "lembrete",
		EntityID: entity.String(),
		Meta:     meta,
	})
}
