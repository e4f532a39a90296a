package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/reservations"
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

// Service manages the per-condominium configuration document.
type Service struct {
	repo   RepositoryPort
	condos CondoPort
	authz  *authz.Service
	audit  AuditPort
}

// NewService constructs the settings service. audit may be nil.
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

// Get returns the condominium's configuration, defaults filled in. Guarded
// by canViewSystemSettings.
func (s *Service) Get(ctx context.Context, condoID uuid.UUID) (Settings, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewSystemSettings,
		"Você não tem permissão para ver as configurações.",
		func(ctx context.Context) (Settings, error) {
			if err := s.requireCondo(ctx, condoID); err != nil {
				return Settings{}, err
			}
			return s.load(ctx, condoID)
		})
}

// Update replaces the configuration document. Guarded by canManageSettings.
func (s *Service) Update(ctx context.Context, condoID uuid.UUID, doc Settings) (Settings, error) {
	return authz.Guard(ctx, s.authz, authz.CapManageSettings,
		"Apenas o síndico pode alterar as configurações.",
		func(ctx context.Context) (Settings, error) {
			if err := s.requireCondo(ctx, condoID); err != nil {
				return Settings{}, err
			}
			if err := validate(doc); err != nil {
				return Settings{}, err
			}
			doc.CondoID = condoID
			doc.normalize()
			if err := s.repo.Save(ctx, doc); err != nil {
				return Settings{}, err
			}
			s.recordAudit(ctx, "settings.updated", condoID)
			return doc, nil
		})
}

func validate(doc Settings) error {
	if doc.Reservas.TempoMinimoReserva < 0 || doc.Reservas.TempoMaximoReserva < 0 {
		return fmt.Errorf("%w: janelas de reserva não podem ser negativas", shared.ErrInvalidInput)
	}
	if doc.Reservas.LimiteReservasPorMorador < 0 {
		return fmt.Errorf("%w: limite de reservas não pode ser negativo", shared.ErrInvalidInput)
	}
	if doc.Geral.FusoHorario != "" {
		if _, err := time.LoadLocation(doc.Geral.FusoHorario); err != nil {
			return fmt.Errorf("%w: fuso horário desconhecido", shared.ErrInvalidInput)
		}
	}
	if h := doc.Notificacoes.HorarioNotificacoes; h != "" {
		if _, err := time.Parse("15:04", h); err != nil {
			return fmt.Errorf("%w: horário de notificações fora do formato HH:MM", shared.ErrInvalidInput)
		}
	}
	for _, area := range doc.Reservas.Areas {
		if !validArea(area) {
			return fmt.Errorf("%w: área desconhecida %q", shared.ErrInvalidInput, area)
		}
	}
	return nil
}

func validArea(area string) bool {
	for _, known := range defaultAreas {
		if known == area {
			return true
		}
	}
	return false
}

// load reads the document without capability checks. Internal callers (the
// reservation rules adapter, the notification worker) use it.
func (s *Service) load(ctx context.Context, condoID uuid.UUID) (Settings, error) {
	doc, err := s.repo.Get(ctx, condoID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Defaults(condoID), nil
		}
		return Settings{}, err
	}
	doc.normalize()
	return doc, nil
}

// NotificationHour returns the condominium's digest hour as "HH:MM".
func (s *Service) NotificationHour(ctx context.Context, condoID uuid.UUID) (string, error) {
	doc, err := s.load(ctx, condoID)
	if err != nil {
		return "", err
	}
	return doc.Notificacoes.HorarioNotificacoes, nil
}

// MarkBackup stamps the last-backup marker. The backup job calls this.
func (s *Service) MarkBackup(ctx context.Context, condoID uuid.UUID, at time.Time) error {
	return s.repo.MarkBackup(ctx, condoID, at)
}

func (s *Service) recordAudit(ctx context.Context, action string, condoID uuid.UUID) {
	if s.audit == nil {
		return
	}
	actor, _ := shared.CurrentUserID(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "configuracoes",
		EntityID: condoID.String(),
	})
}

// RulesAdapter feeds the stored reservation policies to the reservations
// service.
type RulesAdapter struct {
	service *Service
}

// NewRulesAdapter builds the adapter.
func NewRulesAdapter(service *Service) *RulesAdapter {
	return &RulesAdapter{service: service}
}

// ReservationRules implements reservations.RulesPort.
func (a *RulesAdapter) ReservationRules(ctx context.Context, condoID uuid.UUID) (reservations.Rules, error) {
	doc, err := a.service.load(ctx, condoID)
	if err != nil {
		return reservations.Rules{}, err
	}
	return reservations.Rules{
		Areas:            doc.Reservas.Areas,
		TempoMinimoHoras: doc.Reservas.TempoMinimoReserva,
		TempoMaximoDias:  doc.Reservas.TempoMaximoReserva,
		LimitePorMorador: doc.Reservas.LimiteReservasPorMorador,
		FusoHorario:      doc.Geral.FusoHorario,
	}, nil
}

var _ reservations.RulesPort = (*RulesAdapter)(nil)
