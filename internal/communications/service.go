package communications

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

// DirectoryPort resolves user ids to display names for the author field.
type DirectoryPort interface {
	DisplayName(ctx context.Context, id uuid.UUID) string
}

// AuditPort records administrative actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages condominium announcements.
type Service struct {
	repo      RepositoryPort
	condos    CondoPort
	directory DirectoryPort
	authz     *authz.Service
	audit     AuditPort
}

// NewService constructs the communications service. directory and audit may
// be nil.
func NewService(repo RepositoryPort, condos CondoPort, directory DirectoryPort, authzSvc *authz.Service, audit AuditPort) *Service {
	return &Service{repo: repo, condos: condos, directory: directory, authz: authzSvc, audit: audit}
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

// CreateInput carries a new announcement.
type CreateInput struct {
	Titulo   string
	Mensagem string
	Tipo     Tipo
}

// Create publishes an announcement. Guarded by canSendCommunications.
func (s *Service) Create(ctx context.Context, condoID uuid.UUID, input CreateInput) (Communication, error) {
	return authz.Guard(ctx, s.authz, authz.CapSendCommunications,
		"Apenas o síndico pode enviar comunicados.",
		func(ctx context.Context) (Communication, error) {
			input.Titulo = strings.TrimSpace(input.Titulo)
			input.Mensagem = strings.TrimSpace(input.Mensagem)
			if input.Titulo == "" || input.Mensagem == "" {
				return Communication{}, fmt.Errorf("%w: título e mensagem são obrigatórios", shared.ErrInvalidInput)
			}
			if !input.Tipo.Valid() {
				return Communication{}, fmt.Errorf("%w: tipo de comunicado desconhecido", shared.ErrInvalidInput)
			}
			if err := s.requireCondo(ctx, condoID); err != nil {
				return Communication{}, err
			}
			actor, _ := shared.CurrentUserID(ctx)
			autorID, err := uuid.Parse(actor)
			if err != nil {
				return Communication{}, shared.ErrUnauthenticated
			}
			com := Communication{
				ID:          uuid.New(),
				CondoID:     condoID,
				Titulo:      input.Titulo,
				Mensagem:    input.Mensagem,
				Tipo:        input.Tipo,
				AutorID:     autorID,
				AutorNome:   s.authorName(ctx, autorID),
				DataCriacao: time.Now().UTC(),
			}
			if err := s.repo.Insert(ctx, com); err != nil {
				return Communication{}, err
			}
			s.recordAudit(ctx, "communication.created", com.ID, map[string]any{"tipo": string(com.Tipo)})
			return com, nil
		})
}

// List returns all announcements of the condominium. Any authenticated user
// may read them.
func (s *Service) List(ctx context.Context, condoID uuid.UUID) ([]Communication, error) {
	if _, ok := shared.CurrentUserID(ctx); !ok {
		return nil, shared.ErrUnauthenticated
	}
	if err := s.requireCondo(ctx, condoID); err != nil {
		return nil, err
	}
	return s.repo.ListByCondo(ctx, condoID)
}

// Get returns a single announcement. Any authenticated user may read it.
func (s *Service) Get(ctx context.Context, condoID, id uuid.UUID) (Communication, error) {
	if _, ok := shared.CurrentUserID(ctx); !ok {
		return Communication{}, shared.ErrUnauthenticated
	}
	if err := s.requireCondo(ctx, condoID); err != nil {
		return Communication{}, err
	}
	return s.repo.Get(ctx, condoID, id)
}

// Delete removes an announcement. Guarded by canDeleteCommunications.
func (s *Service) Delete(ctx context.Context, condoID, id uuid.UUID) error {
	return s.authz.GuardErr(ctx, authz.CapDeleteCommunications,
		"Apenas o síndico pode excluir comunicados.",
		func(ctx context.Context) error {
			if err := s.repo.Delete(ctx, condoID, id); err != nil {
				return err
			}
			s.recordAudit(ctx, "communication.deleted", id, nil)
			return nil
		})
}

// Count totals announcements for the reports module.
func (s *Service) Count(ctx context.Context, condoID uuid.UUID) (int, error) {
	return s.repo.CountByCondo(ctx, condoID)
}

func (s *Service) authorName(ctx context.Context, id uuid.UUID) string {
	if s.directory == nil {
		return id.String()
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
		Entity:   "comunicado",
		EntityID: entity.String(),
		Meta:     meta,
	})
}
