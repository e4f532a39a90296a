package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
)

// AuditPort records administrative actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user management business logic. Every mutation is routed
// through the authz guard; residents can only reach the listing indirectly
// through their own profile endpoints.
type Service struct {
	repo  RepositoryPort
	authz *authz.Service
	audit AuditPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, authzSvc *authz.Service, audit AuditPort) *Service {
	return &Service{repo: repo, authz: authzSvc, audit: audit}
}

// List returns all users. Requires canViewUserList.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewUserList,
		"Você não tem permissão para ver a lista de moradores.",
		func(ctx context.Context) ([]User, error) {
			return s.repo.List(ctx)
		})
}

// Get returns one user by ID. Requires canViewUserList.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewUserList,
		"Você não tem permissão para ver dados de moradores.",
		func(ctx context.Context) (User, error) {
			return s.repo.Get(ctx, id)
		})
}

// ChangeRole updates the role tag of a user. Requires canManageUsers.
func (s *Service) ChangeRole(ctx context.Context, id uuid.UUID, papel authz.Role) error {
	papel = authz.Normalize(papel)
	return s.authz.GuardErr(ctx, authz.CapManageUsers,
		"Apenas o síndico pode alterar papéis de usuários.",
		func(ctx context.Context) error {
			if err := s.repo.UpdateRole(ctx, id, papel); err != nil {
				return err
			}
			s.recordAudit(ctx, "user.role_changed", id, map[string]any{"papel": string(papel)})
			return nil
		})
}

// SetStatus activates or deactivates a user. Requires canManageUsers.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if status != StatusAtivo && status != StatusInativo {
		status = StatusInativo
	}
	return s.authz.GuardErr(ctx, authz.CapManageUsers,
		"Apenas o síndico pode ativar ou desativar usuários.",
		func(ctx context.Context) error {
			if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
				return err
			}
			s.recordAudit(ctx, "user.status_changed", id, map[string]any{"status": string(status)})
			return nil
		})
}

// Remove deletes a user account. Requires canManageUsers; self-deletion is
// refused so the condominium is never left without its administrator.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.authz.GuardErr(ctx, authz.CapManageUsers,
		"Apenas o síndico pode remover usuários.",
		func(ctx context.Context) error {
			if actor, ok := shared.CurrentUserID(ctx); ok && strings.EqualFold(actor, id.String()) {
				return shared.Denied("Você não pode remover a própria conta.")
			}
			if err := s.repo.Delete(ctx, id); err != nil {
				return err
			}
			s.recordAudit(ctx, "user.deleted", id, nil)
			return nil
		})
}

// CountByStatus aggregates users per status for reports.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}

// DisplayName resolves a user id to its name, degrading to the raw id when
// the lookup fails. Enrichment only, never fatal.
func (s *Service) DisplayName(ctx context.Context, id uuid.UUID) string {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return id.String()
	}
	return u.Nome
}

func (s *Service) recordAudit(ctx context.Context, action string, entity uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor, _ := shared.CurrentUserID(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "usuario",
		EntityID: entity.String(),
		Meta:     meta,
	})
}
