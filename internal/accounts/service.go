package accounts

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

// Service manages the condominium ledger.
type Service struct {
	repo   RepositoryPort
	condos CondoPort
	authz  *authz.Service
	audit  AuditPort
}

// NewService constructs the accounts service. audit may be nil.
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

// EntryInput carries a ledger entry create or update.
type EntryInput struct {
	Tipo      Tipo
	Categoria string
	Descricao string
	Valor     float64
	Data      time.Time
}

func validateEntry(input EntryInput) error {
	if !input.Tipo.Valid() {
		return fmt.Errorf("%w: tipo deve ser receita ou despesa", shared.ErrInvalidInput)
	}
	if !ValidCategoria(input.Tipo, input.Categoria) {
		return fmt.Errorf("%w: categoria não pertence ao tipo %s", shared.ErrInvalidInput, input.Tipo)
	}
	if strings.TrimSpace(input.Descricao) == "" {
		return fmt.Errorf("%w: descrição é obrigatória", shared.ErrInvalidInput)
	}
	if input.Valor <= 0 {
		return fmt.Errorf("%w: valor deve ser positivo", shared.ErrInvalidInput)
	}
	if input.Data.IsZero() {
		return fmt.Errorf("%w: data é obrigatória", shared.ErrInvalidInput)
	}
	return nil
}

// Create records a ledger entry. Guarded by canManageAccounts.
func (s *Service) Create(ctx context.Context, condoID uuid.UUID, input EntryInput) (Entry, error) {
	return authz.Guard(ctx, s.authz, authz.CapManageAccounts,
		"Apenas o síndico pode gerenciar a prestação de contas.",
		func(ctx context.Context) (Entry, error) {
			if err := validateEntry(input); err != nil {
				return Entry{}, err
			}
			if err := s.requireCondo(ctx, condoID); err != nil {
				return Entry{}, err
			}
			actor, _ := shared.CurrentUserID(ctx)
			criador, err := uuid.Parse(actor)
			if err != nil {
				return Entry{}, shared.ErrUnauthenticated
			}
			e := Entry{
				ID:          uuid.New(),
				CondoID:     condoID,
				Tipo:        input.Tipo,
				Categoria:   input.Categoria,
				Descricao:   strings.TrimSpace(input.Descricao),
				Valor:       input.Valor,
				Data:        input.Data.UTC(),
				CriadoPor:   criador,
				DataCriacao: time.Now().UTC(),
			}
			if err := s.repo.Insert(ctx, e); err != nil {
				return Entry{}, err
			}
			s.recordAudit(ctx, "account.entry.created", e.ID, map[string]any{"tipo": string(e.Tipo), "valor": e.Valor})
			return e, nil
		})
}

// Update rewrites a ledger entry. Guarded by canManageAccounts.
func (s *Service) Update(ctx context.Context, condoID, id uuid.UUID, input EntryInput) (Entry, error) {
	return authz.Guard(ctx, s.authz, authz.CapManageAccounts,
		"Apenas o síndico pode gerenciar a prestação de contas.",
		func(ctx context.Context) (Entry, error) {
			if err := validateEntry(input); err != nil {
				return Entry{}, err
			}
			e, err := s.repo.Get(ctx, condoID, id)
			if err != nil {
				return Entry{}, err
			}
			e.Tipo = input.Tipo
			e.Categoria = input.Categoria
			e.Descricao = strings.TrimSpace(input.Descricao)
			e.Valor = input.Valor
			e.Data = input.Data.UTC()
			if err := s.repo.Update(ctx, e); err != nil {
				return Entry{}, err
			}
			s.recordAudit(ctx, "account.entry.updated", id, nil)
			return e, nil
		})
}

// Delete removes a ledger entry. Guarded by canManageAccounts.
func (s *Service) Delete(ctx context.Context, condoID, id uuid.UUID) error {
	return s.authz.GuardErr(ctx, authz.CapManageAccounts,
		"Apenas o síndico pode gerenciar a prestação de contas.",
		func(ctx context.Context) error {
			if err := s.repo.Delete(ctx, condoID, id); err != nil {
				return err
			}
			s.recordAudit(ctx, "account.entry.deleted", id, nil)
			return nil
		})
}

// ListPeriod returns the entries of [from, to). Guarded by
// canViewFinancialReports.
func (s *Service) ListPeriod(ctx context.Context, condoID uuid.UUID, from, to time.Time) ([]Entry, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewFinancialReports,
		"Você não tem permissão para ver relatórios financeiros.",
		func(ctx context.Context) ([]Entry, error) {
			if err := s.requireCondo(ctx, condoID); err != nil {
				return nil, err
			}
			return s.repo.ListByPeriod(ctx, condoID, from, to)
		})
}

// SummaryFor totals a period. Guarded by canViewFinancialReports.
func (s *Service) SummaryFor(ctx context.Context, condoID uuid.UUID, from, to time.Time) (Summary, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewFinancialReports,
		"Você não tem permissão para ver relatórios financeiros.",
		func(ctx context.Context) (Summary, error) {
			if err := s.requireCondo(ctx, condoID); err != nil {
				return Summary{}, err
			}
			entries, err := s.repo.ListByPeriod(ctx, condoID, from, to)
			if err != nil {
				return Summary{}, err
			}
			return Summarize(entries), nil
		})
}

// Summarize folds entries into period totals.
func Summarize(entries []Entry) Summary {
	summary := Summary{PorCategoria: map[string]float64{}}
	for _, e := range entries {
		switch e.Tipo {
		case TipoReceita:
			summary.TotalReceitas += e.Valor
			summary.PorCategoria[e.Categoria] += e.Valor
		case TipoDespesa:
			summary.TotalDespesas += e.Valor
			summary.PorCategoria[e.Categoria] -= e.Valor
		}
	}
	summary.Saldo = summary.TotalReceitas - summary.TotalDespesas
	return summary
}

// MonthPeriod resolves "2006-01" to its [start, end) bounds.
func MonthPeriod(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: período fora do formato AAAA-MM", shared.ErrInvalidInput)
	}
	return start, start.AddDate(0, 1, 0), nil
}

func (s *Service) recordAudit(ctx context.Context, action string, entity uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor, _ := shared.CurrentUserID(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "lancamento",
		EntityID: entity.String(),
		Meta:     meta,
	})
}
