package votings

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

// Service manages polls and their ballots.
type Service struct {
	repo   RepositoryPort
	condos CondoPort
	authz  *authz.Service
	audit  AuditPort
}

// NewService constructs the votings service. audit may be nil.
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

// CreateInput carries a new poll.
type CreateInput struct {
	Titulo    string
	Descricao string
	Tipo      Tipo
	Opcoes    []string
	DataFim   time.Time
}

// Create opens a poll. Guarded by canCreateVotings. Sim/Não polls get their
// fixed option pair; multiple-choice polls need at least two distinct options.
func (s *Service) Create(ctx context.Context, condoID uuid.UUID, input CreateInput) (Voting, error) {
	return authz.Guard(ctx, s.authz, authz.CapCreateVotings,
		"Apenas o síndico pode criar votações.",
		func(ctx context.Context) (Voting, error) {
			input.Titulo = strings.TrimSpace(input.Titulo)
			if input.Titulo == "" {
				return Voting{}, fmt.Errorf("%w: título é obrigatório", shared.ErrInvalidInput)
			}
			if !input.Tipo.Valid() {
				return Voting{}, fmt.Errorf("%w: tipo de votação desconhecido", shared.ErrInvalidInput)
			}
			if input.DataFim.IsZero() || !input.DataFim.After(time.Now()) {
				return Voting{}, fmt.Errorf("%w: data de término deve estar no futuro", shared.ErrInvalidInput)
			}
			opcoes, err := normalizeOptions(input.Tipo, input.Opcoes)
			if err != nil {
				return Voting{}, err
			}
			if err := s.requireCondo(ctx, condoID); err != nil {
				return Voting{}, err
			}
			actor, _ := shared.CurrentUserID(ctx)
			criador, err := uuid.Parse(actor)
			if err != nil {
				return Voting{}, shared.ErrUnauthenticated
			}
			v := Voting{
				ID:          uuid.New(),
				CondoID:     condoID,
				Titulo:      input.Titulo,
				Descricao:   strings.TrimSpace(input.Descricao),
				Tipo:        input.Tipo,
				Opcoes:      opcoes,
				DataFim:     input.DataFim.UTC(),
				Status:      StatusAtiva,
				CriadoPor:   criador,
				DataCriacao: time.Now().UTC(),
			}
			if err := s.repo.Insert(ctx, v); err != nil {
				return Voting{}, err
			}
			s.recordAudit(ctx, "voting.created", v.ID, map[string]any{"tipo": string(v.Tipo)})
			return v, nil
		})
}

func normalizeOptions(tipo Tipo, opcoes []string) ([]string, error) {
	if tipo == TipoSimNao {
		return []string{"Sim", "Não"}, nil
	}
	var out []string
	seen := map[string]bool{}
	for _, o := range opcoes {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("%w: votação de múltipla escolha exige pelo menos duas opções", shared.ErrInvalidInput)
	}
	return out, nil
}

// List returns the condominium's polls. Any authenticated user may read them.
func (s *Service) List(ctx context.Context, condoID uuid.UUID) ([]Voting, error) {
	if _, ok := shared.CurrentUserID(ctx); !ok {
		return nil, shared.ErrUnauthenticated
	}
	if err := s.requireCondo(ctx, condoID); err != nil {
		return nil, err
	}
	return s.repo.ListByCondo(ctx, condoID)
}

// Vote records the current user's ballot. One ballot per resident; the poll
// must still be open.
func (s *Service) Vote(ctx context.Context, condoID, id uuid.UUID, opcao string) error {
	actor, ok := shared.CurrentUserID(ctx)
	if !ok {
		return shared.ErrUnauthenticated
	}
	userID, err := uuid.Parse(actor)
	if err != nil {
		return shared.ErrUnauthenticated
	}
	v, err := s.repo.Get(ctx, condoID, id)
	if err != nil {
		return err
	}
	if !v.Aberta(time.Now()) {
		return fmt.Errorf("%w: votação encerrada", shared.ErrInvalidInput)
	}
	if !v.HasOption(opcao) {
		return fmt.Errorf("%w: opção não pertence à votação", shared.ErrInvalidInput)
	}
	return s.repo.InsertVote(ctx, id, userID, opcao)
}

// ResultsFor tallies a poll. Guarded by canViewVotingResults; both roles hold
// it today, the gate is where a future profile would narrow it.
func (s *Service) ResultsFor(ctx context.Context, condoID, id uuid.UUID) (Results, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewVotingResults,
		"Você não tem permissão para ver resultados de votações.",
		func(ctx context.Context) (Results, error) {
			v, err := s.repo.Get(ctx, condoID, id)
			if err != nil {
				return Results{}, err
			}
			counts, err := s.repo.CountVotes(ctx, id)
			if err != nil {
				return Results{}, err
			}
			results := Results{PorOpcao: make(map[string]int, len(v.Opcoes)), Encerrada: !v.Aberta(time.Now())}
			for _, o := range v.Opcoes {
				results.PorOpcao[o] = counts[o]
				results.Total += counts[o]
			}
			return results, nil
		})
}

// Close ends a poll early. Guarded by canManageVotings.
func (s *Service) Close(ctx context.Context, condoID, id uuid.UUID) error {
	return s.authz.GuardErr(ctx, authz.CapManageVotings,
		"Apenas o síndico pode encerrar votações.",
		func(ctx context.Context) error {
			v, err := s.repo.Get(ctx, condoID, id)
			if err != nil {
				return err
			}
			if v.Status == StatusEncerrada {
				return fmt.Errorf("%w: votação já encerrada", shared.ErrInvalidInput)
			}
			if err := s.repo.Close(ctx, condoID, id); err != nil {
				return err
			}
			s.recordAudit(ctx, "voting.closed", id, nil)
			return nil
		})
}

// CloseExpired sweeps active polls past their end date. The scheduler job
// calls this.
func (s *Service) CloseExpired(ctx context.Context) (int, error) {
	return s.repo.CloseExpired(ctx, time.Now().UTC())
}

// CountByStatus aggregates polls for reports.
func (s *Service) CountByStatus(ctx context.Context, condoID uuid.UUID) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx, condoID)
}

func (s *Service) recordAudit(ctx context.Context, action string, entity uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor, _ := shared.CurrentUserID(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "votacao",
		EntityID: entity.String(),
		Meta:     meta,
	})
}
