package votings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
)

type ballot struct {
	votingID uuid.UUID
	userID   uuid.UUID
}

type memoryRepo struct {
	items map[uuid.UUID]Voting
	votes map[ballot]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]Voting{}, votes: map[ballot]string{}}
}

func (m *memoryRepo) Insert(_ context.Context, v Voting) error {
	m.items[v.ID] = v
	return nil
}

func (m *memoryRepo) Get(_ context.Context, condoID, id uuid.UUID) (Voting, error) {
	v, ok := m.items[id]
	if !ok || v.CondoID != condoID {
		return Voting{}, shared.ErrNotFound
	}
	return v, nil
}

func (m *memoryRepo) ListByCondo(_ context.Context, condoID uuid.UUID) ([]Voting, error) {
	var out []Voting
	for _, v := range m.items {
		if v.CondoID == condoID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryRepo) InsertVote(_ context.Context, votingID, userID uuid.UUID, opcao string) error {
	key := ballot{votingID: votingID, userID: userID}
	if _, ok := m.votes[key]; ok {
		return shared.ErrConflict
	}
	m.votes[key] = opcao
	return nil
}

func (m *memoryRepo) CountVotes(_ context.Context, votingID uuid.UUID) (map[string]int, error) {
	counts := map[string]int{}
	for key, opcao := range m.votes {
		if key.votingID == votingID {
			counts[opcao]++
		}
	}
	return counts, nil
}

func (m *memoryRepo) Close(_ context.Context, condoID, id uuid.UUID) error {
	v, ok := m.items[id]
	if !ok || v.CondoID != condoID {
		return shared.ErrNotFound
	}
	v.Status = StatusEncerrada
	m.items[id] = v
	return nil
}

func (m *memoryRepo) CloseExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	for id, v := range m.items {
		if v.Status == StatusAtiva && !v.DataFim.After(now) {
			v.Status = StatusEncerrada
			m.items[id] = v
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CountByStatus(_ context.Context, condoID uuid.UUID) (map[Status]int, error) {
	counts := map[Status]int{}
	for _, v := range m.items {
		if v.CondoID == condoID {
			counts[v.Status]++
		}
	}
	return counts, nil
}

var _ RepositoryPort = (*memoryRepo)(nil)

type memoryCondos struct{ known map[uuid.UUID]bool }

func (m *memoryCondos) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

type sessionResolver struct{ role authz.Role }

func (r sessionResolver) CurrentRole(context.Context) (authz.Role, error) {
	return r.role, nil
}

func authedCtx(userID uuid.UUID) context.Context {
	sess := &shared.Session{}
	sess.SetUser(userID.String())
	return shared.ContextWithSession(context.Background(), sess)
}

type fixture struct {
	repo    *memoryRepo
	condoID uuid.UUID
	service *Service
}

func newFixture(role authz.Role) fixture {
	repo := newMemoryRepo()
	condoID := uuid.New()
	condos := &memoryCondos{known: map[uuid.UUID]bool{condoID: true}}
	authzSvc := authz.NewService(sessionResolver{role: role}, nil)
	svc := NewService(repo, condos, authzSvc, nil)
	return fixture{repo: repo, condoID: condoID, service: svc}
}

func seed(repo *memoryRepo, condoID uuid.UUID, status Status, fim time.Time, opcoes ...string) Voting {
	if len(opcoes) == 0 {
		opcoes = []string{"Sim", "Não"}
	}
	v := Voting{
		ID:          uuid.New(),
		CondoID:     condoID,
		Titulo:      "Pintura da fachada",
		Tipo:        TipoSimNao,
		Opcoes:      opcoes,
		DataFim:     fim,
		Status:      status,
		CriadoPor:   uuid.New(),
		DataCriacao: time.Now().UTC(),
	}
	repo.items[v.ID] = v
	return v
}

func TestCreateGuarded(t *testing.T) {
	fx := newFixture(authz.RoleMorador)

	_, err := fx.service.Create(authedCtx(uuid.New()), fx.condoID, CreateInput{
		Titulo: "Pintura", Tipo: TipoSimNao, DataFim: time.Now().Add(72 * time.Hour),
	})
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Empty(t, fx.repo.items)
}

func TestCreateSimNaoGetsFixedOptions(t *testing.T) {
	fx := newFixture(authz.RoleSindico)

	v, err := fx.service.Create(authedCtx(uuid.New()), fx.condoID, CreateInput{
		Titulo: "Pintura", Tipo: TipoSimNao,
		Opcoes:  []string{"ignorada"},
		DataFim: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Sim", "Não"}, v.Opcoes)
	require.Equal(t, StatusAtiva, v.Status)
}

func TestCreateMultiplaEscolhaNeedsTwoOptions(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	ctx := authedCtx(uuid.New())
	fim := time.Now().Add(72 * time.Hour)

	_, err := fx.service.Create(ctx, fx.condoID, CreateInput{
		Titulo: "Cor da fachada", Tipo: TipoMultiplaEscolha,
		Opcoes: []string{"Azul", " Azul ", ""}, DataFim: fim,
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	v, err := fx.service.Create(ctx, fx.condoID, CreateInput{
		Titulo: "Cor da fachada", Tipo: TipoMultiplaEscolha,
		Opcoes: []string{"Azul", "Verde", "Azul"}, DataFim: fim,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Azul", "Verde"}, v.Opcoes)
}

func TestCreateRequiresFutureEnd(t *testing.T) {
	fx := newFixture(authz.RoleSindico)

	_, err := fx.service.Create(authedCtx(uuid.New()), fx.condoID, CreateInput{
		Titulo: "Pintura", Tipo: TipoSimNao, DataFim: time.Now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestVoteOncePerResident(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	v := seed(fx.repo, fx.condoID, StatusAtiva, time.Now().Add(24*time.Hour))
	userID := uuid.New()
	ctx := authedCtx(userID)

	require.NoError(t, fx.service.Vote(ctx, fx.condoID, v.ID, "Sim"))

	err := fx.service.Vote(ctx, fx.condoID, v.ID, "Não")
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestVoteRefusedAfterEnd(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	expired := seed(fx.repo, fx.condoID, StatusAtiva, time.Now().Add(-time.Hour))
	closed := seed(fx.repo, fx.condoID, StatusEncerrada, time.Now().Add(24*time.Hour))

	err := fx.service.Vote(authedCtx(uuid.New()), fx.condoID, expired.ID, "Sim")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	err = fx.service.Vote(authedCtx(uuid.New()), fx.condoID, closed.ID, "Sim")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestVoteValidatesOption(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	v := seed(fx.repo, fx.condoID, StatusAtiva, time.Now().Add(24*time.Hour))

	err := fx.service.Vote(authedCtx(uuid.New()), fx.condoID, v.ID, "Talvez")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestResultsTallyPerOption(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	v := seed(fx.repo, fx.condoID, StatusAtiva, time.Now().Add(24*time.Hour))

	require.NoError(t, fx.service.Vote(authedCtx(uuid.New()), fx.condoID, v.ID, "Sim"))
	require.NoError(t, fx.service.Vote(authedCtx(uuid.New()), fx.condoID, v.ID, "Sim"))
	require.NoError(t, fx.service.Vote(authedCtx(uuid.New()), fx.condoID, v.ID, "Não"))

	results, err := fx.service.ResultsFor(authedCtx(uuid.New()), fx.condoID, v.ID)
	require.NoError(t, err)
	require.Equal(t, 3, results.Total)
	require.Equal(t, 2, results.PorOpcao["Sim"])
	require.Equal(t, 1, results.PorOpcao["Não"])
	require.False(t, results.Encerrada)
}

func TestCloseGuarded(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	v := seed(fx.repo, fx.condoID, StatusAtiva, time.Now().Add(24*time.Hour))

	err := fx.service.Close(authedCtx(uuid.New()), fx.condoID, v.ID)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)

	admin := newFixture(authz.RoleSindico)
	kept := seed(admin.repo, admin.condoID, StatusAtiva, time.Now().Add(24*time.Hour))
	require.NoError(t, admin.service.Close(authedCtx(uuid.New()), admin.condoID, kept.ID))
	require.Equal(t, StatusEncerrada, admin.repo.items[kept.ID].Status)

	err = admin.service.Close(authedCtx(uuid.New()), admin.condoID, kept.ID)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCloseExpiredSweep(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	expired := seed(fx.repo, fx.condoID, StatusAtiva, time.Now().Add(-time.Hour))
	open := seed(fx.repo, fx.condoID, StatusAtiva, time.Now().Add(24*time.Hour))

	n, err := fx.service.CloseExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, StatusEncerrada, fx.repo.items[expired.ID].Status)
	require.Equal(t, StatusAtiva, fx.repo.items[open.ID].Status)
}
