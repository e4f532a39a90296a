package communications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
)

type memoryRepo struct {
	items map[uuid.UUID]Communication
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]Communication{}}
}

func (m *memoryRepo) Insert(_ context.Context, com Communication) error {
	m.items[com.ID] = com
	return nil
}

func (m *memoryRepo) Get(_ context.Context, condoID, id uuid.UUID) (Communication, error) {
	com, ok := m.items[id]
	if !ok || com.CondoID != condoID {
		return Communication{}, shared.ErrNotFound
	}
	return com, nil
}

func (m *memoryRepo) ListByCondo(_ context.Context, condoID uuid.UUID) ([]Communication, error) {
	var out []Communication
	for _, com := range m.items {
		if com.CondoID == condoID {
			out = append(out, com)
		}
	}
	return out, nil
}

func (m *memoryRepo) Delete(_ context.Context, condoID, id uuid.UUID) error {
	com, ok := m.items[id]
	if !ok || com.CondoID != condoID {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) CountByCondo(_ context.Context, condoID uuid.UUID) (int, error) {
	n := 0
	for _, com := range m.items {
		if com.CondoID == condoID {
			n++
		}
	}
	return n, nil
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
	svc := NewService(repo, condos, nil, authzSvc, nil)
	return fixture{repo: repo, condoID: condoID, service: svc}
}

func TestCreateGuarded(t *testing.T) {
	fx := newFixture(authz.RoleMorador)

	_, err := fx.service.Create(authedCtx(uuid.New()), fx.condoID, CreateInput{
		Titulo: "Assembleia", Mensagem: "Sexta-feira às 19h.", Tipo: TipoAviso,
	})
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Empty(t, fx.repo.items)
}

func TestCreateAsSindico(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	autor := uuid.New()

	com, err := fx.service.Create(authedCtx(autor), fx.condoID, CreateInput{
		Titulo: "  Manutenção do elevador  ", Mensagem: "Interditado na terça.", Tipo: TipoManutencao,
	})
	require.NoError(t, err)
	require.Equal(t, "Manutenção do elevador", com.Titulo)
	require.Equal(t, autor, com.AutorID)
	require.Equal(t, TipoManutencao, com.Tipo)
	require.Len(t, fx.repo.items, 1)
}

func TestCreateValidatesInput(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	ctx := authedCtx(uuid.New())

	_, err := fx.service.Create(ctx, fx.condoID, CreateInput{Titulo: "", Mensagem: "x", Tipo: TipoAviso})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = fx.service.Create(ctx, fx.condoID, CreateInput{Titulo: "x", Mensagem: "y", Tipo: Tipo("boato")})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateUnknownCondo(t *testing.T) {
	fx := newFixture(authz.RoleSindico)

	_, err := fx.service.Create(authedCtx(uuid.New()), uuid.New(), CreateInput{
		Titulo: "Aviso", Mensagem: "Teste.", Tipo: TipoAviso,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListRequiresAuthentication(t *testing.T) {
	fx := newFixture(authz.RoleMorador)

	_, err := fx.service.List(context.Background(), fx.condoID)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	fx.repo.items[uuid.New()] = Communication{
		ID: uuid.New(), CondoID: fx.condoID, Titulo: "Aviso", Mensagem: "x",
		Tipo: TipoAviso, AutorID: uuid.New(), DataCriacao: time.Now(),
	}
	list, err := fx.service.List(authedCtx(uuid.New()), fx.condoID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestGetReturnsAnnouncement(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	id := uuid.New()
	fx.repo.items[id] = Communication{
		ID: id, CondoID: fx.condoID, Titulo: "Obra na garagem", Mensagem: "x",
		Tipo: TipoManutencao, AutorID: uuid.New(), DataCriacao: time.Now(),
	}

	_, err := fx.service.Get(context.Background(), fx.condoID, id)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	com, err := fx.service.Get(authedCtx(uuid.New()), fx.condoID, id)
	require.NoError(t, err)
	require.Equal(t, "Obra na garagem", com.Titulo)

	_, err = fx.service.Get(authedCtx(uuid.New()), fx.condoID, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteGuarded(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	id := uuid.New()
	fx.repo.items[id] = Communication{ID: id, CondoID: fx.condoID, Titulo: "Aviso", Tipo: TipoAviso}

	err := fx.service.Delete(authedCtx(uuid.New()), fx.condoID, id)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Len(t, fx.repo.items, 1)

	admin := newFixture(authz.RoleSindico)
	admin.repo.items[id] = Communication{ID: id, CondoID: admin.condoID, Titulo: "Aviso", Tipo: TipoAviso}
	require.NoError(t, admin.service.Delete(authedCtx(uuid.New()), admin.condoID, id))
	require.Empty(t, admin.repo.items)
}
