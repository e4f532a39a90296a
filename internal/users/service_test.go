package users

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
	items map[uuid.UUID]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]User{}}
}

func (m *memoryRepo) List(context.Context) ([]User, error) {
	var out []User
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id uuid.UUID) (User, error) {
	u, ok := m.items[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (User, error) {
	for _, u := range m.items {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, user User) error {
	m.items[user.ID] = user
	return nil
}

func (m *memoryRepo) UpdateRole(_ context.Context, id uuid.UUID, papel authz.Role) error {
	u, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Papel = papel
	m.items[id] = u
	return nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	u, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Status = status
	m.items[id] = u
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) CountByStatus(context.Context) (map[Status]int, error) {
	out := map[Status]int{}
	for _, u := range m.items {
		out[u.Status]++
	}
	return out, nil
}

var _ RepositoryPort = (*memoryRepo)(nil)

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
	service *Service
}

func newFixture(role authz.Role) fixture {
	repo := newMemoryRepo()
	authzSvc := authz.NewService(sessionResolver{role: role}, nil)
	return fixture{repo: repo, service: NewService(repo, authzSvc, nil)}
}

func seedUser(repo *memoryRepo, papel authz.Role) User {
	u := User{
		ID:           uuid.New(),
		Nome:         "Maria Silva",
		Email:        "maria@condofacil.local",
		Papel:        papel,
		Status:       StatusAtivo,
		DataCadastro: time.Now().UTC(),
	}
	repo.items[u.ID] = u
	return u
}

func TestListGuarded(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	seedUser(fx.repo, authz.RoleMorador)

	_, err := fx.service.List(authedCtx(uuid.New()))
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestListAsSindico(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	seedUser(fx.repo, authz.RoleMorador)
	seedUser(fx.repo, authz.RoleSindico)

	list, err := fx.service.List(authedCtx(uuid.New()))
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestChangeRoleGuarded(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	target := seedUser(fx.repo, authz.RoleMorador)

	err := fx.service.ChangeRole(authedCtx(uuid.New()), target.ID, authz.RoleSindico)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)

	var denied *shared.DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, "Apenas o síndico pode alterar papéis de usuários.", denied.Message)
	require.Equal(t, authz.RoleMorador, fx.repo.items[target.ID].Papel)
}

func TestChangeRoleNormalizesUnknownRole(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	target := seedUser(fx.repo, authz.RoleMorador)

	require.NoError(t, fx.service.ChangeRole(authedCtx(uuid.New()), target.ID, authz.Role("zelador")))
	require.Equal(t, authz.RoleMorador, fx.repo.items[target.ID].Papel)
}

func TestSetStatusDeactivates(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	target := seedUser(fx.repo, authz.RoleMorador)

	require.NoError(t, fx.service.SetStatus(authedCtx(uuid.New()), target.ID, StatusInativo))
	require.Equal(t, StatusInativo, fx.repo.items[target.ID].Status)
}

func TestRemoveRefusesSelf(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	actor := seedUser(fx.repo, authz.RoleSindico)

	err := fx.service.Remove(authedCtx(actor.ID), actor.ID)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Contains(t, fx.repo.items, actor.ID)
}

func TestRemoveOtherUser(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	actor := seedUser(fx.repo, authz.RoleSindico)
	target := seedUser(fx.repo, authz.RoleMorador)

	require.NoError(t, fx.service.Remove(authedCtx(actor.ID), target.ID))
	require.NotContains(t, fx.repo.items, target.ID)
}

func TestDisplayNameDegradesToID(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	known := seedUser(fx.repo, authz.RoleMorador)
	unknown := uuid.New()

	require.Equal(t, "Maria Silva", fx.service.DisplayName(context.Background(), known.ID))
	require.Equal(t, unknown.String(), fx.service.DisplayName(context.Background(), unknown))
}
