package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
)

type memoryUsers struct {
	items map[uuid.UUID]users.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{items: map[uuid.UUID]users.User{}}
}

func (m *memoryUsers) List(context.Context) ([]users.User, error) {
	var out []users.User
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryUsers) Get(_ context.Context, id uuid.UUID) (users.User, error) {
	u, ok := m.items[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (users.User, error) {
	for _, u := range m.items {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, shared.ErrNotFound
}

func (m *memoryUsers) Create(_ context.Context, user users.User) error {
	m.items[user.ID] = user
	return nil
}

func (m *memoryUsers) UpdateRole(_ context.Context, id uuid.UUID, papel authz.Role) error {
	u := m.items[id]
	u.Papel = papel
	m.items[id] = u
	return nil
}

func (m *memoryUsers) UpdateStatus(_ context.Context, id uuid.UUID, status users.Status) error {
	u := m.items[id]
	u.Status = status
	m.items[id] = u
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memoryUsers) CountByStatus(context.Context) (map[users.Status]int, error) {
	out := map[users.Status]int{}
	for _, u := range m.items {
		out[u.Status]++
	}
	return out, nil
}

var _ users.RepositoryPort = (*memoryUsers)(nil)

type memorySessions struct {
	created map[string]uuid.UUID
}

func newMemorySessions() *memorySessions {
	return &memorySessions{created: map[string]uuid.UUID{}}
}

func (m *memorySessions) Create(_ context.Context, id string, userID uuid.UUID, _ time.Time, _, _ string) error {
	m.created[id] = userID
	return nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	delete(m.created, id)
	return nil
}

var _ SessionRepository = (*memorySessions)(nil)

func seedAccount(repo *memoryUsers, email, password string, status users.Status) users.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := users.User{
		ID:           uuid.New(),
		Nome:         "João Souza",
		Email:        email,
		Papel:        authz.RoleMorador,
		Status:       status,
		PasswordHash: string(hash),
		DataCadastro: time.Now().UTC(),
	}
	repo.items[u.ID] = u
	return u
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryUsers()
	seedAccount(repo, "joao@condofacil.local", "segredo123", users.StatusAtivo)
	svc := NewService(repo, newMemorySessions())

	user, err := svc.Authenticate(context.Background(), "joao@condofacil.local", "segredo123")
	require.NoError(t, err)
	require.Equal(t, "joao@condofacil.local", user.Email)
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	repo := newMemoryUsers()
	seedAccount(repo, "joao@condofacil.local", "segredo123", users.StatusAtivo)
	svc := NewService(repo, newMemorySessions())

	_, err := svc.Authenticate(context.Background(), "  JOAO@condofacil.local ", "segredo123")
	require.NoError(t, err)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newMemoryUsers()
	seedAccount(repo, "joao@condofacil.local", "segredo123", users.StatusAtivo)
	svc := NewService(repo, newMemorySessions())

	_, err := svc.Authenticate(context.Background(), "joao@condofacil.local", "errada")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newMemoryUsers(), newMemorySessions())

	_, err := svc.Authenticate(context.Background(), "ninguem@condofacil.local", "segredo123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newMemoryUsers()
	seedAccount(repo, "joao@condofacil.local", "segredo123", users.StatusInativo)
	svc := NewService(repo, newMemorySessions())

	_, err := svc.Authenticate(context.Background(), "joao@condofacil.local", "segredo123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterCreatesMorador(t *testing.T) {
	repo := newMemoryUsers()
	svc := NewService(repo, newMemorySessions())

	user, err := svc.Register(context.Background(), RegisterInput{
		Nome:     "  Ana Lima ",
		Email:    "Ana@condofacil.local",
		Password: "segredo123",
	})
	require.NoError(t, err)
	require.Equal(t, "Ana Lima", user.Nome)
	require.Equal(t, "ana@condofacil.local", user.Email)
	require.Equal(t, authz.RoleMorador, user.Papel)
	require.Equal(t, users.StatusAtivo, user.Status)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("segredo123")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryUsers()
	seedAccount(repo, "ana@condofacil.local", "segredo123", users.StatusAtivo)
	svc := NewService(repo, newMemorySessions())

	_, err := svc.Register(context.Background(), RegisterInput{
		Nome:     "Ana Lima",
		Email:    "ana@condofacil.local",
		Password: "segredo123",
	})
	require.Error(t, err)
	require.Len(t, repo.items, 1)
}

func TestSessionLifecycle(t *testing.T) {
	sessions := newMemorySessions()
	svc := NewService(newMemoryUsers(), sessions)

	userID := uuid.New()
	require.NoError(t, svc.RegisterSession(context.Background(), "sess-1", userID, time.Now().Add(time.Hour), "127.0.0.1", "go-test"))
	require.Equal(t, userID, sessions.created["sess-1"])

	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	require.NotContains(t, sessions.created, "sess-1")
}
