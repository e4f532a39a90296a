package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	users    users.RepositoryPort
	sessions SessionRepository
}

// NewService constructs a new Service.
func NewService(userRepo users.RepositoryPort, sessions SessionRepository) *Service {
	return &Service{users: userRepo, sessions: sessions}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if !user.Ativo() {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterInput carries self-registration data.
type RegisterInput struct {
	Nome     string
	Email    string
	Password string
}

// Register creates a new resident account. Self-registration always produces
// a morador; only an administrator can promote afterwards.
func (s *Service) Register(ctx context.Context, input RegisterInput) (users.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return users.User{}, errors.New("auth: email already registered")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return users.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, err
	}
	user := users.User{
		ID:           uuid.New(),
		Nome:         strings.TrimSpace(input.Nome),
		Email:        email,
		Papel:        authz.RoleMorador,
		Status:       users.StatusAtivo,
		PasswordHash: string(hash),
		DataCadastro: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return users.User{}, err
	}
	return user, nil
}

// RegisterSession persists the session metadata for auditing.
func (s *Service) RegisterSession(ctx context.Context, id string, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	return s.sessions.Create(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}
