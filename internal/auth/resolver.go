package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
)

// SessionRoleResolver resolves the current role from the request session and
// the user store. It is the only authz.RoleResolver in the application, so
// the "missing record means morador" fallback is applied in exactly one place.
type SessionRoleResolver struct {
	users users.RepositoryPort
}

// NewSessionRoleResolver constructs the resolver.
func NewSessionRoleResolver(userRepo users.RepositoryPort) *SessionRoleResolver {
	return &SessionRoleResolver{users: userRepo}
}

// CurrentRole returns the signed-in user's role. No session means
// shared.ErrUnauthenticated; an absent or inactive user record degrades to the
// least-privileged role instead of failing.
func (r *SessionRoleResolver) CurrentRole(ctx context.Context) (authz.Role, error) {
	raw, ok := shared.CurrentUserID(ctx)
	if !ok {
		return authz.DefaultRole, shared.ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return authz.DefaultRole, shared.ErrUnauthenticated
	}
	user, err := r.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return authz.DefaultRole, nil
		}
		return authz.DefaultRole, err
	}
	if !user.Ativo() {
		return authz.DefaultRole, nil
	}
	return authz.Normalize(user.Papel), nil
}

var _ authz.RoleResolver = (*SessionRoleResolver)(nil)
