package authz

import (
	"context"
	"errors"
	"log/slog"

	"github.com/condofacil/condofacil/internal/shared"
)

// RoleResolver resolves the role of the request's current user. Implementations
// read the session and the user store; they return shared.ErrUnauthenticated
// when no user is signed in.
type RoleResolver interface {
	CurrentRole(ctx context.Context) (Role, error)
}

// Service answers "what can a role do" questions and guards privileged
// actions. The permission table is an immutable value fixed at construction.
type Service struct {
	tables   map[Role]Table
	resolver RoleResolver
	logger   *slog.Logger
}

// NewService constructs the Service around the static permission tables.
func NewService(resolver RoleResolver, logger *slog.Logger) *Service {
	return &Service{tables: permissionTables, resolver: resolver, logger: logger}
}

// TableFor returns a copy of the full capability table for a role. Unknown
// roles resolve to the resident table so callers stay restrictive by default.
func (s *Service) TableFor(role Role) Table {
	src := s.tables[Normalize(role)]
	out := make(Table, len(src))
	for c, granted := range src {
		out[c] = granted
	}
	return out
}

// Has reports whether the role holds the capability. A key missing from the
// table means denied, never granted. Pure lookup, no I/O.
func (s *Service) Has(role Role, capability Capability) bool {
	return s.tables[Normalize(role)][capability]
}

// CurrentUserHas resolves the caller's role and applies Has. Unauthenticated
// requests and resolver failures both answer false: the check fails closed.
func (s *Service) CurrentUserHas(ctx context.Context, capability Capability) bool {
	role, err := s.resolver.CurrentRole(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrUnauthenticated) && s.logger != nil {
			s.logger.Warn("authz: resolve role", slog.Any("error", err))
		}
		return false
	}
	return s.Has(role, capability)
}

// CurrentTable returns the capability table for the request's current user.
// It serves the client-side element sweep; an unauthenticated request gets
// the resident table.
func (s *Service) CurrentTable(ctx context.Context) Table {
	role, err := s.resolver.CurrentRole(ctx)
	if err != nil {
		role = DefaultRole
	}
	return s.TableFor(role)
}

// GuardErr runs action iff the current user holds the capability; otherwise it
// returns a DeniedError carrying the user-facing message and never invokes
// action. Every privileged mutation in the application routes through here or
// through Guard.
func (s *Service) GuardErr(ctx context.Context, capability Capability, denial string, action func(context.Context) error) error {
	if !s.CurrentUserHas(ctx, capability) {
		return shared.Denied(denial)
	}
	return action(ctx)
}

// Guard is the value-returning form of GuardErr. It exists as a free function
// because methods cannot be generic.
func Guard[T any](ctx context.Context, s *Service, capability Capability, denial string, action func(context.Context) (T, error)) (T, error) {
	if !s.CurrentUserHas(ctx, capability) {
		var zero T
		return zero, shared.Denied(denial)
	}
	return action(ctx)
}
