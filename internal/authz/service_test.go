package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/condofacil/condofacil/internal/shared"
)

type staticResolver struct {
	role Role
	err  error
}

func (r staticResolver) CurrentRole(ctx context.Context) (Role, error) {
	return r.role, r.err
}

func TestTablesAreRectangular(t *testing.T) {
	svc := NewService(staticResolver{}, nil)

	sindico := svc.TableFor(RoleSindico)
	morador := svc.TableFor(RoleMorador)
	require.Len(t, morador, len(sindico))
	for capability := range sindico {
		_, ok := morador[capability]
		require.True(t, ok, "capability %s missing from morador table", capability)
	}
}

func TestTableForReturnsCopy(t *testing.T) {
	svc := NewService(staticResolver{}, nil)

	table := svc.TableFor(RoleMorador)
	table[CapManageUsers] = true
	require.False(t, svc.Has(RoleMorador, CapManageUsers))
}

func TestHasDeniesMissingCapability(t *testing.T) {
	svc := NewService(staticResolver{}, nil)

	require.False(t, svc.Has(RoleMorador, Capability("canDoAnything")))
	require.False(t, svc.Has(RoleSindico, Capability("canDoAnything")))
}

func TestUnknownRoleDefaultsToMorador(t *testing.T) {
	svc := NewService(staticResolver{}, nil)

	require.False(t, svc.Has(Role("porteiro"), CapManageUsers))
	require.True(t, svc.Has(Role("porteiro"), CapViewVotingResults))
	require.Equal(t, svc.TableFor(RoleMorador), svc.TableFor(Role("porteiro")))
}

func TestSindicoHoldsEveryCapability(t *testing.T) {
	svc := NewService(staticResolver{}, nil)

	for capability, granted := range svc.TableFor(RoleSindico) {
		require.True(t, granted, "sindico missing %s", capability)
	}
}

func TestMoradorGrants(t *testing.T) {
	svc := NewService(staticResolver{}, nil)

	table := svc.TableFor(RoleMorador)
	require.True(t, table[CapViewVotingResults])
	for capability, granted := range table {
		if capability == CapViewVotingResults {
			continue
		}
		require.False(t, granted, "morador should not hold %s", capability)
	}
}

func TestCurrentUserHasFailsClosed(t *testing.T) {
	ctx := context.Background()

	unauthenticated := NewService(staticResolver{err: shared.ErrUnauthenticated}, nil)
	require.False(t, unauthenticated.CurrentUserHas(ctx, CapViewVotingResults))

	broken := NewService(staticResolver{err: context.DeadlineExceeded}, nil)
	require.False(t, broken.CurrentUserHas(ctx, CapViewVotingResults))
}

func TestGuardInvokesActionOnlyWhenAllowed(t *testing.T) {
	ctx := context.Background()
	calls := 0
	action := func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}

	resident := NewService(staticResolver{role: RoleMorador}, nil)
	result, err := Guard(ctx, resident, CapApproveReservations, "Apenas o síndico pode aprovar reservas.", action)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Empty(t, result)
	require.Zero(t, calls)

	var denied *shared.DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, "Apenas o síndico pode aprovar reservas.", denied.Message)

	admin := NewService(staticResolver{role: RoleSindico}, nil)
	result, err = Guard(ctx, admin, CapApproveReservations, "Apenas o síndico pode aprovar reservas.", action)
	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 1, calls)
}

func TestGuardErr(t *testing.T) {
	ctx := context.Background()
	calls := 0

	svc := NewService(staticResolver{role: RoleMorador}, nil)
	err := svc.GuardErr(ctx, CapManageUsers, "Sem acesso.", func(context.Context) error {
		calls++
		return nil
	})
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Zero(t, calls)

	admin := NewService(staticResolver{role: RoleSindico}, nil)
	require.NoError(t, admin.GuardErr(ctx, CapManageUsers, "Sem acesso.", func(context.Context) error {
		calls++
		return nil
	}))
	require.Equal(t, 1, calls)
}

func TestCurrentTableUnauthenticated(t *testing.T) {
	svc := NewService(staticResolver{err: shared.ErrUnauthenticated}, nil)
	require.Equal(t, svc.TableFor(RoleMorador), svc.CurrentTable(context.Background()))
}
