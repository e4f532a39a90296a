package reports

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/reservations"
	"github.com/condofacil/condofacil/internal/shared"
	_ "github.com/condofacil/condofacil/internal/testing/guard"
	"github.com/condofacil/condofacil/internal/users"
	"github.com/condofacil/condofacil/internal/votings"
)

type countingSources struct {
	calls atomic.Int32
}

func (c *countingSources) CountByStatus(context.Context) (map[users.Status]int, error) {
	c.calls.Add(1)
	return map[users.Status]int{users.StatusAtivo: 12, users.StatusInativo: 3}, nil
}

type reservationSource struct{}

func (reservationSource) CountByStatus(context.Context, uuid.UUID) (map[reservations.Status]int, error) {
	return map[reservations.Status]int{
		reservations.StatusPendente: 2,
		reservations.StatusAprovada: 5,
	}, nil
}

type communicationSource struct{}

func (communicationSource) Count(context.Context, uuid.UUID) (int, error) {
	return 7, nil
}

type votingSource struct{}

func (votingSource) CountByStatus(context.Context, uuid.UUID) (map[votings.Status]int, error) {
	return map[votings.Status]int{votings.StatusAtiva: 1, votings.StatusEncerrada: 4}, nil
}

type sessionResolver struct{ role authz.Role }

func (r sessionResolver) CurrentRole(context.Context) (authz.Role, error) {
	return r.role, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderHTML(_ context.Context, html string) ([]byte, error) {
	return []byte("%PDF " + html[:20]), nil
}

func authedCtx(userID uuid.UUID) context.Context {
	sess := &shared.Session{}
	sess.SetUser(userID.String())
	return shared.ContextWithSession(context.Background(), sess)
}

func newService(role authz.Role, usersSrc UsersPort, renderer PDFRenderer) *Service {
	return NewService(usersSrc, reservationSource{}, communicationSource{}, votingSource{},
		authz.NewService(sessionResolver{role: role}, nil), renderer)
}

func TestOverviewAggregatesSources(t *testing.T) {
	svc := newService(authz.RoleSindico, &countingSources{}, nil)

	overview, err := svc.OverviewFor(authedCtx(uuid.New()), uuid.New())
	require.NoError(t, err)
	require.Equal(t, 12, overview.UsuariosAtivos)
	require.Equal(t, 3, overview.UsuariosInativos)
	require.Equal(t, 2, overview.ReservasPorStatus["pendente"])
	require.Equal(t, 5, overview.ReservasPorStatus["aprovada"])
	require.Equal(t, 7, overview.TotalComunicados)
	require.Equal(t, 1, overview.VotacoesAtivas)
	require.Equal(t, 4, overview.VotacoesEncerradas)
	require.False(t, overview.GeradoEm.IsZero())
}

func TestOverviewGuarded(t *testing.T) {
	src := &countingSources{}
	svc := newService(authz.RoleMorador, src, nil)

	_, err := svc.OverviewFor(authedCtx(uuid.New()), uuid.New())
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Zero(t, src.calls.Load())
}

func TestOverviewCachesPerCondo(t *testing.T) {
	src := &countingSources{}
	svc := newService(authz.RoleSindico, src, nil)
	ctx := authedCtx(uuid.New())
	condoID := uuid.New()

	_, err := svc.OverviewFor(ctx, condoID)
	require.NoError(t, err)
	_, err = svc.OverviewFor(ctx, condoID)
	require.NoError(t, err)
	require.Equal(t, int32(1), src.calls.Load())

	// A different condominium rebuilds.
	_, err = svc.OverviewFor(ctx, uuid.New())
	require.NoError(t, err)
	require.Equal(t, int32(2), src.calls.Load())
}

func TestRenderPDFGuarded(t *testing.T) {
	svc := newService(authz.RoleMorador, &countingSources{}, stubRenderer{})

	_, err := svc.RenderPDF(authedCtx(uuid.New()), uuid.New())
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestRenderPDFUsesRenderer(t *testing.T) {
	svc := newService(authz.RoleSindico, &countingSources{}, stubRenderer{})

	pdf, err := svc.RenderPDF(authedCtx(uuid.New()), uuid.New())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

func TestWriteOverviewCSV(t *testing.T) {
	overview := Overview{
		UsuariosAtivos:     10,
		UsuariosInativos:   2,
		ReservasPorStatus:  map[string]int{"pendente": 3, "aprovada": 1},
		TotalComunicados:   6,
		VotacoesAtivas:     1,
		VotacoesEncerradas: 0,
		GeradoEm:           time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	var sb strings.Builder
	require.NoError(t, WriteOverviewCSV(&sb, overview))

	out := sb.String()
	require.Contains(t, out, "# Relatório Consolidado | Gerado em: 2026-05-01 09:00")
	require.Contains(t, out, "Moradores,Ativos,10")
	require.Contains(t, out, "Reservas,pendente,3")
	require.Contains(t, out, "Votações,Ativas,1")
}
