package accounts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/shared"
)

type memoryRepo struct {
	items map[uuid.UUID]Entry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]Entry{}}
}

func (m *memoryRepo) Insert(_ context.Context, e Entry) error {
	m.items[e.ID] = e
	return nil
}

func (m *memoryRepo) Get(_ context.Context, condoID, id uuid.UUID) (Entry, error) {
	e, ok := m.items[id]
	if !ok || e.CondoID != condoID {
		return Entry{}, shared.ErrNotFound
	}
	return e, nil
}

func (m *memoryRepo) ListByPeriod(_ context.Context, condoID uuid.UUID, from, to time.Time) ([]Entry, error) {
	var out []Entry
	for _, e := range m.items {
		if e.CondoID == condoID && !e.Data.Before(from) && e.Data.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, e Entry) error {
	stored, ok := m.items[e.ID]
	if !ok || stored.CondoID != e.CondoID {
		return shared.ErrNotFound
	}
	m.items[e.ID] = e
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, condoID, id uuid.UUID) error {
	e, ok := m.items[id]
	if !ok || e.CondoID != condoID {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
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

func entryInput(tipo Tipo, categoria string, valor float64, data time.Time) EntryInput {
	return EntryInput{
		Tipo:      tipo,
		Categoria: categoria,
		Descricao: "Lançamento de teste",
		Valor:     valor,
		Data:      data,
	}
}

func TestCreateGuarded(t *testing.T) {
	fx := newFixture(authz.RoleMorador)

	_, err := fx.service.Create(authedCtx(uuid.New()), fx.condoID,
		entryInput(TipoReceita, "taxa-condominio", 500, time.Now()))
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Empty(t, fx.repo.items)
}

func TestCreateValidatesCategoryPerType(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	ctx := authedCtx(uuid.New())

	// limpeza is a despesa category, not receita.
	_, err := fx.service.Create(ctx, fx.condoID, entryInput(TipoReceita, "limpeza", 100, time.Now()))
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = fx.service.Create(ctx, fx.condoID, entryInput(TipoDespesa, "limpeza", 100, time.Now()))
	require.NoError(t, err)
}

func TestCreateValidatesValue(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	ctx := authedCtx(uuid.New())

	_, err := fx.service.Create(ctx, fx.condoID, entryInput(TipoReceita, "taxa-condominio", 0, time.Now()))
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = fx.service.Create(ctx, fx.condoID, entryInput(TipoReceita, "taxa-condominio", -10, time.Now()))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpdateAndDelete(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	ctx := authedCtx(uuid.New())

	e, err := fx.service.Create(ctx, fx.condoID, entryInput(TipoDespesa, "energia", 350, time.Now()))
	require.NoError(t, err)

	updated, err := fx.service.Update(ctx, fx.condoID, e.ID, entryInput(TipoDespesa, "agua", 280, time.Now()))
	require.NoError(t, err)
	require.Equal(t, "agua", updated.Categoria)
	require.Equal(t, 280.0, updated.Valor)

	require.NoError(t, fx.service.Delete(ctx, fx.condoID, e.ID))
	require.Empty(t, fx.repo.items)
}

func TestSummaryForPeriod(t *testing.T) {
	fx := newFixture(authz.RoleSindico)
	ctx := authedCtx(uuid.New())
	base := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	_, err := fx.service.Create(ctx, fx.condoID, entryInput(TipoReceita, "taxa-condominio", 1000, base))
	require.NoError(t, err)
	_, err = fx.service.Create(ctx, fx.condoID, entryInput(TipoReceita, "multa", 150, base.AddDate(0, 0, 2)))
	require.NoError(t, err)
	_, err = fx.service.Create(ctx, fx.condoID, entryInput(TipoDespesa, "limpeza", 400, base.AddDate(0, 0, 5)))
	require.NoError(t, err)
	// Outside the month, must not count.
	_, err = fx.service.Create(ctx, fx.condoID, entryInput(TipoDespesa, "energia", 999, base.AddDate(0, 1, 0)))
	require.NoError(t, err)

	from, to, err := MonthPeriod("2026-05")
	require.NoError(t, err)
	summary, err := fx.service.SummaryFor(ctx, fx.condoID, from, to)
	require.NoError(t, err)
	require.Equal(t, 1150.0, summary.TotalReceitas)
	require.Equal(t, 400.0, summary.TotalDespesas)
	require.Equal(t, 750.0, summary.Saldo)
	require.Equal(t, 1000.0, summary.PorCategoria["taxa-condominio"])
	require.Equal(t, -400.0, summary.PorCategoria["limpeza"])
}

func TestSummaryGuardedByFinancialReports(t *testing.T) {
	fx := newFixture(authz.RoleMorador)
	from, to, err := MonthPeriod("2026-05")
	require.NoError(t, err)

	_, err = fx.service.SummaryFor(authedCtx(uuid.New()), fx.condoID, from, to)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestMonthPeriodValidation(t *testing.T) {
	_, _, err := MonthPeriod("05/2026")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	from, to, err := MonthPeriod("2026-02")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestWriteLedgerCSV(t *testing.T) {
	entries := []Entry{
		{
			Tipo: TipoReceita, Categoria: "taxa-condominio", Descricao: "Taxa de maio",
			Valor: 1000, Data: time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			Tipo: TipoDespesa, Categoria: "limpeza", Descricao: "Serviço mensal",
			Valor: 400, Data: time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
		},
	}
	var sb strings.Builder
	require.NoError(t, WriteLedgerCSV(&sb, "2026-05", entries, Summarize(entries)))

	out := sb.String()
	require.Contains(t, out, "# Relatório: Prestação de Contas")
	require.Contains(t, out, "# Período: 2026-05 | Lançamentos: 2")
	require.Contains(t, out, "Data,Tipo,Categoria,Descrição,Valor")
	require.Contains(t, out, "2026-05-05,receita,taxa-condominio,Taxa de maio,1000.00")
	require.Contains(t, out, "Totais,,Saldo,,600.00")
}
