package reports

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/reservations"
	"github.com/condofacil/condofacil/internal/users"
	"github.com/condofacil/condofacil/internal/votings"
)

// overviewTTL bounds how stale a cached overview may get. Dashboards poll
// aggressively; the sources barely change.
const overviewTTL = 30 * time.Second

// UsersPort supplies user counts.
type UsersPort interface {
	CountByStatus(ctx context.Context) (map[users.Status]int, error)
}

// ReservationsPort supplies reservation counts.
type ReservationsPort interface {
	CountByStatus(ctx context.Context, condoID uuid.UUID) (map[reservations.Status]int, error)
}

// CommunicationsPort supplies the announcement total.
type CommunicationsPort interface {
	Count(ctx context.Context, condoID uuid.UUID) (int, error)
}

// VotingsPort supplies voting counts.
type VotingsPort interface {
	CountByStatus(ctx context.Context, condoID uuid.UUID) (map[votings.Status]int, error)
}

// Overview is the consolidated dashboard snapshot of one condominium.
type Overview struct {
	UsuariosAtivos     int            `json:"usuariosAtivos"`
	UsuariosInativos   int            `json:"usuariosInativos"`
	ReservasPorStatus  map[string]int `json:"reservasPorStatus"`
	TotalComunicados   int            `json:"totalComunicados"`
	VotacoesAtivas     int            `json:"votacoesAtivas"`
	VotacoesEncerradas int            `json:"votacoesEncerradas"`
	GeradoEm           time.Time      `json:"geradoEm"`
}

type cachedOverview struct {
	overview Overview
	at       time.Time
}

// Service assembles consolidated reports.
type Service struct {
	users          UsersPort
	reservations   ReservationsPort
	communications CommunicationsPort
	votings        VotingsPort
	authz          *authz.Service
	renderer       PDFRenderer

	group singleflight.Group
	mu    sync.Mutex
	cache map[uuid.UUID]cachedOverview
}

// NewService constructs the reports service. renderer may be nil; PDF export
// then reports unavailable.
func NewService(usersPort UsersPort, reservationsPort ReservationsPort, communicationsPort CommunicationsPort, votingsPort VotingsPort, authzSvc *authz.Service, renderer PDFRenderer) *Service {
	return &Service{
		users:          usersPort,
		reservations:   reservationsPort,
		communications: communicationsPort,
		votings:        votingsPort,
		authz:          authzSvc,
		renderer:       renderer,
		cache:          map[uuid.UUID]cachedOverview{},
	}
}

// OverviewFor returns the consolidated snapshot. Guarded by canViewReports.
// Concurrent requests for the same condominium share one build, and builds
// are cached briefly.
func (s *Service) OverviewFor(ctx context.Context, condoID uuid.UUID) (Overview, error) {
	return authz.Guard(ctx, s.authz, authz.CapViewReports,
		"Você não tem permissão para ver relatórios.",
		func(ctx context.Context) (Overview, error) {
			s.mu.Lock()
			if cached, ok := s.cache[condoID]; ok && time.Since(cached.at) < overviewTTL {
				s.mu.Unlock()
				return cached.overview, nil
			}
			s.mu.Unlock()

			resultChan := s.group.DoChan(condoID.String(), func() (any, error) {
				overview, err := s.build(context.WithoutCancel(ctx), condoID)
				if err != nil {
					return nil, err
				}
				s.mu.Lock()
				s.cache[condoID] = cachedOverview{overview: overview, at: time.Now()}
				s.mu.Unlock()
				return overview, nil
			})
			select {
			case <-ctx.Done():
				return Overview{}, ctx.Err()
			case res := <-resultChan:
				if res.Err != nil {
					return Overview{}, res.Err
				}
				return res.Val.(Overview), nil
			}
		})
}

// build fans the four sources out concurrently.
func (s *Service) build(ctx context.Context, condoID uuid.UUID) (Overview, error) {
	var (
		userCounts   map[users.Status]int
		resCounts    map[reservations.Status]int
		comTotal     int
		votingCounts map[votings.Status]int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userCounts, err = s.users.CountByStatus(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		resCounts, err = s.reservations.CountByStatus(ctx, condoID)
		return err
	})
	g.Go(func() error {
		var err error
		comTotal, err = s.communications.Count(ctx, condoID)
		return err
	})
	g.Go(func() error {
		var err error
		votingCounts, err = s.votings.CountByStatus(ctx, condoID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	reservasPorStatus := make(map[string]int, len(resCounts))
	for status, n := range resCounts {
		reservasPorStatus[string(status)] = n
	}
	return Overview{
		UsuariosAtivos:     userCounts[users.StatusAtivo],
		UsuariosInativos:   userCounts[users.StatusInativo],
		ReservasPorStatus:  reservasPorStatus,
		TotalComunicados:   comTotal,
		VotacoesAtivas:     votingCounts[votings.StatusAtiva],
		VotacoesEncerradas: votingCounts[votings.StatusEncerrada],
		GeradoEm:           time.Now().UTC(),
	}, nil
}

// RenderPDF produces the overview as a PDF document. Guarded by
// canGenerateReports.
func (s *Service) RenderPDF(ctx context.Context, condoID uuid.UUID) ([]byte, error) {
	return authz.Guard(ctx, s.authz, authz.CapGenerateReports,
		"Você não tem permissão para gerar relatórios.",
		func(ctx context.Context) ([]byte, error) {
			if s.renderer == nil {
				return nil, fmt.Errorf("reports: renderizador PDF não configurado")
			}
			overview, err := s.OverviewFor(ctx, condoID)
			if err != nil {
				return nil, err
			}
			html, err := renderOverviewHTML(overview)
			if err != nil {
				return nil, err
			}
			return s.renderer.RenderHTML(ctx, html)
		})
}

var overviewTemplate = template.Must(template.New("overview").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Relatório Consolidado</title></head>
<body>
<h1>Relatório Consolidado</h1>
<p>Gerado em {{.GeradoEm.Format "02/01/2006 15:04"}}</p>
<h2>Moradores</h2>
<p>Ativos: {{.UsuariosAtivos}} | Inativos: {{.UsuariosInativos}}</p>
<h2>Reservas</h2>
<ul>{{range $status, $n := .ReservasPorStatus}}<li>{{$status}}: {{$n}}</li>{{end}}</ul>
<h2>Comunicados</h2>
<p>Total: {{.TotalComunicados}}</p>
<h2>Votações</h2>
<p>Ativas: {{.VotacoesAtivas}} | Encerradas: {{.VotacoesEncerradas}}</p>
</body>
</html>`))

func renderOverviewHTML(overview Overview) (string, error) {
	var sb strings.Builder
	if err := overviewTemplate.Execute(&sb, overview); err != nil {
		return "", err
	}
	return sb.String(), nil
}
